package config

import "errors"

// Validation errors, wrapped by Validate with the offending field
var (
	ErrInvalid        = errors.New("invalid configuration")
	ErrInvalidCanvas  = errors.New("invalid canvas size")
	ErrInvalidFPS     = errors.New("invalid fps")
	ErrInvalidBackend = errors.New("invalid render backend")
	ErrInvalidPersist = errors.New("invalid persistence settings")
	ErrInvalidAudio   = errors.New("invalid audio settings")
	ErrInvalidLog     = errors.New("invalid log level")
)

// Loading errors
var (
	ErrParse = errors.New("configuration parse error")
	ErrEnv   = errors.New("environment variable error")
)
