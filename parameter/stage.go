package parameter

import "time"

// Canvas Geometry
const (
	// DefaultCanvasWidth is the stage width in canvas units
	DefaultCanvasWidth = 480

	// DefaultCanvasHeight is the stage height in canvas units
	DefaultCanvasHeight = 360

	// ClampInset keeps dragged actors this many units inside the canvas edge
	ClampInset = 5
)

// Actor Defaults
const (
	// DefaultActorSize is applied when an imported actor omits or zeroes its size
	DefaultActorSize = 30

	// DefaultActorColor is applied when an imported actor omits its color
	DefaultActorColor = "#4c97ff"
)

// Frame Loop
const (
	// DefaultFPS is the frame rate of the run loop
	DefaultFPS = 60

	// FrameUpdateInterval is the frame interval at DefaultFPS
	FrameUpdateInterval = time.Second / DefaultFPS

	// WaitHorizonFrames is how far ahead of the clock a wait may point before it is treated as stale
	// 10 seconds at DefaultFPS
	WaitHorizonFrames = 600
)

// Pointer Interaction
const (
	// DragThreshold is the distance a press must travel before release counts as a drag commit
	DragThreshold = 3.0
)

// Diagnostics
const (
	// DiagnosticCapacity is the fixed capacity of the diagnostic ring, must be a power of two
	DiagnosticCapacity = 256

	// DiagnosticMask is the bitmask for ring index wrap (256 - 1)
	DiagnosticMask = DiagnosticCapacity - 1
)

// Physics Backend
const (
	// SpringStiffness is the angular frequency of the grab spring (rad/s)
	SpringStiffness = 18.0

	// SpringSettle is the distance under which a grabbed body snaps to its target
	SpringSettle = 0.25
)

// Audio
const (
	// DefaultSampleRate for the tone sink
	DefaultSampleRate = 48000

	// MaxToneDuration caps a single tone request
	MaxToneDuration = 2 * time.Second

	// ToneAttack and ToneRelease shape the tone envelope
	ToneAttack  = 5 * time.Millisecond
	ToneRelease = 20 * time.Millisecond
)
