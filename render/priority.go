package render

// LayerPriority determines render order. Lower values render first
type LayerPriority int

const (
	PriorityBackground LayerPriority = iota
	PriorityProgram
	PriorityActors
	PriorityTether
	PriorityStatus
)
