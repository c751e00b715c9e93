package ir

// Version constants for serialized state and the engine.
const (
	// StateVersion is the canonical state schema version.
	StateVersion = "1"

	// EngineVersion is the takeoff engine version.
	EngineVersion = "0.1.0"
)
