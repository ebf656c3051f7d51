package ir

// Version constants for the snapshot format and engine.
const (
	// SnapshotVersion is the golden/history snapshot schema version.
	SnapshotVersion = "1"

	// EngineVersion is the marbles engine version.
	EngineVersion = "0.1.0"
)
