package testutil

// FixedIDGenerator returns the same run ID every time.
//
// This keeps run history snapshots byte-identical across test runs.
// Unlike engine.FixedGenerator, which hands out IDs in sequence, this
// generator never runs out.
//
// Thread-safety: stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id.
// If id is empty, Generate() returns "test-run-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
//
// Implements engine.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
