package testutil

// FixedRequestGenerator returns the same request ID every time.
//
// The same scenario with the same generator produces identical audit-log
// IDs. Unlike engine.FixedGenerator, which hands out IDs in sequence, every
// call here shares one request.
//
// Thread-safety: FixedRequestGenerator is stateless and safe for concurrent use.
type FixedRequestGenerator struct {
	id string
}

// NewFixedRequestGenerator creates a generator for id.
// If id is empty, Generate() returns "test-request-default".
func NewFixedRequestGenerator(id string) *FixedRequestGenerator {
	if id == "" {
		id = "test-request-default"
	}
	return &FixedRequestGenerator{id: id}
}

// Generate returns the fixed request ID.
func (g *FixedRequestGenerator) Generate() string {
	return g.id
}
