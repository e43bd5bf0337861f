package llm

import "context"

// MockGenerator is a configurable mock for testing generation flows.
// Set GenerateFunc to control behavior in tests.
type MockGenerator struct {
	// GenerateFunc is called when Generate is invoked.
	// If nil, returns an empty result and nil error.
	GenerateFunc func(ctx context.Context, req Request) (*Result, error)

	// VendorName is returned by Vendor. Defaults to "mock".
	VendorName string

	// Call tracking for verification
	GenerateCalls int
	LastRequest   Request
}

// NewMockGenerator creates a new mock with sensible defaults.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{VendorName: "mock"}
}

// Generate implements Generator.
func (m *MockGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	m.GenerateCalls++
	m.LastRequest = req
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &Result{Text: "", Model: "mock-model"}, nil
}

// Vendor implements Generator.
func (m *MockGenerator) Vendor() string {
	return m.VendorName
}

var _ Generator = (*MockGenerator)(nil)
