// Package llm wraps the outbound LLM vendor endpoints behind one normalized
// generation interface. Handlers and services depend on Generator only and
// never see a vendor's response envelope shape.
package llm

import "context"

// Request is a normalized generation request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Result is a normalized generation result.
type Result struct {
	Text  string
	Model string
}

// Generator issues one outbound generation call. Implementations do not
// retry and do not circuit-break; a non-2xx vendor status surfaces as an
// *Error carrying the HTTP status.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
	Vendor() string
}
