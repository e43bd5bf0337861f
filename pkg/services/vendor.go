package services

import (
	"context"

	"github.com/appforge-ai/appforge-engine/pkg/llm"
	"github.com/appforge-ai/appforge-engine/pkg/retry"
)

// vendorRetry is the backoff applied to every vendor round trip. Transient
// vendor failures (429, 5xx) get two more attempts; everything else surfaces
// on the first try.
var vendorRetry = retry.DefaultConfig()

func generateWithRetry(ctx context.Context, g llm.Generator, req llm.Request) (*llm.Result, error) {
	return retry.DoWithResult(ctx, vendorRetry, func() (*llm.Result, error) {
		return g.Generate(ctx, req)
	})
}
