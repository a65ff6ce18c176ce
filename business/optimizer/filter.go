package optimizer

import "context"

// VariantFilter decides whether a variant may be served to a persona
// (paused experiments, platform constraints, quiet hours).
type VariantFilter interface {
	Allowed(ctx context.Context, personaID, variantID string) (bool, error)
}

// NoopVariantFilter is the default implementation that allows everything.
type NoopVariantFilter struct{}

func (NoopVariantFilter) Allowed(ctx context.Context, personaID, variantID string) (bool, error) {
	return true, nil
}
