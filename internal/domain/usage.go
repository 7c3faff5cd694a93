package domain

import "context"

type usageKey struct{}

// EmbeddingUsage accumulates embedding token spend for one request.
// Handlers attach it before calling a service and read it back for the
// X-Embedding-Tokens response header.
type EmbeddingUsage struct {
	Tokens int
	Calls  int
}

// WithUsage returns ctx carrying a fresh usage accumulator.
func WithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFrom returns the accumulator attached to ctx, or nil.
func UsageFrom(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(usageKey{}).(*EmbeddingUsage)
	return u
}

// Record adds one embedding call. Safe on a nil receiver.
func (u *EmbeddingUsage) Record(tokens int) {
	if u == nil {
		return
	}
	u.Calls++
	u.Tokens += tokens
}
