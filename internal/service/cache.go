package service

import "context"

// Cache holds derived read models between ledger writes. Implementations are
// best effort: a miss or a failed write only costs a recomputation.
//
// GetJSON fills dest on a hit. On a miss it returns the slot the recomputed
// value belongs in; the slot is tied to the cache generation seen before the
// recomputation, so a result built while a write invalidates the cache is
// stored where no later read will find it.
type Cache interface {
	GetJSON(ctx context.Context, name string, dest interface{}) (slot string, hit bool)
	SetJSON(ctx context.Context, slot string, v interface{})
	Invalidate(ctx context.Context)
}

type noopCache struct{}

func (noopCache) GetJSON(context.Context, string, interface{}) (string, bool) { return "", false }
func (noopCache) SetJSON(context.Context, string, interface{})                {}
func (noopCache) Invalidate(context.Context)                                  {}

func cacheOrNoop(c Cache) Cache {
	if c == nil {
		return noopCache{}
	}
	return c
}
