package richtext

import (
	"context"
	"errors"
	"time"

	"github.com/mostlysecurity/chapterpost/atproto/syntax"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type handleEntry struct {
	DID syntax.DID
	Err error
}

// Remembers handle resolutions, so a handle mentioned in several posts of
// one run is looked up once. Only successes and ErrUnresolvedHandle
// results are cached; other failures are retried on the next call.
type CachingResolver struct {
	Inner HandleResolver
	cache *expirable.LRU[syntax.Handle, handleEntry]
}

var _ HandleResolver = (*CachingResolver)(nil)

// Capacity of zero means unlimited size. Similarly, ttl of zero means unlimited duration.
func NewCachingResolver(inner HandleResolver, capacity int, ttl time.Duration) *CachingResolver {
	return &CachingResolver{
		Inner: inner,
		cache: expirable.NewLRU[syntax.Handle, handleEntry](capacity, nil, ttl),
	}
}

func (r *CachingResolver) ResolveHandle(ctx context.Context, handle syntax.Handle) (syntax.DID, error) {
	handle = handle.Normalize()
	if e, ok := r.cache.Get(handle); ok {
		return e.DID, e.Err
	}

	did, err := r.Inner.ResolveHandle(ctx, handle)
	if err == nil || errors.Is(err, ErrUnresolvedHandle) {
		r.cache.Add(handle, handleEntry{DID: did, Err: err})
	}
	return did, err
}
