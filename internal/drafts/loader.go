package drafts

import (
	"context"
	"fmt"
	"time"

	"github.com/castline/castline-go/internal/cache"
	"github.com/castline/castline-go/internal/identity"
)

// resolvePageSize bounds the listing the loader searches; drafts older than
// the most recent page are not candidates for resuming an open compose box.
const resolvePageSize = 100

// DefaultLoaderTTL is how long a fetched draft page stays fresh. Draft
// content changes are pushed through the auto-save engine rather than
// pulled, so a staleness window of minutes is acceptable.
const DefaultLoaderTTL = 5 * time.Minute

// Lister is the slice of Client the Loader needs.
type Lister interface {
	List(ctx context.Context, owner identity.Identity, limit, offset int) (*Page, error)
}

// Loader resolves whether an open conversation thread already has an
// in-progress draft associated with it.
type Loader struct {
	lister Lister
	cache  *cache.Cache
	ttl    time.Duration
}

// NewLoader creates a Loader. A ttl <= 0 selects DefaultLoaderTTL.
func NewLoader(lister Lister, c *cache.Cache, ttl time.Duration) *Loader {
	if ttl <= 0 {
		ttl = DefaultLoaderTTL
	}
	return &Loader{lister: lister, cache: c, ttl: ttl}
}

// Resolve returns the first unsent draft linked to threadID, or nil if none
// exists. Scheduled drafts are never candidates: a scheduled send is not an
// open compose box to resume. An empty threadID resolves to nil without a
// fetch; a fetch failure is returned as an error value alongside nil.
func (l *Loader) Resolve(ctx context.Context, threadID string, owner identity.Identity) (*Draft, error) {
	if threadID == "" {
		return nil, nil
	}

	page, err := l.page(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("resolving draft for thread %s: %w", threadID, err)
	}

	for i := range page.Drafts {
		d := &page.Drafts[i]
		if d.ThreadID == threadID && d.Status == StatusDraft {
			found := *d
			return &found, nil
		}
	}
	return nil, nil
}

// Invalidate drops the cached listing for an ownership context. Callers
// invoke it after a send or delete so the next Resolve sees fresh state.
func (l *Loader) Invalidate(owner identity.Identity) {
	l.cache.Delete(l.cacheKey(owner))
}

func (l *Loader) page(ctx context.Context, owner identity.Identity) (*Page, error) {
	key := l.cacheKey(owner)
	if cached, ok := l.cache.Get(key); ok {
		if page, ok := cached.(*Page); ok {
			return page, nil
		}
	}

	page, err := l.lister.List(ctx, owner, resolvePageSize, 0)
	if err != nil {
		return nil, err
	}
	l.cache.Set(key, page, l.ttl)
	return page, nil
}

func (l *Loader) cacheKey(owner identity.Identity) string {
	return "drafts:list:" + owner.CacheKey()
}
