// Package threads queries the unified inbox for conversation threads by any
// of their linkage keys and normalizes the heterogeneous response shapes
// into one contract.
package threads

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/castline/castline-go/internal/api"
	"github.com/castline/castline-go/internal/cache"
)

// ErrNotFound is returned by ByID when no thread exists for the id. Filter
// queries never return it; for them absence is an empty result.
var ErrNotFound = errors.New("thread not found")

// DefaultFreshness is the window during which a repeated thread query is
// served from cache, to avoid redundant refetches during rapid interaction.
const DefaultFreshness = 30 * time.Second

const cachePrefix = "threads:"

// Client resolves conversation threads against the unified inbox resource.
type Client struct {
	api       *api.Client
	cache     *cache.Cache
	notifier  Notifier
	freshness time.Duration
}

// NewClient creates a thread resolution client. A freshness <= 0 selects
// DefaultFreshness; a nil notifier selects NoopNotifier.
func NewClient(transport *api.Client, c *cache.Cache, notifier Notifier, freshness time.Duration) *Client {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Client{api: transport, cache: c, notifier: notifier, freshness: freshness}
}

// ByID fetches a single thread, returning ErrNotFound when it does not
// exist.
func (c *Client) ByID(ctx context.Context, threadID string) (*Thread, error) {
	key := cachePrefix + "id:" + threadID
	if cached, ok := c.cache.Get(key); ok {
		if t, ok := cached.(*Thread); ok {
			return t, nil
		}
	}

	var t Thread
	err := c.api.Do(ctx, http.MethodGet, "/inbox/threads/"+threadID, nil, nil, &t)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching thread %s: %w", threadID, err)
	}
	c.cache.Set(key, &t, c.freshness)
	return &t, nil
}

// ByCampaign lists threads linked to a campaign. A 404 from the backend is
// an empty result, not an error.
func (c *Client) ByCampaign(ctx context.Context, campaignID string, opts CampaignOptions) ([]Thread, error) {
	q := url.Values{}
	q.Set("campaign_id", campaignID)
	if opts.HasReplies != nil {
		q.Set("has_replies", strconv.FormatBool(*opts.HasReplies))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	return c.list(ctx, q)
}

// ByPitch resolves the thread linked to a pitch. In steady state at most
// one thread matches; when the backend returns more, the first is taken.
// Absence resolves to nil without error.
func (c *Client) ByPitch(ctx context.Context, pitchID string) (*Thread, error) {
	q := url.Values{}
	q.Set("pitch_id", pitchID)
	return c.first(ctx, q)
}

// ByPlacement resolves the thread linked to a placement, with the same
// single-result convention as ByPitch.
func (c *Client) ByPlacement(ctx context.Context, placementID string) (*Thread, error) {
	q := url.Values{}
	q.Set("placement_id", placementID)
	return c.first(ctx, q)
}

// RecentReplies lists threads with at least one reply, most recent reply
// first, optionally bounded to a campaign and a result limit.
func (c *Client) RecentReplies(ctx context.Context, opts RecentOptions) ([]Thread, error) {
	q := url.Values{}
	q.Set("has_replies", "true")
	q.Set("sort", "last_reply_desc")
	if opts.CampaignID != "" {
		q.Set("campaign_id", opts.CampaignID)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	return c.list(ctx, q)
}

// MarkRead marks a thread as read. It is idempotent on the backend side;
// success invalidates all cached thread queries.
func (c *Client) MarkRead(ctx context.Context, threadID string) error {
	err := c.api.Do(ctx, http.MethodPost, "/inbox/threads/"+threadID+"/mark-read", nil, nil, nil)
	if err != nil {
		c.notifier.Failure("failed to mark thread as read")
		return fmt.Errorf("marking thread %s read: %w", threadID, err)
	}
	c.cache.InvalidatePrefix(cachePrefix)
	return nil
}

// Sync triggers a manual inbox re-sync. Success invalidates all cached
// thread queries; the outcome is surfaced through the notifier either way.
func (c *Client) Sync(ctx context.Context) error {
	err := c.api.Do(ctx, http.MethodPost, "/inbox/sync", nil, nil, nil)
	if err != nil {
		c.notifier.Failure("inbox sync failed")
		return fmt.Errorf("syncing inbox: %w", err)
	}
	c.cache.InvalidatePrefix(cachePrefix)
	c.notifier.Success("inbox sync started")
	return nil
}

// first runs a filter query and applies the singleton convention: first
// element of the list, or nil when the list is empty.
func (c *Client) first(ctx context.Context, q url.Values) (*Thread, error) {
	list, err := c.list(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	t := list[0]
	return &t, nil
}

// list runs a filter query against the threads resource with soft-404
// semantics and response-shape normalization.
func (c *Client) list(ctx context.Context, q url.Values) ([]Thread, error) {
	key := cachePrefix + "list:" + q.Encode()
	if cached, ok := c.cache.Get(key); ok {
		if list, ok := cached.([]Thread); ok {
			return list, nil
		}
	}

	raw, err := c.api.DoRaw(ctx, http.MethodGet, "/inbox/threads", q, nil)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing threads: %w", err)
	}

	list, err := decodeList(raw)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	c.cache.Set(key, list, c.freshness)
	return list, nil
}
