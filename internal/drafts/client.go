// Package drafts provides the draft store client and the loader that
// resolves an open conversation thread to its in-progress draft.
//
// All operations exist for both ownership domains: the caller passes an
// identity.Identity and the client derives the self or shared-mailbox route
// from it. Payload shapes are identical across the two domains.
package drafts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/castline/castline-go/internal/api"
	"github.com/castline/castline-go/internal/identity"
)

// Client is the stateless request/response mapping to the draft endpoints.
// It performs no caching; that is the calling layer's responsibility.
type Client struct {
	api *api.Client
}

// NewClient creates a draft store client on top of the shared transport.
func NewClient(transport *api.Client) *Client {
	return &Client{api: transport}
}

// Create persists a new draft and returns its assigned id.
func (c *Client) Create(ctx context.Context, owner identity.Identity, req CreateRequest) (*SaveResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var res SaveResult
	if err := c.api.Do(ctx, http.MethodPost, owner.PathPrefix()+"/drafts", owner.Query(nil), req, &res); err != nil {
		return nil, fmt.Errorf("creating draft: %w", err)
	}
	return &res, nil
}

// Update applies a partial-field update to an existing draft.
func (c *Client) Update(ctx context.Context, owner identity.Identity, id int64, req UpdateRequest) (*SaveResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var res SaveResult
	if err := c.api.Do(ctx, http.MethodPatch, c.draftPath(owner, id), owner.Query(nil), req, &res); err != nil {
		return nil, fmt.Errorf("updating draft %d: %w", id, err)
	}
	return &res, nil
}

// Get fetches a single draft by id.
func (c *Client) Get(ctx context.Context, owner identity.Identity, id int64) (*Draft, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var d Draft
	if err := c.api.Do(ctx, http.MethodGet, c.draftPath(owner, id), owner.Query(nil), nil, &d); err != nil {
		return nil, fmt.Errorf("fetching draft %d: %w", id, err)
	}
	return &d, nil
}

// List fetches a page of drafts, most recently edited first, together with
// the total count.
func (c *Client) List(ctx context.Context, owner identity.Identity, limit, offset int) (*Page, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	q := owner.Query(url.Values{})
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var page Page
	if err := c.api.Do(ctx, http.MethodGet, owner.PathPrefix()+"/drafts", q, nil, &page); err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	return &page, nil
}

// Delete removes a draft. Deleting an already-deleted draft is not an error
// on the backend side; permission failures surface as request errors.
func (c *Client) Delete(ctx context.Context, owner identity.Identity, id int64) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	if err := c.api.Do(ctx, http.MethodDelete, c.draftPath(owner, id), owner.Query(nil), nil, nil); err != nil {
		return fmt.Errorf("deleting draft %d: %w", id, err)
	}
	return nil
}

// Send triggers an immediate send of an existing draft and returns the
// resulting sent-message id.
func (c *Client) Send(ctx context.Context, owner identity.Identity, id int64) (*SendResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var res SendResult
	if err := c.api.Do(ctx, http.MethodPost, c.draftPath(owner, id)+"/send", owner.Query(nil), nil, &res); err != nil {
		return nil, fmt.Errorf("sending draft %d: %w", id, err)
	}
	return &res, nil
}

func (c *Client) draftPath(owner identity.Identity, id int64) string {
	return fmt.Sprintf("%s/drafts/%d", owner.PathPrefix(), id)
}
