// Package identity defines the ownership context under which draft and
// thread operations are scoped: either the authenticated user's own mailbox
// or a shared mailbox account selected by id.
package identity

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrMissingAccountID is returned when a shared-mailbox identity was
// constructed without an account id. It is detected locally and never
// results in a network call.
var ErrMissingAccountID = errors.New("shared mailbox identity requires an account id")

// Kind discriminates the two ownership domains.
type Kind int

const (
	// KindSelf scopes operations to the authenticated user's own mailbox.
	KindSelf Kind = iota
	// KindShared scopes operations to a shared mailbox administered by id.
	KindShared
)

func (k Kind) String() string {
	switch k {
	case KindSelf:
		return "self"
	case KindShared:
		return "shared"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Identity is an ownership context value. The zero value is the self
// identity.
type Identity struct {
	Kind      Kind
	AccountID int64
}

// Self returns the identity of the authenticated user's own mailbox.
func Self() Identity {
	return Identity{Kind: KindSelf}
}

// SharedAccount returns the identity of a shared mailbox account.
func SharedAccount(accountID int64) Identity {
	return Identity{Kind: KindShared, AccountID: accountID}
}

// Validate reports whether the identity is usable for API calls.
func (id Identity) Validate() error {
	if id.Kind == KindShared && id.AccountID <= 0 {
		return ErrMissingAccountID
	}
	return nil
}

// PathPrefix returns the route prefix for the identity's ownership domain.
// Self and shared mailboxes use disjoint backend routes with identical
// payload shapes.
func (id Identity) PathPrefix() string {
	if id.Kind == KindShared {
		return "/admin/inbox"
	}
	return "/inbox"
}

// Query merges the mandatory account_id parameter into q for shared
// identities and returns q unchanged for self.
func (id Identity) Query(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if id.Kind == KindShared {
		q.Set("account_id", fmt.Sprintf("%d", id.AccountID))
	}
	return q
}

// CacheKey returns a stable key fragment distinguishing ownership domains
// in client-side caches.
func (id Identity) CacheKey() string {
	if id.Kind == KindShared {
		return fmt.Sprintf("shared:%d", id.AccountID)
	}
	return "self"
}
