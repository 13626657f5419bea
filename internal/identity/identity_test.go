package identity

import (
	"errors"
	"net/url"
	"testing"
)

func TestValidate(t *testing.T) {
	if err := Self().Validate(); err != nil {
		t.Errorf("Self().Validate() = %v, want nil", err)
	}
	if err := SharedAccount(42).Validate(); err != nil {
		t.Errorf("SharedAccount(42).Validate() = %v, want nil", err)
	}

	err := SharedAccount(0).Validate()
	if !errors.Is(err, ErrMissingAccountID) {
		t.Errorf("SharedAccount(0).Validate() = %v, want ErrMissingAccountID", err)
	}
	if err := (Identity{Kind: KindShared, AccountID: -1}).Validate(); !errors.Is(err, ErrMissingAccountID) {
		t.Errorf("negative account id: got %v, want ErrMissingAccountID", err)
	}
}

func TestPathPrefix(t *testing.T) {
	if got := Self().PathPrefix(); got != "/inbox" {
		t.Errorf("Self().PathPrefix() = %q, want /inbox", got)
	}
	if got := SharedAccount(7).PathPrefix(); got != "/admin/inbox" {
		t.Errorf("SharedAccount(7).PathPrefix() = %q, want /admin/inbox", got)
	}
}

func TestQuery(t *testing.T) {
	q := SharedAccount(7).Query(nil)
	if got := q.Get("account_id"); got != "7" {
		t.Errorf("account_id = %q, want 7", got)
	}

	q = Self().Query(url.Values{"limit": {"10"}})
	if q.Get("account_id") != "" {
		t.Error("self identity must not set account_id")
	}
	if q.Get("limit") != "10" {
		t.Error("existing query values must be preserved")
	}
}

func TestCacheKey(t *testing.T) {
	if Self().CacheKey() == SharedAccount(7).CacheKey() {
		t.Error("self and shared cache keys must differ")
	}
	if SharedAccount(7).CacheKey() == SharedAccount(8).CacheKey() {
		t.Error("distinct shared accounts must have distinct cache keys")
	}
}

func TestZeroValueIsSelf(t *testing.T) {
	var id Identity
	if id.Kind != KindSelf {
		t.Errorf("zero value Kind = %v, want KindSelf", id.Kind)
	}
	if err := id.Validate(); err != nil {
		t.Errorf("zero value Validate() = %v, want nil", err)
	}
}
