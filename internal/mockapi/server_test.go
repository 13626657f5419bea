package mockapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/castline/castline-go/internal/api"
	"github.com/castline/castline-go/internal/cache"
	"github.com/castline/castline-go/internal/compose"
	"github.com/castline/castline-go/internal/drafts"
	"github.com/castline/castline-go/internal/identity"
	"github.com/castline/castline-go/internal/threads"
)

func newServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New()
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return s, srv
}

func TestDraftLifecycleEndToEnd(t *testing.T) {
	_, srv := newServer(t)
	ctx := context.Background()
	owner := identity.Self()

	client := drafts.NewClient(api.New(srv.URL, "test-token"))
	loader := drafts.NewLoader(client, cache.New(), time.Minute)

	// Compose with autosave: the synchronous flush drives a create.
	engine := compose.NewEngine(client, owner, compose.Seed{
		To:       []string{"host@pod.fm"},
		Subject:  "Guest pitch",
		ThreadID: "thr_1",
	}, compose.Options{Debounce: 10 * time.Second})

	engine.UpdateBody("Hi there, loved the last episode.")
	if err := engine.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	id := engine.DraftID()
	if id == 0 {
		t.Fatal("no draft id assigned")
	}
	engine.Close()

	// The loader resolves the same thread back to the draft.
	resumed, err := loader.Resolve(ctx, "thr_1", owner)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resumed == nil || resumed.ID != id {
		t.Fatalf("Resolve() = %+v, want draft %d", resumed, id)
	}
	if resumed.Body != "Hi there, loved the last episode." {
		t.Errorf("Body = %q", resumed.Body)
	}

	// Partial update touches only the body.
	body := "Hi there — loved the last episode. Quick idea:"
	if _, err := client.Update(ctx, owner, id, drafts.UpdateRequest{Body: &body}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := client.Get(ctx, owner, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Body != body || got.Subject != "Guest pitch" {
		t.Errorf("draft after update = %+v", got)
	}

	// Send removes the draft and returns a message id.
	res, err := client.Send(ctx, owner, id)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if res.MessageID == "" || res.SentAt.IsZero() {
		t.Errorf("send result = %+v", res)
	}
	if _, err := client.Get(ctx, owner, id); err == nil {
		t.Error("sent draft must no longer exist")
	}
}

func TestSharedMailboxKeyspaceIsolation(t *testing.T) {
	s, srv := newServer(t)
	ctx := context.Background()
	client := drafts.NewClient(api.New(srv.URL, ""))

	_, err := client.Create(ctx, identity.SharedAccount(7), drafts.CreateRequest{
		To:   []string{"host@pod.fm"},
		Body: "shared draft",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if s.DraftCount("acct:7") != 1 {
		t.Error("shared draft not stored under its account keyspace")
	}
	if s.DraftCount("self") != 0 {
		t.Error("shared draft leaked into the self keyspace")
	}

	page, err := client.List(ctx, identity.Self(), 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 0 {
		t.Errorf("self listing sees %d drafts, want 0", page.Total)
	}
}

func TestAdminRouteRequiresAccountID(t *testing.T) {
	_, srv := newServer(t)

	resp, err := http.Post(srv.URL+"/admin/inbox/drafts", "application/json",
		strings.NewReader(`{"to":["x@y.z"],"body":"hi"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without account_id", resp.StatusCode)
	}
}

func TestScheduledCreate(t *testing.T) {
	_, srv := newServer(t)
	ctx := context.Background()
	client := drafts.NewClient(api.New(srv.URL, ""))

	at := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	res, err := client.Create(ctx, identity.Self(), drafts.CreateRequest{
		To:              []string{"host@pod.fm"},
		Body:            "see you tomorrow",
		ScheduledSendAt: &at,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.MessageStatus != drafts.StatusScheduled {
		t.Errorf("MessageStatus = %q, want scheduled", res.MessageStatus)
	}
	if res.ScheduledSendAt == nil || !res.ScheduledSendAt.Equal(at) {
		t.Errorf("ScheduledSendAt = %v, want %v", res.ScheduledSendAt, at)
	}
}

func TestThreadListShapeAlternates(t *testing.T) {
	s, srv := newServer(t)
	s.AddThread(threads.Thread{ID: "thr_1", Subject: "a", CampaignID: "cam_7"})

	shapes := make([]byte, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := http.Get(srv.URL + "/inbox/threads?campaign_id=cam_7")
		if err != nil {
			t.Fatal(err)
		}
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		trimmed := strings.TrimSpace(string(raw))
		shapes = append(shapes, trimmed[0])
	}
	if shapes[0] == shapes[1] {
		t.Errorf("both responses start with %q; shapes must alternate between array and envelope", shapes[0])
	}

	// The SDK normalizes either shape transparently.
	tc := threads.NewClient(api.New(srv.URL, ""), cache.New(), nil, time.Millisecond)
	for i := 0; i < 2; i++ {
		list, err := tc.ByCampaign(context.Background(), "cam_7", threads.CampaignOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].ID != "thr_1" {
			t.Errorf("normalized list = %+v", list)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestThreadQueriesAndMutations(t *testing.T) {
	s, srv := newServer(t)
	reply := time.Now().UTC().Add(-time.Hour)
	older := reply.Add(-time.Hour)
	s.AddThread(threads.Thread{ID: "thr_1", Subject: "a", PitchID: "pit_42", CampaignID: "cam_7", LastReplyAt: &reply})
	s.AddThread(threads.Thread{ID: "thr_2", Subject: "b", PlacementID: "plc_9", CampaignID: "cam_7", LastReplyAt: &older})
	s.AddThread(threads.Thread{ID: "thr_3", Subject: "c", CampaignID: "cam_8"})

	tc := threads.NewClient(api.New(srv.URL, ""), cache.New(), nil, time.Millisecond)
	ctx := context.Background()

	th, err := tc.ByPitch(ctx, "pit_42")
	if err != nil || th == nil || th.ID != "thr_1" {
		t.Errorf("ByPitch = %+v, %v", th, err)
	}
	th, err = tc.ByPlacement(ctx, "plc_9")
	if err != nil || th == nil || th.ID != "thr_2" {
		t.Errorf("ByPlacement = %+v, %v", th, err)
	}

	recent, err := tc.RecentReplies(ctx, threads.RecentOptions{CampaignID: "cam_7"})
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != "thr_1" {
		t.Errorf("recent = %+v, want thr_1 first (most recent reply)", recent)
	}

	if err := tc.MarkRead(ctx, "thr_1"); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if !s.IsRead("thr_1") {
		t.Error("thread not marked read")
	}
	// Idempotent: marking again succeeds.
	if err := tc.MarkRead(ctx, "thr_1"); err != nil {
		t.Errorf("second MarkRead() error = %v", err)
	}

	if err := tc.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if s.SyncCount() != 1 {
		t.Errorf("sync count = %d, want 1", s.SyncCount())
	}
}

func TestCreateRejectsMissingRecipients(t *testing.T) {
	_, srv := newServer(t)
	client := drafts.NewClient(api.New(srv.URL, ""))

	_, err := client.Create(context.Background(), identity.Self(), drafts.CreateRequest{Body: "no one to send to"})
	if err == nil {
		t.Fatal("Create() without recipients must fail")
	}
}

func TestListDraftsPagination(t *testing.T) {
	_, srv := newServer(t)
	ctx := context.Background()
	client := drafts.NewClient(api.New(srv.URL, ""))

	for i := 0; i < 5; i++ {
		if _, err := client.Create(ctx, identity.Self(), drafts.CreateRequest{
			To:   []string{"host@pod.fm"},
			Body: "draft body",
		}); err != nil {
			t.Fatal(err)
		}
	}

	page, err := client.List(ctx, identity.Self(), 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 5 || len(page.Drafts) != 2 || page.Limit != 2 || page.Offset != 2 {
		t.Errorf("page = total=%d len=%d limit=%d offset=%d", page.Total, len(page.Drafts), page.Limit, page.Offset)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	_, srv := newServer(t)
	client := drafts.NewClient(api.New(srv.URL, ""))

	if err := client.Delete(context.Background(), identity.Self(), 999); err != nil {
		t.Errorf("Delete() of absent draft = %v, want nil", err)
	}
}

func TestSendResultShape(t *testing.T) {
	_, srv := newServer(t)

	resp, err := http.Post(srv.URL+"/inbox/drafts", "application/json",
		strings.NewReader(`{"to":["x@y.z"],"subject":"s","body":"b"}`))
	if err != nil {
		t.Fatal(err)
	}
	var created drafts.SaveResult
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if created.Status != "ok" || created.DraftID == 0 || created.CreatedAt == nil {
		t.Errorf("create envelope = %+v", created)
	}
}
