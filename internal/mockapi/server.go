// Package mockapi is an in-memory stand-in for the Castline backend. It
// implements every endpoint the SDK consumes — self and shared-mailbox
// draft routes, thread queries with all filter keys, mark-read and sync —
// and is used by the dev mock command and the end-to-end tests.
//
// To exercise the SDK's response normalization, list queries against the
// threads resource alternate between the two shapes the real backend emits:
// a bare array and a {"threads": [...]} envelope.
package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/castline/castline-go/internal/drafts"
	"github.com/castline/castline-go/internal/threads"
)

// Server holds the in-memory backend state. Draft keyspaces are disjoint
// per ownership domain, mirroring the real backend's self vs shared routes.
type Server struct {
	mu          sync.Mutex
	drafts      map[string]map[int64]*drafts.Draft
	nextDraftID int64
	threads     map[string]*threads.Thread
	readIDs     map[string]bool
	syncCount   int
	listCalls   int
}

// New creates an empty mock backend.
func New() *Server {
	return &Server{
		drafts:      make(map[string]map[int64]*drafts.Draft),
		nextDraftID: 1,
		threads:     make(map[string]*threads.Thread),
		readIDs:     make(map[string]bool),
	}
}

// Router wires the mock's routes into a chi router.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)

	r.Route("/inbox", func(r chi.Router) {
		s.draftRoutes(r, false)
		r.Get("/threads", s.handleListThreads)
		r.Get("/threads/{id}", s.handleGetThread)
		r.Post("/threads/{id}/mark-read", s.handleMarkRead)
		r.Post("/sync", s.handleSync)
	})
	r.Route("/admin/inbox", func(r chi.Router) {
		s.draftRoutes(r, true)
	})
	return r
}

func (s *Server) draftRoutes(r chi.Router, admin bool) {
	r.Post("/drafts", s.ownerHandler(admin, s.handleCreateDraft))
	r.Get("/drafts", s.ownerHandler(admin, s.handleListDrafts))
	r.Get("/drafts/{id}", s.ownerHandler(admin, s.handleGetDraft))
	r.Patch("/drafts/{id}", s.ownerHandler(admin, s.handleUpdateDraft))
	r.Delete("/drafts/{id}", s.ownerHandler(admin, s.handleDeleteDraft))
	r.Post("/drafts/{id}/send", s.ownerHandler(admin, s.handleSendDraft))
}

// ownerHandler resolves the draft keyspace for the request. Admin routes
// require the account_id query parameter; self routes ignore it.
func (s *Server) ownerHandler(admin bool, next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := "self"
		if admin {
			accountID := r.URL.Query().Get("account_id")
			if accountID == "" {
				writeJSON(w, http.StatusBadRequest, errResponse{Error: "account_id is required"})
				return
			}
			if _, err := strconv.ParseInt(accountID, 10, 64); err != nil {
				writeJSON(w, http.StatusBadRequest, errResponse{Error: "account_id must be numeric"})
				return
			}
			key = "acct:" + accountID
		}
		next(w, r, key)
	}
}

// AddThread seeds a thread.
func (s *Server) AddThread(t threads.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := t
	s.threads[t.ID] = &copied
}

// Draft returns a stored draft for assertions in tests.
func (s *Server) Draft(ownerKey string, id int64) (drafts.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[ownerKey][id]
	if !ok {
		return drafts.Draft{}, false
	}
	return *d, true
}

// DraftCount returns how many drafts exist for an ownership key.
func (s *Server) DraftCount(ownerKey string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts[ownerKey])
}

// IsRead reports whether a thread was marked read.
func (s *Server) IsRead(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readIDs[threadID]
}

// SyncCount returns how many sync requests were accepted.
func (s *Server) SyncCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncCount
}

// --- Draft handlers ---

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request, ownerKey string) {
	var req drafts.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid request body"})
		return
	}
	if len(req.To) == 0 {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "to is required"})
		return
	}

	s.mu.Lock()
	now := time.Now().UTC()
	d := &drafts.Draft{
		ID:               s.nextDraftID,
		To:               req.To,
		Cc:               req.Cc,
		Bcc:              req.Bcc,
		Subject:          req.Subject,
		Body:             req.Body,
		ThreadID:         req.ThreadID,
		ReplyToMessageID: req.ReplyToMessageID,
		Status:           drafts.StatusDraft,
		ScheduledSendAt:  req.ScheduledSendAt,
		LastEditedAt:     now,
		CreatedAt:        now,
	}
	if req.ScheduledSendAt != nil {
		d.Status = drafts.StatusScheduled
	}
	s.nextDraftID++
	if s.drafts[ownerKey] == nil {
		s.drafts[ownerKey] = make(map[int64]*drafts.Draft)
	}
	s.drafts[ownerKey][d.ID] = d
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, drafts.SaveResult{
		Status:          "ok",
		DraftID:         d.ID,
		MessageStatus:   d.Status,
		ScheduledSendAt: d.ScheduledSendAt,
		CreatedAt:       &d.CreatedAt,
	})
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request, ownerKey string) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}
	var req drafts.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid request body"})
		return
	}

	s.mu.Lock()
	d, exists := s.drafts[ownerKey][id]
	if !exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, errResponse{Error: "draft not found"})
		return
	}
	if req.To != nil {
		d.To = *req.To
	}
	if req.Cc != nil {
		d.Cc = *req.Cc
	}
	if req.Bcc != nil {
		d.Bcc = *req.Bcc
	}
	if req.Subject != nil {
		d.Subject = *req.Subject
	}
	if req.Body != nil {
		d.Body = *req.Body
	}
	if req.ScheduledSendAt != nil {
		d.ScheduledSendAt = req.ScheduledSendAt
		d.Status = drafts.StatusScheduled
	}
	d.LastEditedAt = time.Now().UTC()
	res := drafts.SaveResult{
		Status:          "ok",
		DraftID:         d.ID,
		MessageStatus:   d.Status,
		ScheduledSendAt: d.ScheduledSendAt,
		LastEditedAt:    &d.LastEditedAt,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request, ownerKey string) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	d, exists := s.drafts[ownerKey][id]
	var copied drafts.Draft
	if exists {
		copied = *d
	}
	s.mu.Unlock()

	if !exists {
		writeJSON(w, http.StatusNotFound, errResponse{Error: "draft not found"})
		return
	}
	writeJSON(w, http.StatusOK, copied)
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request, ownerKey string) {
	limit := intQuery(r, "limit", 50)
	offset := intQuery(r, "offset", 0)

	s.mu.Lock()
	all := make([]drafts.Draft, 0, len(s.drafts[ownerKey]))
	for _, d := range s.drafts[ownerKey] {
		all = append(all, *d)
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].LastEditedAt.After(all[j].LastEditedAt)
	})

	total := len(all)
	page := []drafts.Draft{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = all[offset:end]
	}

	writeJSON(w, http.StatusOK, drafts.Page{
		Drafts: page,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request, ownerKey string) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.drafts[ownerKey], id)
	s.mu.Unlock()

	// Deletion is idempotent: deleting an absent draft succeeds.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSendDraft(w http.ResponseWriter, r *http.Request, ownerKey string) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	d, exists := s.drafts[ownerKey][id]
	if !exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, errResponse{Error: "draft not found"})
		return
	}
	if len(d.To) == 0 {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "draft has no recipient"})
		return
	}
	delete(s.drafts[ownerKey], id)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, drafts.SendResult{
		Status:    "ok",
		MessageID: uuid.New().String(),
		SentAt:    time.Now().UTC(),
	})
}

// --- Thread handlers ---

func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	t, exists := s.threads[id]
	var copied threads.Thread
	if exists {
		copied = *t
	}
	s.mu.Unlock()

	if !exists {
		writeJSON(w, http.StatusNotFound, errResponse{Error: "thread not found"})
		return
	}
	writeJSON(w, http.StatusOK, copied)
}

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	matched := make([]threads.Thread, 0, len(s.threads))
	for _, t := range s.threads {
		if v := q.Get("pitch_id"); v != "" && t.PitchID != v {
			continue
		}
		if v := q.Get("placement_id"); v != "" && t.PlacementID != v {
			continue
		}
		if v := q.Get("campaign_id"); v != "" && t.CampaignID != v {
			continue
		}
		if v := q.Get("has_replies"); v != "" {
			want, _ := strconv.ParseBool(v)
			if t.HasReplies() != want {
				continue
			}
		}
		matched = append(matched, *t)
	}
	s.listCalls++
	envelope := s.listCalls%2 == 0
	s.mu.Unlock()

	if strings.HasPrefix(q.Get("sort"), "last_reply") {
		sort.Slice(matched, func(i, j int) bool {
			var a, b time.Time
			if matched[i].LastReplyAt != nil {
				a = *matched[i].LastReplyAt
			}
			if matched[j].LastReplyAt != nil {
				b = *matched[j].LastReplyAt
			}
			return a.After(b)
		})
	} else {
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].ID < matched[j].ID
		})
	}
	if limit := intQuery(r, "limit", 0); limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	if envelope {
		writeJSON(w, http.StatusOK, map[string][]threads.Thread{"threads": matched})
		return
	}
	writeJSON(w, http.StatusOK, matched)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, exists := s.threads[id]
	if exists {
		s.readIDs[id] = true
	}
	s.mu.Unlock()

	if !exists {
		writeJSON(w, http.StatusNotFound, errResponse{Error: "thread not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.syncCount++
	s.mu.Unlock()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sync started"})
}

// --- Helpers ---

type errResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func draftID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid draft id"})
		return 0, false
	}
	return id, true
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
