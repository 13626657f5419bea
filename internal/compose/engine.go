// Package compose owns the mutable state of an open compose surface and
// coordinates debounced draft persistence: create-vs-update branching,
// change detection against the last persisted body, and a best-effort flush
// when the surface is torn down.
package compose

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/castline/castline-go/internal/drafts"
	"github.com/castline/castline-go/internal/identity"
)

// DefaultDebounce is the quiet period after the last edit before a save is
// attempted. It bounds write amplification to roughly one persistence call
// per window of continuous typing.
const DefaultDebounce = 2 * time.Second

const (
	defaultSaveTimeout  = 10 * time.Second
	defaultFlushTimeout = 5 * time.Second
)

// Saver is the slice of the draft store client the engine needs.
type Saver interface {
	Create(ctx context.Context, owner identity.Identity, req drafts.CreateRequest) (*drafts.SaveResult, error)
	Update(ctx context.Context, owner identity.Identity, id int64, req drafts.UpdateRequest) (*drafts.SaveResult, error)
}

// Seed carries the metadata sent with the first create: recipients, subject
// and the conversation the draft belongs to. Subsequent saves update only
// the body.
type Seed struct {
	To               []string
	Cc               []string
	Bcc              []string
	Subject          string
	ThreadID         string
	ReplyToMessageID string
}

// Options configures an Engine.
type Options struct {
	// Debounce overrides DefaultDebounce; <= 0 selects the default.
	Debounce time.Duration
	// ResumeID and ResumeBody seed the engine from an existing draft, so
	// the first save after an edit is an update rather than a create.
	ResumeID   int64
	ResumeBody string
	// OnCreated is invoked once when the first save assigns a draft id.
	OnCreated func(id int64)
	// OnError is invoked on every failed save attempt. Save errors are
	// recorded but never propagated into the caller's event flow.
	OnError func(err error)
	Logger  *slog.Logger
}

// Engine is the auto-save state machine for one compose session. One engine
// instance exists per open compose surface; instances share no mutable
// state.
type Engine struct {
	saver        Saver
	owner        identity.Identity
	seed         Seed
	debounce     time.Duration
	saveTimeout  time.Duration
	flushTimeout time.Duration
	onCreated    func(int64)
	onError      func(error)
	logger       *slog.Logger

	mu            sync.Mutex
	body          string
	persistedBody string
	draftID       int64
	timer         *time.Timer
	inFlight      bool
	lastSavedAt   time.Time
	lastErr       error
	closed        bool
	misconfigured bool
}

// NewEngine creates an engine for one compose session. A shared-mailbox
// identity without an account id disables persistence entirely; the
// misconfiguration is logged once here rather than once per keystroke.
func NewEngine(saver Saver, owner identity.Identity, seed Seed, opts Options) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &Engine{
		saver:         saver,
		owner:         owner,
		seed:          seed,
		debounce:      opts.Debounce,
		saveTimeout:   defaultSaveTimeout,
		flushTimeout:  defaultFlushTimeout,
		onCreated:     opts.OnCreated,
		onError:       opts.OnError,
		logger:        opts.Logger,
		body:          opts.ResumeBody,
		persistedBody: opts.ResumeBody,
		draftID:       opts.ResumeID,
	}

	if err := owner.Validate(); err != nil {
		e.misconfigured = true
		e.logger.Warn("autosave disabled for this compose session", "error", err)
	}
	return e
}

// UpdateBody records the current compose body and restarts the debounce
// timer. Only the timer that survives un-interrupted for the full window
// triggers a save, so a burst of rapid edits persists once with the final
// value.
func (e *Engine) UpdateBody(body string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.body = body
	if e.misconfigured {
		return
	}

	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, e.debouncedSave)
}

// Close tears the session down. If the current body is non-empty and
// differs from the last persisted value, one immediate save is issued
// without waiting for the debounce window. The flush is fire-and-forget:
// callers must treat it as advisory, not a delivery guarantee.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	dirty := !e.misconfigured &&
		strings.TrimSpace(e.body) != "" &&
		e.body != e.persistedBody
	e.mu.Unlock()

	if !dirty {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.flushTimeout)
		defer cancel()
		if err := e.save(ctx); err != nil {
			e.logger.Warn("teardown flush failed", "error", err)
		}
	}()
}

// Flush saves the current body immediately if it is dirty, waiting for the
// result. Hosts that can afford to block on exit (the CLI) use it instead
// of relying on Close's unawaited flush.
func (e *Engine) Flush(ctx context.Context) error {
	return e.save(ctx)
}

// DraftID returns the assigned draft id, or 0 before the first successful
// save.
func (e *Engine) DraftID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draftID
}

// LastSavedAt returns the time of the last successful save.
func (e *Engine) LastSavedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSavedAt
}

// Err returns the error of the most recent failed save, or nil after a
// success.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Saving reports whether a save request is currently in flight.
func (e *Engine) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

func (e *Engine) debouncedSave() {
	ctx, cancel := context.WithTimeout(context.Background(), e.saveTimeout)
	defer cancel()
	if err := e.save(ctx); err != nil {
		e.logger.Warn("autosave failed", "draft_id", e.DraftID(), "error", err)
	}
}

// save persists the current body if it is non-empty and differs from the
// last persisted value. It records the persisted marker against the exact
// snapshot it sent, so a slow request completing after newer edits never
// marks the newer text as saved; the next debounce cycle issues the
// follow-up.
func (e *Engine) save(ctx context.Context) error {
	e.mu.Lock()
	if e.misconfigured {
		e.mu.Unlock()
		return nil
	}
	body := e.body
	if strings.TrimSpace(body) == "" || body == e.persistedBody {
		e.mu.Unlock()
		return nil
	}
	id := e.draftID
	if id == 0 && e.inFlight {
		// A create is already in flight; a second one would fork the
		// draft. The pending completion adopts the id and the next
		// cycle saves the newer body as an update.
		e.mu.Unlock()
		return nil
	}
	e.inFlight = true
	e.mu.Unlock()

	var (
		res *drafts.SaveResult
		err error
	)
	if id == 0 {
		res, err = e.saver.Create(ctx, e.owner, drafts.CreateRequest{
			To:               e.seed.To,
			Cc:               e.seed.Cc,
			Bcc:              e.seed.Bcc,
			Subject:          e.seed.Subject,
			Body:             body,
			ThreadID:         e.seed.ThreadID,
			ReplyToMessageID: e.seed.ReplyToMessageID,
		})
	} else {
		res, err = e.saver.Update(ctx, e.owner, id, drafts.UpdateRequest{Body: &body})
	}

	e.mu.Lock()
	e.inFlight = false
	if err != nil {
		// Keep the previous persisted marker so the next change still
		// attempts to save the now-stale content.
		e.lastErr = err
		e.mu.Unlock()
		if e.onError != nil {
			e.onError(err)
		}
		return err
	}

	created := id == 0
	if created {
		e.draftID = res.DraftID
	}
	e.persistedBody = body
	e.lastSavedAt = time.Now()
	e.lastErr = nil
	e.mu.Unlock()

	if created && e.onCreated != nil {
		e.onCreated(res.DraftID)
	}
	return nil
}
