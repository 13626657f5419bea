package drafts

import "time"

// Status is the lifecycle state of an unsent draft.
type Status string

const (
	// StatusDraft is a plain in-progress draft.
	StatusDraft Status = "draft"
	// StatusScheduled is a draft queued for a future send. A scheduled
	// draft must carry a scheduled_send_at timestamp.
	StatusScheduled Status = "scheduled"
)

// Draft is a mutable, not-yet-sent outbound message. ID is assigned by the
// backend on first creation; 0 means the draft has never been persisted.
type Draft struct {
	ID               int64      `json:"id"`
	To               []string   `json:"to"`
	Cc               []string   `json:"cc,omitempty"`
	Bcc              []string   `json:"bcc,omitempty"`
	Subject          string     `json:"subject"`
	Body             string     `json:"body"`
	ThreadID         string     `json:"thread_id,omitempty"`
	ReplyToMessageID string     `json:"reply_to_message_id,omitempty"`
	Status           Status     `json:"status"`
	ScheduledSendAt  *time.Time `json:"scheduled_send_at,omitempty"`
	LastEditedAt     time.Time  `json:"last_edited_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CreateRequest is the payload for creating a draft.
type CreateRequest struct {
	To               []string   `json:"to"`
	Cc               []string   `json:"cc,omitempty"`
	Bcc              []string   `json:"bcc,omitempty"`
	Subject          string     `json:"subject"`
	Body             string     `json:"body"`
	ThreadID         string     `json:"thread_id,omitempty"`
	ReplyToMessageID string     `json:"reply_to_message_id,omitempty"`
	ScheduledSendAt  *time.Time `json:"scheduled_send_at,omitempty"`
}

// UpdateRequest is a partial-field update; only non-nil fields are changed.
type UpdateRequest struct {
	To              *[]string  `json:"to,omitempty"`
	Cc              *[]string  `json:"cc,omitempty"`
	Bcc             *[]string  `json:"bcc,omitempty"`
	Subject         *string    `json:"subject,omitempty"`
	Body            *string    `json:"body,omitempty"`
	ScheduledSendAt *time.Time `json:"scheduled_send_at,omitempty"`
}

// SaveResult is the create/update response envelope.
type SaveResult struct {
	Status          string     `json:"status"`
	DraftID         int64      `json:"draft_id"`
	MessageStatus   Status     `json:"message_status"`
	ScheduledSendAt *time.Time `json:"scheduled_send_at,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	LastEditedAt    *time.Time `json:"last_edited_at,omitempty"`
}

// SendResult is returned when an existing draft is sent immediately.
type SendResult struct {
	Status    string    `json:"status"`
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

// Page is one page of a draft listing with its total count.
type Page struct {
	Drafts []Draft `json:"drafts"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
