package threads

import "time"

// Thread is the normalized view of a conversation. The backend unifies a
// durable stored record with a live pass-through view; the client sees one
// contract regardless of which representation answered.
type Thread struct {
	ID            string     `json:"id"`
	Subject       string     `json:"subject"`
	Participants  []string   `json:"participants,omitempty"`
	MessageCount  int        `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	LastReplyAt   *time.Time `json:"last_reply_at,omitempty"`
	PitchID       string     `json:"pitch_id,omitempty"`
	PlacementID   string     `json:"placement_id,omitempty"`
	CampaignID    string     `json:"campaign_id,omitempty"`
	Source        string     `json:"source,omitempty"`
}

// HasReplies reports whether at least one inbound reply exists.
func (t Thread) HasReplies() bool {
	return t.LastReplyAt != nil
}

// CampaignOptions filter a threads-by-campaign query.
type CampaignOptions struct {
	// HasReplies, when non-nil, restricts to threads with (or without)
	// at least one reply.
	HasReplies *bool
	// Limit bounds the result count; 0 means the backend default.
	Limit int
}

// RecentOptions bound a recent-replies query.
type RecentOptions struct {
	CampaignID string
	Limit      int
}
