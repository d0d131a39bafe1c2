package domain

import (
	"strconv"
	"time"
)

// RecordKind distinguishes the two per-day record payloads sharing one table.
type RecordKind string

const (
	KindTodo     RecordKind = "todo"
	KindAnalysis RecordKind = "analysis"
)

// TodoEntry is a single todo item within a daily record.
// EntryID is the matching key across merges.
type TodoEntry struct {
	EntryID     string `json:"entryId"`
	Title       string `json:"title"`
	CompletedAt *int64 `json:"completedAt,omitempty"`
	Visible     bool   `json:"visible"`
}

// MergeKey identifies the same todo item across existing and incoming records.
func (e TodoEntry) MergeKey() string { return e.EntryID }

// AnalysisEntry is one AI screenshot-analysis line.
// Timestamp is the matching key across merges.
type AnalysisEntry struct {
	Timestamp       int64  `json:"timestamp"`
	Name            string `json:"name"`
	Content         string `json:"content"`
	DurationMinutes int    `json:"durationMinutes"`
	SimilarTo       *int64 `json:"similarTo,omitempty"`
}

// MergeKey identifies the same analysis line across existing and incoming records.
func (e AnalysisEntry) MergeKey() string { return strconv.FormatInt(e.Timestamp, 10) }

// TodoRecord is the per-owner, per-day todo list.
type TodoRecord struct {
	OwnerID string      `json:"ownerId"`
	Day     string      `json:"day"`
	Entries []TodoEntry `json:"entries"`
}

// AnalysisRecord is the per-owner, per-day AI analysis log.
type AnalysisRecord struct {
	OwnerID string          `json:"ownerId"`
	Day     string          `json:"day"`
	Entries []AnalysisEntry `json:"entries"`
}

// Identity is the role a token authorizes inside a space.
type Identity string

const (
	IdentityAssistant   Identity = "assistant"
	IdentityCustomer    Identity = "customer"
	IdentityOther       Identity = "other"
	IdentityOwner       Identity = "owner"
	IdentityManager     Identity = "manager"
	IdentityParticipant Identity = "participant"
	IdentityGuest       Identity = "guest"
)

// Valid reports whether the identity is one of the known roles.
func (i Identity) Valid() bool {
	switch i {
	case IdentityAssistant, IdentityCustomer, IdentityOther,
		IdentityOwner, IdentityManager, IdentityParticipant, IdentityGuest:
		return true
	}
	return false
}

// User is a registered profile.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Space is a published meeting room entry in the discovery list.
type Space struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Public      bool      `json:"public"`
	CreatedAt   time.Time `json:"created_at"`
}
