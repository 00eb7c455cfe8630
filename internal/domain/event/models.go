package event

import (
	"time"

	"github.com/google/uuid"
)

// SourceRef is one source citation attached to a chat turn.
type SourceRef struct {
	Title     string     `json:"title,omitempty"`
	URL       string     `json:"url,omitempty"`
	Clicked   bool       `json:"clicked,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// TokenSummary carries the token-usage counters of one turn.
type TokenSummary struct {
	InputCount  int64 `json:"input_count"`
	OutputCount int64 `json:"output_count"`
}

// Turn is one query/response exchange inside a chat thread.
type Turn struct {
	UUID     string       `json:"uuid"`
	Query    string       `json:"query"`
	Response string       `json:"response"`
	Sources  []SourceRef  `json:"sources,omitempty"`
	Tokens   TokenSummary `json:"tokenSummary"`
}

// ChatLog is one chat thread record as written by the ingestion pipeline.
// Records are immutable once ingested; this backend only reads them.
type ChatLog struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	ThreadUUID string    `json:"thread_uuid"`
	Role       string    `json:"role"`
	Turns      []Turn    `json:"chat_history"`
	IsDeleted  bool      `json:"isDeleted,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// QueryEvent is the aggregation projection of a chat log: everything the
// KPI reducers need and nothing else.
type QueryEvent struct {
	Email        string
	ThreadUUID   string
	CreatedAt    time.Time
	Turns        int
	InputTokens  int64
	OutputTokens int64
}

// FeatureInteraction is one append-only product interaction event. Name is
// the payload discriminant (interaction.interaction in the raw document).
type FeatureInteraction struct {
	ID         uuid.UUID              `json:"id"`
	ThreadUUID string                 `json:"thread_uuid"`
	Email      string                 `json:"email"`
	Timestamp  time.Time              `json:"timestamp"`
	Name       string                 `json:"name"`
	Payload    map[string]interface{} `json:"interaction,omitempty"`
}

// ComplaintFlags is the structured part of a feedback record.
type ComplaintFlags struct {
	InaccurateInformation bool   `json:"inaccurateInformation"`
	InaccurateSources     bool   `json:"inaccurateSources"`
	NotRelevant           bool   `json:"notRelevant"`
	Hallucinations        bool   `json:"hallucinations"`
	Outdated              bool   `json:"outdated"`
	TooLengthy            bool   `json:"tooLengthy"`
	Formatting            bool   `json:"formatting"`
	MissingSources        bool   `json:"missingSources"`
	Other                 string `json:"other,omitempty"`
}

// UserFeedback is one per-(thread, turn) feedback record.
type UserFeedback struct {
	ID         uuid.UUID      `json:"id"`
	Email      string         `json:"email"`
	ThreadUUID string         `json:"thread_uuid"`
	TurnUUID   string         `json:"uuid"`
	IsLiked    bool           `json:"isLiked"`
	Feedback   ComplaintFlags `json:"feedback"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ChatLogFilter narrows chat-log listings for the admin browsing endpoint.
type ChatLogFilter struct {
	Search string
	Email  string
	Date   string // exact calendar day, YYYY-MM-DD in the canonical zone
	Since  *time.Time
	Limit  int
	Offset int
}
