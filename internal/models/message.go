package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type MessageStatus string

const (
	StatusQueued    MessageStatus = "queued"
	StatusStreaming MessageStatus = "streaming"
	StatusDone      MessageStatus = "done"
	StatusError     MessageStatus = "error"
	StatusCancelled MessageStatus = "cancelled"
)

type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Next cycles basic -> intermediate -> advanced -> basic.
func (d Difficulty) Next() Difficulty {
	switch d {
	case DifficultyBasic:
		return DifficultyIntermediate
	case DifficultyIntermediate:
		return DifficultyAdvanced
	default:
		return DifficultyBasic
	}
}

type Language string

const (
	LanguageZh Language = "zh"
	LanguageEn Language = "en"
)

func (l Language) Valid() bool {
	return l == LanguageZh || l == LanguageEn
}

// localUserPrefix marks ids minted on the client for optimistic user messages.
const localUserPrefix = "local_user_"

// MessageID is either a pending local id or a confirmed server id.
// Pending ids are never sent to the server.
type MessageID struct {
	value   string
	pending bool
}

func PendingID(local string) MessageID {
	return MessageID{value: local, pending: true}
}

func ConfirmedID(server string) MessageID {
	return MessageID{value: server}
}

// NewLocalUserID mints a pending id for an optimistic user message.
func NewLocalUserID() MessageID {
	return PendingID(localUserPrefix + uuid.NewString())
}

func (id MessageID) String() string { return id.value }
func (id MessageID) IsPending() bool { return id.pending }
func (id MessageID) IsZero() bool    { return id.value == "" }

func (id MessageID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

func (id *MessageID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id.value = s
	id.pending = strings.HasPrefix(s, localUserPrefix)
	return nil
}

type Citation struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

type Message struct {
	ID               MessageID     `json:"id"`
	Role             Role          `json:"role"`
	Content          string        `json:"content"`
	Status           MessageStatus `json:"status"`
	Difficulty       *Difficulty   `json:"difficulty"`
	Language         *Language     `json:"language"`
	PromptTokens     *int          `json:"promptTokens"`
	CompletionTokens *int          `json:"completionTokens"`
	EstimatedCostUSD *float64      `json:"estimatedCostUsd"`
	CreatedAt        time.Time     `json:"createdAt"`
	Citations        []Citation    `json:"citations"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (m Message) Clone() Message {
	out := m
	if m.Difficulty != nil {
		out.Difficulty = Ptr(*m.Difficulty)
	}
	if m.Language != nil {
		out.Language = Ptr(*m.Language)
	}
	if m.PromptTokens != nil {
		out.PromptTokens = Ptr(*m.PromptTokens)
	}
	if m.CompletionTokens != nil {
		out.CompletionTokens = Ptr(*m.CompletionTokens)
	}
	if m.EstimatedCostUSD != nil {
		out.EstimatedCostUSD = Ptr(*m.EstimatedCostUSD)
	}
	out.Citations = append([]Citation{}, m.Citations...)
	return out
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
