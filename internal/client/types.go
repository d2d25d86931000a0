package client

import (
	"encoding/json"
	"time"

	"github.com/jasperwreed/astroguide/internal/models"
)

type ConversationList struct {
	Items      []models.ConversationListItem `json:"items"`
	NextCursor *string                       `json:"nextCursor"`
}

// ServerMessage is a message as the history endpoint returns it.
type ServerMessage struct {
	ID               string               `json:"id"`
	Role             models.Role          `json:"role"`
	Content          string               `json:"content"`
	Status           models.MessageStatus `json:"status"`
	Difficulty       *models.Difficulty   `json:"difficulty"`
	Language         *models.Language     `json:"language"`
	PromptTokens     *int                 `json:"promptTokens"`
	CompletionTokens *int                 `json:"completionTokens"`
	EstimatedCostUSD *float64             `json:"estimatedCostUsd"`
	CreatedAt        time.Time            `json:"createdAt"`
}

// timestampLayouts are tried in order; a zone-less time is read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 time. Anything it cannot read gives the
// zero time.
func ParseTimestamp(value string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// UnmarshalJSON tolerates createdAt values that are missing, null, not a
// string or not RFC 3339; they decode to the zero time instead of failing the
// whole page.
func (m *ServerMessage) UnmarshalJSON(data []byte) error {
	type plain ServerMessage
	aux := struct {
		*plain
		CreatedAt json.RawMessage `json:"createdAt"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.CreatedAt = time.Time{}
	var raw string
	if err := json.Unmarshal(aux.CreatedAt, &raw); err == nil {
		m.CreatedAt = ParseTimestamp(raw)
	}
	return nil
}

// Normalize converts a server message into the local shape. History carries
// no citations, so they start empty.
func (m ServerMessage) Normalize() models.Message {
	return models.Message{
		ID:               models.ConfirmedID(m.ID),
		Role:             m.Role,
		Content:          m.Content,
		Status:           m.Status,
		Difficulty:       m.Difficulty,
		Language:         m.Language,
		PromptTokens:     m.PromptTokens,
		CompletionTokens: m.CompletionTokens,
		EstimatedCostUSD: m.EstimatedCostUSD,
		CreatedAt:        m.CreatedAt,
		Citations:        []models.Citation{},
	}
}

type ConversationDetail struct {
	Conversation models.Conversation `json:"conversation"`
	Messages     []ServerMessage     `json:"messages"`
	NextBefore   *string             `json:"nextBefore"`
}

type SubmitMessageRequest struct {
	Content         string            `json:"content"`
	Difficulty      models.Difficulty `json:"difficulty"`
	Language        models.Language   `json:"language"`
	ClientMessageID string            `json:"clientMessageId,omitempty"`
}

type SubmitMessageResponse struct {
	MessageID string               `json:"messageId"`
	StreamURL string               `json:"streamUrl"`
	Status    models.MessageStatus `json:"status"`
}

type ConceptQuery struct {
	Type     models.ConceptType
	Language models.Language
	Key      string
}
