// Package sse turns the assistant's text/event-stream into typed events.
package sse

import "github.com/jasperwreed/astroguide/internal/models"

type EventType string

const (
	EventMeta  EventType = "meta"
	EventDelta EventType = "delta"
	EventDone  EventType = "done"
	EventError EventType = "error"
)

// Event is one of MetaEvent, DeltaEvent, DoneEvent or ErrorEvent.
type Event interface {
	Type() EventType
}

type MetaEvent struct {
	RequestID  *string            `json:"requestId"`
	Model      *string            `json:"model"`
	Language   *models.Language   `json:"language"`
	Difficulty *models.Difficulty `json:"difficulty"`
}

type DeltaEvent struct {
	Text string `json:"text"`
}

type Usage struct {
	PromptTokens     *int `json:"promptTokens"`
	CompletionTokens *int `json:"completionTokens"`
}

type DoneEvent struct {
	Status    string            `json:"status"`
	Usage     *Usage            `json:"usage"`
	Citations []models.Citation `json:"citations"`
}

type ErrorEvent struct {
	Status  string  `json:"status"`
	Code    *string `json:"code"`
	Message *string `json:"message"`
}

func (MetaEvent) Type() EventType  { return EventMeta }
func (DeltaEvent) Type() EventType { return EventDelta }
func (DoneEvent) Type() EventType  { return EventDone }
func (ErrorEvent) Type() EventType { return EventError }
