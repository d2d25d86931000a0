// Package session holds the message state of one conversation and drives the
// submit/stream/cancel cycle against it.
package session

import (
	"github.com/jasperwreed/astroguide/internal/client"
	"github.com/jasperwreed/astroguide/internal/models"
	"github.com/jasperwreed/astroguide/internal/sse"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseStreaming Phase = "streaming"
	PhaseDone      Phase = "done"
	PhaseError     Phase = "error"
	PhaseCancelled Phase = "cancelled"
)

const (
	defaultStreamErrorMessage = "The answer could not be generated, please retry."
	interruptedMessage        = "Connection interrupted; the partial answer was kept."
)

type StreamState struct {
	Phase        Phase
	RequestID    *string
	Model        *string
	ErrorCode    *string
	ErrorMessage *string
	Citations    []models.Citation
}

// State is the message list and stream status of the current conversation.
// It is not safe for concurrent use; the Orchestrator serializes access.
type State struct {
	ConversationID     string
	Messages           []models.Message
	PendingUserID      models.MessageID
	PendingAssistantID models.MessageID
	PendingStreamURL   string
	Stream             StreamState
	NextBefore         *string
	// Version increases on every mutation so observers can drop stale snapshots.
	Version uint64
}

func newState(conversationID string) State {
	return State{
		ConversationID: conversationID,
		Messages:       []models.Message{},
		Stream:         StreamState{Phase: PhaseIdle, Citations: []models.Citation{}},
	}
}

func (s *State) IsStreaming() bool {
	return s.Stream.Phase == PhaseStreaming
}

// HasEarlier reports whether an older page of history can be fetched.
func (s *State) HasEarlier() bool {
	return s.NextBefore != nil && *s.NextBefore != ""
}

func (s *State) find(id models.MessageID) *models.Message {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return &s.Messages[i]
		}
	}
	return nil
}

// hydrate replaces the message list with a freshly fetched first page.
func (s *State) hydrate(detail *client.ConversationDetail) {
	msgs := make([]models.Message, 0, len(detail.Messages))
	for _, m := range detail.Messages {
		msgs = append(msgs, m.Normalize())
	}
	s.ConversationID = detail.Conversation.ID
	s.Messages = SortMessages(msgs)
	s.NextBefore = detail.NextBefore
	s.Stream.Phase = PhaseIdle
	s.Stream.Citations = []models.Citation{}
}

func (s *State) beginStream() {
	s.Stream = StreamState{Phase: PhaseStreaming, Citations: []models.Citation{}}
}

func (s *State) applyMeta(ev sse.MetaEvent) {
	s.Stream.RequestID = ev.RequestID
	s.Stream.Model = ev.Model
	s.Stream.Phase = PhaseStreaming
}

func (s *State) appendDelta(id models.MessageID, text string) bool {
	target := s.find(id)
	if target == nil {
		return false
	}
	target.Content += text
	target.Status = models.StatusStreaming
	return true
}

func (s *State) finish(id models.MessageID, ev sse.DoneEvent) {
	citations := append([]models.Citation{}, ev.Citations...)

	if target := s.find(id); target != nil {
		target.Status = models.StatusDone
		if ev.Usage != nil {
			if ev.Usage.PromptTokens != nil {
				target.PromptTokens = models.Ptr(*ev.Usage.PromptTokens)
			}
			if ev.Usage.CompletionTokens != nil {
				target.CompletionTokens = models.Ptr(*ev.Usage.CompletionTokens)
			}
		}
		target.Citations = citations
	}

	s.Stream.Phase = PhaseDone
	s.Stream.Citations = append([]models.Citation{}, citations...)
}

// fail marks the target message as errored. Content already streamed into it
// is kept.
func (s *State) fail(id models.MessageID, code, message string) {
	if target := s.find(id); target != nil {
		target.Status = models.StatusError
	}
	if code == "" {
		code = client.CodeStreamError
	}
	if message == "" {
		message = defaultStreamErrorMessage
	}
	s.Stream.Phase = PhaseError
	s.Stream.ErrorCode = &code
	s.Stream.ErrorMessage = &message
}

func (s *State) markCancelled() {
	for _, id := range []models.MessageID{s.PendingUserID, s.PendingAssistantID} {
		if id.IsZero() {
			continue
		}
		if target := s.find(id); target != nil {
			target.Status = models.StatusCancelled
		}
	}
	s.Stream.Phase = PhaseCancelled
}

// lastUserMessage scans newest-first.
func (s *State) lastUserMessage() (models.Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == models.RoleUser {
			return s.Messages[i], true
		}
	}
	return models.Message{}, false
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Messages = make([]models.Message, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m.Clone()
	}
	out.Stream.Citations = append([]models.Citation{}, s.Stream.Citations...)
	if s.Stream.RequestID != nil {
		out.Stream.RequestID = models.Ptr(*s.Stream.RequestID)
	}
	if s.Stream.Model != nil {
		out.Stream.Model = models.Ptr(*s.Stream.Model)
	}
	if s.Stream.ErrorCode != nil {
		out.Stream.ErrorCode = models.Ptr(*s.Stream.ErrorCode)
	}
	if s.Stream.ErrorMessage != nil {
		out.Stream.ErrorMessage = models.Ptr(*s.Stream.ErrorMessage)
	}
	if s.NextBefore != nil {
		out.NextBefore = models.Ptr(*s.NextBefore)
	}
	return out
}
