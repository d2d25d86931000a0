package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jasperwreed/astroguide/internal/client"
	"github.com/jasperwreed/astroguide/internal/logger"
	"github.com/jasperwreed/astroguide/internal/models"
	"github.com/jasperwreed/astroguide/internal/sse"
)

var (
	ErrEmptyContent        = errors.New("message content is empty")
	ErrStreamActive        = errors.New("an answer is still streaming")
	ErrRateLimited         = errors.New("rate limited, wait before sending again")
	ErrNoConversation      = errors.New("no active conversation")
	ErrConversationChanged = errors.New("conversation changed while the request was in flight")
)

const component = "astroguide.session.orchestrator"

// API is the part of the transport the orchestrator needs.
type API interface {
	SubmitMessage(ctx context.Context, conversationID string, req client.SubmitMessageRequest) (*client.SubmitMessageResponse, error)
	GetConversation(ctx context.Context, conversationID, before string, limit int) (*client.ConversationDetail, error)
	OpenStream(ctx context.Context, streamURL string) (io.ReadCloser, error)
}

// Notifier receives request-level failures and owns the rate-limit window.
type Notifier interface {
	NotifyError(err error)
	RateLimited() bool
}

// Observer is called with a deep copy of the state after each mutation.
// Snapshots may arrive out of order across goroutines; compare Version.
type Observer func(State)

type Option func(*Orchestrator)

func WithPageSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		o.observers = append(o.observers, obs)
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// Orchestrator serializes every state mutation of one session behind its
// mutex. Network calls run outside the lock.
type Orchestrator struct {
	api       API
	notifier  Notifier
	pageSize  int
	now       func() time.Time
	observers []Observer

	mu              sync.Mutex
	state           State
	generation      uint64
	active          *streamHandle
	epoch           uint64
	submitting      bool
	cancelRequested bool
	loadingMore     bool
}

func New(api API, notifier Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:      api,
		notifier: notifier,
		pageSize: 50,
		now:      time.Now,
		state:    newState(""),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Snapshot returns a deep copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// mutate runs fn under the lock and notifies observers when fn reports a
// change.
func (o *Orchestrator) mutate(fn func() bool) {
	o.mu.Lock()
	changed := fn()
	var snap State
	if changed {
		o.state.Version++
		snap = o.state.Clone()
	}
	observers := o.observers
	o.mu.Unlock()

	if changed {
		for _, obs := range observers {
			obs(snap)
		}
	}
}

// OpenConversation drops the current stream silently, resets state and loads
// the newest page of id's history.
func (o *Orchestrator) OpenConversation(ctx context.Context, id string) error {
	o.CancelStream(false)

	var epoch uint64
	o.mutate(func() bool {
		o.epoch++
		epoch = o.epoch
		o.submitting = false
		o.cancelRequested = false
		o.loadingMore = false
		version := o.state.Version
		o.state = newState(id)
		o.state.Version = version
		return true
	})

	ctx = logger.WithLogFields(ctx, logger.LogFields{ConversationID: &id, Component: component})
	detail, err := o.api.GetConversation(ctx, id, "", o.pageSize)
	if err != nil {
		o.notifier.NotifyError(err)
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	o.mutate(func() bool {
		if epoch != o.epoch {
			return false
		}
		version := o.state.Version
		o.state.hydrate(detail)
		o.state.Version = version
		return true
	})

	slog.DebugContext(ctx, "conversation hydrated", "messages", len(detail.Messages))
	return nil
}

// CloseConversation drops the current stream silently and clears all state.
func (o *Orchestrator) CloseConversation() {
	o.CancelStream(false)
	o.mutate(func() bool {
		o.epoch++
		o.submitting = false
		o.cancelRequested = false
		o.loadingMore = false
		version := o.state.Version
		o.state = newState("")
		o.state.Version = version
		return true
	})
}

// SubmitUserMessage appends an optimistic user message, submits it and
// streams the answer into a placeholder assistant message. It blocks until
// the stream ends. Request failures go to the notifier and leave no
// placeholder; stream failures are recorded in the state instead.
func (o *Orchestrator) SubmitUserMessage(ctx context.Context, conversationID, content string, difficulty models.Difficulty, language models.Language) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	if conversationID == "" {
		return ErrNoConversation
	}
	if o.notifier.RateLimited() {
		return ErrRateLimited
	}

	var (
		rejected error
		epoch    uint64
	)
	o.mutate(func() bool {
		if o.state.IsStreaming() || o.submitting {
			rejected = ErrStreamActive
			return false
		}
		if o.state.ConversationID != conversationID {
			o.epoch++
			version := o.state.Version
			o.state = newState(conversationID)
			o.state.Version = version
		}
		epoch = o.epoch

		user := models.Message{
			ID:         models.NewLocalUserID(),
			Role:       models.RoleUser,
			Content:    content,
			Status:     models.StatusDone,
			Difficulty: models.Ptr(difficulty),
			Language:   models.Ptr(language),
			CreatedAt:  o.now(),
			Citations:  []models.Citation{},
		}
		o.state.Messages = append(o.state.Messages, user)
		o.state.PendingUserID = user.ID
		o.state.PendingAssistantID = models.MessageID{}
		o.submitting = true
		o.cancelRequested = false
		return true
	})
	if rejected != nil {
		return rejected
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ConversationID: &conversationID, Component: component})
	resp, err := o.api.SubmitMessage(ctx, conversationID, client.SubmitMessageRequest{
		Content:         content,
		Difficulty:      difficulty,
		Language:        language,
		ClientMessageID: uuid.NewString(),
	})
	if err != nil {
		o.mutate(func() bool {
			if epoch == o.epoch {
				o.submitting = false
			}
			return false
		})
		o.notifier.NotifyError(err)
		return fmt.Errorf("failed to submit message: %w", err)
	}

	assistantID := models.ConfirmedID(resp.MessageID)
	status := resp.Status
	if status == "" {
		status = models.StatusQueued
	}

	var (
		h         *streamHandle
		previous  *streamHandle
		cancelled bool
		stale     bool
	)
	o.mutate(func() bool {
		if epoch != o.epoch {
			stale = true
			return false
		}
		o.submitting = false

		o.state.Messages = append(o.state.Messages, models.Message{
			ID:         assistantID,
			Role:       models.RoleAssistant,
			Status:     status,
			Difficulty: models.Ptr(difficulty),
			Language:   models.Ptr(language),
			CreatedAt:  o.now(),
			Citations:  []models.Citation{},
		})
		o.state.PendingAssistantID = assistantID
		o.state.PendingStreamURL = resp.StreamURL

		if o.cancelRequested {
			o.cancelRequested = false
			cancelled = true
			o.state.markCancelled()
			return true
		}

		previous = o.active
		o.generation++
		h = newStreamHandle(ctx, o.generation)
		o.active = h
		o.state.beginStream()
		return true
	})
	if previous != nil {
		previous.stop()
	}
	if stale {
		return ErrConversationChanged
	}
	if cancelled {
		return nil
	}

	o.runStream(h, resp.StreamURL, assistantID)
	return nil
}

// RetryLastAssistantMessage re-sends the newest user message as a new
// exchange. The failed exchange stays in the list.
func (o *Orchestrator) RetryLastAssistantMessage(ctx context.Context) error {
	o.mu.Lock()
	conversationID := o.state.ConversationID
	last, ok := o.state.lastUserMessage()
	o.mu.Unlock()

	if !ok || conversationID == "" {
		return nil
	}

	difficulty := models.DifficultyIntermediate
	if last.Difficulty != nil {
		difficulty = *last.Difficulty
	}
	language := models.LanguageZh
	if last.Language != nil {
		language = *last.Language
	}

	return o.SubmitUserMessage(ctx, conversationID, last.Content, difficulty, language)
}

// LoadMoreMessages fetches the next older page and merges it. Without an
// active conversation or an earlier-page cursor it does nothing.
func (o *Orchestrator) LoadMoreMessages(ctx context.Context) error {
	o.mu.Lock()
	if o.state.ConversationID == "" || !o.state.HasEarlier() || o.loadingMore {
		o.mu.Unlock()
		return nil
	}
	conversationID := o.state.ConversationID
	before := *o.state.NextBefore
	epoch := o.epoch
	o.loadingMore = true
	o.mu.Unlock()

	ctx = logger.WithLogFields(ctx, logger.LogFields{ConversationID: &conversationID, Component: component})
	detail, err := o.api.GetConversation(ctx, conversationID, before, o.pageSize)

	o.mutate(func() bool {
		if epoch != o.epoch {
			return false
		}
		o.loadingMore = false
		if err != nil {
			return false
		}

		incoming := make([]models.Message, 0, len(detail.Messages))
		for _, m := range detail.Messages {
			incoming = append(incoming, m.Normalize())
		}
		o.state.Messages = Merge(o.state.Messages, incoming)
		o.state.NextBefore = detail.NextBefore
		return true
	})

	if err != nil {
		o.notifier.NotifyError(err)
		return fmt.Errorf("failed to load earlier messages: %w", err)
	}
	return nil
}

// CancelStream tears down the active stream connection. With markCancelled
// the pending exchange is marked cancelled; otherwise the phase silently
// returns to idle.
func (o *Orchestrator) CancelStream(markCancelled bool) {
	var h *streamHandle
	o.mutate(func() bool {
		h = o.active
		o.active = nil

		if o.submitting && markCancelled {
			o.cancelRequested = true
		}
		if !o.state.IsStreaming() {
			return false
		}
		if markCancelled {
			o.state.markCancelled()
		} else {
			o.state.Stream.Phase = PhaseIdle
		}
		return true
	})

	if h != nil {
		h.stop()
	}
}

func (o *Orchestrator) runStream(h *streamHandle, streamURL string, assistantID models.MessageID) {
	ctx := logger.WithLogFields(h.ctx, logger.LogFields{
		MessageID:  models.Ptr(assistantID.String()),
		Generation: models.Ptr(h.generation),
	})
	defer h.stop()

	body, err := o.api.OpenStream(ctx, streamURL)
	if err != nil {
		if h.ctx.Err() != nil {
			return
		}
		message := err.Error()
		if apiErr, ok := client.AsAPIError(err); ok && apiErr.Message != "" {
			message = apiErr.Message
		}
		slog.WarnContext(ctx, "stream could not be opened", "error", err)
		o.endGeneration(h, assistantID, client.CodeStreamUnavailable, message)
		return
	}
	if !h.attach(body) {
		return
	}

	slog.DebugContext(ctx, "stream opened")
	readErr := sse.Read(h.ctx, body, func(ev sse.Event) {
		if meta, ok := ev.(sse.MetaEvent); ok && meta.RequestID != nil {
			ctx = logger.WithLogFields(ctx, logger.LogFields{RequestID: meta.RequestID})
		}
		o.apply(ctx, h, assistantID, ev)
	})
	if readErr != nil && !errors.Is(readErr, context.Canceled) {
		slog.WarnContext(ctx, "stream read failed", "error", readErr)
	}

	// Reaching here with the generation still active means no terminal
	// event arrived.
	if o.endGeneration(h, assistantID, client.CodeStreamInterrupted, interruptedMessage) {
		slog.WarnContext(ctx, "stream ended without a terminal event")
	}
}

// apply routes one event into the state, dropping it if h is no longer the
// active generation.
func (o *Orchestrator) apply(ctx context.Context, h *streamHandle, assistantID models.MessageID, ev sse.Event) {
	var release bool
	o.mutate(func() bool {
		if o.active != h {
			return false
		}

		switch ev := ev.(type) {
		case sse.MetaEvent:
			o.state.applyMeta(ev)
		case sse.DeltaEvent:
			return o.state.appendDelta(assistantID, ev.Text)
		case sse.DoneEvent:
			o.state.finish(assistantID, ev)
			o.active = nil
			release = true
		case sse.ErrorEvent:
			var code, message string
			if ev.Code != nil {
				code = *ev.Code
			}
			if ev.Message != nil {
				message = *ev.Message
			}
			o.state.fail(assistantID, code, message)
			o.active = nil
			release = true
		default:
			return false
		}
		return true
	})

	if !release {
		return
	}
	h.stop()

	if e, ok := ev.(sse.ErrorEvent); ok {
		var code string
		if e.Code != nil {
			code = *e.Code
		}
		slog.WarnContext(ctx, "stream reported an error", "code", code)
	} else {
		slog.DebugContext(ctx, "stream finished")
	}
}

// endGeneration fails the exchange if h is still the active generation and
// reports whether it did.
func (o *Orchestrator) endGeneration(h *streamHandle, assistantID models.MessageID, code, message string) bool {
	var ended bool
	o.mutate(func() bool {
		if o.active != h {
			return false
		}
		o.active = nil
		o.state.fail(assistantID, code, message)
		ended = true
		return true
	})
	return ended
}
