package session

import (
	"testing"
	"time"

	"github.com/jasperwreed/astroguide/internal/client"
	"github.com/jasperwreed/astroguide/internal/models"
	"github.com/jasperwreed/astroguide/internal/sse"
)

func TestStateFailDefaults(t *testing.T) {
	s := newState("c1")
	id := models.ConfirmedID("m1")
	s.Messages = append(s.Messages, models.Message{ID: id, Role: models.RoleAssistant, Content: "half", Status: models.StatusStreaming})

	s.fail(id, "", "")

	if s.Stream.Phase != PhaseError {
		t.Errorf("expected phase error, got %s", s.Stream.Phase)
	}
	if s.Stream.ErrorCode == nil || *s.Stream.ErrorCode != client.CodeStreamError {
		t.Errorf("expected default code %s, got %v", client.CodeStreamError, s.Stream.ErrorCode)
	}
	if s.Stream.ErrorMessage == nil || *s.Stream.ErrorMessage != defaultStreamErrorMessage {
		t.Errorf("expected default message, got %v", s.Stream.ErrorMessage)
	}
	if s.Messages[0].Content != "half" {
		t.Errorf("expected content kept, got %q", s.Messages[0].Content)
	}
	if s.Messages[0].Status != models.StatusError {
		t.Errorf("expected status error, got %s", s.Messages[0].Status)
	}
}

func TestStateFinishCopiesUsageAndCitations(t *testing.T) {
	s := newState("c1")
	id := models.ConfirmedID("m1")
	s.Messages = append(s.Messages, models.Message{ID: id, Role: models.RoleAssistant})
	s.beginStream()

	s.finish(id, sse.DoneEvent{
		Status:    "done",
		Usage:     &sse.Usage{PromptTokens: models.Ptr(12), CompletionTokens: models.Ptr(34)},
		Citations: []models.Citation{{ID: "c", Title: "NASA"}},
	})

	got := s.Messages[0]
	if got.Status != models.StatusDone {
		t.Errorf("expected done, got %s", got.Status)
	}
	if got.PromptTokens == nil || *got.PromptTokens != 12 {
		t.Errorf("prompt tokens = %v", got.PromptTokens)
	}
	if got.CompletionTokens == nil || *got.CompletionTokens != 34 {
		t.Errorf("completion tokens = %v", got.CompletionTokens)
	}
	if len(got.Citations) != 1 || len(s.Stream.Citations) != 1 {
		t.Errorf("expected citations on message and stream")
	}
	if s.Stream.Phase != PhaseDone {
		t.Errorf("expected phase done, got %s", s.Stream.Phase)
	}
}

func TestStateAppendDeltaUnknownTarget(t *testing.T) {
	s := newState("c1")
	if s.appendDelta(models.ConfirmedID("missing"), "x") {
		t.Error("expected appendDelta to report no change")
	}
}

func TestStateMarkCancelledSkipsZeroIDs(t *testing.T) {
	s := newState("c1")
	user := models.NewLocalUserID()
	s.Messages = append(s.Messages, models.Message{ID: user, Role: models.RoleUser, Status: models.StatusDone})
	s.PendingUserID = user

	s.markCancelled()

	if s.Messages[0].Status != models.StatusCancelled {
		t.Errorf("expected user message cancelled, got %s", s.Messages[0].Status)
	}
	if s.Stream.Phase != PhaseCancelled {
		t.Errorf("expected phase cancelled, got %s", s.Stream.Phase)
	}
}

func TestStateHydrateSorts(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newState("")
	s.hydrate(&client.ConversationDetail{
		Conversation: models.Conversation{ID: "c1"},
		Messages: []client.ServerMessage{
			{ID: "m2", Role: models.RoleAssistant, CreatedAt: base.Add(time.Minute)},
			{ID: "m1", Role: models.RoleUser, CreatedAt: base},
		},
		NextBefore: models.Ptr("cursor-1"),
	})

	if s.ConversationID != "c1" {
		t.Errorf("conversation id = %q", s.ConversationID)
	}
	if !equalIDs(ids(s.Messages), []string{"m1", "m2"}) {
		t.Errorf("messages = %v", ids(s.Messages))
	}
	if !s.HasEarlier() {
		t.Error("expected an earlier page")
	}
	if s.Messages[0].Citations == nil {
		t.Error("expected empty, non-nil citations")
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	s := newState("c1")
	s.Messages = append(s.Messages, models.Message{ID: models.ConfirmedID("m1"), Content: "a", Citations: []models.Citation{{ID: "x"}}})
	s.Stream.Model = models.Ptr("gpt")

	c := s.Clone()
	c.Messages[0].Content = "changed"
	c.Messages[0].Citations[0].ID = "y"
	*c.Stream.Model = "other"

	if s.Messages[0].Content != "a" || s.Messages[0].Citations[0].ID != "x" || *s.Stream.Model != "gpt" {
		t.Error("clone shares memory with the original")
	}
}
