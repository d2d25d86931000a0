package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/jasperwreed/astroguide/internal/models"
)

func TestContextHandlerAddsFields(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil)))

	ctx := WithLogFields(context.Background(), LogFields{ConversationID: models.Ptr("c1"), Component: "test"})
	ctx = WithLogFields(ctx, LogFields{Generation: models.Ptr(uint64(3))})
	ctx = WithLogFields(ctx, LogFields{RequestID: models.Ptr("req-1")})
	log.InfoContext(ctx, "hello")

	out := buf.String()
	for _, want := range []string{"conversation_id=c1", "generation=3", "request_id=req-1", "component=test"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestMergeFieldsKeepsExisting(t *testing.T) {
	merged := mergeFields(LogFields{MessageID: models.Ptr("m1"), Component: "a"}, LogFields{Component: ""})
	if merged.MessageID == nil || *merged.MessageID != "m1" {
		t.Error("existing message id should survive merge")
	}
	if merged.Component != "a" {
		t.Errorf("component = %q, want a", merged.Component)
	}
}
