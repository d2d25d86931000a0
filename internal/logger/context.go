package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every record logged with a context carrying them.
type LogFields struct {
	ConversationID *string
	MessageID      *string // assistant message receiving the stream
	RequestID      *string // upstream request id from the meta event
	Generation     *uint64 // stream generation counter
	Component      string  // e.g. "astroguide.session.orchestrator"
}

// WithLogFields merges fields into ctx; newer non-empty values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.ConversationID != nil {
		result.ConversationID = new.ConversationID
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.Generation != nil {
		result.Generation = new.Generation
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}
