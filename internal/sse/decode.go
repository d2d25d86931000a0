package sse

import (
	"encoding/json"
)

// decode builds a typed event from a block's name and data. Each kind tries a
// strict decode first, then its own fallback; nil means the block is skipped.
func decode(name, data string) Event {
	if data == "" {
		return nil
	}

	switch EventType(name) {
	case EventMeta:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(data), &fields); err != nil || fields == nil {
			return nil
		}
		var ev MetaEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return nil
		}
		return ev

	case EventDelta:
		var strict struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal([]byte(data), &strict); err == nil && strict.Text != nil {
			return DeltaEvent{Text: *strict.Text}
		}
		var text *string
		if err := json.Unmarshal([]byte(data), &text); err == nil && text != nil {
			return DeltaEvent{Text: *text}
		}
		return DeltaEvent{Text: data}

	case EventDone:
		var ev DoneEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return DoneEvent{Status: "done"}
		}
		if ev.Status == "" {
			ev.Status = "done"
		}
		return ev

	case EventError:
		var ev ErrorEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return ErrorEvent{Status: "error", Message: &data}
		}
		if ev.Status == "" {
			ev.Status = "error"
		}
		return ev
	}

	return nil
}
