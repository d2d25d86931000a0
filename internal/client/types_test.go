package client

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{name: "rfc3339", value: "2024-05-01T10:00:00Z", want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{name: "rfc3339 with offset", value: "2024-05-01T12:00:00+02:00", want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{name: "no zone", value: "2024-05-01T10:00:00", want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{name: "no zone with fraction", value: "2024-05-01T10:00:00.250", want: time.Date(2024, 5, 1, 10, 0, 0, 250000000, time.UTC)},
		{name: "space separated", value: "2024-05-01 10:00:00", want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{name: "date only", value: "2024-05-01", want: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", value: "yesterday", want: time.Time{}},
		{name: "empty", value: "", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTimestamp(tt.value); !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestServerMessageToleratesCreatedAt(t *testing.T) {
	tests := []struct {
		name      string
		createdAt string
		want      time.Time
	}{
		{name: "no zone", createdAt: `"2024-05-01T10:00:00"`, want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{name: "unparseable string", createdAt: `"not a time"`, want: time.Time{}},
		{name: "null", createdAt: `null`, want: time.Time{}},
		{name: "number", createdAt: `1714557600`, want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"id":"m1","role":"user","content":"Why?","status":"done","createdAt":` + tt.createdAt + `}`

			var m ServerMessage
			if err := json.Unmarshal([]byte(raw), &m); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if m.ID != "m1" || m.Content != "Why?" {
				t.Errorf("other fields lost: %+v", m)
			}
			if !m.CreatedAt.Equal(tt.want) {
				t.Errorf("CreatedAt = %v, want %v", m.CreatedAt, tt.want)
			}
		})
	}

	var m ServerMessage
	if err := json.Unmarshal([]byte(`{"id":"m2","content":"no time"}`), &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !m.CreatedAt.IsZero() {
		t.Errorf("missing createdAt = %v, want zero", m.CreatedAt)
	}
}
