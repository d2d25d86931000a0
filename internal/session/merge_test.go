package session

import (
	"testing"
	"time"

	"github.com/jasperwreed/astroguide/internal/models"
)

func msgAt(id string, at time.Time, content string) models.Message {
	return models.Message{
		ID:        models.ConfirmedID(id),
		Role:      models.RoleAssistant,
		Content:   content,
		Status:    models.StatusDone,
		CreatedAt: at,
	}
}

func ids(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID.String()
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMerge(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		existing []models.Message
		incoming []models.Message
		want     []string
	}{
		{
			name:     "older page goes first",
			existing: []models.Message{msgAt("m3", base.Add(3*time.Minute), ""), msgAt("m4", base.Add(4*time.Minute), "")},
			incoming: []models.Message{msgAt("m1", base.Add(time.Minute), ""), msgAt("m2", base.Add(2*time.Minute), "")},
			want:     []string{"m1", "m2", "m3", "m4"},
		},
		{
			name:     "equal timestamps order by id",
			existing: []models.Message{msgAt("b", base, "")},
			incoming: []models.Message{msgAt("a", base, ""), msgAt("c", base, "")},
			want:     []string{"a", "b", "c"},
		},
		{
			name:     "duplicates collapse",
			existing: []models.Message{msgAt("m1", base, ""), msgAt("m2", base.Add(time.Minute), "")},
			incoming: []models.Message{msgAt("m2", base.Add(time.Minute), ""), msgAt("m1", base, "")},
			want:     []string{"m1", "m2"},
		},
		{
			name:     "zero timestamp falls back to id",
			existing: []models.Message{msgAt("m1", base, "")},
			incoming: []models.Message{msgAt("z", time.Time{}, ""), msgAt("a", time.Time{}, "")},
			want:     []string{"a", "m1", "z"},
		},
		{
			name:     "empty incoming",
			existing: []models.Message{msgAt("m2", base.Add(time.Minute), ""), msgAt("m1", base, "")},
			incoming: nil,
			want:     []string{"m1", "m2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Merge(tt.existing, tt.incoming))
			if !equalIDs(got, tt.want) {
				t.Errorf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeIncomingWins(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	existing := []models.Message{msgAt("m1", base, "partial")}
	incoming := []models.Message{msgAt("m1", base, "complete answer")}

	got := Merge(existing, incoming)
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if got[0].Content != "complete answer" {
		t.Errorf("expected incoming copy to win, got %q", got[0].Content)
	}
}

func TestMergeIdempotent(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	existing := []models.Message{msgAt("m5", base.Add(5*time.Minute), "")}
	page := []models.Message{
		msgAt("m2", base.Add(2*time.Minute), ""),
		msgAt("m1", base.Add(time.Minute), ""),
		msgAt("m3", base.Add(2*time.Minute), ""),
	}

	once := Merge(existing, page)
	twice := Merge(once, page)

	if !equalIDs(ids(once), ids(twice)) {
		t.Errorf("merging twice changed order: %v vs %v", ids(once), ids(twice))
	}
	if len(twice) != 4 {
		t.Errorf("expected 4 messages, got %d", len(twice))
	}
}

func TestSortMessagesDoesNotMutateInput(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := []models.Message{msgAt("b", base.Add(time.Minute), ""), msgAt("a", base, "")}

	out := SortMessages(in)

	if in[0].ID.String() != "b" {
		t.Errorf("input was reordered")
	}
	if !equalIDs(ids(out), []string{"a", "b"}) {
		t.Errorf("SortMessages() = %v", ids(out))
	}
}

func TestLessMessageZeroTimestamp(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b models.Message
		want bool
	}{
		{name: "both set compare by time", a: msgAt("b", base, ""), b: msgAt("a", base.Add(time.Second), ""), want: true},
		{name: "equal times compare by id", a: msgAt("a", base, ""), b: msgAt("b", base, ""), want: true},
		{name: "zero left uses id", a: msgAt("b", time.Time{}, ""), b: msgAt("a", base, ""), want: false},
		{name: "zero right uses id", a: msgAt("a", base, ""), b: msgAt("b", time.Time{}, ""), want: true},
		{name: "both zero uses id", a: msgAt("x", time.Time{}, ""), b: msgAt("y", time.Time{}, ""), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lessMessage(tt.a, tt.b); got != tt.want {
				t.Errorf("lessMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}
