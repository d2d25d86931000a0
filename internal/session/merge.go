package session

import (
	"sort"

	"github.com/jasperwreed/astroguide/internal/models"
)

// lessMessage orders by CreatedAt, then by id. When either timestamp is
// zero the ids decide.
func lessMessage(a, b models.Message) bool {
	if !a.CreatedAt.IsZero() && !b.CreatedAt.IsZero() && !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// SortMessages returns a sorted copy of msgs.
func SortMessages(msgs []models.Message) []models.Message {
	out := append([]models.Message{}, msgs...)
	sort.SliceStable(out, func(i, j int) bool {
		return lessMessage(out[i], out[j])
	})
	return out
}

// Merge folds incoming into existing. Entries sharing an id are replaced by
// the incoming copy, and the result is sorted. Merging the same batch twice
// gives the same list as merging it once.
func Merge(existing, incoming []models.Message) []models.Message {
	out := make([]models.Message, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))

	add := func(m models.Message) {
		key := m.ID.String()
		if i, ok := index[key]; ok {
			out[i] = m
			return
		}
		index[key] = len(out)
		out = append(out, m)
	}

	for _, m := range existing {
		add(m)
	}
	for _, m := range incoming {
		add(m)
	}

	return SortMessages(out)
}
