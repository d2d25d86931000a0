package models

import (
	"time"
)

type Conversation struct {
	ID        string    `json:"id"`
	Title     *string   `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayTitle falls back to a placeholder for untitled conversations.
func (c Conversation) DisplayTitle() string {
	if c.Title == nil || *c.Title == "" {
		return "Untitled conversation"
	}
	return *c.Title
}

type ConversationListItem struct {
	Conversation
	LastMessagePreview *string `json:"lastMessagePreview"`
}

type Concept struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Short   string   `json:"short,omitempty"`
	Details string   `json:"details,omitempty"`
	SeeAlso []string `json:"seeAlso,omitempty"`
}

type ConceptType string

const (
	ConceptTerm   ConceptType = "term"
	ConceptSymbol ConceptType = "sym"
)

type SearchResult struct {
	Conversation ConversationListItem `json:"conversation"`
	Snippet      string               `json:"snippet"`
	Score        float64              `json:"score"`
}
