package cli

import (
	"fmt"
	"strings"

	"github.com/jasperwreed/astroguide/internal/models"
)

const timeLayout = "2006-01-02 15:04"

func usageLine(msg models.Message) string {
	if msg.PromptTokens == nil && msg.CompletionTokens == nil && msg.EstimatedCostUSD == nil {
		return ""
	}
	var parts []string
	if msg.PromptTokens != nil {
		parts = append(parts, fmt.Sprintf("%d prompt", *msg.PromptTokens))
	}
	if msg.CompletionTokens != nil {
		parts = append(parts, fmt.Sprintf("%d completion", *msg.CompletionTokens))
	}
	line := "tokens: " + strings.Join(parts, " / ")
	if msg.EstimatedCostUSD != nil {
		line += fmt.Sprintf(" ($%.4f)", *msg.EstimatedCostUSD)
	}
	return line
}

func citationLine(n int, c models.Citation) string {
	label := c.Title
	if label == "" {
		label = c.Source
	}
	if label == "" {
		label = c.ID
	}
	line := fmt.Sprintf("[%d] %s", n, label)
	if c.URL != "" {
		line += " " + c.URL
	}
	return line
}

func roleLabel(role models.Role) string {
	if role == models.RoleUser {
		return "You"
	}
	return "AstroGuide"
}

func previewOf(item models.ConversationListItem) string {
	if item.LastMessagePreview == nil {
		return ""
	}
	return *item.LastMessagePreview
}
