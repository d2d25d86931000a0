package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jasperwreed/astroguide/internal/models"
	"github.com/jasperwreed/astroguide/internal/session"
)

const streamingCursor = "▌"

// renderTranscript draws the message list of s. spin is the current spinner
// frame shown while an answer has not produced text yet.
func renderTranscript(s session.State, st styles, width int, spin string) string {
	if width < 20 {
		width = 20
	}
	body := lipgloss.NewStyle().Width(width)

	var content strings.Builder

	if s.HasEarlier() {
		content.WriteString(st.help.Render("ctrl+u: load earlier messages"))
		content.WriteString("\n\n")
	}

	if len(s.Messages) == 0 {
		content.WriteString(st.help.Render("Ask anything about astronomy."))
		return content.String()
	}

	for _, msg := range s.Messages {
		content.WriteString(renderHeader(msg, st))
		content.WriteString("\n")

		switch {
		case msg.Role == models.RoleAssistant && msg.Content == "" && (msg.Status == models.StatusQueued || msg.Status == models.StatusStreaming):
			content.WriteString(st.meta.Render(spin + " thinking..."))
		case msg.Status == models.StatusStreaming:
			content.WriteString(body.Render(msg.Content + streamingCursor))
		default:
			content.WriteString(body.Render(msg.Content))
		}
		content.WriteString("\n")

		if footer := renderFooter(msg, st); footer != "" {
			content.WriteString(footer)
			content.WriteString("\n")
		}
		content.WriteString("\n")
	}

	if s.Stream.Phase == session.PhaseError && s.Stream.ErrorMessage != nil {
		line := *s.Stream.ErrorMessage
		if s.Stream.ErrorCode != nil {
			line = fmt.Sprintf("%s (%s)", line, *s.Stream.ErrorCode)
		}
		content.WriteString(st.errorText.Render(line))
		content.WriteString("  ")
		content.WriteString(st.help.Render("ctrl+r: retry"))
		content.WriteString("\n")
	}

	return content.String()
}

func renderHeader(msg models.Message, st styles) string {
	var header string
	if msg.Role == models.RoleUser {
		header = st.user.Render("You")
	} else {
		header = st.assistant.Render("AstroGuide")
	}

	var meta []string
	if !msg.CreatedAt.IsZero() {
		meta = append(meta, msg.CreatedAt.Local().Format("15:04"))
	}
	if msg.Role == models.RoleUser {
		if msg.Difficulty != nil {
			meta = append(meta, string(*msg.Difficulty))
		}
		if msg.Language != nil {
			meta = append(meta, string(*msg.Language))
		}
	}
	if len(meta) > 0 {
		header += " " + st.meta.Render(strings.Join(meta, " · "))
	}
	return header
}

func renderFooter(msg models.Message, st styles) string {
	var lines []string

	switch msg.Status {
	case models.StatusCancelled:
		lines = append(lines, st.meta.Render("(cancelled)"))
	case models.StatusError:
		if msg.Role == models.RoleAssistant {
			lines = append(lines, st.errorText.Render("(answer failed)"))
		}
	}

	if msg.PromptTokens != nil || msg.CompletionTokens != nil {
		lines = append(lines, st.meta.Render(formatUsage(msg)))
	}

	for i, c := range msg.Citations {
		lines = append(lines, st.citation.Render(formatCitation(i+1, c)))
	}

	return strings.Join(lines, "\n")
}

func formatUsage(msg models.Message) string {
	var parts []string
	if msg.PromptTokens != nil {
		parts = append(parts, fmt.Sprintf("%d prompt", *msg.PromptTokens))
	}
	if msg.CompletionTokens != nil {
		parts = append(parts, fmt.Sprintf("%d completion", *msg.CompletionTokens))
	}
	usage := "tokens: " + strings.Join(parts, " / ")
	if msg.EstimatedCostUSD != nil {
		usage += fmt.Sprintf(" ($%.4f)", *msg.EstimatedCostUSD)
	}
	return usage
}

func formatCitation(n int, c models.Citation) string {
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
