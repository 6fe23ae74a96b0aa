package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	colorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	colorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorWhite)

var labelStyle = lipgloss.NewStyle().
	Bold(true)

// urgencyStyle returns a color-coded style for the given urgency level.
func urgencyStyle(u model.Urgency) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch u {
	case model.UrgencyHigh:
		return base.Foreground(colorRed)
	case model.UrgencyMedium:
		return base.Foreground(colorYellow)
	case model.UrgencyLow:
		return base.Foreground(colorGreen)
	default:
		return base.Foreground(colorGray)
	}
}

// renderTicket formats one ticket for the operator console.
func renderTicket(index int, t *model.Ticket) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(headerStyle.Render(fmt.Sprintf("=== Ticket %d ===", index)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Subject:"), t.Subject))
	sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("From:"), t.Sender))
	sb.WriteString(fmt.Sprintf("%s %s\n",
		labelStyle.Render("Urgency:"),
		urgencyStyle(t.Urgency).Render(string(t.Urgency)),
	))
	sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Reasoning:"), t.Reasoning))
	sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Summary:"), t.Summary))
	sb.WriteString(fmt.Sprintf("%s\n%s\n\n", labelStyle.Render("Proposed Response:"), t.Response))

	return sb.String()
}
