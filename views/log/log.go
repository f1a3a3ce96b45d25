package log

import (
	"fmt"

	"ens-lookup/helpers"
	"ens-lookup/styles"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// reservedHeight is the number of rows taken by header, nav, borders and
// margins around the log panel
const reservedHeight = 10

// PanelHeight returns the viewport height for a screen of height h: at most
// a third of the screen or 15 lines.
func PanelHeight(h int) int {
	available := helpers.Max(5, h-reservedHeight)
	return helpers.Min(available, helpers.Min(h/3, 15))
}

// Render renders the log panel
func Render(width int, logReady bool, logSpinnerView string, vp viewport.Model) string {
	title := lipgloss.NewStyle().
		Foreground(styles.CAccent2).
		Bold(true).
		Render("Log")

	border := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.CBorder).
		Padding(0, 1).
		Width(helpers.Max(0, width-2)).
		Height(vp.Height + 2) // +2 for title and spacing

	if !logReady {
		return border.Render(title + "\n\n" + "initializing...\n" + logSpinnerView)
	}

	// Show scroll position if content is larger than viewport
	if vp.TotalLineCount() > vp.Height {
		title += styles.MutedStyle.Render(fmt.Sprintf(" [%d%%]", int(vp.ScrollPercent()*100)))
	}

	return border.Render(title + "\n\n" + vp.View())
}
