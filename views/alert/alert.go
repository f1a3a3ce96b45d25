package alert

import (
	"ens-lookup/helpers"
	"ens-lookup/styles"

	"github.com/charmbracelet/lipgloss"
)

var (
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.CBorder).
			Padding(1, 2)

	okButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Background(lipgloss.Color("#F25D94")).
			Padding(0, 3).
			MarginTop(1).
			Underline(true)
)

// Render renders a blocking alert centered in a w x h screen. It is
// dismissed with a single OK button.
func Render(w, h int, title, message string) string {
	head := lipgloss.NewStyle().Foreground(styles.CError).Bold(true).Render(title)
	body := lipgloss.NewStyle().Width(50).Align(lipgloss.Center).
		Render(helpers.FadeString(message, styles.FadeFrom, styles.FadeTo))
	ok := okButtonStyle.Render("OK")

	ui := lipgloss.JoinVertical(lipgloss.Center, head, "", body, ok)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, dialogBoxStyle.Render(ui))
}
