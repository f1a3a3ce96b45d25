package connect

import (
	"strings"

	"ens-lookup/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for the disconnected view
func Nav(width int, connecting bool) string {
	keys := []string{
		styles.Key("l") + " logger",
		styles.Key("q") + " quit",
	}
	if !connecting {
		keys = append([]string{styles.Key("c") + " connect"}, keys...)
	}
	return styles.NavStyle.Width(width).Render(strings.Join(keys, "   "))
}

// Render renders the disconnected view: a spinner while the wallet is
// being connected, otherwise the connect button and the last failure.
func Render(connecting bool, spinnerView, endpoint, lastErr string) string {
	lines := []string{
		styles.TitleStyle.Render("Welcome!"),
		styles.MutedStyle.Render("This is a ENS resolver app"),
		"",
	}

	if connecting {
		lines = append(lines,
			spinnerView+" connecting to "+lipgloss.NewStyle().Foreground(styles.CAccent2).Render(endpoint)+"…",
			styles.MutedStyle.Render("Approve the request in your wallet."),
		)
		return strings.Join(lines, "\n")
	}

	lines = append(lines, styles.ButtonStyle.Render("Connect your wallet"))
	if lastErr != "" {
		lines = append(lines, "", styles.WarnStyle.Render("⚠ "+lastErr))
	}
	return strings.Join(lines, "\n")
}
