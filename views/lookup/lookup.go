package lookup

import (
	"strings"

	"ens-lookup/ens"
	"ens-lookup/helpers"
	"ens-lookup/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/mdp/qrterminal/v3"
)

// Placeholder is shown in the result area before the first lookup
const Placeholder = "0xFD50b031E778fAb33DfD2Fc3Ca66a1EeF0652165"

// State is everything the connected view renders
type State struct {
	Identity    ens.Identity
	Account     string
	Network     string
	Form        string
	Result      ens.LookupResult
	Pending     bool
	SpinnerView string
	CopiedMsg   string
	ShowQR      bool
}

// Nav returns the navigation bar for the connected view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("Enter") + " resolve",
		styles.Key("Ctrl+y") + " copy address",
		styles.Key("Ctrl+r") + " QR code",
		styles.Key("Ctrl+l") + " logger",
		styles.Key("Ctrl+c") + " quit",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

// Greeting renders "Welcome <identity>!"
func Greeting(id ens.Identity) string {
	who := ""
	if id != nil {
		who = id.String()
	}
	return styles.TitleStyle.Render("Welcome ") +
		lipgloss.NewStyle().Bold(true).Render(helpers.FadeString(who, styles.FadeFrom, styles.FadeTo)) +
		styles.TitleStyle.Render("!")
}

// Render renders the connected view
func Render(s State) string {
	sub := styles.MutedStyle.Render("This is a ENS resolver app")
	conn := styles.MutedStyle.Render("● "+s.Network+"  ") +
		lipgloss.NewStyle().Foreground(styles.CText).Render(s.Account)

	lines := []string{Greeting(s.Identity), sub, conn, "", s.Form, ""}

	switch {
	case s.Pending:
		lines = append(lines, s.SpinnerView+" resolving…")
	default:
		lines = append(lines, renderResult(s.Result))
	}

	if s.CopiedMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.CAccent).Render(s.CopiedMsg))
	}

	if r, ok := s.Result.(ens.Resolved); ok && s.ShowQR && !s.Pending {
		lines = append(lines, "", QR("ethereum:"+r.Address.Hex()))
	}

	return strings.Join(lines, "\n")
}

func renderResult(r ens.LookupResult) string {
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.CBorder).
		Padding(0, 1)

	switch r := r.(type) {
	case ens.Resolved:
		name := lipgloss.NewStyle().Foreground(styles.CAccent2).Render(r.Name)
		return box.Render(name + "  " + lipgloss.NewStyle().Foreground(styles.CAccent).Render(r.Address.Hex()))
	case ens.NotFound:
		return box.Render(styles.WarnStyle.Render(r.Message))
	default:
		return box.Render(styles.MutedStyle.Render(Placeholder))
	}
}

// QR renders text as a terminal QR code using half blocks
func QR(text string) string {
	var b strings.Builder
	qrterminal.GenerateWithConfig(text, qrterminal.Config{
		Level:          qrterminal.L,
		Writer:         &b,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
		QuietZone:      1,
	})
	return strings.TrimRight(b.String(), "\n")
}
