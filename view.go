package main

import (
	"strings"

	"ens-lookup/helpers"
	"ens-lookup/views/alert"
	"ens-lookup/views/connect"
	logview "ens-lookup/views/log"
	"ens-lookup/views/lookup"

	"github.com/charmbracelet/lipgloss"
)

// -------------------- VIEW --------------------

func (m *model) globalHeader() string {
	availableWidth := max(0, m.w-8) // Account for panel padding

	titleText := lipgloss.NewStyle().Bold(true).Render(helpers.FadeString("ENS Lookup", "#7EE787", "#82CFFD"))

	var statusIcon, statusText string
	statusColor := cError
	switch s := m.state.(type) {
	case disconnected:
		statusIcon = "○"
		switch {
		case s.connecting:
			statusText = "Connecting..."
		case s.lastErr != "":
			statusText = "Connection Failed"
		default:
			statusText = "Disconnected"
		}
	case connected:
		statusIcon = "●"
		statusColor = cAccent
		statusText = s.session.Network.Title()
	}

	status := lipgloss.NewStyle().
		Foreground(statusColor).
		Bold(true).
		Render(statusIcon + " " + statusText)

	spacer := strings.Repeat(" ", max(1, availableWidth-lipgloss.Width(titleText)-lipgloss.Width(status)))
	separator := lipgloss.NewStyle().
		Foreground(cBorder).
		Render(strings.Repeat("─", availableWidth))

	return titleText + spacer + status + "\n" + separator
}

func (m *model) View() string {
	if m.alert != "" {
		return alert.Render(m.w, m.h, "Wrong network", m.alert)
	}

	headerPanel := panelStyle.Width(max(0, m.w-2)).Render(m.globalHeader())

	var pageContent, nav string
	switch s := m.state.(type) {
	case disconnected:
		endpoint := ""
		if m.boot != nil {
			endpoint = m.boot.URL()
		}
		pageContent = connect.Render(s.connecting, m.spin.View(), endpoint, s.lastErr)
		nav = connect.Nav(max(0, m.w-2), s.connecting)

	case connected:
		formView := ""
		if m.lookupForm != nil {
			formView = m.lookupForm.View()
		}
		pageContent = lookup.Render(lookup.State{
			Identity:    s.session.Identity,
			Account:     s.session.Account.Hex(),
			Network:     s.session.Network.Title(),
			Form:        formView,
			Result:      m.lookupResult,
			Pending:     m.lookupPending,
			SpinnerView: m.spin.View(),
			CopiedMsg:   m.copiedMsg,
			ShowQR:      m.showQR,
		})
		nav = lookup.Nav(max(0, m.w-2))
	}

	sections := []string{
		headerPanel,
		panelStyle.Width(max(0, m.w-2)).Render(pageContent),
		nav,
	}
	if m.logEnabled {
		sections = append(sections, logview.Render(m.w, m.logReady, m.logSpinner.View(), m.logViewport))
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
