package main

import (
	"errors"
	"fmt"
	"strings"

	"ens-lookup/ens"
	"ens-lookup/helpers"
	logview "ens-lookup/views/log"
	"ens-lookup/wallet"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

var errEmptyName = errors.New("enter a name")

// -------------------- UPDATE --------------------

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		// Width accounts for border and padding
		m.logViewport.Width = max(0, msg.Width-6)
		m.logViewport.Height = logview.PanelHeight(msg.Height)
		m.updateLogViewport()
		return m, nil

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		if m.logEnabled {
			m.logSpinner, cmd = m.logSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case logInitMsg:
		m.logReady = true
		m.addLog("info", "Logger enabled")
		return m, nil

	case bootstrapMsg:
		return m.handleBootstrap(msg)

	case forwardResolveMsg:
		if msg.seq != m.lookupSeq {
			m.addLog("debug", fmt.Sprintf("Dropped stale result for `%s`", msg.name))
			return m, nil
		}
		m.lookupPending = false
		m.lookupResult = msg.result
		switch r := msg.result.(type) {
		case ens.Resolved:
			m.addLog("success", fmt.Sprintf("Resolved %s to %s", r.Name, helpers.ShortenAddr(r.Address)))
		case ens.NotFound:
			m.addLog("warning", fmt.Sprintf("ENS resolution failed for %s: %v", r.Name, r.Err))
		}
		return m, nil

	case clipboardCopiedMsg:
		if msg.err != nil {
			m.addLog("error", fmt.Sprintf("Copy failed: %v", msg.err))
			return m, nil
		}
		m.copiedMsg = "✓ copied " + msg.text
		return m, clearCopiedAfter()

	case clearCopiedMsg:
		m.copiedMsg = ""
		return m, nil
	}

	// Anything else (cursor blink etc.) belongs to the form
	if _, ok := m.state.(connected); ok && m.lookupForm != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.shutdown()
		return m, tea.Quit
	}

	// The alert blocks everything until dismissed
	if m.alert != "" {
		switch msg.String() {
		case "enter", "esc", " ":
			m.alert = ""
		}
		return m, nil
	}

	switch m.state.(type) {
	case disconnected:
		switch msg.String() {
		case "c", "enter":
			return m, m.startBootstrap()
		case "l":
			return m, m.toggleLog()
		case "q", "esc":
			m.shutdown()
			return m, tea.Quit
		}
		return m, nil

	case connected:
		switch msg.String() {
		case "ctrl+y":
			return m, copyToClipboard(m.copyTarget())
		case "ctrl+r":
			m.showQR = !m.showQR
			return m, nil
		case "ctrl+l":
			return m, m.toggleLog()
		}
		return m.updateForm(msg)
	}
	return m, nil
}

func (m *model) handleBootstrap(msg bootstrapMsg) (tea.Model, tea.Cmd) {
	if c, ok := m.state.(connected); ok {
		// already connected; a late separate session is released
		if msg.session != nil && msg.session != c.session {
			msg.session.Close()
		}
		return m, nil
	}

	if msg.err != nil {
		m.state = disconnected{lastErr: msg.err.Error()}

		var wrongNetwork *wallet.WrongNetworkError
		switch {
		case errors.As(msg.err, &wrongNetwork):
			m.alert = "Change the network to " + wrongNetwork.Expected.Title()
			m.addLog("error", msg.err.Error())
		case errors.Is(msg.err, ens.ErrReverseLookup):
			m.addLog("error", fmt.Sprintf("ENS lookup error: %v", msg.err))
		case errors.Is(msg.err, wallet.ErrConnectionRejected):
			m.addLog("warning", fmt.Sprintf("Wallet connection rejected: %v", msg.err))
		default:
			m.addLog("error", fmt.Sprintf("Wallet connection failed: %v", msg.err))
		}
		return m, nil
	}

	m.state = connected{session: msg.session}
	m.addLog("success", fmt.Sprintf("Connected %s as %s", msg.session.Account.Hex(), msg.session.Identity))
	return m, m.createLookupForm()
}

func (m *model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.lookupForm.Update(msg)
	f, ok := form.(*huh.Form)
	if !ok {
		return m, cmd
	}
	m.lookupForm = f

	switch f.State {
	case huh.StateCompleted:
		return m, m.submitLookup(strings.TrimSpace(*m.lookupName))
	case huh.StateAborted:
		return m, m.createLookupForm()
	}
	return m, cmd
}

func (m *model) toggleLog() tea.Cmd {
	m.logEnabled = !m.logEnabled
	if m.logEnabled {
		m.updateLogViewport()
		return m.logSpinner.Tick
	}
	return nil
}

// copyTarget is the last resolved address, or the account itself
func (m *model) copyTarget() string {
	if r, ok := m.lookupResult.(ens.Resolved); ok && !m.lookupPending {
		return r.Address.Hex()
	}
	if c, ok := m.state.(connected); ok {
		return c.session.Account.Hex()
	}
	return ""
}
