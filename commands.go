package main

import (
	"context"
	"time"

	"ens-lookup/ens"
	"ens-lookup/wallet"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

// bootstrapWallet connects the wallet and identifies the active account
func bootstrapWallet(ctx context.Context, b *wallet.Bootstrapper) tea.Cmd {
	return func() tea.Msg {
		session, err := b.Bootstrap(ctx)
		return bootstrapMsg{session: session, err: err}
	}
}

// resolveName performs forward ENS resolution (name -> address)
func resolveName(ctx context.Context, r *ens.Resolver, seq int, name string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return forwardResolveMsg{seq: seq, name: name, result: r.ResolveForward(ctx, name)}
	}
}

// initLogViewport initializes the log viewport
func initLogViewport() tea.Cmd {
	return func() tea.Msg {
		return logInitMsg{}
	}
}

// copyToClipboard copies text to clipboard
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardCopiedMsg{text: text, err: clipboard.WriteAll(text)}
	}
}

// clearCopiedAfter waits 2 seconds then clears clipboard feedback
func clearCopiedAfter() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearCopiedMsg{}
	})
}
