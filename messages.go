package main

import (
	"ens-lookup/ens"
	"ens-lookup/wallet"
)

// -------------------- TEA MESSAGES --------------------
// All custom message types for The Elm Architecture

// bootstrapMsg contains the result of a wallet connection attempt
type bootstrapMsg struct {
	session *wallet.Session
	err     error
}

// forwardResolveMsg contains result of forward ENS resolution (name -> address)
type forwardResolveMsg struct {
	seq    int
	name   string
	result ens.LookupResult
}

// logInitMsg signals that log viewport should be initialized
type logInitMsg struct{}

// clipboardCopiedMsg indicates clipboard copy completed
type clipboardCopiedMsg struct {
	text string
	err  error
}

// clearCopiedMsg clears the clipboard feedback
type clearCopiedMsg struct{}
