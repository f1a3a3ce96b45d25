package main

import (
	"context"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"

	"ens-lookup/config"
	"ens-lookup/ens"
	"ens-lookup/wallet"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAccount = common.HexToAddress("0xFD50b031E778fAb33DfD2Fc3Ca66a1EeF0652165")

// stubBackend answers every eth_call with a zero word, so nothing has a
// resolver: names are not found and the account has no reverse name.
type stubBackend struct {
	chainID int64
	closed  atomic.Bool
}

func (s *stubBackend) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return make([]byte, 32), nil
}

func (s *stubBackend) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(s.chainID), nil
}

func (s *stubBackend) RequestAccounts(context.Context) ([]common.Address, error) {
	return []common.Address{testAccount}, nil
}

func (s *stubBackend) Close() { s.closed.Store(true) }

func testModel(t *testing.T, backend *stubBackend) (*model, *atomic.Int32) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RPCURL = "http://127.0.0.1:1248"
	require.NoError(t, cfg.Normalize())

	var dials atomic.Int32
	boot, err := wallet.New(cfg, func(context.Context, string) (wallet.Backend, error) {
		dials.Add(1)
		return backend, nil
	})
	require.NoError(t, err)

	m := newModel(cfg, boot, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	t.Cleanup(m.shutdown)
	return &m, &dials
}

// connectModel runs one bootstrap to completion
func connectModel(t *testing.T, m *model) {
	t.Helper()
	cmd := m.startBootstrap()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func view(m *model) string {
	return ansi.Strip(m.View())
}

// findBootstrap runs cmd, descending into batches, and returns the first
// bootstrap result it produces
func findBootstrap(t *testing.T, cmd tea.Cmd) (bootstrapMsg, bool) {
	t.Helper()
	if cmd == nil {
		return bootstrapMsg{}, false
	}
	switch msg := cmd().(type) {
	case bootstrapMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if found, ok := findBootstrap(t, c); ok {
				return found, true
			}
		}
	}
	return bootstrapMsg{}, false
}

func TestBootstrapOnce(t *testing.T) {
	m, dials := testModel(t, &stubBackend{chainID: 5})

	initCmd := m.Init()
	assert.Equal(t, 1, m.bootstraps)
	assert.Contains(t, view(m), "This is a ENS resolver app")

	// no second attempt while the first is running
	assert.Nil(t, m.startBootstrap())
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Equal(t, 1, m.bootstraps)

	// the attempt issued by Init is the one that connects
	msg, ok := findBootstrap(t, initCmd)
	require.True(t, ok)
	m.Update(msg)
	assert.IsType(t, connected{}, m.state)

	// re-renders and resizes never reconnect
	for i := 0; i < 3; i++ {
		m.Update(tea.WindowSizeMsg{Width: 80 + i, Height: 30})
		_ = m.View()
	}
	assert.Nil(t, m.startBootstrap())
	assert.Equal(t, 1, m.bootstraps)
	assert.Equal(t, int32(1), dials.Load())
}

func TestDuplicateBootstrapResult(t *testing.T) {
	backend := &stubBackend{chainID: 5}
	m, _ := testModel(t, backend)
	connectModel(t, m)
	live := m.state.(connected).session

	// a joined attempt delivers the same session again
	m.Update(bootstrapMsg{session: live})
	assert.False(t, backend.closed.Load())
	assert.Same(t, live, m.state.(connected).session)

	// a separate late session is released
	other := &stubBackend{chainID: 5}
	m.Update(bootstrapMsg{session: &wallet.Session{Backend: other}})
	assert.True(t, other.closed.Load())
	assert.False(t, backend.closed.Load())
	assert.Same(t, live, m.state.(connected).session)
}

func TestConnectedGreeting(t *testing.T) {
	m, _ := testModel(t, &stubBackend{chainID: 5})
	connectModel(t, m)

	out := view(m)
	assert.Contains(t, strings.ToLower(out), "welcome 0xfd5...52165!")
	assert.Contains(t, out, "This is a ENS resolver app")
	assert.Contains(t, out, "Goerli")
}

func TestWrongNetworkAlert(t *testing.T) {
	backend := &stubBackend{chainID: 1}
	m, _ := testModel(t, backend)
	connectModel(t, m)

	d, ok := m.state.(disconnected)
	require.True(t, ok)
	assert.False(t, d.connecting)
	assert.Equal(t, "Change the network to Goerli", m.alert)
	assert.Contains(t, view(m), "Change the network to Goerli")
	assert.True(t, backend.closed.Load())

	// the alert swallows keys until dismissed
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Equal(t, 1, m.bootstraps)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.alert)
	assert.Contains(t, view(m), "Connect your wallet")
}

func TestLookupNotFound(t *testing.T) {
	m, _ := testModel(t, &stubBackend{chainID: 5})
	connectModel(t, m)
	c := m.state.(connected)

	assert.Contains(t, view(m), "0xFD50b031E778fAb33DfD2Fc3Ca66a1EeF0652165")

	require.NotNil(t, m.submitLookup("nobody.eth"))
	assert.True(t, m.lookupPending)

	result := c.session.Resolver.ResolveForward(context.Background(), "nobody.eth")
	m.Update(forwardResolveMsg{seq: m.lookupSeq, name: "nobody.eth", result: result})

	assert.False(t, m.lookupPending)
	assert.IsType(t, ens.NotFound{}, m.lookupResult)
	assert.Contains(t, view(m), ens.NotFoundMessage)
}

func TestStaleLookupDropped(t *testing.T) {
	m, _ := testModel(t, &stubBackend{chainID: 5})
	connectModel(t, m)

	m.submitLookup("first.eth")
	first := m.lookupSeq
	m.submitLookup("vitalik.eth")

	m.Update(forwardResolveMsg{
		seq:    first,
		name:   "first.eth",
		result: ens.NotFound{Name: "first.eth", Message: ens.NotFoundMessage},
	})
	assert.True(t, m.lookupPending)
	assert.Nil(t, m.lookupResult)

	resolved := ens.Resolved{Name: "vitalik.eth", Address: testAccount}
	m.Update(forwardResolveMsg{seq: m.lookupSeq, name: "vitalik.eth", result: resolved})
	assert.Equal(t, resolved, m.lookupResult)
	assert.Equal(t, testAccount.Hex(), m.copyTarget())
}

func TestMissingEndpoint(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Normalize())
	boot, err := wallet.New(cfg, nil)
	require.Error(t, err)

	m := newModel(cfg, boot, err)
	t.Cleanup(m.shutdown)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Nil(t, m.startBootstrap())
	assert.Equal(t, 0, m.bootstraps)
	assert.Contains(t, view(&m), "ETH_RPC_URL")
}

func TestSessionClosedOnQuit(t *testing.T) {
	backend := &stubBackend{chainID: 5}
	m, _ := testModel(t, backend)
	connectModel(t, m)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, backend.closed.Load())
}
