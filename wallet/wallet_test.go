package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ens-lookup/config"
	"ens-lookup/ens"
	"ens-lookup/rpc"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAccount = common.HexToAddress("0xFD50b031E778fAb33DfD2Fc3Ca66a1EeF0652165")

type fakeBackend struct {
	chainID     int64
	accounts    []common.Address
	accountsErr error
	callErr     error
	closed      atomic.Bool
	requested   atomic.Int32
	block       chan struct{}
}

func (f *fakeBackend) CallContract(_ context.Context, _ ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	// a zero word decodes as the zero address: no resolver anywhere
	return make([]byte, 32), nil
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(f.chainID), nil
}

func (f *fakeBackend) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	f.requested.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.accounts, f.accountsErr
}

func (f *fakeBackend) Close() { f.closed.Store(true) }

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.RPCURL = "http://127.0.0.1:1248"
	cfg.Network = "goerli"
	return cfg
}

func newTestBootstrapper(t *testing.T, cfg config.Config, backend *fakeBackend) (*Bootstrapper, *atomic.Int32) {
	t.Helper()
	var dials atomic.Int32
	b, err := New(cfg, func(context.Context, string) (Backend, error) {
		dials.Add(1)
		return backend, nil
	})
	require.NoError(t, err)
	return b, &dials
}

func TestBootstrap(t *testing.T) {
	t.Run("connects and formats address without name", func(t *testing.T) {
		backend := &fakeBackend{chainID: 5, accounts: []common.Address{testAccount}}
		b, _ := newTestBootstrapper(t, testConfig(), backend)

		session, err := b.Bootstrap(context.Background())
		require.NoError(t, err)
		assert.Equal(t, testAccount, session.Account)
		assert.Equal(t, Network{Name: "goerli", ChainID: 5}, session.Network)
		assert.IsType(t, ens.FormattedAddress(""), session.Identity)
		assert.Len(t, session.Identity.String(), 13)
		assert.False(t, backend.closed.Load())

		session.Close()
		assert.True(t, backend.closed.Load())
	})

	t.Run("wrong network", func(t *testing.T) {
		backend := &fakeBackend{chainID: 1, accounts: []common.Address{testAccount}}
		b, _ := newTestBootstrapper(t, testConfig(), backend)

		session, err := b.Bootstrap(context.Background())
		assert.Nil(t, session)
		require.ErrorIs(t, err, ErrWrongNetwork)

		var wn *WrongNetworkError
		require.ErrorAs(t, err, &wn)
		assert.Equal(t, int64(5), wn.Expected.ChainID)
		assert.Equal(t, int64(1), wn.Actual)
		assert.Contains(t, err.Error(), "Goerli")
		assert.True(t, backend.closed.Load())
		assert.Zero(t, backend.requested.Load())
	})

	t.Run("user rejects", func(t *testing.T) {
		backend := &fakeBackend{chainID: 5, accountsErr: rpc.ErrUserRejected}
		b, _ := newTestBootstrapper(t, testConfig(), backend)

		_, err := b.Bootstrap(context.Background())
		assert.ErrorIs(t, err, ErrConnectionRejected)
		assert.True(t, backend.closed.Load())
	})

	t.Run("no accounts", func(t *testing.T) {
		backend := &fakeBackend{chainID: 5}
		b, _ := newTestBootstrapper(t, testConfig(), backend)

		_, err := b.Bootstrap(context.Background())
		assert.ErrorIs(t, err, ErrConnectionRejected)
	})

	t.Run("configured account skips approval", func(t *testing.T) {
		cfg := testConfig()
		cfg.Account = testAccount.Hex()
		backend := &fakeBackend{chainID: 5}
		b, _ := newTestBootstrapper(t, cfg, backend)

		session, err := b.Bootstrap(context.Background())
		require.NoError(t, err)
		assert.Equal(t, testAccount, session.Account)
		assert.Zero(t, backend.requested.Load())
	})

	t.Run("reverse lookup failure is reported as such", func(t *testing.T) {
		backend := &fakeBackend{chainID: 5, accounts: []common.Address{testAccount}, callErr: errors.New("boom")}
		b, _ := newTestBootstrapper(t, testConfig(), backend)

		_, err := b.Bootstrap(context.Background())
		assert.ErrorIs(t, err, ens.ErrReverseLookup)
		assert.NotErrorIs(t, err, ErrConnectionFailed)
		assert.True(t, backend.closed.Load())
	})

	t.Run("dial failure", func(t *testing.T) {
		b, err := New(testConfig(), func(context.Context, string) (Backend, error) {
			return nil, errors.New("connection refused")
		})
		require.NoError(t, err)

		_, err = b.Bootstrap(context.Background())
		assert.ErrorIs(t, err, ErrConnectionFailed)
	})

	t.Run("approval times out", func(t *testing.T) {
		cfg := testConfig()
		cfg.Timeouts.Approval = config.Duration(20 * time.Millisecond)
		backend := &fakeBackend{chainID: 5, accounts: []common.Address{testAccount}, block: make(chan struct{})}
		b, _ := newTestBootstrapper(t, cfg, backend)

		_, err := b.Bootstrap(context.Background())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.ErrorIs(t, err, ErrConnectionFailed)
	})

	t.Run("concurrent calls share one attempt", func(t *testing.T) {
		backend := &fakeBackend{chainID: 5, accounts: []common.Address{testAccount}, block: make(chan struct{})}
		b, dials := newTestBootstrapper(t, testConfig(), backend)

		var wg sync.WaitGroup
		sessions := make([]*Session, 3)
		for i := range sessions {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				s, err := b.Bootstrap(context.Background())
				assert.NoError(t, err)
				sessions[i] = s
			}(i)
		}

		require.Eventually(t, func() bool { return backend.requested.Load() == 1 }, time.Second, time.Millisecond)
		// let the other callers join the in-flight attempt
		time.Sleep(20 * time.Millisecond)
		close(backend.block)
		wg.Wait()

		assert.Equal(t, int32(1), dials.Load())
		for _, s := range sessions {
			assert.Same(t, sessions[0], s)
		}
	})
}

func TestNew(t *testing.T) {
	t.Run("requires rpc url", func(t *testing.T) {
		cfg := testConfig()
		cfg.RPCURL = ""
		_, err := New(cfg, nil)
		assert.ErrorIs(t, err, ErrConnectionFailed)
	})

	t.Run("rejects bad account", func(t *testing.T) {
		cfg := testConfig()
		cfg.Account = "vitalik.eth"
		_, err := New(cfg, nil)
		assert.ErrorIs(t, err, ErrInvalidAccount)
	})

	t.Run("network from chain id", func(t *testing.T) {
		cfg := testConfig()
		cfg.Network = ""
		cfg.ChainID = 11155111
		b, err := New(cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, Network{Name: "sepolia", ChainID: 11155111}, b.Network())
	})
}
