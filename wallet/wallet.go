// Package wallet bootstraps a session: it connects to the wallet endpoint,
// checks the network, derives the active account and identifies it via ENS.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"ens-lookup/config"
	"ens-lookup/ens"
	"ens-lookup/helpers"
	"ens-lookup/rpc"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/singleflight"
)

// Backend is the connection handle a session runs on. *rpc.Client
// implements it.
type Backend interface {
	ethereum.ContractCaller
	ChainID(ctx context.Context) (*big.Int, error)
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	Close()
}

// Dialer opens a Backend for an endpoint URL
type Dialer func(ctx context.Context, url string) (Backend, error)

// DialRPC returns a Dialer backed by go-ethereum's ethclient
func DialRPC(timeout time.Duration) Dialer {
	return func(ctx context.Context, url string) (Backend, error) {
		result := rpc.ConnectWithTimeout(ctx, url, timeout)
		if result.Error != nil {
			return nil, result.Error
		}
		return result.Client, nil
	}
}

// Network is the network a session must be attached to
type Network struct {
	Name    string
	ChainID int64
}

// Title returns the network name for display, e.g. "Goerli"
func (n Network) Title() string {
	if n.Name == "" {
		return fmt.Sprintf("chain %d", n.ChainID)
	}
	return strings.ToUpper(n.Name[:1]) + n.Name[1:]
}

// Session is an established connection with its account and identity. It
// is owned by the caller, who must Close it.
type Session struct {
	Backend  Backend
	Resolver *ens.Resolver
	Network  Network
	Account  common.Address
	Identity ens.Identity
}

// Close releases the connection
func (s *Session) Close() {
	if s != nil && s.Backend != nil {
		s.Backend.Close()
	}
}

// Bootstrapper turns configuration into a Session. Concurrent Bootstrap
// calls share a single attempt.
type Bootstrapper struct {
	url      string
	network  Network
	account  *common.Address
	registry common.Address
	timeouts config.Timeouts
	dial     Dialer
	logger   *log.Logger

	group singleflight.Group
}

// New creates a Bootstrapper from cfg. A nil dial uses DialRPC.
func New(cfg config.Config, dial Dialer) (*Bootstrapper, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("%w: no RPC URL (set ETH_RPC_URL)", ErrConnectionFailed)
	}
	if !helpers.IsValidEthAddress(cfg.Registry) {
		return nil, fmt.Errorf("invalid registry address %q", cfg.Registry)
	}

	b := &Bootstrapper{
		url:      cfg.RPCURL,
		network:  Network{Name: cfg.Network, ChainID: cfg.ChainID},
		registry: common.HexToAddress(cfg.Registry),
		timeouts: cfg.Timeouts,
		dial:     dial,
		logger:   log.New(io.Discard),
	}
	if b.dial == nil {
		b.dial = DialRPC(cfg.Timeouts.Connect.Std())
	}
	if cfg.Account != "" {
		if !helpers.IsValidEthAddress(cfg.Account) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAccount, cfg.Account)
		}
		addr := common.HexToAddress(cfg.Account)
		b.account = &addr
	}
	return b, nil
}

// SetLogger sets the logger used for progress messages
func (b *Bootstrapper) SetLogger(l *log.Logger) {
	if l != nil {
		b.logger = l
	}
}

// Network returns the expected network
func (b *Bootstrapper) Network() Network {
	return b.network
}

// URL returns the endpoint URL
func (b *Bootstrapper) URL() string {
	return b.url
}

// Bootstrap connects, verifies the network, derives the account and
// identifies it. Any failure closes the connection.
func (b *Bootstrapper) Bootstrap(ctx context.Context) (*Session, error) {
	v, err, shared := b.group.Do("bootstrap", func() (interface{}, error) {
		return b.bootstrap(ctx)
	})
	if shared {
		b.logger.Debug("joined in-flight bootstrap")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (b *Bootstrapper) bootstrap(ctx context.Context) (*Session, error) {
	b.logger.Info("connecting", "url", b.url)
	backend, err := b.dial(ctx, b.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	session, err := b.establish(ctx, backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return session, nil
}

func (b *Bootstrapper) establish(ctx context.Context, backend Backend) (*Session, error) {
	if err := b.checkNetwork(ctx, backend); err != nil {
		return nil, err
	}

	account, err := b.deriveAccount(ctx, backend)
	if err != nil {
		return nil, err
	}
	b.logger.Info("account connected", "account", account.Hex())

	resolver := ens.NewResolver(backend, b.registry)
	lookupCtx, cancel := context.WithTimeout(ctx, b.timeouts.Lookup.Std())
	defer cancel()
	identity, err := resolver.Identify(lookupCtx, account)
	if err != nil {
		return nil, err
	}
	b.logger.Info("identified", "identity", identity.String())

	return &Session{
		Backend:  backend,
		Resolver: resolver,
		Network:  b.network,
		Account:  account,
		Identity: identity,
	}, nil
}

func (b *Bootstrapper) checkNetwork(ctx context.Context, backend Backend) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeouts.Lookup.Std())
	defer cancel()

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("%w: chain id: %w", ErrConnectionFailed, err)
	}
	if !chainID.IsInt64() || chainID.Int64() != b.network.ChainID {
		return &WrongNetworkError{Expected: b.network, Actual: chainID.Int64()}
	}
	b.logger.Debug("network verified", "chain", b.network.ChainID)
	return nil
}

func (b *Bootstrapper) deriveAccount(ctx context.Context, backend Backend) (common.Address, error) {
	if b.account != nil {
		b.logger.Debug("using configured account")
		return *b.account, nil
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeouts.Approval.Std())
	defer cancel()

	b.logger.Info("waiting for wallet approval")
	accounts, err := backend.RequestAccounts(ctx)
	if err != nil {
		if errors.Is(err, rpc.ErrUserRejected) {
			return common.Address{}, fmt.Errorf("%w: %w", ErrConnectionRejected, err)
		}
		return common.Address{}, fmt.Errorf("%w: accounts: %w", ErrConnectionFailed, err)
	}
	if len(accounts) == 0 {
		return common.Address{}, fmt.Errorf("%w: wallet exposed no accounts", ErrConnectionRejected)
	}
	return accounts[0], nil
}
