// Package ens resolves ENS names to addresses and addresses back to names
// using the registry and resolver contracts over eth_call.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ens-lookup/helpers"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	goens "github.com/wealdtech/go-ens/v3"
)

var (
	// ErrNameNotFound is returned when a name has no resolver or no address
	ErrNameNotFound = errors.New("name not found")

	// ErrInvalidName is returned for input that is not a valid ENS name
	ErrInvalidName = errors.New("invalid ENS name")

	// ErrReverseLookup is returned when the reverse record could not be read.
	// It is distinct from an address that simply has no name.
	ErrReverseLookup = errors.New("reverse lookup failed")
)

// Resolver performs ENS lookups through a contract caller such as an
// ethclient.Client.
type Resolver struct {
	caller   ethereum.ContractCaller
	registry common.Address
}

// NewResolver creates a resolver that reads the given registry
func NewResolver(caller ethereum.ContractCaller, registry common.Address) *Resolver {
	return &Resolver{caller: caller, registry: registry}
}

// Registry returns the registry address used for lookups
func (r *Resolver) Registry() common.Address {
	return r.registry
}

// Resolve returns the address a name points to. Hex addresses are returned
// as-is without touching the chain.
func (r *Resolver) Resolve(ctx context.Context, name string) (common.Address, error) {
	name = strings.TrimSpace(name)
	if helpers.IsValidEthAddress(name) {
		return common.HexToAddress(name), nil
	}
	if name == "" || !strings.Contains(name, ".") {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	normalized, err := goens.Normalize(name)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidName, name, err)
	}
	node, err := goens.NameHash(normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidName, name, err)
	}

	resolver, err := r.resolverOf(ctx, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("resolve %s: %w", normalized, err)
	}

	addr, err := callAddress(ctx, r.caller, resolver, "addr", node)
	if errors.Is(err, errNoCode) || (err == nil && addr == (common.Address{})) {
		return common.Address{}, fmt.Errorf("resolve %s: %w", normalized, ErrNameNotFound)
	}
	if err != nil {
		return common.Address{}, fmt.Errorf("resolve %s: %w", normalized, err)
	}
	return addr, nil
}

// ReverseResolve returns the name recorded in addr's reverse record, or ""
// when there is none. The name is not checked against forward resolution;
// use Identify for that.
func (r *Resolver) ReverseResolve(ctx context.Context, addr common.Address) (string, error) {
	node, err := goens.NameHash(reverseName(addr))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReverseLookup, err)
	}

	resolver, err := r.resolverOf(ctx, node)
	if errors.Is(err, ErrNameNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReverseLookup, err)
	}

	name, err := callString(ctx, r.caller, resolver, "name", node)
	if errors.Is(err, errNoCode) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReverseLookup, err)
	}
	return strings.TrimSpace(name), nil
}

// Identify picks how addr should be greeted. A reverse name is used only
// when it resolves back to addr; otherwise the shortened address is used.
func (r *Resolver) Identify(ctx context.Context, addr common.Address) (Identity, error) {
	name, err := r.ReverseResolve(ctx, addr)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return FormattedAddress(helpers.ShortenAddr(addr)), nil
	}

	forward, err := r.Resolve(ctx, name)
	switch {
	case errors.Is(err, ErrNameNotFound), errors.Is(err, ErrInvalidName):
		return FormattedAddress(helpers.ShortenAddr(addr)), nil
	case err != nil:
		return nil, fmt.Errorf("%w: verify %s: %w", ErrReverseLookup, name, err)
	case forward != addr:
		return FormattedAddress(helpers.ShortenAddr(addr)), nil
	}
	return Name(name), nil
}

// ResolveForward resolves a user-entered name. Every failure collapses into
// NotFound carrying NotFoundMessage; the cause is kept in NotFound.Err.
func (r *Resolver) ResolveForward(ctx context.Context, name string) LookupResult {
	addr, err := r.Resolve(ctx, name)
	if err != nil {
		return NotFound{Name: name, Message: NotFoundMessage, Err: err}
	}
	return Resolved{Name: name, Address: addr}
}

// resolverOf returns the resolver contract set for node in the registry
func (r *Resolver) resolverOf(ctx context.Context, node [32]byte) (common.Address, error) {
	resolver, err := callAddress(ctx, r.caller, r.registry, "resolver", node)
	if errors.Is(err, errNoCode) {
		return common.Address{}, fmt.Errorf("no registry at %s", r.registry.Hex())
	}
	if err != nil {
		return common.Address{}, err
	}
	if resolver == (common.Address{}) {
		return common.Address{}, ErrNameNotFound
	}
	return resolver, nil
}

func reverseName(addr common.Address) string {
	return fmt.Sprintf("%x.addr.reverse", addr.Bytes())
}
