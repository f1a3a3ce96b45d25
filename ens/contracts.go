package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Only the registry and resolver methods needed for name <-> address
// resolution are declared.
const ensABIJSON = `[
	{"type":"function","name":"resolver","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"addr","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"name","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"string"}]}
]`

var ensABI = mustParseABI(ensABIJSON)

// errNoCode is returned when a call hits an address without a contract
var errNoCode = errors.New("empty call result")

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("ens: invalid ABI: %v", err))
	}
	return parsed
}

// call packs method(node), executes it against to and returns the single
// decoded output.
func call(ctx context.Context, caller ethereum.ContractCaller, to common.Address, method string, node [32]byte) (interface{}, error) {
	data, err := ensABI.Pack(method, node)
	if err != nil {
		return nil, err
	}

	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s(%x) on %s: %w", method, node, to.Hex(), err)
	}
	if len(out) == 0 {
		return nil, errNoCode
	}

	values, err := ensABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("decode %s: got %d values", method, len(values))
	}
	return values[0], nil
}

func callAddress(ctx context.Context, caller ethereum.ContractCaller, to common.Address, method string, node [32]byte) (common.Address, error) {
	v, err := call(ctx, caller, to, method, node)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("decode %s: unexpected type %T", method, v)
	}
	return addr, nil
}

func callString(ctx context.Context, caller ethereum.ContractCaller, to common.Address, method string, node [32]byte) (string, error) {
	v, err := call(ctx, caller, to, method, node)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("decode %s: unexpected type %T", method, v)
	}
	return s, nil
}
