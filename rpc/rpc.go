package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// JSON-RPC error codes the client reacts to
const (
	codeMethodNotFound = -32601
	// codeUserRejected is the EIP-1193 "user rejected the request" code
	codeUserRejected = 4001
)

// ErrUserRejected is returned when the wallet behind the endpoint refuses
// to expose its accounts.
var ErrUserRejected = errors.New("request rejected by wallet")

// Client wraps an Ethereum RPC client
type Client struct {
	*ethclient.Client
	URL string
}

// ConnectResult holds the result of an RPC connection attempt
type ConnectResult struct {
	Client *Client
	Error  error
}

// Connect attempts to connect to an Ethereum RPC endpoint
func Connect(ctx context.Context, url string) ConnectResult {
	return ConnectWithTimeout(ctx, url, 8*time.Second)
}

// ConnectWithTimeout attempts to connect with a custom timeout
func ConnectWithTimeout(ctx context.Context, url string, timeout time.Duration) ConnectResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return ConnectResult{Client: nil, Error: err}
	}

	return ConnectResult{
		Client: &Client{
			Client: client,
			URL:    url,
		},
		Error: nil,
	}
}

// RequestAccounts asks the wallet behind the endpoint for its accounts. It
// uses eth_requestAccounts, which may block until the user approves, and
// falls back to eth_accounts on nodes that do not implement it.
func (c *Client) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	err := c.Client.Client().CallContext(ctx, &accounts, "eth_requestAccounts")
	if errorCode(err) == codeMethodNotFound {
		err = c.Client.Client().CallContext(ctx, &accounts, "eth_accounts")
	}
	if errorCode(err) == codeUserRejected {
		return nil, ErrUserRejected
	}
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func errorCode(err error) int {
	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode()
	}
	return 0
}
