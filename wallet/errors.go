package wallet

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongNetwork is returned when the endpoint is attached to a chain
	// other than the expected one
	ErrWrongNetwork = errors.New("wrong network")

	// ErrConnectionRejected is returned when the wallet refuses to expose an
	// account, or exposes none
	ErrConnectionRejected = errors.New("connection rejected")

	// ErrConnectionFailed is returned when the endpoint cannot be reached
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidAccount is returned for a configured account that is not a
	// hex address
	ErrInvalidAccount = errors.New("invalid account address")
)

// WrongNetworkError carries the expected and observed chain ids. It matches
// ErrWrongNetwork with errors.Is.
type WrongNetworkError struct {
	Expected Network
	Actual   int64
}

func (e *WrongNetworkError) Error() string {
	return fmt.Sprintf("change the network to %s (expected chain %d, connected to chain %d)",
		e.Expected.Title(), e.Expected.ChainID, e.Actual)
}

// Is reports whether target is ErrWrongNetwork
func (e *WrongNetworkError) Is(target error) bool {
	return target == ErrWrongNetwork
}
