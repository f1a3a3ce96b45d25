package ens

import (
	"github.com/ethereum/go-ethereum/common"
)

// NotFoundMessage is shown when a forward lookup yields no address
const NotFoundMessage = "the name isn't registered :("

// Identity is how a connected account is greeted: either its ENS name or
// its shortened address. The only implementations are Name and
// FormattedAddress.
type Identity interface {
	String() string
	isIdentity()
}

// Name is a verified reverse-resolved ENS name
type Name string

// FormattedAddress is the shortened address shown when no name is set
type FormattedAddress string

func (n Name) String() string             { return string(n) }
func (f FormattedAddress) String() string { return string(f) }

func (Name) isIdentity()             {}
func (FormattedAddress) isIdentity() {}

// LookupResult is the outcome of one forward lookup. The only
// implementations are Resolved and NotFound.
type LookupResult interface {
	String() string
	isLookupResult()
}

// Resolved is a name that resolved to a non-zero address
type Resolved struct {
	Name    string
	Address common.Address
}

// NotFound is a name that could not be resolved
type NotFound struct {
	Name    string
	Message string
	Err     error
}

func (r Resolved) String() string { return r.Address.Hex() }
func (n NotFound) String() string { return n.Message }

func (Resolved) isLookupResult() {}
func (NotFound) isLookupResult() {}
