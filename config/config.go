package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultRegistry is the ENS registry address. It is deployed at the same
// address on mainnet and the public testnets.
const DefaultRegistry = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

// FileName is the config file name inside the user's home directory
const FileName = ".ens-lookup-config.json"

// Config represents the application configuration
type Config struct {
	RPCURL   string   `json:"rpc_url" env:"ETH_RPC_URL"`
	Network  string   `json:"network" env:"ENS_LOOKUP_NETWORK"`
	ChainID  int64    `json:"chain_id,omitempty" env:"ENS_LOOKUP_CHAIN_ID"`
	Account  string   `json:"account,omitempty" env:"ENS_LOOKUP_ACCOUNT"`
	Registry string   `json:"registry,omitempty" env:"ENS_LOOKUP_REGISTRY"`
	Logger   bool     `json:"logger" env:"ENS_LOOKUP_LOGGER"`
	Timeouts Timeouts `json:"timeouts"`
}

// Timeouts bounds every suspending call made against the RPC endpoint
type Timeouts struct {
	Connect  Duration `json:"connect" env:"ENS_LOOKUP_CONNECT_TIMEOUT"`
	Approval Duration `json:"approval" env:"ENS_LOOKUP_APPROVAL_TIMEOUT"`
	Lookup   Duration `json:"lookup" env:"ENS_LOOKUP_LOOKUP_TIMEOUT"`
}

// Duration is a time.Duration that reads and writes as "8s" style strings
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler, used by env parsing
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// KnownNetworks maps network names to chain ids
var KnownNetworks = map[string]int64{
	"mainnet": 1,
	"goerli":  5,
	"sepolia": 11155111,
	"holesky": 17000,
}

// DefaultNetwork is used when neither a network name nor a chain id is set
const DefaultNetwork = "goerli"

// DefaultConfig returns a new configuration with sensible defaults. The
// network is left empty so Normalize can derive it from either field.
func DefaultConfig() Config {
	return Config{
		Registry: DefaultRegistry,
		Timeouts: Timeouts{
			Connect:  Duration(8 * time.Second),
			Approval: Duration(2 * time.Minute),
			Lookup:   Duration(12 * time.Second),
		},
	}
}

// DefaultPath returns the config path inside the user's home directory
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, FileName)
}

// Load reads the config from the specified path and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
		}
	}

	network, chainID := cfg.Network, cfg.ChainID
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	// an env override of one half of the network replaces the saved pair
	networkChanged, chainChanged := cfg.Network != network, cfg.ChainID != chainID
	switch {
	case networkChanged && !chainChanged:
		cfg.ChainID = 0
	case chainChanged && !networkChanged:
		cfg.Network = ""
	}

	return cfg, cfg.Normalize()
}

// Save writes the config to the specified path
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Normalize fills in the chain id from the network name (or the other way
// around) and rejects combinations that cannot be satisfied.
func (c *Config) Normalize() error {
	c.Network = strings.ToLower(strings.TrimSpace(c.Network))
	c.RPCURL = strings.TrimSpace(c.RPCURL)
	c.Account = strings.TrimSpace(c.Account)

	known, ok := KnownNetworks[c.Network]
	switch {
	case c.Network == "" && c.ChainID == 0:
		c.Network, c.ChainID = DefaultNetwork, KnownNetworks[DefaultNetwork]
	case c.Network == "":
		c.Network = NetworkName(c.ChainID)
	case ok && c.ChainID == 0:
		c.ChainID = known
	case ok && c.ChainID != known:
		return fmt.Errorf("network %q has chain id %d, not %d", c.Network, known, c.ChainID)
	case !ok && c.ChainID == 0:
		return fmt.Errorf("unknown network %q: set chain_id", c.Network)
	}

	if c.Registry == "" {
		c.Registry = DefaultRegistry
	}

	def := DefaultConfig().Timeouts
	if c.Timeouts.Connect <= 0 {
		c.Timeouts.Connect = def.Connect
	}
	if c.Timeouts.Approval <= 0 {
		c.Timeouts.Approval = def.Approval
	}
	if c.Timeouts.Lookup <= 0 {
		c.Timeouts.Lookup = def.Lookup
	}
	return nil
}

// NetworkName returns the known name for a chain id, or "chain-<id>"
func NetworkName(chainID int64) string {
	for name, id := range KnownNetworks {
		if id == chainID {
			return name
		}
	}
	return fmt.Sprintf("chain-%d", chainID)
}
