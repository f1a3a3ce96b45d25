package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ens-lookup/config"
	"ens-lookup/ens"
	"ens-lookup/helpers"
	"ens-lookup/rpc"
	"ens-lookup/wallet"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// -------------------- CLI --------------------

var (
	configPath  string
	rpcFlag     string
	networkFlag string
	chainIDFlag int64
	accountFlag string
	logFlag     bool
)

var rootCmd = &cobra.Command{
	Use:   "ens-lookup",
	Short: "Connect a wallet and resolve ENS names from the terminal",
	Long: `ens-lookup connects to a wallet-capable Ethereum JSON-RPC endpoint,
checks that it is attached to the expected network and greets the active
account by its ENS name (or its shortened address when it has none).
Once connected, type an ENS name to see the address it resolves to.

The endpoint is read from the config file, ETH_RPC_URL or --rpc.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		boot, bootErr := wallet.New(cfg, nil)
		m := newModel(cfg, boot, bootErr)
		p := tea.NewProgram(&m, tea.WithAltScreen())
		_, err = p.Run()
		m.shutdown()
		return err
	},
}

var resolveCmd = &cobra.Command{
	Use:     "resolve <name>",
	Short:   "Resolve an ENS name to its address",
	Example: "  ens-lookup resolve vitalik.eth",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		resolver, closeFn, err := dialResolver(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeouts.Lookup.Std())
		defer cancel()

		switch r := resolver.ResolveForward(ctx, args[0]).(type) {
		case ens.Resolved:
			fmt.Fprintln(cmd.OutOrStdout(), r.Address.Hex())
			return nil
		case ens.NotFound:
			cliLogger().Debug("lookup failed", "name", r.Name, "err", r.Err)
			return fmt.Errorf("%s: %s", r.Name, r.Message)
		}
		return nil
	},
}

var reverseCmd = &cobra.Command{
	Use:     "reverse <address>",
	Short:   "Show the ENS name of an address, or its shortened form",
	Example: "  ens-lookup reverse 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !helpers.IsValidEthAddress(args[0]) {
			return fmt.Errorf("%q is not an address", args[0])
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		resolver, closeFn, err := dialResolver(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeouts.Lookup.Std())
		defer cancel()

		id, err := resolver.Identify(ctx, common.HexToAddress(args[0]))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id.String())
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := config.Save(configPath, cfg); err != nil {
			return err
		}
		cliLogger().Info("config written", "path", configPath)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultPath(), "config file")
	flags.StringVar(&rpcFlag, "rpc", "", "wallet JSON-RPC endpoint (overrides ETH_RPC_URL)")
	flags.StringVar(&networkFlag, "network", "", "expected network: mainnet, goerli, sepolia, holesky")
	flags.Int64Var(&chainIDFlag, "chain-id", 0, "expected chain id for networks not in the known list")
	flags.StringVar(&accountFlag, "account", "", "watch-only account instead of asking the wallet")
	flags.BoolVar(&logFlag, "log", false, "show the log panel")

	rootCmd.AddCommand(resolveCmd, reverseCmd, initCmd)
}

// loadConfig reads the config file and environment, then applies flags
// that were set explicitly
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("rpc") {
		cfg.RPCURL = rpcFlag
	}
	if flags.Changed("network") {
		cfg.Network = networkFlag
		cfg.ChainID = 0
	}
	if flags.Changed("chain-id") {
		cfg.ChainID = chainIDFlag
		if !flags.Changed("network") {
			cfg.Network = ""
		}
	}
	if flags.Changed("account") {
		cfg.Account = accountFlag
	}
	if flags.Changed("log") {
		cfg.Logger = logFlag
	}
	return cfg, cfg.Normalize()
}

// dialResolver connects to the endpoint for one-shot lookups. A chain id
// mismatch is only a warning here since no account is involved.
func dialResolver(ctx context.Context, cfg config.Config) (*ens.Resolver, func(), error) {
	if cfg.RPCURL == "" {
		return nil, nil, fmt.Errorf("%w: no RPC URL (set ETH_RPC_URL)", wallet.ErrConnectionFailed)
	}
	logger := cliLogger()

	result := rpc.ConnectWithTimeout(ctx, cfg.RPCURL, cfg.Timeouts.Connect.Std())
	if result.Error != nil {
		return nil, nil, fmt.Errorf("%w: %w", wallet.ErrConnectionFailed, result.Error)
	}
	client := result.Client

	chainCtx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Lookup.Std())
	defer cancel()
	if id, err := client.ChainID(chainCtx); err != nil {
		logger.Warn("could not read chain id", "err", err)
	} else if id.Int64() != cfg.ChainID {
		logger.Warn("unexpected network", "expected", cfg.ChainID, "actual", id.Int64())
	}

	return ens.NewResolver(client, common.HexToAddress(cfg.Registry)), client.Close, nil
}

func cliLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           log.InfoLevel,
	})
}
