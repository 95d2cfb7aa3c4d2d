package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ninja0404/pump-swap-bot/pkg/api"
	"github.com/ninja0404/pump-swap-bot/pkg/bot"
	"github.com/ninja0404/pump-swap-bot/pkg/bundle"
	"github.com/ninja0404/pump-swap-bot/pkg/config"
	"github.com/ninja0404/pump-swap-bot/pkg/curve"
	"github.com/ninja0404/pump-swap-bot/pkg/pump"
	"github.com/ninja0404/pump-swap-bot/pkg/rpc"
	"github.com/ninja0404/pump-swap-bot/pkg/session"
	"github.com/ninja0404/pump-swap-bot/pkg/wallet"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalOpts struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:   "pumpswapd",
		Short: "Launch-platform trading bot backend",
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to JSON config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error), overrides config")

	root.AddCommand(
		newServeCmd(opts),
		newChatCmd(opts),
		newWalletCmd(opts),
		newQuoteCmd(),
	)

	return root
}

type runtimeDeps struct {
	cfg     config.App
	log     zerolog.Logger
	wallets wallet.Store
	client  *pump.Client
}

func buildDeps(cmd *cobra.Command, opts *globalOpts) (*runtimeDeps, error) {
	cfg, err := config.LoadApp(opts.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	log := zerolog.New(cmd.ErrOrStderr()).
		Level(parseLogLevel(level)).
		With().Timestamp().Logger()

	cipher, err := wallet.NewCipher(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}

	var wallets wallet.Store
	if cfg.DatabaseURL != "" {
		wallets, err = wallet.NewPostgresStore(cfg.DatabaseURL, cipher)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn().Msg("no database_url configured, wallets will not survive restarts")
		wallets = wallet.NewMemoryStore(cipher)
	}

	rpcCfg := cfg.RPC()
	rpcCfg.Logger = log
	rpcClient := rpc.NewClient(rpcCfg)

	bundles, err := bundle.NewClient(newRelay(cfg),
		bundle.WithLogger(log),
		bundle.WithTip(cfg.JitoTipAccount, uint64(cfg.JitoTipAmount*1e9)),
		bundle.WithMaxTransactions(cfg.MaxWalletsPerBundle),
	)
	if err != nil {
		return nil, err
	}

	client, err := pump.NewClient(cfg, rpcClient, bundles, wallets, pump.WithLogger(log))
	if err != nil {
		return nil, err
	}

	return &runtimeDeps{cfg: cfg, log: log, wallets: wallets, client: client}, nil
}

// newRelay picks the bundle transport from config: the plain REST relay by
// default, or the Jito block engine when relay_backend says so.
func newRelay(cfg config.App) bundle.Relay {
	if cfg.RelayBackend == config.RelayBackendBlockEngine {
		return bundle.NewBlockEngineRelay(nil, "")
	}
	return bundle.NewRESTRelay(cfg.JitoBundleURL)
}

func newServeCmd(opts *globalOpts) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd, opts)
			if err != nil {
				return err
			}

			addr := deps.cfg.APIListenAddr
			if listenAddr != "" {
				addr = listenAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(deps.client, deps.log)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address, overrides config")
	return cmd
}

func newChatCmd(opts *globalOpts) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Drive the command layer from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd, opts)
			if err != nil {
				return err
			}
			d := bot.NewDispatcher(deps.client, deps.wallets, session.NewMemoryStore(), deps.log)
			return chatLoop(cmd.Context(), d, userID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "acting user id")
	return cmd
}

// chatLoop feeds lines to the dispatcher until EOF or an exit word.
func chatLoop(ctx context.Context, d *bot.Dispatcher, userID int64, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Type \"help\" for commands, \"exit\" to quit.")

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}
		fmt.Fprintln(out, d.HandleMessage(ctx, userID, line))
	}
	return scanner.Err()
}

func newWalletCmd(opts *globalOpts) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage trading wallets",
	}
	cmd.PersistentFlags().Int64Var(&userID, "user", 0, "owning user id")

	newCmd := &cobra.Command{
		Use:   "new [label]",
		Short: "Generate a wallet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd, opts)
			if err != nil {
				return err
			}
			label := ""
			if len(args) > 0 {
				label = args[0]
			}
			w, err := deps.wallets.Create(cmd.Context(), userID, label)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id=%s\naddress=%s\n", w.ID, w.PublicKey)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List wallets",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd, opts)
			if err != nil {
				return err
			}
			wallets, err := deps.wallets.List(cmd.Context(), userID)
			if err != nil {
				return err
			}
			for _, w := range wallets {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", w.ID, w.PublicKey, w.Label)
			}
			return nil
		},
	}

	cmd.AddCommand(newCmd, listCmd)
	return cmd
}

func newQuoteCmd() *cobra.Command {
	var (
		solReserve   float64
		tokenReserve float64
		fee          float64
	)

	cmd := &cobra.Command{
		Use:   "quote <buy|sell> <amount>",
		Short: "Price a trade against given curve reserves (offline)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var amount float64
			if _, err := fmt.Sscanf(args[1], "%g", &amount); err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}

			model, err := curve.NewModel(fee)
			if err != nil {
				return err
			}
			state := curve.State{SolReserve: solReserve, TokenReserve: tokenReserve}

			var q curve.Quote
			switch args[0] {
			case "buy":
				q, err = model.TokensForSol(amount, state)
			case "sell":
				q, err = model.SolForTokens(amount, state)
			default:
				return fmt.Errorf("unknown side %q, want buy or sell", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "out=%.9f raw=%.9f fee=%.9f\n", q.AmountOut, q.RawAmount, q.Fee)
			return nil
		},
	}

	cmd.Flags().Float64Var(&solReserve, "sol-reserve", 30, "curve SOL reserve")
	cmd.Flags().Float64Var(&tokenReserve, "token-reserve", 1073000000, "curve token reserve")
	cmd.Flags().Float64Var(&fee, "fee", 0.005, "trading fee fraction")
	return cmd
}

func parseLogLevel(lvl string) zerolog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
