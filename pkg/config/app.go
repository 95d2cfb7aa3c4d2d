package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

// Bundle relay backends selectable via relay_backend.
const (
	RelayBackendRest        = "rest"
	RelayBackendBlockEngine = "blockengine"
)

// App is the process-level configuration for the bot backend.
// The JSON shape matches the deployed config files; every key can also be
// overridden through PUMPSWAP_* environment variables.
type App struct {
	TelegramToken       string  `mapstructure:"telegram_token"`
	SolanaRPCURL        string  `mapstructure:"solana_rpc_url"`
	JitoBundleURL       string  `mapstructure:"jito_bundle_url"`
	PumpFunProgramID    string  `mapstructure:"pump_fun_program_id"`
	FeeAddress          string  `mapstructure:"fee_address"`
	CreationFee         float64 `mapstructure:"creation_fee"`
	TradingFee          float64 `mapstructure:"trading_fee"`
	FeePercentage       float64 `mapstructure:"fee_percentage"`
	MinSolAmount        float64 `mapstructure:"min_sol_amount"`
	JitoTipAmount       float64 `mapstructure:"jito_tip_amount"`
	JitoTipAccount      string  `mapstructure:"jito_tip_account"`
	RelayBackend        string  `mapstructure:"relay_backend"`
	MaxWalletsPerBundle int     `mapstructure:"max_wallets_per_bundle"`
	EncryptionKey       string  `mapstructure:"encryption_key"`
	DatabaseURL         string  `mapstructure:"database_url"`
	APIListenAddr       string  `mapstructure:"api_listen_addr"`
	RequireSocialLinks  bool    `mapstructure:"require_social_links"`
	LogLevel            string  `mapstructure:"log_level"`
}

// DefaultApp returns the mainnet defaults used when a key is absent from
// the config file.
func DefaultApp() App {
	return App{
		SolanaRPCURL:        DefaultRPCURL(NetworkMainnet),
		JitoBundleURL:       "https://mainnet.block-engine.jito.wtf/api/v1/bundles",
		PumpFunProgramID:    "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P",
		FeeAddress:          "CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM",
		CreationFee:         0.05,
		TradingFee:          0.005,
		FeePercentage:       0.008,
		MinSolAmount:        0.02,
		JitoTipAmount:       0.00001,
		RelayBackend:        RelayBackendRest,
		MaxWalletsPerBundle: 16,
		APIListenAddr:       "127.0.0.1:8080",
		RequireSocialLinks:  true,
		LogLevel:            "info",
	}
}

// LoadApp reads the JSON config at path, layering env overrides on top of
// the defaults. Path may be empty, in which case only defaults and env
// variables apply.
func LoadApp(path string) (App, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("PUMPSWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultApp()
	v.SetDefault("solana_rpc_url", defaults.SolanaRPCURL)
	v.SetDefault("jito_bundle_url", defaults.JitoBundleURL)
	v.SetDefault("pump_fun_program_id", defaults.PumpFunProgramID)
	v.SetDefault("fee_address", defaults.FeeAddress)
	v.SetDefault("creation_fee", defaults.CreationFee)
	v.SetDefault("trading_fee", defaults.TradingFee)
	v.SetDefault("fee_percentage", defaults.FeePercentage)
	v.SetDefault("min_sol_amount", defaults.MinSolAmount)
	v.SetDefault("jito_tip_amount", defaults.JitoTipAmount)
	v.SetDefault("relay_backend", defaults.RelayBackend)
	v.SetDefault("max_wallets_per_bundle", defaults.MaxWalletsPerBundle)
	v.SetDefault("api_listen_addr", defaults.APIListenAddr)
	v.SetDefault("require_social_links", defaults.RequireSocialLinks)
	v.SetDefault("log_level", defaults.LogLevel)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return App{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var app App
	if err := v.Unmarshal(&app); err != nil {
		return App{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := app.Validate(); err != nil {
		return App{}, err
	}
	return app, nil
}

// Validate checks the invariants that would otherwise surface as opaque
// runtime failures.
func (a App) Validate() error {
	if a.SolanaRPCURL == "" {
		return fmt.Errorf("solana_rpc_url is required")
	}
	if a.JitoBundleURL == "" {
		return fmt.Errorf("jito_bundle_url is required")
	}
	if a.TradingFee < 0 || a.TradingFee >= 1 {
		return fmt.Errorf("trading_fee must be in [0, 1)")
	}
	if a.MaxWalletsPerBundle < 1 || a.MaxWalletsPerBundle > 16 {
		return fmt.Errorf("max_wallets_per_bundle must be in [1, 16]")
	}
	if a.RelayBackend != RelayBackendRest && a.RelayBackend != RelayBackendBlockEngine {
		return fmt.Errorf("relay_backend must be %q or %q", RelayBackendRest, RelayBackendBlockEngine)
	}
	// A mistyped tip account would silently redirect tips, so fail here.
	if a.JitoTipAccount != "" {
		if _, err := solana.PublicKeyFromBase58(a.JitoTipAccount); err != nil {
			return fmt.Errorf("jito_tip_account is not a valid public key: %v", err)
		}
	}
	return nil
}

// RPC derives the runtime RPC configuration from the app config.
func (a App) RPC() RPCConfig {
	cfg := DefaultRPCConfig()
	cfg.Network = NetworkCustom
	cfg.RPCURL = a.SolanaRPCURL
	cfg.Timeout = 20 * time.Second
	return cfg
}
