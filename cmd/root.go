// Package cmd wires the gateway's command-line surface: flag parsing,
// configuration loading/validation, and the long-running serve command.
package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hiero-ledger/relay-lockgate/core/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "relay-lockgate",
	Short: "JSON-RPC gateway with per-sender serialization and distributed locking",
	Long: `relay-lockgate exposes an Ethereum-compatible JSON-RPC surface in
front of a non-EVM backend, serializing transactions per sender through a
local or distributed lock and rate limiting every request by IP and method.`,
}

func init() {
	time.Local = time.UTC
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	loaded, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	cfg = loaded

	initFlags()
	cobra.OnInitialize(initLogging, validateConfig)
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(&cfg.App.Port, "port", "p", cfg.App.Port,
		`HTTP port to listen on --port <number> | example: --port=7546`)
	rootCmd.PersistentFlags().BoolVarP(&cfg.App.Debug, "debug", "d", cfg.App.Debug,
		`enable debug logging --debug <true/false> | example: --debug=true`)
	rootCmd.PersistentFlags().StringVarP(&cfg.Valkey.Address, "valkey-address", "", cfg.Valkey.Address,
		`Valkey/Redis address --valkey-address <host:port> | example: --valkey-address=localhost:6379`)
	rootCmd.PersistentFlags().BoolVarP(&cfg.Valkey.Enabled, "valkey-enabled", "", cfg.Valkey.Enabled,
		`enable the distributed lock/rate-limit backend --valkey-enabled <true/false>`)
	rootCmd.PersistentFlags().IntVarP(&cfg.RateLimit.DefaultLimit, "rate-limit", "", cfg.RateLimit.DefaultLimit,
		`default requests-per-window limit per (ip, method) --rate-limit <number>`)
	rootCmd.PersistentFlags().IntVarP(&cfg.Dispatch.BatchMaxSize, "batch-max-size", "", cfg.Dispatch.BatchMaxSize,
		`maximum entries accepted in a single JSON-RPC batch --batch-max-size <number>`)
}

func initLogging() {
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func validateConfig() {
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("command failed")
	}
}
