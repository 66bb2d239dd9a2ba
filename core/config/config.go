// Package config loads the gateway's configuration from environment
// variables into a single typed Config, following the options table
// documented for the relay's lock, rate-limit and dispatcher layers.
package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App       AppConfig
	Valkey    ValkeyConfig
	Lock      LockConfig
	RateLimit RateLimitConfig
	Dispatch  DispatchConfig
}

type AppConfig struct {
	Port                             string
	Environment                      string
	Debug                            bool
	ServerID                         string
	OnValidJsonRpcResponseStatusCode int
	ChainID                          uint64
}

type ValkeyConfig struct {
	Enabled   bool
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type LockConfig struct {
	MaxHold               time.Duration
	QueuePollInterval     time.Duration
	HeartbeatMissedCount  int
	AcquireTimeout        time.Duration
	LocalMaxEntries       int
	LocalTTL              time.Duration
	JanitorWorkers        int
	JanitorSweepInterval  time.Duration
}

type RateLimitConfig struct {
	DefaultLimit int
	Duration     time.Duration
	Disabled     bool
}

type DispatchConfig struct {
	BatchEnabled        bool
	BatchMaxSize        int
	BatchDisallowed     []string
	CallDataSizeLimit   int
	RawTxSizeLimit      int
}

// Global provides process-wide access to the loaded configuration, set
// once at startup by LoadConfig.
var Global *Config

// LoadConfig loads configuration from environment variables (optionally
// seeded from a local .env file) applying the documented defaults.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Port:                             getEnv("APP_PORT", "7546"),
			Environment:                      getEnv("APP_ENV", "development"),
			Debug:                            getEnvBool("APP_DEBUG", false),
			ServerID:                         getEnv("SERVER_ID", ""),
			OnValidJsonRpcResponseStatusCode: getEnvInt("ON_VALID_JSON_RPC_RESPONSE_STATUS_CODE", 200),
			ChainID:                          uint64(getEnvInt("CHAIN_ID", 295)),
		},
		Valkey: ValkeyConfig{
			Enabled:   getEnvBool("REDIS_ENABLED", true),
			Address:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
			Password:  getEnv("VALKEY_PASSWORD", ""),
			DB:        getEnvInt("VALKEY_DB", 0),
			KeyPrefix: getEnv("VALKEY_KEY_PREFIX", "relay:"),
		},
		Lock: LockConfig{
			MaxHold:              getEnvMillis("LOCK_MAX_HOLD_MS", 30*time.Second),
			QueuePollInterval:    getEnvMillis("LOCK_QUEUE_POLL_INTERVAL_MS", 200*time.Millisecond),
			HeartbeatMissedCount: getEnvInt("LOCK_HEARTBEAT_MISSED_COUNT", 2),
			AcquireTimeout:       getEnvMillis("LOCK_ACQUIRE_TIMEOUT_MS", 30*time.Second),
			LocalMaxEntries:      getEnvInt("LOCAL_LOCK_MAX_ENTRIES", 1000),
			LocalTTL:             getEnvMillis("LOCAL_LOCK_TTL_MS", 5*time.Minute),
			JanitorWorkers:       getEnvInt("LOCK_JANITOR_WORKERS", 8),
			JanitorSweepInterval: getEnvMillis("LOCK_JANITOR_SWEEP_INTERVAL_MS", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			DefaultLimit: getEnvInt("DEFAULT_RATE_LIMIT", 200),
			Duration:     getEnvMillis("LIMIT_DURATION", 60*time.Second),
			Disabled:     getEnvBool("RATE_LIMIT_DISABLED", false),
		},
		Dispatch: DispatchConfig{
			BatchEnabled: getEnvBool("BATCH_REQUESTS_ENABLED", true),
			BatchMaxSize: getEnvInt("BATCH_REQUESTS_MAX_SIZE", 100),
			BatchDisallowed: getEnvStringSlice("BATCH_REQUESTS_DISALLOWED_METHODS", []string{
				"eth_newFilter",
				"eth_newBlockFilter",
				"eth_newPendingTransactionFilter",
				"eth_getFilterChanges",
				"eth_getFilterLogs",
				"eth_uninstallFilter",
			}),
			CallDataSizeLimit: getEnvInt("CALL_DATA_SIZE_LIMIT", 131072),
			RawTxSizeLimit:    getEnvInt("SEND_RAW_TRANSACTION_SIZE_LIMIT", 133120),
		},
	}

	Global = cfg
	return cfg, nil
}
