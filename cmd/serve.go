package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hiero-ledger/relay-lockgate/core/lock"
	"github.com/hiero-ledger/relay-lockgate/core/lockmetrics"
	"github.com/hiero-ledger/relay-lockgate/core/ratelimit"
	"github.com/hiero-ledger/relay-lockgate/domains/health"
	"github.com/hiero-ledger/relay-lockgate/infrastructure/valkey"
	"github.com/hiero-ledger/relay-lockgate/internal/identity"
	"github.com/hiero-ledger/relay-lockgate/internal/kvstore"
	"github.com/hiero-ledger/relay-lockgate/internal/rpc/dispatcher"
	"github.com/hiero-ledger/relay-lockgate/internal/rpc/txlock"
	pkgError "github.com/hiero-ledger/relay-lockgate/pkg/error"
	"github.com/hiero-ledger/relay-lockgate/pkg/utils"
	"github.com/hiero-ledger/relay-lockgate/ui/rest"
	"github.com/hiero-ledger/relay-lockgate/ui/rest/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON-RPC gateway",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	serverID := identity.Resolve(cfg.App.ServerID)
	logrus.WithField("serverId", serverID).Info("starting relay-lockgate")

	registry := prometheus.NewRegistry()
	metrics := lockmetrics.New(registry)

	store, vkClient := buildStore()

	strategy := lock.Select(context.Background(), store, lock.FactoryOptions{
		RedisEnabled:         cfg.Valkey.Enabled,
		KeyPrefix:            cfg.Valkey.KeyPrefix,
		MaxHold:              cfg.Lock.MaxHold,
		QueuePollInterval:    cfg.Lock.QueuePollInterval,
		HeartbeatMissedCount: cfg.Lock.HeartbeatMissedCount,
		LocalMaxEntries:      cfg.Lock.LocalMaxEntries,
		LocalTTL:             cfg.Lock.LocalTTL,
	}, metrics)

	janitor := lock.NewJanitor(strategy, cfg.Lock.JanitorWorkers, cfg.Lock.JanitorSweepInterval)
	defer janitor.Stop()

	facade := txlock.New(janitor, cfg.App.ChainID, cfg.Lock.AcquireTimeout)

	limiter := buildLimiter(store)

	reg := dispatcher.NewRegistry()
	dispatcher.RegisterStandardMethods(reg)
	registerSendRawTransaction(reg, facade, cfg.Dispatch.RawTxSizeLimit)
	capCallData(reg, "eth_call", cfg.Dispatch.CallDataSizeLimit)
	capCallData(reg, "eth_estimateGas", cfg.Dispatch.CallDataSizeLimit)

	healthUsecase := health.New(store, janitor)

	app := buildFiberApp(registry, reg, limiter, healthUsecase)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdown
		logrus.Info("received termination signal, shutting down gracefully")
		if err := app.Shutdown(); err != nil {
			logrus.WithError(err).Error("error during fiber shutdown")
		}
		if vkClient != nil {
			vkClient.Close()
		}
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.WithError(err).Fatal("failed to start server")
	}
}

func buildStore() (kvstore.Store, *valkey.Client) {
	if !cfg.Valkey.Enabled {
		logrus.Info("valkey disabled, running with the in-memory store (local lock strategy, local rate limiting only)")
		return kvstore.NewMemoryAdapter(), nil
	}

	vkClient, err := valkey.NewClient(valkey.Config{
		Address:   cfg.Valkey.Address,
		Password:  cfg.Valkey.Password,
		DB:        cfg.Valkey.DB,
		KeyPrefix: cfg.Valkey.KeyPrefix,
	})
	if err != nil {
		logrus.WithError(err).Warn("could not connect to valkey, falling back to the in-memory store")
		return kvstore.NewMemoryAdapter(), nil
	}

	return kvstore.NewValkeyAdapter(vkClient), vkClient
}

func buildLimiter(store kvstore.Store) ratelimit.Limiter {
	if cfg.RateLimit.Disabled {
		return ratelimit.Disabled{}
	}
	if cfg.Valkey.Enabled {
		return ratelimit.NewSharedLimiter(store, cfg.Valkey.KeyPrefix, cfg.RateLimit.Duration)
	}
	return ratelimit.NewLocalLimiter(cfg.RateLimit.Duration)
}

// registerSendRawTransaction is the one standard method whose business
// logic the facade actually drives: it recovers the sender and runs the
// (still stubbed) submission through the per-sender lock, rejecting a
// payload past the configured size limit before it ever reaches the lock.
func registerSendRawTransaction(reg *dispatcher.Registry, facade *txlock.Facade, rawTxSizeLimit int) {
	reg.Register(dispatcher.Method{
		Name:   "eth_sendRawTransaction",
		Layout: dispatcher.LayoutDefault,
		Validate: func(params []any) error {
			if len(params) < 1 {
				return pkgError.MissingParameterError("Missing required parameter: raw transaction")
			}
			raw, ok := params[0].(string)
			if !ok {
				return pkgError.ValidationError("Invalid parameter: raw transaction must be a hex string")
			}
			if len(raw) > rawTxSizeLimit {
				return pkgError.ValidationError(fmt.Sprintf(
					"Invalid parameter: raw transaction of %s exceeds the %s limit",
					humanize.Bytes(uint64(len(raw))), humanize.Bytes(uint64(rawTxSizeLimit))))
			}
			return nil
		},
		Handler: func(ctx context.Context, args []any, _ dispatcher.RequestContext) (any, error) {
			rawHex, _ := args[0].(string)
			raw, err := decodeHex(rawHex)
			if err != nil {
				return nil, pkgError.ValidationError("Invalid parameter: raw transaction is not valid hex")
			}

			return facade.RunExclusive(ctx, raw, func(ctx context.Context) (any, error) {
				return nil, pkgError.MethodNotImplementedError("eth_sendRawTransaction submission is registered but not implemented")
			})
		},
	})
}

// capCallData rejects an eth_call/eth_estimateGas transaction object whose
// data/input field exceeds the configured calldata size limit, wrapping
// whatever validation the stub already carries.
func capCallData(reg *dispatcher.Registry, method string, limit int) {
	m, ok := reg.Lookup(method)
	if !ok {
		return
	}
	inner := m.Validate
	m.Validate = func(params []any) error {
		if inner != nil {
			if err := inner(params); err != nil {
				return err
			}
		}
		if len(params) < 1 {
			return nil
		}
		obj, ok := params[0].(map[string]any)
		if !ok {
			return nil
		}
		for _, field := range []string{"data", "input"} {
			raw, ok := obj[field].(string)
			if !ok {
				continue
			}
			if len(raw) > limit {
				return pkgError.ValidationError(fmt.Sprintf(
					"Invalid parameter: %s.%s of %s exceeds the %s calldata limit",
					method, field, humanize.Bytes(uint64(len(raw))), humanize.Bytes(uint64(limit))))
			}
		}
		return nil
	}
	reg.Register(m)
}

func buildFiberApp(registry *prometheus.Registry, reg *dispatcher.Registry, limiter ratelimit.Limiter, healthUsecase health.IHealthUsecase) *fiber.App {
	app := fiber.New(fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
	})

	app.Use(middleware.Recovery())
	if cfg.App.Debug {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RateLimit(limiter, cfg.RateLimit.DefaultLimit))

	rest.InitRestHealth(app, healthUsecase)
	app.Get("/metrics", adaptPromHandler(registry))

	rest.InitJSONRPC(app, &rest.JSONRPCHandler{
		Registry:         reg,
		Limiter:          limiter,
		DefaultRateLimit: cfg.RateLimit.DefaultLimit,
		ValidStatusCode:  cfg.App.OnValidJsonRpcResponseStatusCode,
		BatchOptions: dispatcher.BatchOptions{
			Enabled:           cfg.Dispatch.BatchEnabled,
			MaxSize:           cfg.Dispatch.BatchMaxSize,
			DisallowedMethods: toSet(cfg.Dispatch.BatchDisallowed),
		},
	})

	app.Use(func(c *fiber.Ctx) error {
		notFound := pkgError.NotFoundError("no such route: " + c.Path())
		return c.Status(notFound.StatusCode()).JSON(utils.ResponseData{
			Status:  notFound.StatusCode(),
			Code:    notFound.ErrCode(),
			Message: notFound.Error(),
		})
	})

	return app
}

func adaptPromHandler(registry *prometheus.Registry) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
