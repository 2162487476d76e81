// Command server wires the attestation gateway: stores, payment
// collaborators, governance, the query engine, and the HTTP surface.
// Business logic lives in the internal services; main stays assembly only.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"attestgate/internal/events"
	governancehandler "attestgate/internal/governance/handler"
	governanceservice "attestgate/internal/governance/service"
	governancestore "attestgate/internal/governance/store"
	httpapi "attestgate/internal/http"
	"attestgate/internal/payment/converter"
	"attestgate/internal/payment/memory"
	"attestgate/internal/payment/ports"
	"attestgate/internal/payment/pricecache"
	"attestgate/internal/payment/settlement"
	"attestgate/internal/platform/config"
	"attestgate/internal/platform/httpserver"
	"attestgate/internal/platform/logger"
	"attestgate/internal/platform/postgres"
	platformredis "attestgate/internal/platform/redis"
	queryhandler "attestgate/internal/query/handler"
	queryservice "attestgate/internal/query/service"
	registryhandler "attestgate/internal/registry/handler"
	registryservice "attestgate/internal/registry/service"
	registrystore "attestgate/internal/registry/store"
	"attestgate/internal/token"
	"attestgate/internal/upgrade"
	upgradehandler "attestgate/internal/upgrade/handler"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
	"attestgate/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	admin, err := domain.ParseAddress(cfg.AdminAddress)
	if err != nil {
		return err
	}
	treasury, err := domain.ParseAddress(cfg.TreasuryAddress)
	if err != nil {
		return err
	}
	spender, err := domain.ParseAddress(cfg.SpenderAddress)
	if err != nil {
		return err
	}

	// Storage: PostgreSQL when configured, in-memory otherwise.
	var (
		govStore governancestore.Store
		regStore registrystore.Store
		runner   tx.Runner
	)
	checks := map[string]httpapi.HealthCheck{}
	if cfg.PostgresURL != "" {
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()

		gov := governancestore.NewPostgresStore(db)
		if err := gov.EnsureSchema(ctx); err != nil {
			return err
		}
		reg := registrystore.NewPostgresStore(db)
		if err := reg.EnsureSchema(ctx); err != nil {
			return err
		}
		govStore, regStore = gov, reg
		runner = tx.NewPostgresRunner(db)
		checks["postgres"] = db.PingContext
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		govStore = governancestore.NewMemoryStore()
		regStore = registrystore.NewMemoryStore()
		runner = tx.NewMutexRunner()
	}

	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var redisClient *goredis.Client
	if rdb != nil {
		defer rdb.Close()
		redisClient = rdb.Client
		checks["redis"] = rdb.Health
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := events.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer kafka.Close()
		publisher = kafka
	}

	// Payment collaborators. The in-process ledger and oracle stand in for
	// the external token and price systems in local mode.
	ledger := memory.NewTokenLedger()
	var prices ports.PriceSource = memory.NewPriceSource()
	prices = pricecache.New(prices, redisClient, cfg.Redis.PriceTTL, log)

	govService := governanceservice.New(govStore, runner, ledger, prices, publisher, log)
	if err := govService.Initialize(ctx, admin, treasury); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			return err
		}
		log.Info("registry already initialized, keeping existing state")
	}

	conv := converter.New(govService, ledger, prices)
	settler := settlement.New(ledger, spender, log)

	coordinator := upgrade.NewCoordinator(govService, publisher, log)
	coordinator.Register(upgrade.NewStandardLogic("v1", govService, conv))

	regService := registryservice.New(regStore, runner, govService, publisher, log)
	qryService := queryservice.New(regStore, govService, coordinator, settler, publisher, log)

	tokens := token.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)
	router := httpapi.NewRouter(log, tokens, checks,
		registryhandler.New(regService, log),
		queryhandler.New(qryService, log),
		governancehandler.New(govService, log),
		upgradehandler.New(coordinator, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting attestation gateway",
			"addr", cfg.Addr,
			"logic", coordinator.ActiveVersion(),
			"fee_spender", settler.Spender(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
