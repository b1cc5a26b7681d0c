// Command server runs the milestone funding ledger HTTP service.
//
// Business logic lives in the internal service packages; main only wires
// dependencies and owns the process lifecycle.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"fundledger/internal/admin"
	adminhandler "fundledger/internal/admin/handler"
	"fundledger/internal/escrow"
	httpapi "fundledger/internal/http"
	"fundledger/internal/ledger"
	"fundledger/internal/milestone"
	milestonehandler "fundledger/internal/milestone/handler"
	milestonemetrics "fundledger/internal/milestone/metrics"
	"fundledger/internal/platform/config"
	"fundledger/internal/platform/httpserver"
	"fundledger/internal/platform/logger"
	"fundledger/internal/platform/metrics"
	"fundledger/internal/project"
	"fundledger/internal/project/cache"
	projecthandler "fundledger/internal/project/handler"
	projectmetrics "fundledger/internal/project/metrics"
	"fundledger/internal/researcher"
	researcherhandler "fundledger/internal/researcher/handler"
	"fundledger/internal/token"
	"fundledger/pkg/platform/audit"
	"fundledger/pkg/platform/audit/publisher"
	auditkafka "fundledger/pkg/platform/audit/store/kafka"
	auditmemory "fundledger/pkg/platform/audit/store/memory"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Researcher registry: postgres when configured, memory otherwise.
	var researcherStore researcher.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		pg := researcher.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("failed to ensure researcher schema", "error", err.Error())
			os.Exit(1)
		}
		researcherStore = pg
		log.Info("researcher registry backed by postgres")
	} else {
		researcherStore = researcher.NewInMemoryStore()
	}

	// Ledger events: kafka when brokers are configured, memory otherwise.
	var sink audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := auditkafka.NewSink(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("failed to connect kafka sink", "error", err.Error())
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("ledger events published to kafka", "topic", cfg.KafkaTopic)
	} else {
		sink = auditmemory.NewInMemoryStore()
	}

	var pubOpts []publisher.Option
	if cfg.AuditBuffer > 0 {
		pubOpts = append(pubOpts, publisher.WithAsyncBuffer(cfg.AuditBuffer))
	}
	events := publisher.NewPublisher(sink, pubOpts...)
	defer events.Close()

	// Single serialized transaction runner shared by every service keeps
	// cross-entity operations atomic.
	tx := ledger.NewTx()
	treasury := escrow.NewMemoryTreasury()

	engine, err := escrow.NewEngine(treasury, escrow.WithLogger(log))
	if err != nil {
		log.Error("failed to build payout engine", "error", err.Error())
		os.Exit(1)
	}

	adminStore := admin.NewInMemoryStore(cfg.Owner, cfg.FeeRecipient)
	adminSvc, err := admin.NewService(adminStore, treasury, cfg.Owner, tx,
		admin.WithLogger(log), admin.WithEventEmitter(events))
	if err != nil {
		log.Error("failed to build admin service", "error", err.Error())
		os.Exit(1)
	}

	researcherSvc, err := researcher.NewService(researcherStore, tx,
		researcher.WithLogger(log), researcher.WithEventEmitter(events))
	if err != nil {
		log.Error("failed to build researcher service", "error", err.Error())
		os.Exit(1)
	}

	projectStore := project.NewInMemoryStore()
	projectOpts := []project.Option{
		project.WithLogger(log),
		project.WithEventEmitter(events),
		project.WithMetrics(projectmetrics.New(prometheus.DefaultRegisterer)),
	}

	var viewCache *cache.ViewCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		viewCache = cache.New(redisClient, cache.DefaultTTL)
		projectOpts = append(projectOpts, project.WithViewCache(viewCache))
		log.Info("project view cache enabled", "redis", cfg.RedisAddr)
	}

	projectSvc, err := project.NewService(projectStore, researcherStore, treasury,
		ledger.NewSequence(), tx, projectOpts...)
	if err != nil {
		log.Error("failed to build project service", "error", err.Error())
		os.Exit(1)
	}

	milestoneOpts := []milestone.Option{
		milestone.WithLogger(log),
		milestone.WithEventEmitter(events),
		milestone.WithMetrics(milestonemetrics.New(prometheus.DefaultRegisterer)),
	}
	if viewCache != nil {
		milestoneOpts = append(milestoneOpts, milestone.WithProjectViewInvalidator(viewCache))
	}
	milestoneSvc, err := milestone.NewService(milestone.NewInMemoryStore(), projectStore,
		researcherStore, adminStore, adminStore, engine, ledger.NewSequence(), tx,
		milestoneOpts...)
	if err != nil {
		log.Error("failed to build milestone service", "error", err.Error())
		os.Exit(1)
	}

	tokens := token.NewService(cfg.JWTSigningKey, "fundledger")

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		Metrics:        metrics.New(prometheus.DefaultRegisterer),
		Validator:      tokens,
		Researchers:    researcherhandler.New(researcherSvc, log),
		Projects:       projecthandler.New(projectSvc, log),
		Milestones:     milestonehandler.New(milestoneSvc, log),
		Admin:          adminhandler.New(adminSvc, log),
		ProjectCount:   projectSvc,
		MilestoneCount: milestoneSvc,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting fundledger", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
