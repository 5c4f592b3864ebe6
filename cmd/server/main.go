package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"heirloom/internal/admin"
	"heirloom/internal/audit"
	"heirloom/internal/claim"
	"heirloom/internal/custody"
	"heirloom/internal/kyc"
	"heirloom/internal/notification"
	"heirloom/internal/plan"
	"heirloom/internal/platform/config"
	"heirloom/internal/platform/httpserver"
	"heirloom/internal/platform/logger"
	"heirloom/internal/platform/metrics"
	pgschema "heirloom/internal/platform/postgres"
	redisclient "heirloom/internal/platform/redis"
	"heirloom/internal/token"
	httptransport "heirloom/internal/transport/http"
	"heirloom/internal/version"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		adminStore   admin.Store
		kycStore     kyc.Store
		planStore    plan.Store
		claimStore   claim.Store
		auditStore   audit.Store
		auditOutbox  audit.Outbox
		versionStore version.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		if err := pgschema.Ensure(ctx, db); err != nil {
			return err
		}

		adminStore = admin.NewPostgresStore(db)
		kycStore = kyc.NewPostgresStore(db)
		planStore = plan.NewPostgresStore(db)
		claimStore = claim.NewPostgresStore(db)
		pgAudit := audit.NewPostgresStore(db)
		auditStore, auditOutbox = pgAudit, pgAudit
		versionStore = version.NewPostgresStore(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		adminStore = admin.NewMemoryStore()
		kycStore = kyc.NewMemoryStore()
		planStore = plan.NewMemoryStore()
		claimStore = claim.NewMemoryStore()
		memAudit := audit.NewMemoryStore()
		auditStore, auditOutbox = memAudit, memAudit
		versionStore = version.NewMemoryStore()
	}

	m := metrics.New()
	publisher := audit.NewPublisher(auditStore)
	intents := custody.NewLogIntents(log)

	rdb, err := redisclient.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	notificationStore := notification.NewMemoryStore()
	notificationOpts := []notification.Option{notification.WithLogger(log)}
	if rdb != nil {
		notificationOpts = append(notificationOpts, notification.WithDispatcher(notification.NewRedisDispatcher(rdb.Client)))
	}
	notifier := notification.New(notificationStore, notificationOpts...)

	adminSvc := admin.New(adminStore,
		admin.WithLogger(log),
		admin.WithAuditPublisher(publisher),
		admin.WithMetrics(m),
	)
	kycSvc := kyc.New(kycStore, adminSvc,
		kyc.WithLogger(log),
		kyc.WithAuditPublisher(publisher),
		kyc.WithNotifier(notifier),
		kyc.WithMetrics(m),
	)
	planSvc := plan.New(planStore, kycSvc, adminSvc,
		plan.WithLogger(log),
		plan.WithAuditPublisher(publisher),
		plan.WithNotifier(notifier),
		plan.WithMetrics(m),
		plan.WithCustody(intents),
	)
	claimOpts := []claim.Option{
		claim.WithLogger(log),
		claim.WithAuditPublisher(publisher),
		claim.WithNotifier(notifier),
		claim.WithMetrics(m),
		claim.WithCustody(intents),
	}
	if cfg.ClaimRequiresKYC {
		claimOpts = append(claimOpts, claim.WithKYCRequirement(kycSvc))
	}
	claimSvc := claim.New(claimStore, planStore, adminSvc, claimOpts...)
	versionSvc := version.New(versionStore, adminSvc,
		version.WithLogger(log),
		version.WithAuditPublisher(publisher),
		version.WithMetrics(m),
	)
	auditSvc := audit.NewService(auditStore, adminSvc)

	var health httptransport.HealthChecker
	if rdb != nil {
		health = rdb
	}

	handler := httptransport.NewHandler(log, planSvc, claimSvc, kycSvc, adminSvc, auditSvc, versionSvc, notifier, health)
	router := httptransport.NewRouter(handler, token.NewJWTService(cfg.JWTSigningKey))
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting heirloom server", "addr", cfg.Addr)
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

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := kgo.NewClient(
			kgo.SeedBrokers(cfg.Kafka.Brokers...),
			kgo.DefaultProduceTopic(cfg.Kafka.AuditTopic),
		)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaClient.Close()
		if err := audit.EnsureTopic(ctx, kafkaClient, cfg.Kafka.AuditTopic); err != nil {
			return err
		}

		worker := audit.NewOutboxWorker(auditOutbox, kafkaClient, cfg.Kafka.AuditTopic, log)
		g.Go(func() error {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
