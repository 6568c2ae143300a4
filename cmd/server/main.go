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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mindcare/internal/admin"
	jwttoken "mindcare/internal/jwt_token"
	"mindcare/internal/matching/matcher"
	matchingmetrics "mindcare/internal/matching/metrics"
	"mindcare/internal/matching/orchestrator"
	"mindcare/internal/matching/scorer"
	"mindcare/internal/platform/config"
	"mindcare/internal/platform/httpserver"
	"mindcare/internal/platform/logger"
	httpmetrics "mindcare/internal/platform/metrics"
	"mindcare/internal/platform/postgres"
	"mindcare/internal/platform/redis"
	referencehandler "mindcare/internal/reference/handler"
	referencemetrics "mindcare/internal/reference/metrics"
	referenceservice "mindcare/internal/reference/service"
	referencestore "mindcare/internal/reference/store"
	verificationhandler "mindcare/internal/verification/handler"
	verificationmetrics "mindcare/internal/verification/metrics"
	"mindcare/internal/verification/roles"
	verificationservice "mindcare/internal/verification/service"
	verificationstore "mindcare/internal/verification/store"
	audit "mindcare/pkg/platform/audit"
	auditpublisher "mindcare/pkg/platform/audit/publisher"
	auditmemory "mindcare/pkg/platform/audit/store/memory"
	auditpostgres "mindcare/pkg/platform/audit/store/postgres"
	authmw "mindcare/pkg/platform/middleware/auth"
	requestmw "mindcare/pkg/platform/middleware/request"
	"mindcare/pkg/platform/middleware/requesttime"
)

const auditBufferSize = 1024

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mindcare: %v\n", err)
		os.Exit(1)
	}
}

// stores groups the persistence backends picked at startup.
type stores struct {
	references   referencestore.Store
	applications verificationstore.TxStore
	roles        verificationservice.RoleGranter
	audit        audit.Store
	db           *sql.DB
	redis        *redis.Client
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// promauto registers on the default registry, so each set is built once.
	matchMetrics := matchingmetrics.New()
	refMetrics := referencemetrics.New()

	st, err := openStores(ctx, cfg, log, refMetrics)
	if err != nil {
		return err
	}
	defer st.close(log)

	publisher := auditpublisher.NewPublisher(st.audit,
		auditpublisher.WithAsyncBuffer(auditBufferSize),
		auditpublisher.WithLogger(log),
		auditpublisher.WithMetrics(auditpublisher.NewMetrics()),
	)
	defer publisher.Close()

	m, err := matcher.New(st.references,
		matcher.WithLogger(log),
		matcher.WithMaxCandidates(cfg.MaxCandidates),
		matcher.WithMetrics(matchMetrics),
	)
	if err != nil {
		return fmt.Errorf("build matcher: %w", err)
	}
	sc, err := scorer.New(cfg.Scoring)
	if err != nil {
		return fmt.Errorf("build scorer: %w", err)
	}
	orch, err := orchestrator.New(m, sc,
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(matchMetrics),
	)
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}

	refService, err := referenceservice.New(st.references,
		referenceservice.WithLogger(log),
		referenceservice.WithAuditPublisher(publisher),
		referenceservice.WithMetrics(refMetrics),
	)
	if err != nil {
		return fmt.Errorf("build reference service: %w", err)
	}
	verService, err := verificationservice.New(st.applications, orch,
		verificationservice.WithLogger(log),
		verificationservice.WithAuditPublisher(publisher),
		verificationservice.WithRoleGranter(st.roles),
		verificationservice.WithMetrics(verificationmetrics.New()),
		verificationservice.WithRescoreConcurrency(cfg.RescoreConcurrency),
	)
	if err != nil {
		return fmt.Errorf("build verification service: %w", err)
	}

	validator := jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer))

	router := newRouter(routerDeps{
		log:          log,
		stores:       st,
		validator:    validator,
		verification: verificationhandler.New(verService, log),
		reference:    referencehandler.New(refService, log),
		audit:        admin.New(st.audit, log),
		httpMetrics:  httpmetrics.New(),
	})

	srv := httpserver.New(cfg.Addr, otelhttp.NewHandler(router, "mindcare"))
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting mindcare", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openStores selects Postgres when DATABASE_URL is set and memory otherwise.
// The Redis reference cache wraps either one when REDIS_URL is set.
func openStores(ctx context.Context, cfg config.Server, log *slog.Logger, refMetrics *referencemetrics.Metrics) (*stores, error) {
	st := &stores{}

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		st.db = db
		st.references = referencestore.NewPostgres(db)
		st.applications = verificationstore.NewPostgres(db)
		st.roles = roles.NewPostgres(db)
		st.audit = auditpostgres.New(db)
		log.Info("using postgres stores")
	} else {
		st.references = referencestore.NewInMemory()
		st.applications = verificationstore.NewInMemory()
		st.roles = roles.NewInMemory()
		st.audit = auditmemory.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	client, err := redis.New(cfg.Redis)
	if err != nil {
		st.close(log)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if client != nil {
		cached, err := referencestore.NewCached(st.references, client.Client,
			referencestore.WithCacheTTL(cfg.ReferenceCacheTTL),
			referencestore.WithCacheLogger(log),
			referencestore.WithCacheMetrics(refMetrics),
		)
		if err != nil {
			client.Close()
			st.close(log)
			return nil, fmt.Errorf("build reference cache: %w", err)
		}
		st.redis = client
		st.references = cached
		log.Info("reference lookups cached in redis", "ttl", cfg.ReferenceCacheTTL)
	}
	return st, nil
}

func (s *stores) close(log *slog.Logger) {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn("failed to close redis", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}
}

type routerDeps struct {
	log          *slog.Logger
	stores       *stores
	validator    authmw.JWTValidator
	verification *verificationhandler.Handler
	reference    *referencehandler.Handler
	audit        *admin.Handler
	httpMetrics  *httpmetrics.Metrics
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestmw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestmw.Logger(d.log))
	r.Use(requesttime.Middleware)
	r.Use(d.httpMetrics.Middleware)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", d.stores.health)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(d.validator, d.log))
		d.verification.RegisterApplicant(r)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(authmw.RoleAdmin, d.log))
			d.verification.RegisterAdmin(r)
			d.reference.Register(r)
			d.audit.Register(r)
		})
	})
	return r
}

func (s *stores) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	if s.redis != nil {
		if err := s.redis.Health(ctx); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
