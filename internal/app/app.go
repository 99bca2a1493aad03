package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/bookhaven-backend/internal/data/db"
	"github.com/yungbote/bookhaven-backend/internal/http"
	"github.com/yungbote/bookhaven-backend/internal/observability"
	"github.com/yungbote/bookhaven-backend/internal/platform/envutil"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/realtime"
)

// Flags are command-line overrides; empty fields defer to the environment.
type Flags struct {
	Port    string
	LogMode string
}

type App struct {
	Log      *logger.Logger
	DB       *db.Service
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func newLogger(flags Flags) (*logger.Logger, string, error) {
	logMode := strings.TrimSpace(flags.LogMode)
	if logMode == "" {
		logMode = envutil.String("LOG_MODE", "development")
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, "", fmt.Errorf("init logger: %w", err)
	}
	return log, logMode, nil
}

func loadConfig(log *logger.Logger, flags Flags, logMode string) Config {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	cfg.LogMode = logMode
	if p := strings.TrimSpace(flags.Port); p != "" {
		cfg.Port = p
	}
	return cfg
}

func New(flags Flags) (*App, error) {
	log, logMode, err := newLogger(flags)
	if err != nil {
		return nil, err
	}
	cfg := loadConfig(log, flags, logMode)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	dbs, err := db.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(dbs.DB(), log)

	serviceset, err := wireServices(log, cfg, reposet, clients, metrics)
	if err != nil {
		clients.Close()
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	ssehub := realtime.NewSSEHub(log)
	middleware := wireMiddleware(log, cfg, serviceset)
	handlerset := wireHandlers(log, cfg, serviceset, middleware, ssehub)
	router := wireRouter(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           dbs,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       ssehub,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background work: session expiry sweeps, metrics
// collectors, and the bus forwarder feeding the SSE hub.
func (a *App) Start(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Services.memoryStore != nil {
		a.Services.memoryStore.StartJanitor(ctx, time.Minute)
	}
	a.Metrics.StartDBCollector(ctx, a.Log, a.DB.DB())
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}
	if err := a.Services.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		return fmt.Errorf("start cart event forwarder: %w", err)
	}
	return nil
}

// Run serves HTTP (and the standalone metrics listener when METRICS_ADDR is
// set) until ctx is cancelled or a listener fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	addr := ":" + a.Cfg.Port
	api := &http.Server{Engine: a.Router}
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", addr)
		return api.Serve(gctx, addr, a.Cfg.ShutdownGrace)
	})

	if a.Metrics != nil && a.Cfg.MetricsAddr != "" {
		engine := gin.New()
		engine.GET("/metrics", gin.WrapF(a.Metrics.WriteHTTP))
		metricsSrv := &http.Server{Engine: engine}
		g.Go(func() error {
			a.Log.Info("metrics server listening", "addr", a.Cfg.MetricsAddr)
			return metricsSrv.Serve(gctx, a.Cfg.MetricsAddr, a.Cfg.ShutdownGrace)
		})
	}

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.SSEBus != nil {
		_ = a.Services.SSEBus.Close()
	}
	if a.Services.memoryStore != nil {
		_ = a.Services.memoryStore.Close()
	}
	a.Clients.Close()
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// Migrate creates or updates the relational schema and exits.
func Migrate(flags Flags) error {
	log, logMode, err := newLogger(flags)
	if err != nil {
		return err
	}
	defer log.Sync()
	cfg := loadConfig(log, flags, logMode)

	dbs, err := db.Open(log, cfg.DB)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer dbs.Close()

	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	log.Info("migrations applied", "driver", dbs.Driver())
	return nil
}
