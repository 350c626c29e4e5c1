package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	httpadapter "tempest/internal/adapter/http"
	metricsinmem "tempest/internal/adapter/metrics/inmemory"
	"tempest/internal/adapter/oracle/gemini"
	"tempest/internal/adapter/oracle/offline"
	gormrepo "tempest/internal/adapter/repo/gorm"
	"tempest/internal/adapter/repo/memory"
	sqlitestore "tempest/internal/adapter/repo/sqlite"
	"tempest/internal/app/auth"
	"tempest/internal/app/observe"
	"tempest/internal/app/ports"
	"tempest/internal/app/replay"
	"tempest/internal/app/session"
	"tempest/internal/app/status"
	"tempest/internal/config"
	"tempest/internal/domain/sim"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	cfg := config.FromEnv()
	logger := newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	tuning, err := cfg.Tuning()
	if err != nil {
		fatal("load tuning", err)
	}
	store, err := buildStore(context.Background(), cfg)
	if err != nil {
		fatal("open store", err)
	}
	defer store.close()
	oracle, closeOracle, err := buildOracle(context.Background(), cfg, logger)
	if err != nil {
		fatal("build oracle", err)
	}
	defer closeOracle()

	kpiRecorder := metricsinmem.NewRecorder()
	ctrl := &session.Controller{
		TxManager: store.tx,
		Sessions:  store.sessions,
		Events:    store.events,
		Oracle:    oracle,
		Metrics:   kpiRecorder,
		Tuning:    tuning,
		Spawner:   sim.NewSpawner(tuning),
		Rand:      session.NewRand(time.Now().UnixNano()),
		Now:       time.Now,
		Logger:    logger,
	}

	h := httpadapter.Handler{
		RegisterUC: auth.RegisterUseCase{
			Credentials: store.credentials,
			Sessions:    store.sessions,
			Events:      store.events,
			Seeder:      ctrl,
			TxManager:   store.tx,
			Now:         time.Now,
		},
		AuthUC:    auth.VerifyUseCase{Credentials: store.credentials},
		Session:   ctrl,
		ObserveUC: observe.UseCase{StateRepo: store.sessions, ViewRadius: cfg.ViewRadius},
		StatusUC:  status.UseCase{StateRepo: store.sessions, Tuning: tuning, Now: time.Now},
		ReplayUC:  replay.UseCase{Events: store.events},
		KPI:       kpiRecorder,
	}

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)

	logger.Info("tempest server listening", "addr", cfg.HTTPAddr, "store", store.kind, "map", fmt.Sprintf("%dx%d", tuning.Width, tuning.Height))
	s.Spin()
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

func newLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

type backingStore struct {
	kind        string
	sessions    ports.SessionRepository
	events      ports.EventRepository
	credentials ports.CredentialRepository
	tx          ports.TxManager
	close       func()
}

// buildStore picks Postgres when a DSN is set, then a SQLite file, then
// process memory.
func buildStore(ctx context.Context, cfg config.Config) (backingStore, error) {
	switch {
	case cfg.DBDSN != "":
		db, err := gormrepo.OpenPostgres(cfg.DBDSN)
		if err != nil {
			return backingStore{}, err
		}
		if err := gormrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
			return backingStore{}, fmt.Errorf("apply migrations: %w", err)
		}
		return backingStore{
			kind:        "postgres",
			sessions:    gormrepo.NewSessionRepo(db),
			events:      gormrepo.NewEventRepo(db),
			credentials: gormrepo.NewCredentialRepo(db),
			tx:          gormrepo.NewTxManager(db),
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	case cfg.SQLitePath != "":
		db, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return backingStore{}, err
		}
		return backingStore{
			kind:        "sqlite",
			sessions:    sqlitestore.NewSessionRepo(db),
			events:      sqlitestore.NewEventRepo(db),
			credentials: sqlitestore.NewCredentialRepo(db),
			tx:          sqlitestore.NewTxManager(db),
			close:       func() { _ = db.Close() },
		}, nil
	default:
		store := memory.NewStore()
		return backingStore{
			kind:        "memory",
			sessions:    memory.NewSessionRepo(store),
			events:      memory.NewEventRepo(store),
			credentials: memory.NewCredentialRepo(store),
			tx:          memory.NewTxManager(store),
			close:       func() {},
		}, nil
	}
}

func buildOracle(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.NarrativeOracle, func(), error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, using the offline narrator")
		return offline.New(), func() {}, nil
	}
	o, err := gemini.New(ctx, gemini.Config{
		APIKey:    cfg.GeminiAPIKey,
		Model:     cfg.OracleModel,
		Retries:   cfg.OracleRetries,
		BaseDelay: cfg.OracleBaseDelay,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return o, func() { _ = o.Close() }, nil
}
