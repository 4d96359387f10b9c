package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/myrjola/repcoach/internal/auth"
	"github.com/myrjola/repcoach/internal/catalog"
	"github.com/myrjola/repcoach/internal/envstruct"
	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/logging"
	"github.com/myrjola/repcoach/internal/metrics"
	"github.com/myrjola/repcoach/internal/progress"
	"github.com/myrjola/repcoach/internal/sqlite"
)

type application struct {
	logger  *slog.Logger
	auth    *auth.Service
	catalog *catalog.Catalog
	store   *progress.SQLiteStore
	tracker *progress.Tracker
	metrics *metrics.Manager
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"REPCOACH_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"REPCOACH_SQLITE_URL" envDefault:"./repcoach.sqlite3"`
	// JWTSecret signs the bearer tokens. Rotating it signs out every user.
	JWTSecret string `env:"REPCOACH_JWT_SECRET" envDefault:""`
	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration `env:"REPCOACH_TOKEN_TTL" envDefault:"720h"`
}

// logConfig is read by main before the logger exists.
type logConfig struct {
	// File is an optional path for a rotated log file. Logs go to stdout when empty.
	File string `env:"REPCOACH_LOG_FILE" envDefault:""`
	// Level is one of debug, info, warn and error.
	Level string `env:"REPCOACH_LOG_LEVEL" envDefault:"info"`
}

var errMissingSecret = errors.NewSentinel("REPCOACH_JWT_SECRET is required")

const minSecretLength = 32

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	if len(cfg.JWTSecret) < minSecretLength {
		return errors.Wrap(errMissingSecret, "validate config", slog.Int("min_length", minSecretLength))
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		_ = db.Close()
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	m := metrics.NewManager(true)
	c := catalog.Default()
	store := progress.NewSQLiteStore(db)
	app := application{
		logger:  logger,
		auth:    auth.NewService(db, logger, []byte(cfg.JWTSecret), cfg.TokenTTL),
		catalog: c,
		store:   store,
		tracker: progress.NewTracker(store, logger, progress.WithObserver(m), progress.WithCatalog(c)),
		metrics: m,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	var cfg logConfig
	cfgErr := envstruct.Populate(&cfg, os.LookupEnv)
	level, levelErr := logging.ParseLevel(cfg.Level)
	logger := logging.NewLogger(logging.NewWriter(cfg.File), level)
	if err := errors.Join(cfgErr, levelErr); err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "invalid log config, using defaults", errors.SlogError(err))
	}
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
