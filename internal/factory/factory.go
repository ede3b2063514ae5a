package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/mcoot/minibeans/internal/controller"
	"github.com/mcoot/minibeans/internal/dependencies/clock"
	"github.com/mcoot/minibeans/internal/dependencies/random"
	"github.com/mcoot/minibeans/internal/identity"
	"github.com/mcoot/minibeans/internal/ledger"
	"github.com/mcoot/minibeans/internal/middleware"
	"github.com/mcoot/minibeans/internal/session"
	"github.com/mcoot/minibeans/internal/storage"
	filestorage "github.com/mcoot/minibeans/internal/storage/file"
	"github.com/mcoot/minibeans/internal/storage/memory"
	redisstorage "github.com/mcoot/minibeans/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeFile   = "file"
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired client components
type App struct {
	// Storage
	Store storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Client components
	Ledger     *ledger.Client
	Identity   *identity.Bootstrap
	Session    *session.Store
	Controller *controller.Controller

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Endpoint is the ledger API URL (required)
	Endpoint string
	// StorageType selects the local profile store ("file", "memory" or "redis").
	// If empty, defaults to "file".
	StorageType string
	// StateDir is the root directory of the file store; each profile gets a
	// subdirectory
	StateDir string
	// Profile names the local profile. If empty, defaults to "default".
	Profile string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// HTTPTimeout bounds each ledger request. If zero, defaults to 30s.
	HTTPTimeout time.Duration
	// Notifier receives user-facing notifications (optional)
	Notifier controller.Notifier
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	profile := cfg.Profile
	if profile == "" {
		profile = "default"
	}

	var (
		store   storage.Store
		closers []io.Closer
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeFile
	}

	switch storageType {
	case StorageTypeFile:
		if cfg.StateDir == "" {
			return nil, errors.New("StateDir required when StorageType is file")
		}
		store = filestorage.New(filepath.Join(cfg.StateDir, profile))
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisCfg := *cfg.RedisConfig
		redisCfg.Profile = profile
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'file', 'memory' or 'redis'", storageType)
	}

	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client := ledger.NewClient(cfg.Endpoint,
		ledger.WithHTTPClient(&http.Client{
			Timeout:   timeout,
			Transport: middleware.Transport(logger, nil),
		}),
		ledger.WithLogger(logger),
	)

	app := newWithDependencies(store, clock.New(), random.New(), client, cfg.Notifier, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, rnd random.Random, client *ledger.Client, notifier controller.Notifier, logger *slog.Logger) *App {
	if notifier == nil {
		notifier = controller.NotifierFunc(func(controller.Notification) {})
	}

	id := identity.New(store, clk, rnd, logger)
	sess := session.New(store, client, logger)
	ctrl := controller.New(client, id, sess, notifier, logger)

	return &App{
		Store:      store,
		Clock:      clk,
		Random:     rnd,
		Ledger:     client,
		Identity:   id,
		Session:    sess,
		Controller: ctrl,
	}
}

// Close releases connections held by the store
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
