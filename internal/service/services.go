package service

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/xolan/logpost/internal/compose"
	"github.com/xolan/logpost/internal/config"
	"github.com/xolan/logpost/internal/gemini"
	"github.com/xolan/logpost/internal/logging"
	"github.com/xolan/logpost/internal/rollup"
	"github.com/xolan/logpost/internal/storage"
	"github.com/xolan/logpost/internal/twitter"
)

// Services holds all service instances used by the application
type Services struct {
	Entry  *EntryService
	Rollup *RollupService
	Config *ConfigService
}

type options struct {
	logger       *slog.Logger
	metrics      *rollup.Metrics
	now          func() time.Time
	newGenerator compose.GeneratorFactory
	newPublisher rollup.PublisherFactory
}

// Option customises NewServices
type Option func(*options)

// WithLogger sets the logger used by the rollup.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records rollup outcomes in m.
func WithMetrics(m *rollup.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithGenerator replaces the text-generation client.
func WithGenerator(f compose.GeneratorFactory) Option {
	return func(o *options) { o.newGenerator = f }
}

// WithPublisher replaces the posting client.
func WithPublisher(f rollup.PublisherFactory) Option {
	return func(o *options) { o.newPublisher = f }
}

// NewServices creates a new Services instance with default paths
func NewServices(opts ...Option) (*Services, error) {
	cfg, paths, err := config.DefaultPaths()
	if err != nil {
		return nil, err
	}
	return NewServicesWithPaths(paths, cfg, opts...), nil
}

// NewServicesWithPaths creates a new Services instance with custom paths (useful for testing)
func NewServicesWithPaths(paths config.Paths, cfg config.Config, opts ...Option) *Services {
	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	o := options{
		logger:       logging.Discard(),
		now:          time.Now,
		newGenerator: gemini.Factory(httpClient),
		newPublisher: func(pc config.PostingConfig) rollup.Publisher {
			return twitter.NewClient(pc, httpClient)
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	loc := cfg.Location()
	now := func() time.Time { return o.now().In(loc) }
	store := storage.New(paths.Store)

	orchestrator := rollup.New(rollup.Deps{
		Store:          store,
		Composer:       compose.New(o.newGenerator, o.logger),
		NewPublisher:   o.newPublisher,
		PostingPath:    paths.Posting,
		GenerationPath: paths.Generation,
		Location:       loc,
		Now:            now,
		Logger:         o.logger,
		Metrics:        o.metrics,
	})

	return &Services{
		Entry:  NewEntryService(store, now),
		Rollup: NewRollupService(orchestrator),
		Config: NewConfigService(paths, cfg),
	}
}
