package app

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"pokeproxy/internal/auth"
	"pokeproxy/internal/common/logging"
	"pokeproxy/internal/common/ratelimit"
	"pokeproxy/internal/config"
	"pokeproxy/internal/forwarder"
	"pokeproxy/internal/handlers"
	"pokeproxy/internal/models"
	"pokeproxy/internal/pipeline"
	"pokeproxy/internal/redis"
	"pokeproxy/internal/routing"
	"pokeproxy/internal/stats"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Rules       *models.RuleSet
	Stats       *stats.Registry
	Forwarder   forwarder.Forwarder
	Pipeline    *pipeline.Pipeline
	Handlers    *handlers.Handlers
	RateLimiter ratelimit.Limiter
	RedisClient *redis.Client
	Auth        *auth.Auth
	Reporter    *stats.Reporter
	Logger      logging.Logger
}

// Option overrides a dependency New would otherwise build
type Option func(*App)

// WithForwarder replaces the HTTP forwarder
func WithForwarder(f forwarder.Forwarder) Option {
	return func(a *App) { a.Forwarder = f }
}

// WithRules uses rules instead of reading cfg.RulesPath
func WithRules(rules *models.RuleSet) Option {
	return func(a *App) { a.Rules = rules }
}

// WithLogger replaces the global logger
func WithLogger(logger logging.Logger) Option {
	return func(a *App) { a.Logger = logger }
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config, opts ...Option) (*App, error) {
	app := &App{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}
	if app.Logger == nil {
		app.Logger = logging.GetGlobalLogger()
	}
	app.Logger = app.Logger.WithFields(logging.String("component", "app"))

	if err := app.initializeRules(); err != nil {
		return nil, err
	}

	if err := app.initializeRedis(); err != nil {
		// The limiter falls back to the local backend without redis.
		app.Logger.Warn("Redis initialization failed, using local rate limiting",
			logging.Err(err))
	}

	if err := app.initializeRateLimiter(); err != nil {
		return nil, err
	}

	if err := app.initializeAuth(); err != nil {
		return nil, err
	}

	if err := app.initializeStats(); err != nil {
		return nil, err
	}

	app.initializePipeline()

	return app, nil
}

func (app *App) initializeRules() error {
	if app.Rules == nil {
		rules, err := config.LoadRules(app.Config.RulesPath)
		if err != nil {
			return err
		}
		app.Rules = rules
	}

	for _, problem := range routing.Lint(app.Rules.Rules) {
		app.Logger.Warn("Rule will never match", logging.Err(problem))
	}

	app.Logger.Info("Routing rules loaded",
		logging.String("path", app.Config.RulesPath),
		logging.Int("rules", len(app.Rules.Rules)))
	return nil
}

func (app *App) initializeStats() error {
	app.Stats = stats.NewRegistry()

	if app.Config.StatsReportSchedule == "" {
		return nil
	}
	reporter, err := stats.NewReporter(app.Stats, app.Config.StatsReportSchedule, app.Logger)
	if err != nil {
		return err
	}
	app.Reporter = reporter
	return nil
}

func (app *App) initializePipeline() {
	if app.Forwarder == nil {
		app.Forwarder = forwarder.New(app.Config.ForwardTimeout, app.Logger)
	}

	if app.Config.HMACSecret == "" {
		app.Logger.Warn("HMAC_SECRET is not set; /stream will answer 500 until it is configured")
	}

	app.Pipeline = pipeline.New(pipeline.Config{
		Endpoint: pipeline.EndpointStream,
		Secret:   app.Config.HMACSecret,
		Rules:    app.Rules.Rules,
	}, app.Forwarder, app.Stats, app.Logger)

	app.Handlers = handlers.New(app.Pipeline, app.Stats, app.Config.MaxBodyBytes, app.Logger)
}

// Handler builds the HTTP router
func (app *App) Handler() http.Handler {
	router := mux.NewRouter()

	var statsGuard func(http.Handler) http.Handler
	if app.Auth != nil {
		statsGuard = app.Auth.RequireBearer
	}

	SetupRoutes(router, app.Handlers, statsGuard, app.RateLimiter, app.Logger)
	return router
}

// Start launches background work
func (app *App) Start() {
	if app.Reporter != nil {
		app.Reporter.Start()
	}
}

// Shutdown stops background work and releases connections
func (app *App) Shutdown(ctx context.Context) {
	if app.Reporter != nil {
		app.Reporter.Stop(ctx)
	}
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Logger.Warn("Error closing redis client", logging.Err(err))
		}
	}
}
