package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/poule-scoring/external/eventbus"
	"github.com/riskibarqy/poule-scoring/external/leaderboard"
	"github.com/riskibarqy/poule-scoring/external/webhook"
	"github.com/riskibarqy/poule-scoring/internal/config"
	"github.com/riskibarqy/poule-scoring/internal/domain/groupstanding"
	"github.com/riskibarqy/poule-scoring/internal/domain/match"
	"github.com/riskibarqy/poule-scoring/internal/domain/player"
	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/domain/setting"
	"github.com/riskibarqy/poule-scoring/internal/infrastructure/notify"
	"github.com/riskibarqy/poule-scoring/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/poule-scoring/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/poule-scoring/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/poule-scoring/internal/interfaces/httpapi"
	"github.com/riskibarqy/poule-scoring/internal/observability"
	idgen "github.com/riskibarqy/poule-scoring/internal/platform/id"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
	"github.com/riskibarqy/poule-scoring/internal/platform/resilience"
	"github.com/riskibarqy/poule-scoring/internal/usecase"
)

// App holds the wired services shared by the API server and the scorer CLI.
type App struct {
	Config      config.Config
	Logger      *logging.Logger
	Scoring     *usecase.ScoringService
	Standings   *usecase.StandingsService
	GroundTruth *usecase.GroundTruthService
	Metrics     *observability.ScoringMetrics

	closers []func() error
}

type repositories struct {
	matches     match.Repository
	predictions prediction.Repository
	players     player.Repository
	groups      groupstanding.Repository
	settings    setting.Repository
	pools       pool.Repository
	ledger      pool.Ledger
}

// New opens storage and outbound sinks and builds the services.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	repos, err := a.openRepositories(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if cfg.CacheEnabled {
		cachedPools := cache.NewPoolRepository(repos.pools, cfg.CacheTTL)
		repos.ledger = cache.NewLedger(repos.ledger, cachedPools)
		repos.pools = cachedPools
	}

	publisher, err := a.openPublisher(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Metrics = observability.NewScoringMetrics(nil)
	if cfg.MetricsEnabled {
		a.Metrics.RegisterRuntimeCollectors()
	}

	a.Standings = usecase.NewStandingsService(usecase.StandingsServiceDeps{
		PoolRepo:  repos.pools,
		Ledger:    repos.ledger,
		Publisher: publisher,
		Recorder:  a.Metrics,
		Logger:    logger.Named("standings"),
		Workers:   cfg.StandingsWorkers,
	})
	a.Scoring = usecase.NewScoringService(usecase.ScoringServiceDeps{
		MatchRepo:      repos.matches,
		PredictionRepo: repos.predictions,
		PlayerRepo:     repos.players,
		GroupRepo:      repos.groups,
		SettingRepo:    repos.settings,
		PoolRepo:       repos.pools,
		Standings:      a.Standings,
		Publisher:      publisher,
		Recorder:       a.Metrics,
		IDs:            idgen.NewUUIDGenerator(),
		BaseRules:      cfg.ScoringRules,
		Logger:         logger.Named("scoring"),
	})
	a.GroundTruth = usecase.NewGroundTruthService(repos.groups, repos.settings)

	return a, nil
}

func (a *App) openRepositories(ctx context.Context) (repositories, error) {
	switch a.Config.Storage {
	case config.StoragePostgres:
		db, err := openDB(ctx, a.Config)
		if err != nil {
			return repositories{}, err
		}
		a.closers = append(a.closers, db.Close)
		a.Logger.Info("storage ready", "storage", config.StoragePostgres, "db_name", dbNameFromURL(a.Config.DBURL))

		return repositories{
			matches:     postgres.NewMatchRepository(db),
			predictions: postgres.NewPredictionRepository(db),
			players:     postgres.NewPlayerRepository(db),
			groups:      postgres.NewGroupStandingRepository(db),
			settings:    postgres.NewSettingRepository(db),
			pools:       postgres.NewPoolRepository(db),
			ledger:      postgres.NewPoolLedger(db),
		}, nil
	default:
		store := memory.Seed(memory.NewStore())
		poolRepo := memory.NewPoolRepository(store)
		a.Logger.Info("storage ready", "storage", config.StorageMemory)

		return repositories{
			matches:     memory.NewMatchRepository(store),
			predictions: memory.NewPredictionRepository(store),
			players:     memory.NewPlayerRepository(store),
			groups:      memory.NewGroupStandingRepository(store),
			settings:    memory.NewSettingRepository(store),
			pools:       poolRepo,
			ledger:      poolRepo,
		}, nil
	}
}

// openPublisher fans scoring events out to Kafka, the Redis leaderboard
// mirror and an HTTP webhook, each only when enabled.
func (a *App) openPublisher(ctx context.Context) (*notify.FanOut, error) {
	cfg := a.Config
	sinks := make([]notify.Sink, 0, 3)

	if cfg.KafkaEnabled {
		producer, err := eventbus.NewKafkaPublisher(eventbus.KafkaPublisherConfig{
			Brokers:        cfg.KafkaBrokers,
			ClientID:       cfg.KafkaClientID,
			StandingsTopic: cfg.KafkaStandingsTopic,
			PassTopic:      cfg.KafkaPassTopic,
		}, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, producer.Close)
		sinks = append(sinks, notify.Sink{Name: "kafka", Publisher: producer})
	}

	if cfg.RedisEnabled {
		client, err := leaderboard.NewRedisClient(ctx, leaderboard.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		sinks = append(sinks, notify.Sink{Name: "redis", Publisher: leaderboard.NewRedisMirror(client, cfg.RedisKeyPrefix, a.Logger)})
	}

	if cfg.WebhookEnabled {
		hook, err := webhook.NewHTTPPublisher(webhook.HTTPPublisherConfig{
			URL:     cfg.WebhookURL,
			Token:   cfg.WebhookToken,
			Retries: cfg.WebhookRetries,
			Timeout: cfg.NotifyTimeout,
			Backoff: cfg.WebhookBackoff,
		}, a.Logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, notify.Sink{Name: "webhook", Publisher: hook})
	}

	fanout := notify.NewFanOut(notify.Config{
		Timeout: cfg.NotifyTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.NotifyCircuitEnabled,
			FailureThreshold: cfg.NotifyCircuitFailures,
			OpenTimeout:      cfg.NotifyCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.NotifyCircuitHalfOpenMax,
		},
	}, a.Logger, sinks...)
	a.Logger.Info("scoring event sinks ready", "sinks", fanout.Len(), "kafka", cfg.KafkaEnabled, "redis", cfg.RedisEnabled, "webhook", cfg.WebhookEnabled)
	return fanout, nil
}

// Close releases storage and sinks in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func NewHTTPServer(a *App) (*http.Server, error) {
	cfg := a.Config
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var metrics http.Handler
	if cfg.MetricsEnabled {
		metrics = a.Metrics.Handler()
	}

	handler := httpapi.NewHandler(a.Scoring, a.Standings, a.GroundTruth, a.Logger)
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		Metrics:            metrics,
	}, a.Logger)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}
