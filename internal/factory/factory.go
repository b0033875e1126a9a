package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mcoot/wordsession/internal/dependencies/clock"
	"github.com/mcoot/wordsession/internal/dependencies/ids"
	"github.com/mcoot/wordsession/internal/dependencies/random"
	"github.com/mcoot/wordsession/internal/metrics"
	redispubsub "github.com/mcoot/wordsession/internal/pubsub/redis"
	"github.com/mcoot/wordsession/internal/services/board"
	"github.com/mcoot/wordsession/internal/services/dictionary"
	"github.com/mcoot/wordsession/internal/services/game"
	"github.com/mcoot/wordsession/internal/services/notify"
	"github.com/mcoot/wordsession/internal/services/scoring"
	"github.com/mcoot/wordsession/internal/services/synchronizer"
	"github.com/mcoot/wordsession/internal/services/tilebag"
	"github.com/mcoot/wordsession/internal/storage"
	"github.com/mcoot/wordsession/internal/storage/memory"
	redisstorage "github.com/mcoot/wordsession/internal/storage/redis"
	"github.com/mcoot/wordsession/internal/web/sse"
	"github.com/mcoot/wordsession/internal/worker/cleanup"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Pub/sub type constants
const (
	PubSubTypeLocal = "local"
	PubSubTypeRedis = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	RedisClient *goredis.Client // nil unless StorageType is redis

	// External dependencies
	Clock    clock.Clock
	Random   random.Random
	IDs      ids.Generator
	Notifier synchronizer.Notifier
	Metrics  metrics.Recorder

	// Services
	DictionaryService *dictionary.Service
	WordChecker       dictionary.Checker
	BoardService      *board.Service
	TileBagService    *tilebag.Service
	ScoringService    *scoring.Service
	Synchronizer      *synchronizer.Synchronizer
	GameController    *game.Controller
	HubManager        *sse.HubManager

	// Background workers
	CleanupJob *cleanup.Job
	Subscriber *redispubsub.Subscriber // nil unless PubSubType is redis
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PubSubType selects how events reach SSE clients ("local" or "redis").
	// "redis" fans events out across instances and requires redis storage.
	PubSubType string
	// DictionaryPath is the path to a word list, one word per line (optional).
	// If empty, the word list previously saved to storage is used.
	DictionaryPath string
	// DictionaryURL, if set, makes move validation ask a remote service
	// instead of the local word list
	DictionaryURL string
	// NotifyURL is the base URL of the notification endpoint (optional).
	// If empty, notifications are acknowledged locally.
	NotifyURL string
	// SessionIdleTTL is how long an untouched session lives (optional)
	SessionIdleTTL time.Duration
	// Registerer receives the Prometheus collectors (optional)
	Registerer prometheus.Registerer
}

// Dependencies are the external collaborators an App is built on
type Dependencies struct {
	Storage     storage.Storage
	RedisClient *goredis.Client
	Clock       clock.Clock
	Random      random.Random
	IDs         ids.Generator
	Notifier    synchronizer.Notifier
	Metrics     metrics.Recorder
	Logger      *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Registerer != nil {
		recorder = metrics.NewCollector(cfg.Registerer)
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}
	pubsubType := cfg.PubSubType
	if pubsubType == "" {
		pubsubType = PubSubTypeLocal
	}

	var store storage.Storage
	var redisClient *goredis.Client
	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisCfg := *cfg.RedisConfig
		if cfg.SessionIdleTTL > 0 {
			redisCfg.SessionTTL = cfg.SessionIdleTTL
		}
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = redisStore
		redisClient = redisStore.Client()
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	switch pubsubType {
	case PubSubTypeLocal:
	case PubSubTypeRedis:
		if redisClient == nil {
			return nil, errors.New("PubSubType redis requires StorageType redis")
		}
	default:
		return nil, errors.New("invalid PubSubType: must be 'local' or 'redis'")
	}

	var notifier synchronizer.Notifier = notify.Nop{}
	if cfg.NotifyURL != "" {
		notifier = notify.NewHTTPNotifier(notify.DefaultConfig(cfg.NotifyURL), logger)
	}

	app := newWithDependencies(Dependencies{
		Storage:     store,
		RedisClient: redisClient,
		Clock:       clock.New(),
		Random:      random.New(),
		IDs:         ids.New(),
		Notifier:    notifier,
		Metrics:     recorder,
		Logger:      logger,
	}, cfg.DictionaryURL, pubsubType == PubSubTypeRedis)

	if cfg.SessionIdleTTL > 0 {
		app.CleanupJob.IdleTTL = cfg.SessionIdleTTL
	}

	if err := app.loadDictionary(cfg.DictionaryPath, logger); err != nil {
		return nil, err
	}

	return app, nil
}

// newWithDependencies wires the services on top of the given dependencies
func newWithDependencies(deps Dependencies, dictionaryURL string, redisPubSub bool) *App {
	logger := deps.Logger

	dictService := dictionary.New(deps.Storage, deps.Metrics)
	var checker dictionary.Checker = dictService
	if dictionaryURL != "" {
		checker = dictionary.NewClient(dictionary.DefaultClientConfig(dictionaryURL), deps.Metrics, logger)
	}

	boardService := board.New()
	bagService := tilebag.New(deps.Random, deps.IDs)
	scoringService := scoring.New(checker)
	hubManager := sse.NewHubManager(logger)

	var publisher synchronizer.Publisher = hubManager
	var subscriber *redispubsub.Subscriber
	if redisPubSub {
		publisher = redispubsub.NewPublisher(deps.RedisClient)
		subscriber = redispubsub.NewSubscriber(deps.RedisClient, hubManager, logger)
	}

	sync := synchronizer.New(deps.Notifier, publisher, deps.Clock, deps.Metrics, logger)
	gameController := game.NewController(
		deps.Storage,
		boardService,
		scoringService,
		bagService,
		sync,
		deps.Clock,
		deps.Random,
		deps.IDs,
		deps.Metrics,
		logger,
	)
	cleanupJob := cleanup.NewJob(deps.Storage, gameController, hubManager, deps.Clock, deps.Metrics, logger)

	return &App{
		Storage:           deps.Storage,
		RedisClient:       deps.RedisClient,
		Clock:             deps.Clock,
		Random:            deps.Random,
		IDs:               deps.IDs,
		Notifier:          deps.Notifier,
		Metrics:           deps.Metrics,
		DictionaryService: dictService,
		WordChecker:       checker,
		BoardService:      boardService,
		TileBagService:    bagService,
		ScoringService:    scoringService,
		Synchronizer:      sync,
		GameController:    gameController,
		HubManager:        hubManager,
		CleanupJob:        cleanupJob,
		Subscriber:        subscriber,
	}
}

func (a *App) loadDictionary(path string, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if path != "" {
		if err := a.DictionaryService.LoadFromFile(ctx, path); err != nil {
			return fmt.Errorf("load dictionary %s: %w", path, err)
		}
		logger.Info("dictionary loaded",
			slog.String("path", path),
			slog.Int("words", a.DictionaryService.WordCount()),
		)
		return nil
	}

	if err := a.DictionaryService.LoadFromStorage(ctx); err != nil {
		logger.Warn("no dictionary in storage", slog.String("error", err.Error()))
		return nil
	}
	if a.DictionaryService.WordCount() == 0 {
		logger.Warn("dictionary is empty, every word will be rejected")
	}
	return nil
}

// Close releases connections held by the App
func (a *App) Close() error {
	if a.RedisClient != nil {
		return a.RedisClient.Close()
	}
	return nil
}
