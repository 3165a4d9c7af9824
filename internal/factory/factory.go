package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/wordbomb/internal/api"
	"github.com/mcoot/wordbomb/internal/dependencies/clock"
	"github.com/mcoot/wordbomb/internal/dependencies/random"
	"github.com/mcoot/wordbomb/internal/services/dictionary"
	"github.com/mcoot/wordbomb/internal/services/game"
	"github.com/mcoot/wordbomb/internal/services/lobby"
	"github.com/mcoot/wordbomb/internal/storage"
	"github.com/mcoot/wordbomb/internal/storage/memory"
	redisstorage "github.com/mcoot/wordbomb/internal/storage/redis"
	"github.com/mcoot/wordbomb/internal/web/sse"
	"github.com/mcoot/wordbomb/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	DictionaryService *dictionary.Service
	Engine            *game.Engine
	LobbyController   *lobby.Controller

	// Transports
	WSHub       *ws.Hub
	WSHandler   *ws.Handler
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
	Router      http.Handler
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
	// GameConfig holds the game rules (optional)
	// If zero value, defaults to game.DefaultConfig()
	GameConfig game.Config
	// WSConfig holds websocket settings (optional)
	// If zero value, defaults to ws.DefaultConfig()
	WSConfig ws.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	gameCfg := cfg.GameConfig
	if gameCfg.Cooldown == 0 {
		gameCfg = game.DefaultConfig()
	}
	wsCfg := cfg.WSConfig
	if wsCfg.TypingBurst == 0 {
		wsCfg = ws.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), gameCfg, wsCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	gameCfg game.Config,
	wsCfg ws.Config,
	logger *slog.Logger,
) *App {
	dictService := dictionary.New(store, logger)
	engine := game.NewEngine(dictService, store, clk, rnd, gameCfg, logger)

	// Players get every notification over their socket; spectators only see
	// room-wide broadcasts
	wsHub := ws.NewHub(logger)
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	lobbyController := lobby.NewController(engine, store, clk, rnd, lobby.MultiNotifier{wsHub, broadcaster}, logger)
	wsHandler := ws.NewHandler(lobbyController, wsHub, wsCfg, logger)

	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		Controller:       lobbyController,
		Dictionary:       dictService,
		HubManager:       hubManager,
		WebsocketHandler: wsHandler,
	})

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		DictionaryService: dictService,
		Engine:            engine,
		LobbyController:   lobbyController,
		WSHub:             wsHub,
		WSHandler:         wsHandler,
		HubManager:        hubManager,
		Broadcaster:       broadcaster,
		Router:            router,
	}
}

// LoadDictionary loads the word list from path, falling back to the copy
// cached in storage by an earlier process
func (a *App) LoadDictionary(ctx context.Context, path string) error {
	var fileErr error
	if path != "" {
		if fileErr = a.DictionaryService.LoadFromFile(ctx, path); fileErr == nil {
			return nil
		}
	}
	if err := a.DictionaryService.LoadFromStorage(ctx); err != nil {
		return errors.Join(fileErr, err)
	}
	return nil
}

// Close stops room timers, disconnects every websocket and spectator, and
// releases storage
func (a *App) Close() error {
	a.LobbyController.Close()
	a.WSHub.Close()
	a.HubManager.Close()

	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
