// Package main runs the OneGotchi battle arena: a Telnet server where trainers
// log in with a wallet address, pick one of their pets and battle another
// trainer's pet against an automated opponent.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/onegotchi/arena/internal/config"
	"github.com/onegotchi/arena/internal/frontend/handlers"
	"github.com/onegotchi/arena/internal/frontend/telnet"
	"github.com/onegotchi/arena/internal/game/arena"
	"github.com/onegotchi/arena/internal/game/pet"
	"github.com/onegotchi/arena/internal/game/session"
	"github.com/onegotchi/arena/internal/narration"
	"github.com/onegotchi/arena/internal/observability"
	"github.com/onegotchi/arena/internal/scripting"
	"github.com/onegotchi/arena/internal/server"
	"github.com/onegotchi/arena/internal/storage/cache"
	"github.com/onegotchi/arena/internal/storage/postgres"
)

const (
	healthInterval = 30 * time.Second
	statsInterval  = time.Minute
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, cfg.Server.Name)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting arena", zap.String("telnet_addr", cfg.Telnet.Addr()))

	ctx := context.Background()
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("postgres", server.NewPeriodic(healthInterval, func(ctx context.Context) {
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Warn("database health check failed", zap.Error(err))
		}
	}, pool.Close))

	var pets pet.Registry = postgres.NewPetRepository(pool.DB())
	if cfg.Redis.Enabled {
		rdb, err := cache.NewClient(cfg.Redis)
		if err != nil {
			logger.Fatal("creating redis client", zap.Error(err))
		}
		if err := cache.Ping(ctx, rdb); err != nil {
			logger.Warn("redis unreachable, lookups will fall through", zap.Error(err))
		}
		pets = cache.New(pets, rdb, cfg.Redis.PetTTL, logger)
		lifecycle.Add("redis", server.NewPeriodic(healthInterval, func(ctx context.Context) {
			if err := cache.Ping(ctx, rdb); err != nil {
				logger.Warn("redis health check failed", zap.Error(err))
			}
		}, func() { _ = rdb.Close() }))
		logger.Info("pet cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.PetTTL))
	}

	narrator := narration.New(cfg.Narration, logger)
	battles := postgres.NewBattleRepository(pool.DB())
	opts := arena.Options{
		OpponentDelay:    cfg.Arena.OpponentDelay,
		ResultDelay:      cfg.Arena.ResultDelay,
		MaxActiveMatches: cfg.Arena.MaxActiveMatches,
		Recorder:         battles,
		Narrator:         narration.Epilogue(narrator),
		Logger:           logger.Named("arena"),
	}

	if cfg.Scripting.ScriptDir != "" {
		scripts := scripting.NewManager(logger.Named("scripting"))
		if err := scripts.LoadDir(cfg.Scripting.ScriptDir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading reward scripts", zap.Error(err))
		}
		defer scripts.Close()
		opts.Reward = scripting.NewRewardHook(scripts)
		logger.Info("reward scripts loaded", zap.String("dir", cfg.Scripting.ScriptDir))
	}

	ar := arena.New(opts)
	sessions := session.NewManager()
	handler := handlers.NewArenaHandler(handlers.Deps{
		Trainers:     postgres.NewTrainerRepository(pool.DB()),
		History:      battles,
		Pets:         pets,
		Arena:        ar,
		Narrator:     narrator,
		Sessions:     sessions,
		HistoryLimit: cfg.Arena.HistoryLimit,
		Logger:       logger.Named("telnet"),
	})
	acceptor := telnet.NewAcceptor(cfg.Telnet, handler, logger)

	arenaDone := make(chan struct{})
	lifecycle.Add("arena", &server.FuncService{
		StartFn: func() error {
			<-arenaDone
			return nil
		},
		StopFn: func() {
			ar.Close()
			close(arenaDone)
		},
	})
	lifecycle.Add("stats", server.NewPeriodic(statsInterval, func(context.Context) {
		logger.Info("arena stats",
			zap.Int("trainers", sessions.Count()),
			zap.Int("in_battle", sessions.InBattle()),
			zap.Int("matches", ar.Active()),
			zap.Int("connections", acceptor.Sessions()),
		)
	}, nil))
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("arena initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Bool("narration", cfg.Narration.Enabled),
		zap.Bool("scripting", opts.Reward != nil),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
