package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/courtside/internal/api/balldontlie"
	"github.com/omarshaarawi/courtside/internal/api/nba"
	"github.com/omarshaarawi/courtside/internal/bot"
	"github.com/omarshaarawi/courtside/internal/cache"
	"github.com/omarshaarawi/courtside/internal/config"
	"github.com/omarshaarawi/courtside/internal/gamestate"
	"github.com/omarshaarawi/courtside/internal/lineup"
	"github.com/omarshaarawi/courtside/internal/packs"
	"github.com/omarshaarawi/courtside/internal/reconcile"
	"github.com/omarshaarawi/courtside/internal/repository"
	"github.com/omarshaarawi/courtside/internal/repository/memory"
	"github.com/omarshaarawi/courtside/internal/repository/redis"
	"github.com/omarshaarawi/courtside/internal/resolver"
	"github.com/omarshaarawi/courtside/internal/scheduler"
	"github.com/omarshaarawi/courtside/internal/scoring"
	"github.com/omarshaarawi/courtside/internal/server"
	"github.com/omarshaarawi/courtside/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	leagueLoc, anchor, err := cfg.League.Locations()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	classifier := gamestate.NewClassifier(anchor, gamestate.LivePolicy{
		Grace:    cfg.Resolver.LiveGrace,
		Evidence: gamestate.StartEvidence,
	})

	bdlClient := balldontlie.NewClient(cfg.BallDontLie)
	nbaAPI := nba.NewAPI(bdlClient, cfg.BallDontLie.PerPage)

	gameCache := cache.New(nbaAPI, cache.Options{
		LiveTTL:       cfg.Cache.LiveTTL,
		TeamTTL:       cfg.Cache.TeamTTL,
		GameTTL:       cfg.Cache.GameTTL,
		LookupTimeout: cfg.Cache.LookupTimeout,
		Anchor:        anchor,
		Clock:         clock,
	})
	res := resolver.New(gameCache, resolver.Options{
		Classifier:   classifier,
		RecentWindow: cfg.Resolver.RecentWindow,
		Clock:        clock,
	})
	poller := resolver.NewPoller(res, clock, resolver.Cadence{
		Live:        cfg.Resolver.LiveInterval,
		Prime:       cfg.Resolver.PrimeInterval,
		Idle:        cfg.Resolver.IdleInterval,
		ResumeAfter: cfg.Resolver.ResumeAfter,
		PrimeStart:  cfg.Resolver.PrimeStartHour,
		PrimeEnd:    cfg.Resolver.PrimeEndHour,
		Location:    leagueLoc,
	}, cfg.Resolver.SettleDelay)

	reconciler, err := reconcile.New(nbaAPI, reconcile.Options{
		Classifier: classifier,
		BatchSize:  cfg.Reconcile.BatchSize,
		RecentDays: cfg.Reconcile.RecentDays,
		Clock:      clock,
	})
	if err != nil {
		return err
	}

	repo, closeRepo, err := newStore(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeRepo()

	engine := scoring.NewEngine(scoring.FairCoin())
	packCfg := packs.DefaultConfig()
	packCfg.PlayerCards = cfg.Packs.PlayerCards
	packCfg.TokenCards = cfg.Packs.TokenCards

	fantasyService := service.NewFantasyService(service.Deps{
		Gateway:         nbaAPI,
		Cache:           gameCache,
		Resolver:        res,
		Poller:          poller,
		Reconciler:      reconciler,
		Lineups:         lineup.NewManager(repo, engine, clock),
		Packs:           packs.NewGenerator(packCfg, packs.WithClock(clock)),
		Store:           repo,
		Classifier:      classifier,
		Clock:           clock,
		Season:          cfg.BallDontLie.Season,
		DirectoryMaxAge: cfg.League.DirectoryMaxAge,
		Location:        leagueLoc,
	})

	telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, fantasyService)
	if err != nil {
		return err
	}
	fantasyService.SetNotifier(telegramBot.Notify)

	if err := fantasyService.RestoreFollows(ctx); err != nil {
		slog.Error("Error restoring follows", "error", err)
	}

	sched, err := scheduler.NewScheduler(fantasyService, telegramBot.SendMessage, scheduler.Options{
		Location:      leagueLoc,
		Clock:         clock,
		TickInterval:  cfg.Resolver.TickInterval,
		DirectoryCron: cfg.League.DirectoryCron,
		SlateHour:     uint(cfg.League.SlateHour),
	})
	if err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.NewRouter(fantasyService, engine, server.Options{CORSOrigins: cfg.Server.CORSOrigins}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Error starting HTTP server", "error", err)
		}
	}()

	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			slog.Error("Error running telegram bot", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error shutting down HTTP server", "error", err)
	}

	return nil
}

func newStore(ctx context.Context, cfg config.Redis) (repository.Store, func(), error) {
	if cfg.URL == "" {
		slog.Info("REDIS_URL not set, using in-memory store")
		return memory.NewRepository(), func() {}, nil
	}
	client, err := redis.Connect(ctx, cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	return redis.NewRepository(client), func() {
		if err := client.Close(); err != nil {
			slog.Error("Error closing redis client", "error", err)
		}
	}, nil
}
