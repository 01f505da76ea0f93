package main

import (
	"context"
	"os"

	"github.com/blockedby/tg-grabber/internal/channels"
	"github.com/blockedby/tg-grabber/internal/config"
	"github.com/blockedby/tg-grabber/internal/grabber"
	"github.com/blockedby/tg-grabber/internal/logger"
	"github.com/blockedby/tg-grabber/internal/publisher"
	"github.com/blockedby/tg-grabber/internal/sheets"
	"github.com/blockedby/tg-grabber/internal/store"
	"github.com/blockedby/tg-grabber/internal/telegram"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments use actual environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()

	// credential check happens before any network activity
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	list, err := channels.Load(cfg.ChannelsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load channel list")
	}

	log.Info().
		Int("channels", len(list.Channels)).
		Str("sheet", cfg.SheetTitle).
		Str("worksheet", cfg.WorksheetName).
		Msg("starting grabber run")

	ctx := context.Background()

	table, err := sheets.Open(ctx, cfg.CredentialsFile, cfg.SheetTitle, cfg.WorksheetName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open sheet store")
	}

	proto, err := telegram.NewProtoClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telegram client")
	}
	tgClient := telegram.NewClient(proto, cfg.RateRPS, cfg.RateBurst)

	var pub grabber.EventPublisher
	if cfg.NatsURL != "" {
		p, err := publisher.New(cfg.NatsURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
		} else {
			pub = p
		}
	}

	svc := grabber.NewService(
		tgClient,
		store.NewWatermarks(table),
		grabber.Filter{Include: list.Include, Exclude: list.Exclude},
		pub,
	)

	result, err := svc.Run(ctx, list.Channels)
	tgClient.Close()
	if err != nil {
		log.Error().Err(err).Msg("run aborted")
		os.Exit(1)
	}

	log.Info().
		Int("channels", result.Channels).
		Int("skipped", result.Skipped).
		Int("appended", result.Appended).
		Msg("run finished")
}
