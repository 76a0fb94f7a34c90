package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/keei051/kara-boy/core/bot"
	"github.com/keei051/kara-boy/core/buildinfo"
	"github.com/keei051/kara-boy/core/config"
	"github.com/keei051/kara-boy/core/logger"
	"github.com/keei051/kara-boy/core/storage"
	coretelegram "github.com/keei051/kara-boy/core/telegram"
	"github.com/keei051/kara-boy/core/vk"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("bot stopped: %v", err)
	}
}

func run() error {
	// A local .env is a development convenience; missing is fine.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	zlog, err := logger.Init(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("starting kara-boy",
		zap.String("version", buildinfo.Version),
		zap.String("commit", buildinfo.Commit),
	)

	httpClient := coretelegram.BuildHTTPClient()

	store := storage.NewStore(cfg.Storage.LinksPath, zlog.Named("storage"))
	vkClient := vk.NewClient(cfg.VK, httpClient, zlog.Named("vk"))

	handlers := bot.NewHandlers(store, vkClient, vkClient, vkClient.Validator(), bot.NewSessions())

	reg := coretelegram.NewRegistry()
	handlers.Register(reg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return coretelegram.RunTelegram(ctx, coretelegram.RunOptions{
		Config:      cfg,
		Registry:    reg,
		HTTPClient:  httpClient,
		Middlewares: coretelegram.DefaultMiddlewares(cfg, nil),
		Routes:      handlers.Routes(reg),
	})
}
