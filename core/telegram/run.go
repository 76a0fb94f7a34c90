package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	coreconfig "github.com/keei051/kara-boy/core/config"

	tele "gopkg.in/telebot.v4"
)

const (
	webhookCleanupAttempts = 5
	webhookCleanupBackoff  = 3 * time.Second
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	// HTTPClient overrides the default tuned client when set.
	HTTPClient *http.Client

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup bool

	OnStart func(ctx context.Context, bot *tele.Bot) error
	OnStop  func(ctx context.Context, bot *tele.Bot) error
}

// RunTelegram composes and runs the Telegram bot until the provided context is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}

	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = BuildHTTPClient()
	}

	// Longpoll mode must not compete with a stale webhook registration:
	// clear it with bounded retry before the first getUpdates call.
	if !opts.DisableWebhookCleanup && strings.EqualFold(cfg.Telegram.RunMode, coreconfig.RunModeLongpoll) {
		if err := clearWebhook(ctx, httpClient, cfg.Telegram.Token); err != nil {
			return fmt.Errorf("telegram: webhook cleanup failed: %w", err)
		}
	}

	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})

	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: httpClient,
	}

	buildStart := time.Now()
	bot, err := tele.NewBot(settings)
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	switch p := poller.(type) {
	case *tele.Webhook:
		zap.L().Info("webhook mode",
			zap.String("listen", p.Listen),
			zap.String("public_url", p.Endpoint.PublicURL),
			zap.Duration("build_duration", time.Since(buildStart)),
		)
	default:
		timeoutSec := 10
		if cfg.Telegram.LongPollTimeoutSeconds > 0 {
			timeoutSec = cfg.Telegram.LongPollTimeoutSeconds
		}
		zap.L().Info("polling mode",
			zap.Int("timeout_seconds", timeoutSec),
			zap.Duration("build_duration", time.Since(buildStart)),
		)
	}

	for _, mw := range opts.Middlewares {
		if mw.Use == nil {
			continue
		}
		bot.Use(mw.Use)
	}

	for _, route := range opts.Routes {
		if route.Endpoint == nil || route.Handler == nil {
			continue
		}
		bot.Handle(route.Endpoint, route.Handler)
	}

	InitBotCommands(bot, reg)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, bot); err != nil {
			return err
		}
	}

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		runErr = ctx.Err()
	case <-runDone:
	}

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.WithoutCancel(ctx), bot)
	}

	if stopErr != nil {
		return stopErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// clearWebhook deletes a stale webhook registration, retrying with a fixed
// backoff before giving up.
func clearWebhook(ctx context.Context, client *http.Client, token string) error {
	var lastErr error
	for attempt := 1; attempt <= webhookCleanupAttempts; attempt++ {
		lastErr = deleteWebhook(ctx, client, token, true)
		if lastErr == nil {
			zap.L().Info("webhook deleted", zap.Int("attempt", attempt))
			return nil
		}
		zap.L().Warn("failed to delete webhook",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt == webhookCleanupAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(webhookCleanupBackoff):
		}
	}
	return lastErr
}

func deleteWebhook(ctx context.Context, client *http.Client, token string, dropPending bool) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	url := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)
	body := "drop_pending_updates=false"
	if dropPending {
		body = "drop_pending_updates=true"
	}
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}
