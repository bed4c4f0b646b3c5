// The scanner binary analyzes the watchlist on a fixed interval and
// publishes results to Redis for the analyzer's dashboards.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-signals/config"
	"stock-signals/internal/analyzer"
	"stock-signals/internal/fetcher"
	"stock-signals/internal/gateway"
	"stock-signals/internal/logger"
	"stock-signals/internal/metrics"
	"stock-signals/internal/notification"
	redisstore "stock-signals/internal/store/redis"
	sqlitestore "stock-signals/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	logger.Init("scanner", slog.LevelInfo)

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	client := fetcher.NewClient(fetcher.Config{
		APIKey:     cfg.AngelAPIKey,
		ClientCode: cfg.AngelClientCode,
		Password:   cfg.AngelPassword,
		TOTPSecret: cfg.AngelTOTPSecret,
		RateLimit:  cfg.FetchRateLimit,
		MaxRetry:   cfg.FetchRetryFor,
	})
	if err := client.Login(ctx); err != nil {
		log.Fatalf("[scanner] provider login failed: %v", err)
	}

	os.MkdirAll("data", 0o755)
	store, err := sqlitestore.New(sqlitestore.Config{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Fatalf("[scanner] sqlite init failed: %v", err)
	}
	defer store.Close()

	cache, err := redisstore.New(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Printf("[scanner] WARNING: redis unavailable: %v (continuing without cache)", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	if cache != nil {
		cb := cache.Breaker()
		logHook := cb.OnStateChange
		cb.OnStateChange = func(from, to redisstore.State) {
			if logHook != nil {
				logHook(from, to)
			}
			prom.BreakerState.Set(float64(to))
		}
		health.StartLivenessChecker(ctx, cache.Client(), store.DB(), 15*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, store.DB(), 15*time.Second)
	}
	health.SetProviderOK(true)

	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	backends := []notification.Notifier{notification.NewLogNotifier()}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		backends = append(backends, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL))
	}

	opts := []analyzer.Option{
		analyzer.WithNotifier(notification.NewMultiNotifier(backends...)),
		analyzer.WithMetrics(prom),
		analyzer.WithHealth(health),
	}
	if cache != nil {
		opts = append(opts, analyzer.WithCache(cache))
		// Publish-only hub: no WS endpoint here, but analyses reach the
		// analyzer's dashboards over Redis.
		opts = append(opts, analyzer.WithHub(gateway.NewHub(50, cache.Client())))
	}
	svc := analyzer.New(analyzer.DefaultConfig(), client, store, opts...)

	log.Printf("[scanner] scanning every %s", cfg.ScanInterval)
	svc.RunScanner(ctx, analyzer.ScanConfig{
		Interval:        cfg.ScanInterval,
		Symbols:         cfg.ParseScanSymbols(),
		TradingDaysOnly: true,
	})

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	metricsSrv.Stop(shutCtx)
	log.Println("[scanner] shutdown complete.")
}
