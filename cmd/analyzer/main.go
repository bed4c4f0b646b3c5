// The analyzer binary serves the HTTP API and WebSocket stream for
// on-demand stock analysis.
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
	"stock-signals/internal/server"
	redisstore "stock-signals/internal/store/redis"
	sqlitestore "stock-signals/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	logger.Init("analyzer", slog.LevelInfo)

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// ---- Market data provider ----
	client := fetcher.NewClient(fetcher.Config{
		APIKey:     cfg.AngelAPIKey,
		ClientCode: cfg.AngelClientCode,
		Password:   cfg.AngelPassword,
		TOTPSecret: cfg.AngelTOTPSecret,
		RateLimit:  cfg.FetchRateLimit,
		MaxRetry:   cfg.FetchRetryFor,
	})
	if err := client.Login(ctx); err != nil {
		log.Fatalf("[analyzer] provider login failed: %v", err)
	}

	// ---- Stores ----
	os.MkdirAll("data", 0o755)
	store, err := sqlitestore.New(sqlitestore.Config{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Fatalf("[analyzer] sqlite init failed: %v", err)
	}
	defer store.Close()

	cache, err := redisstore.New(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Printf("[analyzer] WARNING: redis unavailable: %v (continuing without cache)", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// ---- Observability ----
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

	// ---- WebSocket hub ----
	var hub *gateway.Hub
	if cache != nil {
		hub = gateway.NewHub(50, cache.Client())
		go hub.RunRedisFanIn(ctx)
	} else {
		hub = gateway.NewHub(50, nil)
	}
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				prom.WSClients.Set(float64(hub.ClientCount()))
			}
		}
	}()

	// ---- Notifications ----
	notifier := buildNotifier(cfg)

	// ---- Pipeline ----
	opts := []analyzer.Option{
		analyzer.WithHub(hub),
		analyzer.WithNotifier(notifier),
		analyzer.WithMetrics(prom),
		analyzer.WithHealth(health),
	}
	if cache != nil {
		opts = append(opts, analyzer.WithCache(cache))
	}
	svc := analyzer.New(analyzer.DefaultConfig(), client, store, opts...)

	// ---- HTTP API ----
	api := server.New(cfg.ListenAddr, svc, store, hub, health)
	api.Start()
	log.Printf("[analyzer] API listening on %s, metrics on %s", cfg.ListenAddr, cfg.MetricsAddr)

	<-ctx.Done()

	log.Println("[analyzer] shutdown signal received")
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	api.Stop(shutCtx)
	metricsSrv.Stop(shutCtx)
	log.Println("[analyzer] shutdown complete.")
}

func buildNotifier(cfg *config.Config) notification.Notifier {
	backends := []notification.Notifier{notification.NewLogNotifier()}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		backends = append(backends, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL))
	}
	return notification.NewMultiNotifier(backends...)
}
