// Package analyzer orchestrates a full analysis pass: fetch candles,
// compute indicators, aggregate the signal, persist, cache, and fan out.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"stock-signals/internal/fetcher"
	"stock-signals/internal/gateway"
	"stock-signals/internal/indicator"
	"stock-signals/internal/metrics"
	"stock-signals/internal/model"
	"stock-signals/internal/notification"
	"stock-signals/internal/signal"
	sqlitestore "stock-signals/internal/store/sqlite"
	"stock-signals/internal/symbols"
)

// SeriesFetcher abstracts the market data provider.
type SeriesFetcher interface {
	ResolveToken(ctx context.Context, exchange, symbol string) (string, error)
	DailySeries(ctx context.Context, exchange, symbolToken string, days int) (model.Series, error)
}

// ResultCache is the cache surface the pipeline uses. Satisfied by
// *redisstore.Cache; all methods degrade to misses, never errors.
type ResultCache interface {
	GetSeries(ctx context.Context, symbol string) model.Series
	SetSeries(ctx context.Context, symbol string, series model.Series)
	GetLatest(ctx context.Context, symbol string) *model.SignalResult
	SetLatest(ctx context.Context, symbol string, res model.SignalResult)
}

// Config holds analyzer tunables.
type Config struct {
	// HistoryDays is how far back to fetch daily candles. Needs to cover
	// the slowest indicator window (SMA 200) with headroom.
	HistoryDays int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{HistoryDays: 365}
}

// Service wires the analysis pipeline. Cache, hub, notifier, and metrics
// are optional; a nil dependency disables that stage.
type Service struct {
	cfg    Config
	fetch  SeriesFetcher
	calc   *indicator.Calculator
	store  *sqlitestore.Store
	cache  ResultCache
	hub    *gateway.Hub
	notify notification.Notifier
	prom   *metrics.Metrics
	health *metrics.HealthStatus

	mu     sync.Mutex
	tokens map[string]string // symbol -> provider token
}

// New creates the analysis service. fetch and store are required.
func New(cfg Config, fetch SeriesFetcher, store *sqlitestore.Store, opts ...Option) *Service {
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = DefaultConfig().HistoryDays
	}
	svc := &Service{
		cfg:    cfg,
		fetch:  fetch,
		calc:   indicator.NewCalculator(indicator.DefaultConfig()),
		store:  store,
		tokens: make(map[string]string),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Option configures optional Service dependencies.
type Option func(*Service)

func WithCache(c ResultCache) Option { return func(s *Service) { s.cache = c } }

func WithHub(h *gateway.Hub) Option { return func(s *Service) { s.hub = h } }

func WithNotifier(n notification.Notifier) Option { return func(s *Service) { s.notify = n } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.prom = m } }

func WithHealth(h *metrics.HealthStatus) Option { return func(s *Service) { s.health = h } }

// Report is the outcome of one analysis pass.
type Report struct {
	Symbol      string                `json:"symbol"`
	Exchange    string                `json:"exchange"`
	Price       float64               `json:"price"`
	Result      model.SignalResult    `json:"result"`
	Bundle      model.IndicatorBundle `json:"indicators"`
	FromCache   bool                  `json:"from_cache"` // candle series served from Redis
	GeneratedAt time.Time             `json:"generated_at"`
}

// Analyze runs the full pipeline for one symbol. The raw symbol may carry
// a .NS or .BO suffix to select the exchange.
func (svc *Service) Analyze(ctx context.Context, rawSymbol string) (Report, error) {
	sym := symbols.Normalize(rawSymbol)
	exch := symbols.Exchange(rawSymbol)

	series, fromCache, err := svc.loadSeries(ctx, sym, exch)
	if err != nil {
		if svc.prom != nil {
			svc.prom.FetchErrors.Inc()
		}
		return Report{}, fmt.Errorf("load series for %s: %w", sym, err)
	}

	price, ok := series.LastClose()
	if !ok {
		return Report{}, fmt.Errorf("load series for %s: %w", sym, fetcher.ErrNoData)
	}

	computeStart := time.Now()
	bundle := svc.calc.Calculate(series)
	res := signal.Aggregate(bundle, series)
	if svc.prom != nil {
		svc.prom.ComputeDur.Observe(time.Since(computeStart).Seconds())
		svc.prom.AnalysesTotal.WithLabelValues(res.Signal.String()).Inc()
	}

	svc.persist(sym, exch, price, res, bundle)
	svc.fanOut(ctx, sym, exch, price, res)

	if svc.health != nil {
		svc.health.SetLastAnalysisAt(res.GeneratedAt)
	}

	return Report{
		Symbol:      sym,
		Exchange:    exch,
		Price:       price,
		Result:      res,
		Bundle:      bundle,
		FromCache:   fromCache,
		GeneratedAt: res.GeneratedAt,
	}, nil
}

// loadSeries returns the daily candle series, preferring the Redis cache.
func (svc *Service) loadSeries(ctx context.Context, sym, exch string) (model.Series, bool, error) {
	if svc.cache != nil {
		if series := svc.cache.GetSeries(ctx, sym); len(series) > 0 {
			if svc.prom != nil {
				svc.prom.CacheHits.Inc()
			}
			return series, true, nil
		}
		if svc.prom != nil {
			svc.prom.CacheMisses.Inc()
		}
	}

	token, err := svc.resolveToken(ctx, sym, exch)
	if err != nil {
		return nil, false, err
	}

	fetchStart := time.Now()
	series, err := svc.fetch.DailySeries(ctx, exch, token, svc.cfg.HistoryDays)
	if svc.prom != nil {
		svc.prom.FetchDur.Observe(time.Since(fetchStart).Seconds())
	}
	if err != nil {
		return nil, false, err
	}

	if svc.cache != nil {
		svc.cache.SetSeries(ctx, sym, series)
	}
	return series, false, nil
}

// resolveToken maps a symbol to the provider's instrument token, cached
// for the life of the process.
func (svc *Service) resolveToken(ctx context.Context, sym, exch string) (string, error) {
	svc.mu.Lock()
	token, ok := svc.tokens[sym]
	svc.mu.Unlock()
	if ok {
		return token, nil
	}

	token, err := svc.fetch.ResolveToken(ctx, exch, sym)
	if err != nil {
		return "", fmt.Errorf("resolve token: %w", err)
	}

	svc.mu.Lock()
	svc.tokens[sym] = token
	svc.mu.Unlock()
	return token, nil
}

func (svc *Service) persist(sym, exch string, price float64, res model.SignalResult, bundle model.IndicatorBundle) {
	start := time.Now()
	analysis := model.NewAnalysis(sym, exch, price, res, bundle)
	if _, err := svc.store.InsertAnalysis(analysis); err != nil {
		log.Printf("[analyzer] persist %s: %v", sym, err)
		return
	}
	if svc.prom != nil {
		svc.prom.PersistDur.Observe(time.Since(start).Seconds())
	}
}

func (svc *Service) fanOut(ctx context.Context, sym, exch string, price float64, res model.SignalResult) {
	if svc.cache != nil {
		svc.cache.SetLatest(ctx, sym, res)
	}
	if svc.hub != nil {
		svc.hub.Publish(ctx, sym, exch, price, res)
	}
	if svc.notify != nil {
		if alert, ok := notification.SignalAlert(sym, price, res); ok {
			if err := svc.notify.Send(ctx, alert); err != nil {
				log.Printf("[analyzer] notify %s: %v", sym, err)
			} else if svc.prom != nil {
				svc.prom.AlertsTotal.Inc()
			}
		}
	}
}
