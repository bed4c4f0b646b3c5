package analyzer

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"stock-signals/internal/model"
	"stock-signals/internal/notification"
	sqlitestore "stock-signals/internal/store/sqlite"
)

// stubFetcher serves a canned series and counts provider calls.
type stubFetcher struct {
	series      model.Series
	err         error
	tokenCalls  int
	seriesCalls int
}

func (f *stubFetcher) ResolveToken(ctx context.Context, exchange, symbol string) (string, error) {
	f.tokenCalls++
	return "11536", nil
}

func (f *stubFetcher) DailySeries(ctx context.Context, exchange, token string, days int) (model.Series, error) {
	f.seriesCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

// syntheticSeries builds n daily bars following a sine wave around base,
// enough history for every indicator window.
func syntheticSeries(n int, base float64) model.Series {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := make(model.Series, n)
	for i := 0; i < n; i++ {
		c := base + 20*math.Sin(float64(i)/8)
		series[i] = model.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c - 1,
			High:      c + 2,
			Low:       c - 2,
			Close:     c,
			Volume:    100000 + float64(i%7)*5000,
		}
	}
	return series
}

func newTestStore(t *testing.T) *sqlitestore.Store {
	t.Helper()
	store, err := sqlitestore.New(sqlitestore.Config{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAnalyze_FullPipeline(t *testing.T) {
	fetch := &stubFetcher{series: syntheticSeries(300, 500)}
	store := newTestStore(t)
	svc := New(Config{HistoryDays: 365}, fetch, store)

	rep, err := svc.Analyze(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if rep.Symbol != "TCS" || rep.Exchange != "NSE" {
		t.Errorf("symbol/exchange = %s/%s", rep.Symbol, rep.Exchange)
	}
	wantPrice := fetch.series[len(fetch.series)-1].Close
	if rep.Price != wantPrice {
		t.Errorf("price = %v, want %v", rep.Price, wantPrice)
	}
	if rep.Result.GeneratedAt.IsZero() {
		t.Error("result timestamp not set")
	}
	if rep.Bundle.RSI.Value == nil {
		t.Error("expected RSI computed with 300 bars of history")
	}

	// Persisted row should be queryable.
	rows, err := store.History("TCS", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("persisted rows = %d, want 1", len(rows))
	}
	if rows[0].Signal != rep.Result.Signal {
		t.Errorf("persisted signal = %s, want %s", rows[0].Signal, rep.Result.Signal)
	}
}

func TestAnalyze_NormalizesSuffix(t *testing.T) {
	fetch := &stubFetcher{series: syntheticSeries(300, 500)}
	svc := New(Config{}, fetch, newTestStore(t))

	rep, err := svc.Analyze(context.Background(), "RELIANCE.BO")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Symbol != "RELIANCE" {
		t.Errorf("symbol = %s, want RELIANCE", rep.Symbol)
	}
	if rep.Exchange != "BSE" {
		t.Errorf("exchange = %s, want BSE", rep.Exchange)
	}
}

func TestAnalyze_TokenResolvedOnce(t *testing.T) {
	fetch := &stubFetcher{series: syntheticSeries(300, 500)}
	svc := New(Config{}, fetch, newTestStore(t))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Analyze(ctx, "INFY"); err != nil {
			t.Fatalf("Analyze #%d: %v", i, err)
		}
	}
	if fetch.tokenCalls != 1 {
		t.Errorf("token lookups = %d, want 1", fetch.tokenCalls)
	}
	if fetch.seriesCalls != 3 {
		t.Errorf("series fetches = %d, want 3", fetch.seriesCalls)
	}
}

func TestAnalyze_FetchFailure(t *testing.T) {
	fetch := &stubFetcher{err: errors.New("provider down")}
	svc := New(Config{}, fetch, newTestStore(t))

	if _, err := svc.Analyze(context.Background(), "TCS"); err == nil {
		t.Fatal("expected error when provider fails")
	}

	// Nothing should have been persisted.
	rows, err := svc.store.History("TCS", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("persisted rows = %d, want 0", len(rows))
	}
}

// fakeCache is an in-memory ResultCache.
type fakeCache struct {
	series map[string]model.Series
	latest map[string]model.SignalResult
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		series: make(map[string]model.Series),
		latest: make(map[string]model.SignalResult),
	}
}

func (c *fakeCache) GetSeries(ctx context.Context, symbol string) model.Series {
	return c.series[symbol]
}

func (c *fakeCache) SetSeries(ctx context.Context, symbol string, series model.Series) {
	c.series[symbol] = series
}

func (c *fakeCache) GetLatest(ctx context.Context, symbol string) *model.SignalResult {
	res, ok := c.latest[symbol]
	if !ok {
		return nil
	}
	return &res
}

func (c *fakeCache) SetLatest(ctx context.Context, symbol string, res model.SignalResult) {
	c.latest[symbol] = res
}

func TestAnalyze_CachedSeriesSkipsProvider(t *testing.T) {
	cache := newFakeCache()
	cache.SetSeries(context.Background(), "TCS", syntheticSeries(300, 500))

	fetch := &stubFetcher{}
	svc := New(Config{}, fetch, newTestStore(t), WithCache(cache))

	rep, err := svc.Analyze(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !rep.FromCache {
		t.Error("report not marked as served from cache")
	}
	if fetch.tokenCalls != 0 || fetch.seriesCalls != 0 {
		t.Errorf("provider called %d/%d times on a cache hit", fetch.tokenCalls, fetch.seriesCalls)
	}
	if got := cache.GetLatest(context.Background(), "TCS"); got == nil {
		t.Error("latest result not written back to the cache")
	}
}

func TestScanOnce_SkipsFreshResults(t *testing.T) {
	cache := newFakeCache()
	cache.SetLatest(context.Background(), "TCS", model.SignalResult{
		Signal:      model.Hold,
		GeneratedAt: time.Now().Add(-time.Minute),
	})
	cache.SetLatest(context.Background(), "INFY", model.SignalResult{
		Signal:      model.Hold,
		GeneratedAt: time.Now().Add(-time.Hour),
	})

	fetch := &stubFetcher{series: syntheticSeries(300, 500)}
	store := newTestStore(t)
	svc := New(Config{}, fetch, store, WithCache(cache))

	svc.scanOnce(context.Background(), ScanConfig{
		Interval: 15 * time.Minute,
		Symbols:  []string{"TCS", "INFY"},
	})

	// TCS is fresh and skipped; only INFY's stale result gets recomputed.
	if fetch.seriesCalls != 1 {
		t.Errorf("series fetches = %d, want 1", fetch.seriesCalls)
	}
	rows, err := store.History("INFY", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("INFY rows = %d, want 1", len(rows))
	}
	rows, err = store.History("TCS", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("TCS rows = %d, want 0", len(rows))
	}
}

type recordingNotifier struct {
	alerts []notification.Alert
}

func (r *recordingNotifier) Send(ctx context.Context, a notification.Alert) error {
	r.alerts = append(r.alerts, a)
	return nil
}

func TestAnalyze_NotifiesOnStrongSignal(t *testing.T) {
	// Monotonic decline drives RSI, MACD, and the moving averages bearish.
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := make(model.Series, 300)
	for i := range series {
		c := 1000 - float64(i)*2
		series[i] = model.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c + 1, High: c + 2, Low: c - 2, Close: c,
			Volume: 100000,
		}
	}

	notif := &recordingNotifier{}
	svc := New(Config{}, &stubFetcher{series: series}, newTestStore(t), WithNotifier(notif))

	rep, err := svc.Analyze(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if rep.Result.Signal == model.Sell && rep.Result.Confidence >= 80 {
		if len(notif.alerts) != 1 {
			t.Fatalf("alerts sent = %d, want 1", len(notif.alerts))
		}
		if notif.alerts[0].Level != notification.AlertCritical {
			t.Errorf("alert level = %s, want CRITICAL", notif.alerts[0].Level)
		}
	} else if len(notif.alerts) != 0 {
		t.Errorf("unexpected alert for %s at %.0f", rep.Result.Signal, rep.Result.Confidence)
	}
}

func TestScanOnce_UsesWatchlist(t *testing.T) {
	fetch := &stubFetcher{series: syntheticSeries(300, 500)}
	store := newTestStore(t)
	svc := New(Config{}, fetch, store)

	for _, sym := range []string{"TCS", "INFY"} {
		if err := store.AddWatch(sym, "NSE"); err != nil {
			t.Fatalf("AddWatch(%s): %v", sym, err)
		}
	}

	svc.scanOnce(context.Background(), ScanConfig{})

	latest, err := store.LatestPerSymbol(10)
	if err != nil {
		t.Fatalf("LatestPerSymbol: %v", err)
	}
	if len(latest) != 2 {
		t.Errorf("analyzed symbols = %d, want 2", len(latest))
	}
}
