package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"stock-signals/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DBPath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleAnalysis(symbol string, ts time.Time) model.Analysis {
	return model.Analysis{
		Symbol:     symbol,
		Exchange:   "NSE",
		Price:      512.40,
		Signal:     model.WeakBuy,
		Confidence: 55.5,
		Risk:       model.RiskHigh,
		RSI:        model.Float(48.2),
		MACD:       model.Float(1.31),
		CreatedAt:  ts,
	}
}

func TestInsertAndHistoryRoundTrip(t *testing.T) {
	s := testStore(t)

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := s.InsertAnalysis(sampleAnalysis("SBIN", base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := s.History("SBIN", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Errorf("history should be newest first")
	}

	a := got[0]
	if a.Signal != model.WeakBuy || a.Risk != model.RiskHigh {
		t.Errorf("round trip lost enum fields: %+v", a)
	}
	if a.RSI == nil || *a.RSI != 48.2 {
		t.Errorf("RSI = %v, want 48.2", a.RSI)
	}
	if a.SMA50 != nil {
		t.Errorf("absent indicator must stay nil, got %v", *a.SMA50)
	}
}

func TestLatestPerSymbol(t *testing.T) {
	s := testStore(t)

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for _, sym := range []string{"SBIN", "TCS", "SBIN"} {
		if _, err := s.InsertAnalysis(sampleAnalysis(sym, base)); err != nil {
			t.Fatalf("insert: %v", err)
		}
		base = base.Add(time.Minute)
	}

	got, err := s.LatestPerSymbol(10)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want one row per symbol", len(got))
	}
}

func TestWatchlistCRUD(t *testing.T) {
	s := testStore(t)

	if err := s.AddWatch("SBIN", "NSE"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddWatch("SBIN", "NSE"); err != nil {
		t.Fatalf("re-add should be a no-op: %v", err)
	}
	if err := s.AddWatch("TCS", "NSE"); err != nil {
		t.Fatalf("add: %v", err)
	}

	items, err := s.Watchlist()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}

	if err := s.RemoveWatch("SBIN"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, _ = s.Watchlist()
	if len(items) != 1 || items[0].Symbol != "TCS" {
		t.Errorf("watchlist after remove = %+v", items)
	}
}
