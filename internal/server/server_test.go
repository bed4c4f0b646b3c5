package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"stock-signals/internal/analyzer"
	"stock-signals/internal/fetcher"
	"stock-signals/internal/model"
	sqlitestore "stock-signals/internal/store/sqlite"
)

type stubAnalyzer struct {
	rep analyzer.Report
	err error
}

func (a *stubAnalyzer) Analyze(ctx context.Context, symbol string) (analyzer.Report, error) {
	if a.err != nil {
		return analyzer.Report{}, a.err
	}
	rep := a.rep
	rep.Symbol = symbol
	return rep, nil
}

func newTestServer(t *testing.T, a Analyzer) (*Server, *sqlitestore.Store) {
	t.Helper()
	store, err := sqlitestore.New(sqlitestore.Config{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(":0", a, store, nil, nil), store
}

func okReport() analyzer.Report {
	return analyzer.Report{
		Exchange: "NSE",
		Price:    3500,
		Result: model.SignalResult{
			Signal:      model.Buy,
			Confidence:  90,
			Risk:        model.RiskLow,
			Explanation: "RSI oversold (25.0)",
			Votes:       map[model.Family]model.Vote{model.FamilyRSI: model.Buy},
			GeneratedAt: time.Now(),
		},
	}
}

func TestHandleAnalyze(t *testing.T) {
	srv, _ := newTestServer(t, &stubAnalyzer{rep: okReport()})

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/analyze/TCS", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body)
	}

	var rep analyzer.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Symbol != "TCS" {
		t.Errorf("symbol = %s", rep.Symbol)
	}
	if rep.Result.Signal != model.Buy || rep.Result.Confidence != 90 {
		t.Errorf("result = %s/%.0f", rep.Result.Signal, rep.Result.Confidence)
	}
}

func TestHandleAnalyze_NoData(t *testing.T) {
	srv, _ := newTestServer(t, &stubAnalyzer{err: fetcher.ErrNoData})

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/analyze/TCS", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestHandleAnalyze_MissingSymbol(t *testing.T) {
	srv, _ := newTestServer(t, &stubAnalyzer{rep: okReport()})

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/analyze/", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	srv, _ := newTestServer(t, &stubAnalyzer{})

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/search?q=tata", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var results []struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected suggestions for 'tata'")
	}
}

func TestHandleSearch_ShortQueryIsEmptyList(t *testing.T) {
	srv, _ := newTestServer(t, &stubAnalyzer{})

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/search?q=t", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if body := rr.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}

func TestHandleSymbols(t *testing.T) {
	srv, _ := newTestServer(t, &stubAnalyzer{})

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/symbols", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var insts []model.Instrument
	if err := json.Unmarshal(rr.Body.Bytes(), &insts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(insts) == 0 {
		t.Fatal("expected the full catalog")
	}
	for i := 1; i < len(insts); i++ {
		if insts[i-1].Symbol >= insts[i].Symbol {
			t.Fatalf("catalog not sorted: %s before %s", insts[i-1].Symbol, insts[i].Symbol)
		}
	}

	rr = httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/symbols", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rr.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	srv, store := newTestServer(t, &stubAnalyzer{})

	rep := okReport()
	a := model.NewAnalysis("TCS", "NSE", rep.Price, rep.Result, model.IndicatorBundle{})
	if _, err := store.InsertAnalysis(a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/analyses/TCS.NS", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var rows []model.Analysis
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].Symbol != "TCS" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestWatchlistLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, &stubAnalyzer{})
	h := srv.routes()

	// Add a known symbol.
	rr := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"symbol":"INFY.NS"}`)
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/watchlist", body))
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body: %s", rr.Code, rr.Body)
	}

	// Unknown symbols are rejected.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/watchlist",
		bytes.NewBufferString(`{"symbol":"NOSUCH"}`)))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown symbol status = %d, want 404", rr.Code)
	}

	// List contains the added entry.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/watchlist", nil))
	var items []sqlitestore.WatchItem
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].Symbol != "INFY" {
		t.Fatalf("items = %+v", items)
	}

	// Remove it.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/v1/watchlist/INFY", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/watchlist", nil))
	json.Unmarshal(rr.Body.Bytes(), &items)
	if len(items) != 0 {
		t.Errorf("items after delete = %+v", items)
	}
}

func TestHealthzWithoutProbes(t *testing.T) {
	srv, _ := newTestServer(t, &stubAnalyzer{})

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}
