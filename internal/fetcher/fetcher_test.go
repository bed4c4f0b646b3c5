package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(url string) *Client {
	return NewClient(Config{
		APIKey:     "key",
		ClientCode: "C123",
		Password:   "pin",
		TOTPSecret: "JBSWY3DPEHPK3PXP",
		RootURL:    url,
		RateLimit:  1000,
		MaxRetry:   200 * time.Millisecond,
	})
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != loginPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-PrivateKey") != "key" {
			t.Errorf("missing API key header")
		}
		w.Write([]byte(`{"status":true,"data":{"jwtToken":"tok123"}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if err := c.Login(context.Background()); err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.accessToken != "tok123" {
		t.Errorf("accessToken = %q, want tok123", c.accessToken)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"Invalid totp"}`))
	}))
	defer srv.Close()

	if err := testClient(srv.URL).Login(context.Background()); err == nil {
		t.Fatalf("rejected login should error")
	}
}

func TestDailySeriesParsesCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"data":[
			["2026-01-05T00:00:00+05:30",100,105,99,104,120000],
			["2026-01-06T00:00:00+05:30",104,108,103,107,98000]
		]}`))
	}))
	defer srv.Close()

	series, err := testClient(srv.URL).DailySeries(context.Background(), "NSE", "3045", 30)
	if err != nil {
		t.Fatalf("daily series: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("len = %d, want 2", len(series))
	}
	if series[1].Close != 107 || series[1].Volume != 98000 {
		t.Errorf("bar = %+v", series[1])
	}
	if !series[0].Timestamp.Before(series[1].Timestamp) {
		t.Errorf("series must be ascending")
	}
}

func TestDailySeriesNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"data":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).DailySeries(context.Background(), "NSE", "3045", 30)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestDailySeriesRetriesTransientFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status":true,"data":[["2026-01-05T00:00:00+05:30",1,2,0.5,1.5,10]]}`))
	}))
	defer srv.Close()

	series, err := testClient(srv.URL).DailySeries(context.Background(), "NSE", "3045", 30)
	if err != nil {
		t.Fatalf("daily series: %v", err)
	}
	if attempts < 2 {
		t.Errorf("expected a retry, attempts = %d", attempts)
	}
	if len(series) != 1 {
		t.Errorf("len = %d, want 1", len(series))
	}
}

func TestResolveTokenMatchesEquitySuffix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"data":[
			{"exchange":"NSE","tradingsymbol":"SBIN-EQ","symboltoken":"3045"},
			{"exchange":"NSE","tradingsymbol":"SBINFACTOR","symboltoken":"9999"}
		]}`))
	}))
	defer srv.Close()

	tok, err := testClient(srv.URL).ResolveToken(context.Background(), "NSE", "sbin")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tok != "3045" {
		t.Errorf("token = %q, want 3045", tok)
	}
}
