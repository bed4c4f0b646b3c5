// Package fetcher retrieves daily OHLCV history from the Angel One
// SmartAPI historical endpoint. It owns session login (password + TOTP),
// retry with exponential backoff, and client-side rate limiting; callers
// get back a model.Series ready for the indicator calculator.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pquerna/otp/totp"
	"golang.org/x/time/rate"

	"stock-signals/internal/model"
)

// ErrNoData means the provider answered but had no candles for the symbol
// and range. Callers treat this differently from transport failure.
var ErrNoData = errors.New("no candle data for symbol")

const (
	defaultRootURL = "https://apiconnect.angelone.in"

	loginPath  = "/rest/auth/angelbroking/user/v1/loginByPassword"
	candlePath = "/rest/secure/angelbroking/historical/v1/getCandleData"
	scripPath  = "/rest/secure/angelbroking/order/v1/searchScrip"
)

// Config holds provider credentials and tuning knobs.
type Config struct {
	APIKey     string
	ClientCode string
	Password   string
	TOTPSecret string

	RootURL string        // default https://apiconnect.angelone.in
	Timeout time.Duration // per-request, default 10s

	// RateLimit is requests per second against the provider; SmartAPI
	// historical endpoints allow 3 req/s per session.
	RateLimit float64
	MaxRetry  time.Duration // backoff budget per call, default 30s
}

// Client is a thin, typed client for the historical-candle API.
type Client struct {
	cfg         Config
	httpClient  *http.Client
	limiter     *rate.Limiter
	accessToken string
}

// NewClient builds an unauthenticated client; call Login before fetching.
func NewClient(cfg Config) *Client {
	if cfg.RootURL == "" {
		cfg.RootURL = defaultRootURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 3
	}
	if cfg.MaxRetry == 0 {
		cfg.MaxRetry = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
	}
}

type loginResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		JWTToken     string `json:"jwtToken"`
		RefreshToken string `json:"refreshToken"`
		FeedToken    string `json:"feedToken"`
	} `json:"data"`
}

// Login generates a session with a fresh TOTP code and stores the access
// token for subsequent requests.
func (c *Client) Login(ctx context.Context) error {
	code, err := totp.GenerateCode(c.cfg.TOTPSecret, time.Now())
	if err != nil {
		return fmt.Errorf("generate totp: %w", err)
	}

	body := map[string]string{
		"clientcode": c.cfg.ClientCode,
		"password":   c.cfg.Password,
		"totp":       code,
	}

	var out loginResponse
	if err := c.postJSON(ctx, loginPath, body, &out); err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	if !out.Status || out.Data.JWTToken == "" {
		return fmt.Errorf("login rejected: %s", out.Message)
	}

	c.accessToken = out.Data.JWTToken
	log.Printf("[fetcher] session established for %s", c.cfg.ClientCode)
	return nil
}

type candleResponse struct {
	Status  bool    `json:"status"`
	Message string  `json:"message"`
	Data    [][]any `json:"data"`
}

// DailySeries fetches up to days of daily candles for an exchange token,
// newest last. Retries transient failures with exponential backoff;
// ErrNoData is terminal.
func (c *Client) DailySeries(ctx context.Context, exchange, symbolToken string, days int) (model.Series, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	body := map[string]string{
		"exchange":    exchange,
		"symboltoken": symbolToken,
		"interval":    "ONE_DAY",
		"fromdate":    from.Format("2006-01-02 09:15"),
		"todate":      to.Format("2006-01-02 15:30"),
	}

	var series model.Series
	op := func() error {
		var out candleResponse
		if err := c.postJSON(ctx, candlePath, body, &out); err != nil {
			return err
		}
		if !out.Status {
			return fmt.Errorf("candle request rejected: %s", out.Message)
		}
		if len(out.Data) == 0 {
			return backoff.Permanent(ErrNoData)
		}
		s, err := parseCandles(out.Data)
		if err != nil {
			return backoff.Permanent(err)
		}
		series = s
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.cfg.MaxRetry
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("fetch daily candles %s:%s: %w", exchange, symbolToken, err)
	}
	return series, nil
}

type scripResponse struct {
	Status bool `json:"status"`
	Data   []struct {
		Exchange      string `json:"exchange"`
		TradingSymbol string `json:"tradingsymbol"`
		SymbolToken   string `json:"symboltoken"`
	} `json:"data"`
}

// ResolveToken looks up the provider symbol token for a trading symbol.
func (c *Client) ResolveToken(ctx context.Context, exchange, symbol string) (string, error) {
	body := map[string]string{"exchange": exchange, "searchscrip": symbol}

	var out scripResponse
	if err := c.postJSON(ctx, scripPath, body, &out); err != nil {
		return "", fmt.Errorf("search scrip %s: %w", symbol, err)
	}
	want := strings.ToUpper(symbol)
	for _, s := range out.Data {
		// Equity scrips come back with an -EQ suffix.
		if strings.ToUpper(strings.TrimSuffix(s.TradingSymbol, "-EQ")) == want {
			return s.SymbolToken, nil
		}
	}
	return "", fmt.Errorf("search scrip %s: %w", symbol, ErrNoData)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RootURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-PrivateKey", c.cfg.APIKey)
	req.Header.Set("X-UserType", "USER")
	req.Header.Set("X-SourceID", "WEB")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider status %d: %s", resp.StatusCode, truncate(raw, 200))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

// parseCandles converts the provider's positional arrays
// [timestamp, open, high, low, close, volume] into bars. The timestamp is
// a string, the rest are numbers.
func parseCandles(rows [][]any) (model.Series, error) {
	series := make(model.Series, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("candle row %d has %d fields", i, len(row))
		}
		tsStr, ok := row[0].(string)
		if !ok {
			return nil, fmt.Errorf("candle row %d timestamp is %T", i, row[0])
		}
		ts, err := time.Parse(time.RFC3339, tsStr)
		if err != nil {
			return nil, fmt.Errorf("candle row %d timestamp: %w", i, err)
		}
		vals := make([]float64, 5)
		for j := 1; j <= 5; j++ {
			v, ok := row[j].(float64)
			if !ok {
				return nil, fmt.Errorf("candle row %d field %d is %T", i, j, row[j])
			}
			vals[j-1] = v
		}
		series = append(series, model.Bar{
			Timestamp: ts,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("provider candles: %w", err)
	}
	return series, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
