// Package redis caches the latest analysis per symbol and recently fetched
// bar series. All calls run through a circuit breaker: when Redis is down
// the cache degrades to misses instead of failing the request path.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"stock-signals/internal/model"
)

const (
	latestTTL = 30 * time.Minute
	seriesTTL = 15 * time.Minute
)

// Config configures the Redis cache.
type Config struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Cache wraps the Redis client and its circuit breaker.
type Cache struct {
	client  *goredis.Client
	breaker *CircuitBreaker
}

// Client returns the underlying Redis client for health checks.
func (c *Cache) Client() *goredis.Client { return c.client }

// Breaker exposes the circuit breaker for metrics.
func (c *Cache) Breaker() *CircuitBreaker { return c.breaker }

// New creates the cache and pings the server.
func New(cfg Config) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	cb := NewCircuitBreaker(5, 10*time.Second)
	cb.OnStateChange = func(from, to State) {
		log.Printf("[redis] circuit breaker %s -> %s", from, to)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Cache{client: client, breaker: cb}, nil
}

func latestKey(symbol string) string { return "analysis:latest:" + symbol }
func seriesKey(symbol string) string { return "series:1d:" + symbol }

// SetLatest stores the latest result for a symbol. Errors are absorbed by
// the breaker and logged; caching is never fatal to the request path.
func (c *Cache) SetLatest(ctx context.Context, symbol string, res model.SignalResult) {
	data, err := json.Marshal(res)
	if err != nil {
		log.Printf("[redis] marshal result for %s: %v", symbol, err)
		return
	}

	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, latestKey(symbol), data, latestTTL).Err()
	})
	if err != nil && err != ErrCircuitOpen {
		log.Printf("[redis] set latest %s: %v", symbol, err)
	}
}

// GetLatest returns the cached latest result for a symbol, or nil on a
// miss. An open breaker reads as a miss.
func (c *Cache) GetLatest(ctx context.Context, symbol string) *model.SignalResult {
	var res model.SignalResult
	found := false

	err := c.breaker.Execute(func() error {
		data, err := c.client.Get(ctx, latestKey(symbol)).Bytes()
		if err == goredis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &res); err != nil {
			log.Printf("[redis] corrupt latest entry for %s: %v", symbol, err)
			return nil
		}
		found = true
		return nil
	})
	if err != nil && err != ErrCircuitOpen {
		log.Printf("[redis] get latest %s: %v", symbol, err)
	}
	if !found {
		return nil
	}
	return &res
}

// SetSeries caches a fetched daily series for a symbol.
func (c *Cache) SetSeries(ctx context.Context, symbol string, series model.Series) {
	data, err := json.Marshal(series)
	if err != nil {
		log.Printf("[redis] marshal series for %s: %v", symbol, err)
		return
	}

	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, seriesKey(symbol), data, seriesTTL).Err()
	})
	if err != nil && err != ErrCircuitOpen {
		log.Printf("[redis] set series %s: %v", symbol, err)
	}
}

// GetSeries returns a cached daily series, or nil on a miss.
func (c *Cache) GetSeries(ctx context.Context, symbol string) model.Series {
	var series model.Series
	found := false

	err := c.breaker.Execute(func() error {
		data, err := c.client.Get(ctx, seriesKey(symbol)).Bytes()
		if err == goredis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &series); err != nil {
			log.Printf("[redis] corrupt series entry for %s: %v", symbol, err)
			return nil
		}
		found = true
		return nil
	})
	if err != nil && err != ErrCircuitOpen {
		log.Printf("[redis] get series %s: %v", symbol, err)
	}
	if !found {
		return nil
	}
	return series
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
