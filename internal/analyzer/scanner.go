package analyzer

import (
	"context"
	"log"
	"time"

	"stock-signals/internal/markethours"
)

// ScanConfig controls the periodic watchlist scan.
type ScanConfig struct {
	Interval time.Duration
	// Symbols overrides the stored watchlist when non-empty.
	Symbols []string
	// TradingDaysOnly skips scan cycles on weekends and NSE holidays.
	TradingDaysOnly bool
}

// RunScanner analyzes the watchlist on a fixed interval until ctx is
// cancelled. One pass runs immediately on start.
func (svc *Service) RunScanner(ctx context.Context, cfg ScanConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	svc.scanOnce(ctx, cfg)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.scanOnce(ctx, cfg)
		}
	}
}

func (svc *Service) scanOnce(ctx context.Context, cfg ScanConfig) {
	if cfg.TradingDaysOnly && !markethours.IsTradingDay(time.Now()) {
		log.Printf("[analyzer] scan skipped: %s", markethours.StatusString(time.Now()))
		return
	}

	syms := cfg.Symbols
	if len(syms) == 0 {
		items, err := svc.store.Watchlist()
		if err != nil {
			log.Printf("[analyzer] scan: load watchlist: %v", err)
			return
		}
		for _, item := range items {
			syms = append(syms, item.Symbol)
		}
	}
	if len(syms) == 0 {
		log.Println("[analyzer] scan: watchlist empty, nothing to do")
		return
	}

	start := time.Now()
	failed, skipped := 0, 0
	for _, sym := range syms {
		if ctx.Err() != nil {
			return
		}
		// A result fresher than the scan interval still stands, e.g.
		// after a restart or with a second scanner running.
		if svc.cache != nil && cfg.Interval > 0 {
			if last := svc.cache.GetLatest(ctx, sym); last != nil && time.Since(last.GeneratedAt) < cfg.Interval {
				skipped++
				continue
			}
		}
		if _, err := svc.Analyze(ctx, sym); err != nil {
			failed++
			log.Printf("[analyzer] scan %s: %v", sym, err)
		}
	}

	if svc.prom != nil {
		svc.prom.ScanCyclesTotal.Inc()
	}
	log.Printf("[analyzer] scan cycle done: %d symbols, %d skipped, %d failed, took %s",
		len(syms), skipped, failed, time.Since(start).Round(time.Millisecond))
}
