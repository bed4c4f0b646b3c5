// Package sqlite persists analysis history and the scan watchlist.
// Single-writer WAL database, one connection for writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"stock-signals/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Config configures the SQLite store.
type Config struct {
	DBPath string // e.g. "data/analyses.db"
}

// Store owns the analyses and watchlist tables.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// New opens the database, enables WAL and creates the schema.
func New(cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS analyses (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol      TEXT    NOT NULL,
			exchange    TEXT    NOT NULL,
			price       REAL    NOT NULL,
			signal      TEXT    NOT NULL,
			confidence  REAL    NOT NULL,
			risk        TEXT    NOT NULL,
			rsi         REAL,
			macd        REAL,
			macd_signal REAL,
			ema_9       REAL,
			ema_21      REAL,
			sma_50      REAL,
			sma_200     REAL,
			bb_upper    REAL,
			bb_middle   REAL,
			bb_lower    REAL,
			volume      REAL,
			created_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_analyses_symbol_created
			ON analyses (symbol, created_at DESC);

		CREATE TABLE IF NOT EXISTS watchlist (
			symbol   TEXT PRIMARY KEY,
			exchange TEXT NOT NULL,
			added_at INTEGER NOT NULL
		);
	`)
	return err
}

// InsertAnalysis stores one analysis row and returns its id.
func (s *Store) InsertAnalysis(a model.Analysis) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO analyses (
			symbol, exchange, price, signal, confidence, risk,
			rsi, macd, macd_signal, ema_9, ema_21, sma_50, sma_200,
			bb_upper, bb_middle, bb_lower, volume, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.Symbol, a.Exchange, a.Price, a.Signal.String(), a.Confidence, string(a.Risk),
		nullable(a.RSI), nullable(a.MACD), nullable(a.MACDSignal),
		nullable(a.EMA9), nullable(a.EMA21), nullable(a.SMA50), nullable(a.SMA200),
		nullable(a.BBUpper), nullable(a.BBMiddle), nullable(a.BBLower),
		nullable(a.Volume), a.CreatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite insert analysis: %w", err)
	}
	return res.LastInsertId()
}

// LatestPerSymbol returns the most recent analysis for each symbol,
// newest first, capped at limit.
func (s *Store) LatestPerSymbol(limit int) ([]model.Analysis, error) {
	rows, err := s.db.Query(`
		SELECT id, symbol, exchange, price, signal, confidence, risk,
		       rsi, macd, macd_signal, ema_9, ema_21, sma_50, sma_200,
		       bb_upper, bb_middle, bb_lower, volume, created_at
		FROM analyses
		WHERE id IN (SELECT MAX(id) FROM analyses GROUP BY symbol)
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query latest analyses: %w", err)
	}
	defer rows.Close()
	return scanAnalyses(rows)
}

// History returns recent analyses for one symbol, newest first.
func (s *Store) History(symbol string, limit int) ([]model.Analysis, error) {
	rows, err := s.db.Query(`
		SELECT id, symbol, exchange, price, signal, confidence, risk,
		       rsi, macd, macd_signal, ema_9, ema_21, sma_50, sma_200,
		       bb_upper, bb_middle, bb_lower, volume, created_at
		FROM analyses
		WHERE symbol = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query history %s: %w", symbol, err)
	}
	defer rows.Close()
	return scanAnalyses(rows)
}

func scanAnalyses(rows *sql.Rows) ([]model.Analysis, error) {
	var out []model.Analysis
	for rows.Next() {
		var a model.Analysis
		var signal, risk string
		var tsUnix int64
		var rsi, macd, macdSig, ema9, ema21, sma50, sma200, bbU, bbM, bbL, vol sql.NullFloat64

		err := rows.Scan(&a.ID, &a.Symbol, &a.Exchange, &a.Price, &signal, &a.Confidence, &risk,
			&rsi, &macd, &macdSig, &ema9, &ema21, &sma50, &sma200,
			&bbU, &bbM, &bbL, &vol, &tsUnix)
		if err != nil {
			return nil, fmt.Errorf("sqlite scan analysis: %w", err)
		}

		if err := a.Signal.UnmarshalText([]byte(signal)); err != nil {
			return nil, fmt.Errorf("sqlite analysis %d: %w", a.ID, err)
		}
		a.Risk = model.RiskLevel(risk)
		a.CreatedAt = time.Unix(tsUnix, 0).UTC()
		a.RSI = floatPtr(rsi)
		a.MACD = floatPtr(macd)
		a.MACDSignal = floatPtr(macdSig)
		a.EMA9 = floatPtr(ema9)
		a.EMA21 = floatPtr(ema21)
		a.SMA50 = floatPtr(sma50)
		a.SMA200 = floatPtr(sma200)
		a.BBUpper = floatPtr(bbU)
		a.BBMiddle = floatPtr(bbM)
		a.BBLower = floatPtr(bbL)
		a.Volume = floatPtr(vol)
		out = append(out, a)
	}
	return out, rows.Err()
}

// WatchItem is one watchlist entry.
type WatchItem struct {
	Symbol   string    `json:"symbol"`
	Exchange string    `json:"exchange"`
	AddedAt  time.Time `json:"added_at"`
}

// AddWatch inserts a symbol into the watchlist; re-adding is a no-op.
func (s *Store) AddWatch(symbol, exchange string) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO watchlist (symbol, exchange, added_at) VALUES (?, ?, ?)
	`, symbol, exchange, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("sqlite add watch %s: %w", symbol, err)
	}
	return nil
}

// RemoveWatch deletes a symbol from the watchlist.
func (s *Store) RemoveWatch(symbol string) error {
	_, err := s.db.Exec(`DELETE FROM watchlist WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("sqlite remove watch %s: %w", symbol, err)
	}
	return nil
}

// Watchlist returns all watched symbols in insertion order.
func (s *Store) Watchlist() ([]WatchItem, error) {
	rows, err := s.db.Query(`SELECT symbol, exchange, added_at FROM watchlist ORDER BY added_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite query watchlist: %w", err)
	}
	defer rows.Close()

	var out []WatchItem
	for rows.Next() {
		var item WatchItem
		var tsUnix int64
		if err := rows.Scan(&item.Symbol, &item.Exchange, &tsUnix); err != nil {
			return nil, fmt.Errorf("sqlite scan watchlist: %w", err)
		}
		item.AddedAt = time.Unix(tsUnix, 0).UTC()
		out = append(out, item)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
