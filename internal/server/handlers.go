package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"stock-signals/internal/fetcher"
	"stock-signals/internal/symbols"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// GET /api/v1/analyze/{symbol}
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/api/v1/analyze/")
	if symbol == "" || strings.Contains(symbol, "/") {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}

	rep, err := s.analyzer.Analyze(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, fetcher.ErrNoData) {
			writeError(w, http.StatusNotFound, "no candle data for symbol")
			return
		}
		writeError(w, http.StatusBadGateway, "analysis failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// GET /api/v1/search?q=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	results := symbols.Search(r.URL.Query().Get("q"))
	if results == nil {
		results = []symbols.Suggestion{}
	}
	writeJSON(w, http.StatusOK, results)
}

// GET /api/v1/symbols
func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, symbols.All())
}

// GET /api/v1/analyses
func (s *Server) handleLatestAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rows, err := s.store.LatestPerSymbol(queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GET /api/v1/analyses/{symbol}
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/api/v1/analyses/")
	if symbol == "" || strings.Contains(symbol, "/") {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}

	rows, err := s.store.History(symbols.Normalize(symbol), queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GET and POST /api/v1/watchlist
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.store.Watchlist()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodPost:
		var req struct {
			Symbol string `json:"symbol"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
			writeError(w, http.StatusBadRequest, "body must be {\"symbol\": \"...\"}")
			return
		}

		sym := symbols.Normalize(req.Symbol)
		inst, ok := symbols.Lookup(sym)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown symbol "+sym)
			return
		}
		if err := s.store.AddWatch(inst.Symbol, symbols.Exchange(req.Symbol)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"symbol": inst.Symbol})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// DELETE /api/v1/watchlist/{symbol}
func (s *Server) handleWatchlistItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/api/v1/watchlist/")
	if symbol == "" || strings.Contains(symbol, "/") {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}

	if err := s.store.RemoveWatch(symbols.Normalize(symbol)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultHistoryLimit
	}
	if n > maxHistoryLimit {
		return maxHistoryLimit
	}
	return n
}
