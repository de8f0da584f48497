package status

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/codemaster-go/internal/middleware"
	"github.com/mcoot/codemaster-go/internal/model"
	"github.com/mcoot/codemaster-go/internal/services/session"
	"github.com/mcoot/codemaster-go/internal/storage"
)

// RouterConfig holds the dependencies the status API exposes
type RouterConfig struct {
	Logger *slog.Logger
	Engine *session.Engine
	Store  storage.ResultStore
}

// NewRouter creates the status API router. The API is read-only: all game
// mutation happens over the TCP protocol.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	r.HandleFunc("/api/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/status", statusHandler(cfg.Engine)).Methods(http.MethodGet)
	r.HandleFunc("/api/results", resultsHandler(cfg.Store, cfg.Logger)).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusHandler reports the live session snapshot
func statusHandler(engine *session.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Snapshot())
	}
}

// resultsHandler lists completed rounds, oldest first
func resultsHandler(store storage.ResultStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rounds, err := store.ListRounds(r.Context())
		if err != nil {
			logger.Error("failed to list round results", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load results"})
			return
		}
		if rounds == nil {
			rounds = []*model.RoundResult{}
		}
		writeJSON(w, http.StatusOK, rounds)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
