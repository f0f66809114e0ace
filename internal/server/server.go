package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/reconcile"
	"github.com/omarshaarawi/courtside/internal/resolver"
	"github.com/omarshaarawi/courtside/internal/scoring"
)

// Service is what the JSON API reads from.
type Service interface {
	RelevantGame(ctx context.Context, teamID int) resolver.Selection
	PlayerGames(ctx context.Context, playerID, teamID, season int) (reconcile.Result, error)
}

type Options struct {
	CORSOrigins []string
	Timeout     time.Duration
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type PlayerGamesResponse struct {
	PlayerID int               `json:"player_id"`
	TeamID   int               `json:"team_id"`
	Season   int               `json:"season,omitempty"`
	Games    []models.Game     `json:"games"`
	Stats    []models.GameStat `json:"stats"`
	Patched  int               `json:"patched"`
	Pending  int               `json:"pending"`
}

type ScoreRequest struct {
	Lineup        []models.LineupCard             `json:"lineup"`
	StatsByPlayer map[int]models.GameStat         `json:"stats_by_player"`
	TokensByCard  map[string][]models.TokenEffect `json:"tokens_by_card"`
}

type handler struct {
	svc    Service
	engine *scoring.Engine
}

// NewRouter builds the /api/v1 router.
func NewRouter(svc Service, engine *scoring.Engine, opts Options) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	h := &handler{svc: svc, engine: engine}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(opts.Timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/teams/{teamID}/relevant-game", h.relevantGame)
		r.Get("/players/{playerID}/games", h.playerGames)
		r.Post("/lineups/score", h.scoreLineup)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (h *handler) relevantGame(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.Atoi(chi.URLParam(r, "teamID"))
	if err != nil || teamID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid team id", err)
		return
	}
	respondJSON(w, http.StatusOK, h.svc.RelevantGame(r.Context(), teamID))
}

func (h *handler) playerGames(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.Atoi(chi.URLParam(r, "playerID"))
	if err != nil || playerID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid player id", err)
		return
	}
	teamID, err := strconv.Atoi(r.URL.Query().Get("team_id"))
	if err != nil || teamID <= 0 {
		respondError(w, http.StatusBadRequest, "team_id is required", err)
		return
	}
	season := 0
	if v := r.URL.Query().Get("season"); v != "" {
		season, err = strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid season", err)
			return
		}
	}

	res, err := h.svc.PlayerGames(r.Context(), playerID, teamID, season)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load player games", err)
		return
	}

	resp := PlayerGamesResponse{
		PlayerID: playerID,
		TeamID:   teamID,
		Season:   season,
		Games:    res.Games,
		Stats:    res.Stats,
		Patched:  res.Patched,
		Pending:  res.Pending,
	}
	if resp.Games == nil {
		resp.Games = []models.Game{}
	}
	if resp.Stats == nil {
		resp.Stats = []models.GameStat{}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *handler) scoreLineup(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	respondJSON(w, http.StatusOK, h.engine.ScoreLineup(req.Lineup, req.StatsByPlayer, req.TokensByCard))
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		slog.Error(message, "error", err)
	}
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
