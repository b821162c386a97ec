// Package api exposes the authoritative game over HTTP. Every core entry
// point maps 1:1 to a route; each request commits a full state transition or
// fails with no effect, mirroring the call semantics of the core.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/gorilla/websocket"

	"github.com/invaders/server/config"
	"github.com/invaders/server/internal/arcade"
	"github.com/invaders/server/internal/ledger"
)

// Server wires the session manager and the ledger behind the router.
type Server struct {
	cfg      *config.ServerConfig
	arcade   *arcade.Arcade
	store    ledger.Store
	upgrader websocket.Upgrader
	limiters *ipLimiters
}

// NewServer creates the API server.
func NewServer(cfg *config.ServerConfig, a *arcade.Arcade, store ledger.Store) *Server {
	return &Server{
		cfg:    cfg,
		arcade: a,
		store:  store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// In production, front this with an origin whitelist.
			CheckOrigin: func(r *http.Request) bool {
				return cfg.EnableCORS
			},
		},
		limiters: newIPLimiters(cfg.RateLimit, cfg.RateBurst),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.rateLimit)

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Post("/init", s.handleInit)
			r.Post("/move", s.handleMove)
			r.Post("/shoot", s.handleShoot)
			r.Post("/tick", s.handleTick)
			r.Get("/state", s.handleState)
			r.Get("/score", s.handleScore)
			r.Get("/lives", s.handleLives)
			r.Get("/ship", s.handleShip)
			r.Get("/invaders", s.handleInvaders)
			r.Get("/over", s.handleOver)
			r.Get("/ws", s.handleFeed)
		})

		r.Post("/players", s.handleRegister)
		r.Get("/players/{address}", s.handleIsRegistered)
		r.Post("/scores", s.handleSubmitScore)
		r.Get("/leaderboard", s.handleLeaderboard)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.arcade.GetStats())
}

// session resolves the {id} route param, writing a 404 on a miss.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *arcade.Session {
	sess := s.arcade.Get(chi.URLParam(r, "id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, "unknown session")
	}
	return sess
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.arcade.Create()
	if sess == nil {
		writeError(w, http.StatusServiceUnavailable, "session limit reached")
		return
	}
	log.Printf("Session %s created", sess.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    sess.ID,
		"state": sess.State(),
	})
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.Init())
}

type moveRequest struct {
	Direction int `json:"direction"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"shipX": sess.MoveShip(req.Direction)})
}

func (s *Server) handleShoot(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"fired": sess.Shoot()})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": sess.Tick()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"score": sess.Score()})
}

func (s *Server) handleLives(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint32{"lives": sess.Lives()})
}

func (s *Server) handleShip(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"shipX": sess.ShipX()})
}

func (s *Server) handleInvaders(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"active": sess.ActiveInvaders()})
}

func (s *Server) handleOver(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"over": sess.Over(),
		"won":  sess.Won(),
	})
}

type registerRequest struct {
	Address  string `json:"address"`
	Username string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	// Username bounds live at this boundary, not inside the ledger.
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = "Player"
	}
	if len(username) > config.MaxUsernameLen {
		username = username[:config.MaxUsernameLen]
	}

	if err := s.store.Register(r.Context(), ledger.Address(req.Address), username); err != nil {
		log.Printf("register %s failed: %v", req.Address, err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusOK, ledger.PlayerRecord{
		Address:  ledger.Address(req.Address),
		Username: username,
	})
}

func (s *Server) handleIsRegistered(w http.ResponseWriter, r *http.Request) {
	addr := ledger.Address(chi.URLParam(r, "address"))
	ok, err := s.store.IsRegistered(r.Context(), addr)
	if err != nil {
		log.Printf("is_registered %s failed: %v", addr, err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"registered": ok})
}

type submitScoreRequest struct {
	Address string `json:"address"`
	Score   uint64 `json:"score"`
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req submitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	entry, err := s.store.SubmitScore(r.Context(), ledger.Address(req.Address), req.Score)
	if errors.Is(err, ledger.ErrNotRegistered) {
		writeError(w, http.StatusUnprocessableEntity, "address not registered")
		return
	}
	if err != nil {
		log.Printf("submit_score %s failed: %v", req.Address, err)
		writeError(w, http.StatusInternalServerError, "submission failed")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Entries(r.Context())
	if err != nil {
		log.Printf("leaderboard read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "ledger read failed")
		return
	}

	// The ledger itself stays raw and append-ordered; aggregation is this
	// caller's concern and opt-in.
	if r.URL.Query().Get("aggregate") == "1" {
		writeJSON(w, http.StatusOK, ledger.SumByUsername(entries))
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
