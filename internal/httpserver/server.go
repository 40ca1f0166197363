// internal/httpserver/server.go
//
// HTTP server wiring for the Jeopardy board.
// Responsibilities:
//   - Router + middleware (CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/" (board page), "/health".
//   - Game endpoints: POST /game/new, GET /game, POST /game/reveal.
//   - Session token issue on /game/new; other game routes require it.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - A failed deal answers 502 but still returns the previous board so the
//     page can keep showing it next to a retry prompt.

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/assets"
	"github.com/robalobadob/jeopardy/internal/board"
	"github.com/robalobadob/jeopardy/internal/events"
	"github.com/robalobadob/jeopardy/internal/game"
	"github.com/robalobadob/jeopardy/internal/store"
)

// Options carries the HTTP-facing settings.
type Options struct {
	ClientOrigin   string        // single CORS origin
	JWTSecret      string        // HS256 key for session tokens
	SessionTTL     time.Duration // session token lifetime
	RequestTimeout time.Duration // per-request handler bound
	SecureCookies  bool          // production cookies
}

// Server bundles router, game store, and the pieces needed to start games.
type Server struct {
	r      *chi.Mux
	store  store.Store
	dealer game.Dealer
	pub    events.Publisher
	opts   Options
	page   []byte // embedded index.html
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, d game.Dealer, pub events.Publisher, opts Options) (*Server, error) {
	web, err := assets.Web()
	if err != nil {
		return nil, err
	}
	page, err := fs.ReadFile(web, "index.html")
	if err != nil {
		return nil, fmt.Errorf("read board page: %w", err)
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	s := &Server{r: chi.NewRouter(), store: st, dealer: d, pub: pub, opts: opts, page: page}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))        // request-scoped logger
	s.r.Use(accessLog)                          // one line per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
	s.r.Use(cors(opts.ClientOrigin))            // credentials-friendly CORS

	// --- board page ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(s.page)
	})

	s.r.Group(func(api chi.Router) {
		api.Use(jsonContentType) // default JSON responses

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "games": s.store.Len()})
		})

		api.Post("/game/new", s.handleNewGame)
		api.With(s.requireSession()).Get("/game", s.handleGetGame)
		api.With(s.requireSession()).Post("/game/reveal", s.handleReveal)

		// JSON 404 for easier debugging
		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
		})
	})

	return s, nil
}

// Router exposes the internal router (used by the serve command and tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("req_id", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
})

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// ------------------------------ GAME ---------------------------------------

// gameRes is the body of POST /game/new and GET /game.
type gameRes struct {
	Token string        `json:"token,omitempty"` // only on /game/new
	Game  game.Snapshot `json:"game"`
}

// failedGameRes is the 502 body of POST /game/new.
type failedGameRes struct {
	Error string        `json:"error"`
	Retry bool          `json:"retry"`
	Token string        `json:"token"`
	Game  game.Snapshot `json:"game"`
}

// handleNewGame deals a fresh board for the caller, creating their game and
// session on first use.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)

	g, err := s.sessionGame(r)
	if err != nil {
		g, err = game.New(s.dealer, s.pub)
		if err != nil {
			logger.Error().Err(err).Msg("create game")
			writeError(w, http.StatusInternalServerError, "create_failed")
			return
		}
		if err := s.store.Save(r.Context(), g); err != nil {
			logger.Error().Err(err).Msg("save game")
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		logger.Info().Str("game", g.ID).Msg("new session")
	}

	// Refresh the token on every start so active players never expire.
	tok, exp, err := s.signSession(g.ID)
	if err != nil {
		logger.Error().Err(err).Msg("sign session")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)

	err = g.NewGame(r.Context())
	switch {
	case errors.Is(err, game.ErrLoading):
		writeError(w, http.StatusConflict, "game_loading")
		return
	case err != nil:
		// Already logged by the game; the previous board (if any) is intact.
		writeJSON(w, http.StatusBadGateway, failedGameRes{
			Error: "could_not_start_game",
			Retry: true,
			Token: tok,
			Game:  g.Snapshot(),
		})
		return
	}
	writeJSON(w, http.StatusOK, gameRes{Token: tok, Game: g.Snapshot()})
}

// handleGetGame returns the caller's current snapshot.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(gameRes{Game: gameFrom(r).Snapshot()})
}

// revealReq/Res payloads for POST /game/reveal.
type revealReq struct {
	Category *int `json:"category"`
	Clue     *int `json:"clue"`
}
type revealRes struct {
	Text  string            `json:"text"`
	State board.RevealState `json:"state"` // "question" | "answer"
}

// handleReveal advances one cell of the caller's board.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req revealReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Category == nil || req.Clue == nil {
		writeError(w, http.StatusBadRequest, "missing_address")
		return
	}

	text, state, err := gameFrom(r).Reveal(r.Context(), *req.Category, *req.Clue)
	switch {
	case errors.Is(err, board.ErrOutOfRange):
		writeError(w, http.StatusBadRequest, "out_of_range")
		return
	case errors.Is(err, game.ErrNoBoard):
		writeError(w, http.StatusConflict, "no_board")
		return
	case errors.Is(err, game.ErrLoading):
		writeError(w, http.StatusConflict, "game_loading")
		return
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Msg("reveal")
		writeError(w, http.StatusInternalServerError, "reveal_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(revealRes{Text: text, State: state})
}
