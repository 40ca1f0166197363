// internal/httpserver/session.go
//
// Session tokens tie a browser (or bearer client) to its game.
// Responsibilities:
//   - Sign an HS256 JWT carrying the game ID ("gid") with a configurable expiry.
//   - Read the token from the Authorization header or the session cookie.
//   - requireSession middleware: resolve the token to a *game.Game in the store.
//
// Notes:
//   - There are no accounts; the token only proves which game the caller owns.
//   - Cookies are Secure + SameSite=None in production, Lax otherwise.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/jeopardy/internal/game"
	"github.com/robalobadob/jeopardy/internal/store"
)

// SessionCookie is the cookie holding the session token.
const SessionCookie = "jeopardy_session"

var errInvalidSession = errors.New("invalid session token")

// signSession creates a token for gameID that expires after the session TTL.
func (s *Server) signSession(gameID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": gameID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseSession validates a token and returns the game ID it carries.
func (s *Server) parseSession(tok string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidSession, err)
	}
	if !t.Valid {
		return "", errInvalidSession
	}
	gid, _ := claims["gid"].(string)
	if gid == "" {
		return "", errInvalidSession
	}
	return gid, nil
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.SecureCookies {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or session cookie.
func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// sessionGame resolves the caller's game, or returns store.ErrNotFound /
// errInvalidSession.
func (s *Server) sessionGame(r *http.Request) (*game.Game, error) {
	tok := bearerOrCookie(r)
	if tok == "" {
		return nil, errInvalidSession
	}
	gid, err := s.parseSession(tok)
	if err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), gid)
}

// ctxGameKey is the context key type for storing the caller's *game.Game.
type ctxGameKey struct{}

// gameFrom returns the game placed in the request context by requireSession.
func gameFrom(r *http.Request) *game.Game {
	g, _ := r.Context().Value(ctxGameKey{}).(*game.Game)
	return g
}

// requireSession enforces a valid session whose game is still held.
func (s *Server) requireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g, err := s.sessionGame(r)
			switch {
			case errors.Is(err, store.ErrNotFound):
				// Games are lost on restart or swept once idle; the client starts over.
				writeError(w, http.StatusNotFound, "game_not_found")
				return
			case err != nil:
				hlog.FromRequest(r).Debug().Err(err).Msg("rejecting session")
				writeError(w, http.StatusUnauthorized, "no_session")
				return
			}
			ctx := context.WithValue(r.Context(), ctxGameKey{}, g)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
