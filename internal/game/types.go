// internal/game/types.go
//
// Type definitions for a game session.
// Defines:
//   - Status: coarse lifecycle state reported to the UI.
//   - Snapshot: what the interaction layer renders.
//   - Dealer: source of fresh boards (the sampler).

package game

import (
	"context"
	"errors"

	"github.com/robalobadob/jeopardy/internal/board"
)

// Status represents where a game is in its lifecycle.
// Possible values:
//   - "empty":   no board has been dealt yet.
//   - "loading": a deal is in flight.
//   - "ready":   the board is playable.
//   - "failed":  the last deal failed; the previous board (if any) is kept.
type Status string

const (
	StatusEmpty   Status = "empty"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

var (
	// ErrLoading rejects a start or reveal while a deal is in flight.
	ErrLoading = errors.New("game is loading")

	// ErrNoBoard rejects a reveal before any board was dealt.
	ErrNoBoard = errors.New("no board dealt")
)

// Dealer produces a complete board or an error, never a partial board.
type Dealer interface {
	Deal(ctx context.Context) (*board.Board, error)
}

// Snapshot is a consistent, redacted view of a game.
type Snapshot struct {
	ID     string      `json:"id"`
	Status Status      `json:"status"`
	Round  int         `json:"round"`           // successful deals so far
	Error  string      `json:"error,omitempty"` // last deal failure
	Board  *board.View `json:"board,omitempty"`
}
