// internal/game/engine.go
//
// Game session: owns one board and the transitions around it.
// Responsibilities:
//   - Deal a new board transactionally (old board stays until the new one is
//     complete; a failed deal changes nothing but the reported status).
//   - Refuse a second deal while one is in flight.
//   - Forward reveal requests to the board.
//   - Emit lifecycle events.
//
// Notes:
//   - The mutex is never held across a Deal call; only the swap is locked.
package game

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/internal/board"
	"github.com/robalobadob/jeopardy/internal/events"
	"github.com/robalobadob/jeopardy/internal/idgen"
)

// Game holds one player's board across any number of rounds.
type Game struct {
	ID string

	dealer Dealer
	pub    events.Publisher

	mu      sync.Mutex
	board   *board.Board
	loading bool
	lastErr error
	round   int
}

// New constructs an empty game. A nil publisher discards events.
func New(d Dealer, pub events.Publisher) (*Game, error) {
	id, err := idgen.NewGameID()
	if err != nil {
		return nil, err
	}
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	return &Game{ID: id, dealer: d, pub: pub}, nil
}

// NewGame deals a fresh board and swaps it in. It returns ErrLoading if a
// deal is already running. On failure the previous board is left untouched
// and the error is reported by Snapshot until the next successful deal.
func (g *Game) NewGame(ctx context.Context) error {
	g.mu.Lock()
	if g.loading {
		g.mu.Unlock()
		return ErrLoading
	}
	g.loading = true
	g.mu.Unlock()

	b, err := g.dealer.Deal(ctx)

	g.mu.Lock()
	g.loading = false
	if err != nil {
		g.lastErr = err
		g.mu.Unlock()
		log.Error().Err(err).Str("game", g.ID).Msg("could not start game")
		g.publish(ctx, events.TopicGameFailed, events.GameFailed{GameID: g.ID, Error: err.Error()})
		return err
	}
	g.board = b
	g.lastErr = nil
	g.round++
	round := g.round
	g.mu.Unlock()

	titles := make([]string, len(b.Categories))
	for i, c := range b.Categories {
		titles[i] = c.Title
	}
	log.Info().Str("game", g.ID).Int("round", round).Strs("categories", titles).Msg("board dealt")
	g.publish(ctx, events.TopicGameStarted, events.GameStarted{GameID: g.ID, Round: round, Categories: titles})
	return nil
}

// Reveal advances one cell. See board.Board.Reveal for the transitions.
func (g *Game) Reveal(ctx context.Context, category, clue int) (string, board.RevealState, error) {
	g.mu.Lock()
	if g.loading {
		g.mu.Unlock()
		return "", "", ErrLoading
	}
	if g.board == nil {
		g.mu.Unlock()
		return "", "", ErrNoBoard
	}
	text, state, err := g.board.Reveal(category, clue)
	g.mu.Unlock()

	if err != nil {
		if errors.Is(err, board.ErrOutOfRange) {
			log.Error().Err(err).Str("game", g.ID).Int("category", category).Int("clue", clue).Msg("reveal outside the board")
		}
		return "", "", err
	}
	g.publish(ctx, events.TopicClueRevealed, events.ClueRevealed{GameID: g.ID, Category: category, Clue: clue, State: state})
	return text, state, nil
}

// Snapshot returns the current status and a redacted copy of the board.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{ID: g.ID, Status: g.status(), Round: g.round}
	if g.lastErr != nil {
		s.Error = g.lastErr.Error()
	}
	if g.board != nil {
		s.Board = g.board.View()
	}
	return s
}

// status reports the lifecycle state; callers hold g.mu.
func (g *Game) status() Status {
	switch {
	case g.loading:
		return StatusLoading
	case g.lastErr != nil:
		return StatusFailed
	case g.board == nil:
		return StatusEmpty
	default:
		return StatusReady
	}
}

func (g *Game) publish(ctx context.Context, topic string, ev any) {
	if err := g.pub.Publish(ctx, topic, ev); err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("game", g.ID).Msg("publish event")
	}
}
