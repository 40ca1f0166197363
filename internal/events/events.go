// Package events publishes game lifecycle events for anything listening
// (dashboards, loggers). Publishing is best effort: the game never waits on
// or fails because of a subscriber.
package events

import (
	"context"

	"github.com/robalobadob/jeopardy/internal/board"
)

// Event topic constants
const (
	TopicGameStarted  = "jeopardy.game.started"
	TopicGameFailed   = "jeopardy.game.failed"
	TopicClueRevealed = "jeopardy.clue.revealed"
)

// Publisher sends events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Event types

type GameStarted struct {
	GameID     string   `json:"game_id"`
	Round      int      `json:"round"`
	Categories []string `json:"categories"`
}

type GameFailed struct {
	GameID string `json:"game_id"`
	Error  string `json:"error"`
}

type ClueRevealed struct {
	GameID   string            `json:"game_id"`
	Category int               `json:"category"`
	Clue     int               `json:"clue"`
	State    board.RevealState `json:"state"`
}
