// internal/board/board.go
//
// Reveal state machine for a single trivia board.
// Responsibilities:
//   - Build boards from fetched categories, enforcing the 6x5 shape.
//   - Apply the per-cell transition hidden → question → answer.
//   - Bounds-check (category, clue) addresses coming from the UI.
//
// Notes:
//   - A board is never partially rebuilt; a new game replaces it wholesale.
//   - Board is not safe for concurrent use; the owning game serializes access.
package board

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange reports a cell address outside the grid. Callers that only
	// send addresses taken from a rendered board never see it.
	ErrOutOfRange = errors.New("cell out of range")

	// ErrMalformedBoard reports categories that do not form a 6x5 grid.
	ErrMalformedBoard = errors.New("malformed board")
)

// New builds a board from exactly NumCategories categories of exactly
// CluesPerCategory clues each. Input slices are copied and every clue starts
// hidden, whatever state it was given.
func New(categories []Category) (*Board, error) {
	if len(categories) != NumCategories {
		return nil, fmt.Errorf("%w: %d categories, want %d", ErrMalformedBoard, len(categories), NumCategories)
	}
	b := &Board{Categories: make([]Category, len(categories))}
	for i, c := range categories {
		if len(c.Clues) != CluesPerCategory {
			return nil, fmt.Errorf("%w: category %d (%q) has %d clues, want %d",
				ErrMalformedBoard, i, c.Title, len(c.Clues), CluesPerCategory)
		}
		clues := make([]Clue, len(c.Clues))
		for j, cl := range c.Clues {
			clues[j] = Clue{Question: cl.Question, Answer: cl.Answer, State: StateHidden}
		}
		b.Categories[i] = Category{Title: c.Title, Clues: clues}
	}
	return b, nil
}

// Reveal advances the cell at (category, clue) one step and returns the text
// that should now be displayed together with the new state.
//
// State transitions:
//   - hidden   → question, returns the question text.
//   - question → answer,   returns the answer text.
//   - answer   → answer,   returns the answer text again (no-op).
func (b *Board) Reveal(category, clue int) (string, RevealState, error) {
	c, err := b.cell(category, clue)
	if err != nil {
		return "", "", err
	}
	switch c.State {
	case StateHidden:
		c.State = StateQuestion
		return c.Question, c.State, nil
	case StateQuestion:
		c.State = StateAnswer
		return c.Answer, c.State, nil
	default:
		return c.Answer, StateAnswer, nil
	}
}

// Clue returns a copy of the clue at (category, clue).
func (b *Board) Clue(category, clue int) (Clue, error) {
	c, err := b.cell(category, clue)
	if err != nil {
		return Clue{}, err
	}
	return *c, nil
}

// cell resolves an address to a pointer into the grid.
func (b *Board) cell(category, clue int) (*Clue, error) {
	if category < 0 || category >= len(b.Categories) {
		return nil, fmt.Errorf("%w: category %d not in [0,%d)", ErrOutOfRange, category, len(b.Categories))
	}
	cat := &b.Categories[category]
	if clue < 0 || clue >= len(cat.Clues) {
		return nil, fmt.Errorf("%w: clue %d not in [0,%d)", ErrOutOfRange, clue, len(cat.Clues))
	}
	return &cat.Clues[clue], nil
}
