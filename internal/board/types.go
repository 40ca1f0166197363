// internal/board/types.go
//
// Core type definitions for the trivia board.
// Defines:
//   - RevealState: per-cell disclosure state (hidden/question/answer).
//   - Clue, Category, Board: the 6x5 grid for one game.

package board

// Grid dimensions. Every board has exactly NumCategories columns and
// CluesPerCategory rows.
const (
	NumCategories    = 6
	CluesPerCategory = 5
)

// RevealState is the progressive disclosure state of a single clue cell.
// Possible values:
//   - "hidden":   nothing shown yet.
//   - "question": the question text is showing.
//   - "answer":   the answer text is showing (terminal).
type RevealState string

const (
	StateHidden   RevealState = "hidden"
	StateQuestion RevealState = "question"
	StateAnswer   RevealState = "answer"
)

// Clue is one question/answer pair with its own reveal state.
type Clue struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	State    RevealState `json:"state"`
}

// Category is a titled column of exactly CluesPerCategory clues.
type Category struct {
	Title string `json:"title"`
	Clues []Clue `json:"clues"`
}

// Board is the complete grid for one game session.
type Board struct {
	Categories []Category `json:"categories"`
}
