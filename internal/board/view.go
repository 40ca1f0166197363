package board

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CellView is what the interaction layer may show for one cell. Text is empty
// while the cell is hidden.
type CellView struct {
	State RevealState `json:"state"`
	Text  string      `json:"text,omitempty"`
}

// CategoryView is one rendered column.
type CategoryView struct {
	Title   string     `json:"title"`
	Heading string     `json:"heading"`
	Clues   []CellView `json:"clues"`
}

// View is a redacted copy of a board: unrevealed questions and answers never
// leave the server.
type View struct {
	Categories []CategoryView `json:"categories"`
}

// View returns a redacted snapshot of the board.
func (b *Board) View() *View {
	v := &View{Categories: make([]CategoryView, len(b.Categories))}
	for i, c := range b.Categories {
		cells := make([]CellView, len(c.Clues))
		for j, cl := range c.Clues {
			cells[j] = CellView{State: cl.State}
			switch cl.State {
			case StateQuestion:
				cells[j].Text = cl.Question
			case StateAnswer:
				cells[j].Text = cl.Answer
			}
		}
		v.Categories[i] = CategoryView{Title: c.Title, Heading: Heading(c.Title), Clues: cells}
	}
	return v
}

// Heading is the column header shown for a category title.
func Heading(title string) string {
	return cases.Upper(language.English).String(title)
}
