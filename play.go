package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/robalobadob/jeopardy/internal/board"
	"github.com/robalobadob/jeopardy/internal/game"
	"github.com/robalobadob/jeopardy/internal/sampler"
)

var playSeed int64

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a board in the terminal",
	Long: `Deals a board and reads commands from stdin:

  <column> <row>   reveal a cell (column 1-6, row 1-5); again shows the answer
  new              deal a new board
  board            redraw the board
  quit             exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Keep routine server-style logs off the player's screen.
		if zerolog.GlobalLevel() < zerolog.WarnLevel {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}

		var opts []sampler.Option
		if playSeed != 0 {
			opts = append(opts, sampler.WithSeed(playSeed))
		}
		s, err := newSampler(cfg, opts...)
		if err != nil {
			return err
		}
		pub := newPublisher(cfg)
		defer func() { _ = pub.Close() }()

		g, err := game.New(s, pub)
		if err != nil {
			return err
		}
		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		return runPlay(cmd.Context(), g, os.Stdin, cmd.OutOrStdout(), interactive)
	},
}

func init() {
	playCmd.Flags().Int64Var(&playSeed, "seed", 0, "fixed seed for category selection (0 = random)")
}

// runPlay drives one game from line-oriented input until quit or EOF.
// Prompts are only written when prompt is set (stdin is a terminal).
func runPlay(ctx context.Context, g *game.Game, in io.Reader, out io.Writer, prompt bool) error {
	deal := func() {
		fmt.Fprintln(out, "Dealing a new board...")
		if err := g.NewGame(ctx); err != nil {
			fmt.Fprintf(out, "Could not start game: %v\nType 'new' to retry.\n", err)
		}
		printBoard(out, g.Snapshot())
	}
	deal()

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines, scanErr := scanLines(readCtx, in)
	for {
		if prompt {
			fmt.Fprint(out, "> ")
		}
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			line = l
		}

		fields := strings.Fields(strings.ToLower(line))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit", "q":
			return nil
		case "new":
			deal()
			continue
		case "board":
			printBoard(out, g.Snapshot())
			continue
		case "help", "?":
			fmt.Fprintln(out, "Commands: <column> <row> | new | board | quit")
			continue
		}

		col, row, ok := parseAddress(fields)
		if !ok {
			fmt.Fprintf(out, "Not a cell: %q. Enter a column and a row, e.g. '3 2', or 'help'.\n", strings.Join(fields, " "))
			continue
		}
		text, state, err := g.Reveal(ctx, col-1, row-1)
		switch {
		case errors.Is(err, board.ErrOutOfRange):
			fmt.Fprintf(out, "No cell at column %d, row %d (columns 1-%d, rows 1-%d).\n",
				col, row, board.NumCategories, board.CluesPerCategory)
		case errors.Is(err, game.ErrNoBoard):
			fmt.Fprintln(out, "No board yet. Type 'new' to deal one.")
		case err != nil:
			fmt.Fprintln(out, err)
		case state == board.StateQuestion:
			fmt.Fprintf(out, "Question: %s\n", text)
		default:
			fmt.Fprintf(out, "Answer: %s\n", text)
		}
	}
}

// scanLines feeds lines from in until EOF or ctx is done. The blocked Read
// itself cannot be interrupted, so the goroutine may outlive the caller
// until in yields or is closed.
func scanLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}

// parseAddress reads "<column> <row>" as 1-based numbers.
func parseAddress(fields []string) (col, row int, ok bool) {
	if len(fields) != 2 {
		return 0, 0, false
	}
	col, err1 := strconv.Atoi(fields[0])
	row, err2 := strconv.Atoi(fields[1])
	return col, row, err1 == nil && err2 == nil
}

// printBoard renders the heading row then one row per clue value.
func printBoard(out io.Writer, snap game.Snapshot) {
	if snap.Board == nil {
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, c := range snap.Board.Categories {
		fmt.Fprintf(tw, "%d %s\t", i+1, c.Heading)
	}
	fmt.Fprintln(tw)
	for row := 0; row < board.CluesPerCategory; row++ {
		for _, c := range snap.Board.Categories {
			cell := "$" + strconv.Itoa((row+1)*200)
			switch c.Clues[row].State {
			case board.StateQuestion:
				cell = "?"
			case board.StateAnswer:
				cell = "-"
			}
			fmt.Fprintf(tw, "%s\t", cell)
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}
