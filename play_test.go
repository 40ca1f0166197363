package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/jeopardy/internal/board"
	"github.com/robalobadob/jeopardy/internal/game"
	"github.com/robalobadob/jeopardy/internal/provider"
	"github.com/robalobadob/jeopardy/internal/sampler"
)

type failingDealer struct{ fail bool }

func (d *failingDealer) Deal(ctx context.Context) (*board.Board, error) {
	if d.fail {
		return nil, sampler.ErrProviderUnavailable
	}
	cat, err := provider.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return sampler.New(cat, sampler.WithSeed(3)).Deal(ctx)
}

func newPlayGame(t *testing.T, d game.Dealer) *game.Game {
	t.Helper()
	g, err := game.New(d, nil)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestRunPlayRevealsQuestionThenAnswer(t *testing.T) {
	g := newPlayGame(t, &failingDealer{})
	in := strings.NewReader("1 1\n1 1\n1 1\nboard\nquit\n")
	var out bytes.Buffer

	if err := runPlay(context.Background(), g, in, &out, false); err != nil {
		t.Fatalf("runPlay: %v", err)
	}
	got := out.String()
	if strings.Count(got, "Question: ") != 1 || strings.Count(got, "Answer: ") != 2 {
		t.Fatalf("unexpected reveal output:\n%s", got)
	}
	if strings.Contains(got, "> ") {
		t.Fatal("prompt written for non-terminal input")
	}

	// Heading row carries every column, upper-cased.
	snap := g.Snapshot()
	for i, c := range snap.Board.Categories {
		if !strings.Contains(got, c.Heading) {
			t.Errorf("column %d heading %q missing from output", i+1, c.Heading)
		}
	}
	if cell := snap.Board.Categories[0].Clues[0]; cell.State != board.StateAnswer {
		t.Fatalf("cell state %q, want answer", cell.State)
	}
}

func TestRunPlayRejectsBadInput(t *testing.T) {
	g := newPlayGame(t, &failingDealer{})
	in := strings.NewReader("7 1\n1 6\nhello\n\n")
	var out bytes.Buffer

	if err := runPlay(context.Background(), g, in, &out, true); err != nil {
		t.Fatalf("runPlay: %v", err)
	}
	got := out.String()
	if strings.Count(got, "No cell at column") != 2 {
		t.Fatalf("expected two out-of-range messages:\n%s", got)
	}
	if !strings.Contains(got, `Not a cell: "hello"`) {
		t.Fatalf("expected parse message:\n%s", got)
	}
	if !strings.Contains(got, "> ") {
		t.Fatal("expected prompts for terminal input")
	}
}

func TestRunPlayRetriesAfterFailedDeal(t *testing.T) {
	d := &failingDealer{fail: true}
	g := newPlayGame(t, d)
	in := &scriptReader{lines: []string{"1 1", "new", "1 1", "quit"}, before: map[int]func(){
		1: func() { d.fail = false },
	}}
	var out bytes.Buffer

	if err := runPlay(context.Background(), g, in, &out, false); err != nil {
		t.Fatalf("runPlay: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Could not start game", "No board yet", "Question: "} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if s := g.Snapshot(); s.Status != game.StatusReady {
		t.Fatalf("status %q after retry", s.Status)
	}
}

func TestRunPlayStopsOnCancel(t *testing.T) {
	g := newPlayGame(t, &failingDealer{})
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() { done <- runPlay(ctx, g, pr, &out, true) }()

	// Input never arrives; only the cancel can end the loop.
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runPlay: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runPlay still waiting for input after cancel")
	}
}

// scriptReader yields one line per Read and runs before[i] ahead of line i.
type scriptReader struct {
	lines  []string
	before map[int]func()
	next   int
}

func (r *scriptReader) Read(p []byte) (int, error) {
	if r.next >= len(r.lines) {
		return 0, context.Canceled // any error ends the scan
	}
	if fn := r.before[r.next]; fn != nil {
		fn()
	}
	n := copy(p, r.lines[r.next]+"\n")
	r.next++
	return n, nil
}
