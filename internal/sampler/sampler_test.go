package sampler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/jeopardy/internal/board"
	"github.com/robalobadob/jeopardy/internal/provider"
)

// fakeProvider serves n categories with cluesPer clues each and can be told
// to fail specific calls.
type fakeProvider struct {
	mu sync.Mutex

	categories []provider.CandidateCategory
	clues      map[int][]provider.ClueRecord

	listErrs  []error         // returned by successive ListCategories calls
	clueErrs  map[int][]error // per-category successive ListClues errors
	listCalls int
	clueCalls map[int]int
	block     bool // ListClues waits for ctx
}

func newFakeProvider(n, cluesPer int) *fakeProvider {
	f := &fakeProvider{
		clues:     make(map[int][]provider.ClueRecord),
		clueErrs:  make(map[int][]error),
		clueCalls: make(map[int]int),
	}
	for id := 1; id <= n; id++ {
		f.categories = append(f.categories, provider.CandidateCategory{ID: id, Title: fmt.Sprintf("listed %d", id)})
		f.setClues(id, cluesPer)
	}
	return f
}

func (f *fakeProvider) setClues(id, count int) {
	recs := make([]provider.ClueRecord, count)
	for j := range recs {
		recs[j] = provider.ClueRecord{
			ID:       id*100 + j,
			Question: fmt.Sprintf("q%d-%d", id, j),
			Answer:   fmt.Sprintf("a%d-%d", id, j),
		}
		recs[j].Category.ID = id
		recs[j].Category.Title = fmt.Sprintf("cat %d", id)
	}
	f.clues[id] = recs
}

func (f *fakeProvider) ListCategories(ctx context.Context, count int) ([]provider.CandidateCategory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if count < len(f.categories) {
		return f.categories[:count], nil
	}
	return f.categories, nil
}

func (f *fakeProvider) ListClues(ctx context.Context, id int) ([]provider.ClueRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.clueCalls[id]++
	var err error
	if errs := f.clueErrs[id]; len(errs) > 0 {
		err = errs[0]
		f.clueErrs[id] = errs[1:]
	}
	block := f.block
	recs := f.clues[id]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func newTestSampler(p Provider) *Sampler {
	return New(p, WithSeed(1), WithRetry(1, time.Millisecond), WithCallTimeout(time.Second))
}

func TestDeal_HundredCandidates(t *testing.T) {
	p := newFakeProvider(100, 5)
	s := newTestSampler(p)

	b, err := s.Deal(context.Background())
	if err != nil {
		t.Fatalf("Deal: %v", err)
	}
	if len(b.Categories) != board.NumCategories {
		t.Fatalf("expected %d categories, got %d", board.NumCategories, len(b.Categories))
	}
	titles := map[string]bool{}
	cells := 0
	for _, c := range b.Categories {
		if titles[c.Title] {
			t.Fatalf("category %q dealt twice", c.Title)
		}
		titles[c.Title] = true
		if len(c.Clues) != board.CluesPerCategory {
			t.Fatalf("category %q has %d clues", c.Title, len(c.Clues))
		}
		for _, cl := range c.Clues {
			cells++
			if cl.State != board.StateHidden {
				t.Fatalf("expected hidden clue, got %q", cl.State)
			}
		}
	}
	if cells != 30 {
		t.Fatalf("expected 30 cells, got %d", cells)
	}
}

func TestDeal_PreservesSelectedOrder(t *testing.T) {
	p := newFakeProvider(30, 5)

	// The same seed drives an identical selection on a second sampler.
	ids, err := New(p, WithSeed(99)).SelectCategoryIDs(universeOf(30), board.NumCategories)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(p, WithSeed(99)).Deal(context.Background())
	if err != nil {
		t.Fatalf("Deal: %v", err)
	}
	for i, id := range ids {
		if want := fmt.Sprintf("cat %d", id); b.Categories[i].Title != want {
			t.Fatalf("column %d: got %q, want %q", i, b.Categories[i].Title, want)
		}
	}
}

func TestDeal_ShortClueSet(t *testing.T) {
	p := newFakeProvider(6, 5)
	p.setClues(4, 3)
	s := newTestSampler(p)

	_, err := s.Deal(context.Background())
	if !errors.Is(err, ErrIncompleteClueSet) {
		t.Fatalf("expected ErrIncompleteClueSet, got %v", err)
	}
}

func TestDeal_InsufficientCandidates(t *testing.T) {
	s := newTestSampler(newFakeProvider(5, 5))
	if _, err := s.Deal(context.Background()); !errors.Is(err, ErrInsufficientCandidates) {
		t.Fatalf("expected ErrInsufficientCandidates, got %v", err)
	}

	// Categories the provider reports as short are not candidates.
	p := newFakeProvider(7, 5)
	p.categories[0].ClueCount = 2
	p.categories[1].ClueCount = 4
	s = newTestSampler(p)
	if _, err := s.Deal(context.Background()); !errors.Is(err, ErrInsufficientCandidates) {
		t.Fatalf("expected short categories filtered out, got %v", err)
	}
}

func TestFetchCategory_DropsInvalidAndTruncates(t *testing.T) {
	p := newFakeProvider(1, 8)
	p.clues[1][1].Answer = "  "
	p.clues[1][2].Question = ""
	s := newTestSampler(p)

	c, err := s.FetchCategory(context.Background(), provider.CandidateCategory{ID: 1, Title: "listed 1"})
	if err != nil {
		t.Fatalf("FetchCategory: %v", err)
	}
	if len(c.Clues) != board.CluesPerCategory {
		t.Fatalf("expected %d clues, got %d", board.CluesPerCategory, len(c.Clues))
	}
	wantQ := []string{"q1-0", "q1-3", "q1-4", "q1-5", "q1-6"}
	for i, q := range wantQ {
		if c.Clues[i].Question != q {
			t.Errorf("clue %d: got %q, want %q", i, c.Clues[i].Question, q)
		}
	}
	if c.Title != "cat 1" {
		t.Errorf("title = %q, want clue category title", c.Title)
	}

	// Too many invalid records leaves the set short.
	p.setClues(1, 5)
	p.clues[1][0].Question = ""
	if _, err := s.FetchCategory(context.Background(), provider.CandidateCategory{ID: 1}); !errors.Is(err, ErrIncompleteClueSet) {
		t.Fatalf("expected ErrIncompleteClueSet, got %v", err)
	}
}

func TestFetchCategory_TitleFallback(t *testing.T) {
	p := newFakeProvider(1, 5)
	for i := range p.clues[1] {
		p.clues[1][i].Category.Title = ""
	}
	c, err := newTestSampler(p).FetchCategory(context.Background(), provider.CandidateCategory{ID: 1, Title: "listed 1"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Title != "listed 1" {
		t.Fatalf("title = %q, want listed title", c.Title)
	}
}

func TestCall_RetriesOnceOnTemporaryFailure(t *testing.T) {
	p := newFakeProvider(10, 5)
	p.listErrs = []error{&provider.APIError{StatusCode: http.StatusBadGateway, Message: "upstream"}}
	s := newTestSampler(p)

	if _, err := s.Deal(context.Background()); err != nil {
		t.Fatalf("Deal after one temporary failure: %v", err)
	}
	if p.listCalls != 2 {
		t.Fatalf("expected 2 ListCategories calls, got %d", p.listCalls)
	}
}

func TestCall_ExhaustionIsProviderUnavailable(t *testing.T) {
	p := newFakeProvider(10, 5)
	boom := errors.New("connection refused")
	p.listErrs = []error{boom, boom, boom}
	s := newTestSampler(p)

	_, err := s.Deal(context.Background())
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
	if p.listCalls != 2 {
		t.Fatalf("expected exactly one retry (2 calls), got %d", p.listCalls)
	}
}

func TestCall_ClientErrorIsNotRetried(t *testing.T) {
	p := newFakeProvider(1, 5)
	p.clueErrs[1] = []error{&provider.APIError{StatusCode: http.StatusNotFound, Message: "gone"}}
	s := newTestSampler(p)

	_, err := s.FetchCategory(context.Background(), provider.CandidateCategory{ID: 1})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if p.clueCalls[1] != 1 {
		t.Fatalf("expected no retry for 404, got %d calls", p.clueCalls[1])
	}
}

func TestCall_PerCallTimeout(t *testing.T) {
	p := newFakeProvider(1, 5)
	p.block = true
	s := New(p, WithSeed(1), WithRetry(1, time.Millisecond), WithCallTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := s.FetchCategory(context.Background(), provider.CandidateCategory{ID: 1})
	if !errors.Is(err, ErrProviderUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected timed-out ErrProviderUnavailable, got %v", err)
	}
	if p.clueCalls[1] != 2 {
		t.Fatalf("expected timeout to be retried once, got %d calls", p.clueCalls[1])
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("per-call timeout not applied")
	}
}

func TestCall_CancelledContext(t *testing.T) {
	p := newFakeProvider(10, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSampler(p).Deal(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrProviderUnavailable) {
		t.Fatal("cancellation must not be reported as provider failure")
	}
}
