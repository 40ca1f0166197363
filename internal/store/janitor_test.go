package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSweepRemovesIdleGames(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(WithClock(func() time.Time { return now }))

	for i := 0; i < 500; i++ {
		if err := s.Save(ctx, newGame(t)); err != nil {
			t.Fatal(err)
		}
	}
	kept := newGame(t)
	if err := s.Save(ctx, kept); err != nil {
		t.Fatal(err)
	}

	// Touching a game keeps it alive.
	now = now.Add(30 * time.Minute)
	if _, err := s.Get(ctx, kept.ID); err != nil {
		t.Fatal(err)
	}

	now = now.Add(45 * time.Minute)
	n, err := Sweep(ctx, s, time.Hour, now)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 500 {
		t.Fatalf("expected 500 games swept, got %d", n)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 game left, got %d", s.Len())
	}
	if _, err := s.Get(ctx, kept.ID); err != nil {
		t.Fatalf("recently used game was swept: %v", err)
	}
}

func TestSweepKeepsFreshGames(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewMemoryStore(WithClock(func() time.Time { return now }))
	if err := s.Save(ctx, newGame(t)); err != nil {
		t.Fatal(err)
	}
	n, err := Sweep(ctx, s, time.Hour, now.Add(59*time.Minute))
	if err != nil || n != 0 || s.Len() != 1 {
		t.Fatalf("got n=%d len=%d err=%v, want nothing swept", n, s.Len(), err)
	}
}

func TestRunJanitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	past := time.Now().Add(-2 * time.Hour)
	s := NewMemoryStore(WithClock(func() time.Time { return past }))
	g := newGame(t)
	if err := s.Save(ctx, g); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		RunJanitor(ctx, s, time.Hour, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("janitor did not sweep the idle game")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := s.Get(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after sweep, got %v", err)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop on cancel")
	}
}
