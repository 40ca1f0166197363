// internal/sampler/sampler.go
//
// Category sampler: turns a provider's category listing into a full board.
// Responsibilities:
//   - Sample NumCategories category ids uniformly without replacement.
//   - Fetch and validate each selected category's clues.
//   - Bound every provider call with a timeout and a single retry.
//
// Notes:
//   - Deal never returns a partial board; any failure aborts the whole deal.
//   - Selected-id order is preserved on the board even though categories are
//     fetched concurrently.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/jeopardy/internal/board"
	"github.com/robalobadob/jeopardy/internal/provider"
)

var (
	// ErrInsufficientCandidates: the provider listed fewer usable categories
	// than a board needs.
	ErrInsufficientCandidates = errors.New("insufficient candidate categories")

	// ErrIncompleteClueSet: a selected category has fewer than
	// board.CluesPerCategory usable clues.
	ErrIncompleteClueSet = errors.New("incomplete clue set")

	// ErrProviderUnavailable: a provider call failed after its retry.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// Provider is the data source the sampler reads from.
type Provider interface {
	ListCategories(ctx context.Context, count int) ([]provider.CandidateCategory, error)
	ListClues(ctx context.Context, categoryID int) ([]provider.ClueRecord, error)
}

// Defaults.
const (
	DefaultCandidatePool = 100
	DefaultCallTimeout   = 5 * time.Second
	DefaultRetries       = 1
	DefaultRetryWait     = 250 * time.Millisecond
)

// Sampler deals boards from a Provider. It is safe for concurrent use.
type Sampler struct {
	provider Provider

	mu  sync.Mutex // guards rng
	rng *rand.Rand

	candidatePool int
	callTimeout   time.Duration
	retries       int
	retryWait     time.Duration
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithSeed makes selection deterministic.
func WithSeed(seed int64) Option {
	return func(s *Sampler) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithCandidatePool sets how many categories are requested from the provider.
func WithCandidatePool(n int) Option {
	return func(s *Sampler) { s.candidatePool = n }
}

// WithCallTimeout bounds each individual provider call.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Sampler) { s.callTimeout = d }
}

// WithRetry sets how many times a failed call is repeated and the wait between tries.
func WithRetry(retries int, wait time.Duration) Option {
	return func(s *Sampler) { s.retries, s.retryWait = retries, wait }
}

// New creates a Sampler over p.
func New(p Provider, opts ...Option) *Sampler {
	s := &Sampler{
		provider:      p,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		candidatePool: DefaultCandidatePool,
		callTimeout:   DefaultCallTimeout,
		retries:       DefaultRetries,
		retryWait:     DefaultRetryWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectCategoryIDs samples k ids from universe using the sampler's source.
func (s *Sampler) SelectCategoryIDs(universe []int, k int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SelectCategoryIDs(universe, k, s.rng)
}

// Deal runs the full pipeline: list candidates, select, fetch, assemble.
func (s *Sampler) Deal(ctx context.Context) (*board.Board, error) {
	cands, err := call(ctx, s, "list categories", func(ctx context.Context) ([]provider.CandidateCategory, error) {
		return s.provider.ListCategories(ctx, s.candidatePool)
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[int]provider.CandidateCategory, len(cands))
	universe := make([]int, 0, len(cands))
	for _, c := range cands {
		// A provider-reported short category can never fill a column.
		if c.ClueCount > 0 && c.ClueCount < board.CluesPerCategory {
			continue
		}
		byID[c.ID] = c
		universe = append(universe, c.ID)
	}

	ids, err := s.SelectCategoryIDs(universe, board.NumCategories)
	if err != nil {
		return nil, err
	}

	cats := make([]board.Category, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			c, err := s.FetchCategory(gctx, byID[id])
			if err != nil {
				return err
			}
			cats[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return board.New(cats)
}

// FetchCategory loads one candidate's clues and keeps the first
// board.CluesPerCategory usable ones. Records failing validation are skipped.
func (s *Sampler) FetchCategory(ctx context.Context, cand provider.CandidateCategory) (board.Category, error) {
	records, err := call(ctx, s, fmt.Sprintf("list clues of category %d", cand.ID), func(ctx context.Context) ([]provider.ClueRecord, error) {
		return s.provider.ListClues(ctx, cand.ID)
	})
	if err != nil {
		return board.Category{}, err
	}

	var cat board.Category
	for _, r := range records {
		if err := r.Validate(); err != nil {
			log.Debug().Err(err).Int("category", cand.ID).Msg("skipping clue")
			continue
		}
		if cat.Title == "" {
			cat.Title = r.Category.Title
		}
		if len(cat.Clues) < board.CluesPerCategory {
			cat.Clues = append(cat.Clues, board.Clue{Question: r.Question, Answer: r.Answer, State: board.StateHidden})
		}
	}
	if cat.Title == "" {
		cat.Title = cand.Title
	}
	if len(cat.Clues) < board.CluesPerCategory {
		return board.Category{}, fmt.Errorf("%w: category %d (%q) has %d usable clues, need %d",
			ErrIncompleteClueSet, cand.ID, cat.Title, len(cat.Clues), board.CluesPerCategory)
	}
	return cat, nil
}

// call runs fn under a per-try timeout, retrying temporary failures.
// Exhausted or permanent provider failures are reported as
// ErrProviderUnavailable; cancellation of ctx is returned as is.
func call[T any](ctx context.Context, s *Sampler, op string, fn func(context.Context) (T, error)) (T, error) {
	tries := 0
	res, err := backoff.Retry(ctx, func() (T, error) {
		tries++
		cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
		v, err := fn(cctx)
		if err != nil && !temporary(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.retryWait)),
		backoff.WithMaxTries(uint(s.retries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Warn().Err(err).Str("op", op).Dur("wait", wait).Msg("provider call failed, retrying")
		}),
	)
	if err != nil {
		var zero T
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, fmt.Errorf("%w: %s after %d tries: %w", ErrProviderUnavailable, op, tries, err)
	}
	return res, nil
}

// temporary classifies provider errors: HTTP 5xx/429, transport failures and
// per-try timeouts are worth a retry; client errors and bad payloads are not.
func temporary(err error) bool {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	if errors.Is(err, provider.ErrMalformedResponse) {
		return false
	}
	return true
}
