// internal/provider/provider.go
//
// Typed boundary between the game and its clue data sources.
// Defines:
//   - CandidateCategory: one entry of the category listing.
//   - ClueRecord: one clue as returned for a category.
//   - APIError / ErrMalformedResponse: failure shapes callers can classify.
//
// Implementations in this package:
//   - JService: remote jService-style HTTP/JSON API.
//   - Catalog:  offline TOML catalog (embedded default or file).
package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMalformedResponse reports a payload that could not be decoded or failed
// shape validation as a whole.
var ErrMalformedResponse = errors.New("provider: malformed response")

// CandidateCategory is one category in the provider's listing.
type CandidateCategory struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	ClueCount int    `json:"clues_count"` // 0 when the provider does not say
}

// Validate checks the fields the sampler relies on.
func (c CandidateCategory) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("category id %d: must be positive", c.ID)
	}
	return nil
}

// ClueRecord is a single clue of a category.
type ClueRecord struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Value    int    `json:"value"`
	Category struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	} `json:"category"`
}

// Validate rejects records that cannot be shown on the board.
func (r ClueRecord) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("clue %d: empty question", r.ID)
	}
	if strings.TrimSpace(r.Answer) == "" {
		return fmt.Errorf("clue %d: empty answer", r.ID)
	}
	return nil
}

// APIError is a non-2xx answer from a provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Temporary reports whether repeating the call may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}
