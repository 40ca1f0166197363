package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultJServiceURL is the public jService API the board was built against.
const DefaultJServiceURL = "http://jservice.io/api"

// JService reads categories and clues from a jService-style HTTP/JSON API.
type JService struct {
	baseURL    string
	httpClient *http.Client
}

// NewJService creates a client for baseURL (e.g. "http://jservice.io/api").
// A nil httpClient uses http.DefaultClient; per-call deadlines come from ctx.
func NewJService(baseURL string, httpClient *http.Client) *JService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &JService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListCategories returns up to count categories. Entries that fail
// validation are dropped with a log record.
func (j *JService) ListCategories(ctx context.Context, count int) ([]CandidateCategory, error) {
	q := url.Values{}
	q.Set("count", strconv.Itoa(count))

	var raw []CandidateCategory
	if err := j.getJSON(ctx, "/categories?"+q.Encode(), &raw); err != nil {
		return nil, err
	}
	out := make([]CandidateCategory, 0, len(raw))
	for _, c := range raw {
		if err := c.Validate(); err != nil {
			log.Warn().Err(err).Msg("jservice: dropping category")
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ListClues returns every clue of a category, unvalidated; the sampler
// decides which records are usable.
func (j *JService) ListClues(ctx context.Context, categoryID int) ([]ClueRecord, error) {
	q := url.Values{}
	q.Set("category", strconv.Itoa(categoryID))

	var out []ClueRecord
	if err := j.getJSON(ctx, "/clues?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getJSON performs a GET and decodes a JSON body into result.
func (j *JService) getJSON(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
