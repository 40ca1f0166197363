// internal/provider/catalog.go
//
// Offline clue catalog.
// Responsibilities:
//   - Parse a TOML catalog of categories and clues.
//   - Serve it through the same ListCategories/ListClues shape as JService.
//
// Catalog sources (OpenCatalog):
//  1. A file path, when PROVIDER_CATALOG_FILE is configured.
//  2. Otherwise the catalog embedded in the assets package.
//
// File format:
//
//	[[category]]
//	id = 1
//	title = "World Capitals"
//
//	  [[category.clue]]
//	  question = "..."
//	  answer = "..."
//	  value = 200
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/assets"
)

type catalogFile struct {
	Categories []catalogCategory `toml:"category"`
}

type catalogCategory struct {
	ID    int           `toml:"id"`
	Title string        `toml:"title"`
	Clues []catalogClue `toml:"clue"`
}

type catalogClue struct {
	Question string `toml:"question"`
	Answer   string `toml:"answer"`
	Value    int    `toml:"value"`
}

// Catalog is a read-only, in-memory provider.
type Catalog struct {
	categories []catalogCategory
	byID       map[int]int // category id -> index
}

// OpenCatalog loads the catalog at path, or the embedded one if path is empty.
func OpenCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog parses the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	data, err := assets.Catalog()
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates TOML catalog data.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		log.Warn().Interface("keys", keys).Msg("catalog: ignoring unknown keys")
	}
	if len(f.Categories) == 0 {
		return nil, errors.New("catalog: no categories")
	}

	c := &Catalog{categories: f.Categories, byID: make(map[int]int, len(f.Categories))}
	for i, cat := range f.Categories {
		if cat.ID <= 0 {
			return nil, fmt.Errorf("catalog: category %q: id must be positive", cat.Title)
		}
		if _, dup := c.byID[cat.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate category id %d", cat.ID)
		}
		c.byID[cat.ID] = i
	}
	return c, nil
}

// Len returns the number of categories in the catalog.
func (c *Catalog) Len() int { return len(c.categories) }

// ListCategories returns the first count categories (all when count <= 0).
func (c *Catalog) ListCategories(ctx context.Context, count int) ([]CandidateCategory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := len(c.categories)
	if count > 0 && count < n {
		n = count
	}
	out := make([]CandidateCategory, n)
	for i := 0; i < n; i++ {
		cat := c.categories[i]
		out[i] = CandidateCategory{ID: cat.ID, Title: cat.Title, ClueCount: len(cat.Clues)}
	}
	return out, nil
}

// ListClues returns the clues of one category.
func (c *Catalog) ListClues(ctx context.Context, categoryID int) ([]ClueRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i, ok := c.byID[categoryID]
	if !ok {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("category %d not found", categoryID)}
	}
	cat := c.categories[i]
	out := make([]ClueRecord, len(cat.Clues))
	for j, cl := range cat.Clues {
		out[j] = ClueRecord{ID: categoryID*100 + j + 1, Question: cl.Question, Answer: cl.Answer, Value: cl.Value}
		out[j].Category.ID = cat.ID
		out[j].Category.Title = cat.Title
	}
	return out, nil
}
