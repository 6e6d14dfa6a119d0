package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/windoze95/saltybytes-search/internal/logger"
	"github.com/windoze95/saltybytes-search/internal/models"
	"go.uber.org/zap"
)

// RecipesKey is the top-level key holding the recipe list.
const RecipesKey = "recipes"

var (
	// ErrMalformedJSON is returned when the body is not a JSON object or the
	// recipe list is not an array.
	ErrMalformedJSON = errors.New("malformed JSON response")

	// ErrMissingRecipesKey is returned when the JSON object has no "recipes" key.
	ErrMissingRecipesKey = errors.New(`response has no "recipes" key`)
)

// StatusError reports a transport failure. StatusCode is zero when no
// response was received at all.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("Failed to fetch data: %v", e.Err)
	}
	return fmt.Sprintf("Failed to fetch data: %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error { return e.Err }

// UserMessage turns any fetch error into the text shown on the page.
func UserMessage(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	return fmt.Sprintf("Failed to fetch data: %v", err)
}

// Fetcher retrieves a recipe collection from an HTTP JSON endpoint.
type Fetcher struct {
	httpClient *http.Client
}

// New creates a Fetcher using a client with library default timeouts.
func New() *Fetcher {
	return NewWithClient(&http.Client{})
}

// NewWithClient creates a Fetcher around the given HTTP client.
func NewWithClient(client *http.Client) *Fetcher {
	return &Fetcher{httpClient: client}
}

// Fetch performs a single GET against url and decodes the recipe list.
// It never retries.
func (f *Fetcher) Fetch(ctx context.Context, url string) (models.Collection, error) {
	log := logger.With(zap.String("url", url))
	log.Info("fetching recipes")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipes request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.Error("recipes request failed", zap.Error(err))
		return nil, &StatusError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error("recipes endpoint returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes response: %w", err)
	}

	collection, err := Decode(body)
	if err != nil {
		log.Error("failed to decode recipes", zap.Error(err))
		return nil, err
	}

	log.Info("fetched recipes", zap.Int("count", len(collection)))
	return collection, nil
}

// Decode extracts the collection stored under the top-level "recipes" key.
func Decode(body []byte) (models.Collection, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedJSON
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, ErrMalformedJSON
	}

	recipes := root.Get(RecipesKey)
	if !recipes.Exists() {
		return nil, ErrMissingRecipesKey
	}
	if !recipes.IsArray() {
		return nil, fmt.Errorf("%w: %q is not an array", ErrMalformedJSON, RecipesKey)
	}

	collection := make(models.Collection, 0, int(recipes.Get("#").Int()))
	recipes.ForEach(func(_, value gjson.Result) bool {
		collection = append(collection, models.NewRecipeFromResult(value))
		return true
	})
	return collection, nil
}
