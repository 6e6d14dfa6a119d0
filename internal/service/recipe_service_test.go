package service

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windoze95/saltybytes-search/internal/ai"
	"github.com/windoze95/saltybytes-search/internal/fetcher"
	"github.com/windoze95/saltybytes-search/internal/models"
	"github.com/windoze95/saltybytes-search/internal/render"
	"github.com/windoze95/saltybytes-search/internal/testutil"
)

func newLoadedService(t *testing.T, collection models.Collection, provider ai.EnrichmentProvider) *RecipeService {
	t.Helper()
	svc := NewRecipeService(testutil.TestConfig(), &testutil.MockFetcher{Collection: collection}, provider)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func cardNames(cards []render.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Name
	}
	return out
}

func TestLoad_FetchesConfiguredURLOnce(t *testing.T) {
	f := &testutil.MockFetcher{Collection: testutil.TestCollection()}
	svc := NewRecipeService(testutil.TestConfig(), f, testutil.EchoEnricher())

	assert.ErrorIs(t, svc.LoadErr(), ErrCollectionUnavailable)
	require.NoError(t, svc.Load(context.Background()))

	assert.NoError(t, svc.LoadErr())
	assert.Equal(t, 4, svc.Size())
	assert.Equal(t, []string{"http://recipes.test/recipes"}, f.URLs)

	_, err := svc.Search(context.Background(), "pizza")
	require.NoError(t, err)
	assert.Equal(t, 1, f.FetchCount(), "searches reuse the loaded collection")
}

func TestSearch_Scenario1(t *testing.T) {
	provider := testutil.EchoEnricher()
	svc := newLoadedService(t, testutil.PastaCollection(), provider)

	outcome, err := svc.Search(context.Background(), "pasta")
	require.NoError(t, err)
	require.Equal(t, 1, outcome.Count)
	assert.Equal(t, "Enhanced: Pasta", outcome.Cards[0].Description)
	assert.Equal(t, "pasta, salt", outcome.Cards[0].Ingredients)

	require.Len(t, provider.Calls, 1)
	assert.Equal(t, ai.EnrichRequest{Name: "Pasta", Description: "Simple pasta", Ingredients: "pasta, salt"}, provider.Calls[0])
}

func TestSearch_Scenario2_CaseInsensitive(t *testing.T) {
	svc := newLoadedService(t, testutil.PastaCollection(), testutil.EchoEnricher())

	outcome, err := svc.Search(context.Background(), "PASTA")
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Count)
}

func TestSearch_Scenario3_NoResultsSkipsEnricher(t *testing.T) {
	provider := testutil.EchoEnricher()
	svc := newLoadedService(t, testutil.PastaCollection(), provider)

	outcome, err := svc.Search(context.Background(), "pizza")
	require.NoError(t, err)
	assert.True(t, outcome.NoResults())
	assert.Empty(t, outcome.Cards)
	assert.Equal(t, 0, provider.CallCount())
}

func TestSearch_Scenario4_FetchFailure(t *testing.T) {
	provider := testutil.EchoEnricher()
	f := &testutil.MockFetcher{Err: &fetcher.StatusError{StatusCode: http.StatusInternalServerError}}
	svc := NewRecipeService(testutil.TestConfig(), f, provider)

	err := svc.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, err, svc.LoadErr())
	assert.Contains(t, fetcher.UserMessage(svc.LoadErr()), "500")

	_, err = svc.Search(context.Background(), "pasta")
	assert.ErrorIs(t, err, ErrCollectionUnavailable)
	assert.Equal(t, 0, provider.CallCount())
}

func TestSearch_Scenario5_MissingImage(t *testing.T) {
	svc := newLoadedService(t, models.Collection{models.ParseRecipe(`{"name":"Soup"}`)}, testutil.EchoEnricher())

	outcome, err := svc.Search(context.Background(), "soup")
	require.NoError(t, err)
	require.Len(t, outcome.Cards, 1)
	assert.Equal(t, "", outcome.Cards[0].Image)
	assert.Equal(t, "No Instructions", outcome.Cards[0].Instructions)
}

func TestSearch_EmptyQuery(t *testing.T) {
	provider := testutil.EchoEnricher()
	svc := newLoadedService(t, testutil.TestCollection(), provider)

	_, err := svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Equal(t, 0, provider.CallCount())
}

func TestSearch_IsolatesEnrichmentFailures(t *testing.T) {
	provider := &testutil.MockEnrichmentProvider{
		EnrichDescriptionFunc: func(ctx context.Context, req ai.EnrichRequest) (string, error) {
			if req.Name == "Classic Margherita Pizza" {
				return "", &ai.ProviderError{Provider: "OpenAI", Err: errors.New("timeout")}
			}
			return "Enhanced: " + req.Name, nil
		},
	}
	svc := newLoadedService(t, testutil.TestCollection(), provider)

	outcome, err := svc.Search(context.Background(), "italian")
	require.NoError(t, err)
	require.Len(t, outcome.Cards, 2)

	assert.True(t, outcome.Cards[0].Degraded)
	assert.Equal(t, ai.ErrorKindProvider, outcome.Cards[0].ErrorKind)
	assert.Equal(t, "Thin crust pizza", outcome.Cards[0].Description)

	assert.False(t, outcome.Cards[1].Degraded)
	assert.Equal(t, "Enhanced: Chicken Alfredo Pasta", outcome.Cards[1].Description)
}

func TestSearch_MissingDescriptionPassesFallback(t *testing.T) {
	provider := testutil.EchoEnricher()
	svc := newLoadedService(t, testutil.TestCollection(), provider)

	_, err := svc.Search(context.Background(), "stir-fry")
	require.NoError(t, err)
	require.Len(t, provider.Calls, 1)
	assert.Equal(t, "No Description", provider.Calls[0].Description)
}

func TestSearch_SequentialByDefault(t *testing.T) {
	var inFlight, maxInFlight int32
	provider := &testutil.MockEnrichmentProvider{
		EnrichDescriptionFunc: func(ctx context.Context, req ai.EnrichRequest) (string, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				m := atomic.LoadInt32(&maxInFlight)
				if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return req.Name, nil
		},
	}
	svc := newLoadedService(t, testutil.TestCollection(), provider)

	outcome, err := svc.Search(context.Background(), "i")
	require.NoError(t, err)
	assert.Equal(t, 4, outcome.Count)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestSearch_ConcurrentKeepsOrder(t *testing.T) {
	delays := map[string]time.Duration{
		"Classic Margherita Pizza": 30 * time.Millisecond,
		"Vegetarian Stir-Fry":      1 * time.Millisecond,
		"Chicken Alfredo Pasta":    15 * time.Millisecond,
		"Chocolate Chip Cookies":   0,
	}
	provider := &testutil.MockEnrichmentProvider{
		EnrichDescriptionFunc: func(ctx context.Context, req ai.EnrichRequest) (string, error) {
			time.Sleep(delays[req.Name])
			return "Enhanced: " + req.Name, nil
		},
	}
	cfg := testutil.TestConfig()
	cfg.EnvVars.EnrichConcurrency = 4
	svc := NewRecipeService(cfg, &testutil.MockFetcher{Collection: testutil.TestCollection()}, provider)
	require.NoError(t, svc.Load(context.Background()))

	outcome, err := svc.Search(context.Background(), "i")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Classic Margherita Pizza",
		"Vegetarian Stir-Fry",
		"Chicken Alfredo Pasta",
		"Chocolate Chip Cookies",
	}, cardNames(outcome.Cards))
	for _, c := range outcome.Cards {
		assert.Equal(t, "Enhanced: "+c.Name, c.Description)
	}
}

func TestSearch_CanceledContext(t *testing.T) {
	provider := testutil.EchoEnricher()
	svc := newLoadedService(t, testutil.TestCollection(), provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Search(ctx, "italian")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStream_EmitsHeaderThenCardsInOrder(t *testing.T) {
	svc := newLoadedService(t, testutil.TestCollection(), testutil.EchoEnricher())

	var events []string
	err := svc.Stream(context.Background(), "italian",
		func(count int) error {
			events = append(events, "header")
			assert.Equal(t, 2, count)
			return nil
		},
		func(card render.Card) error {
			events = append(events, card.Name)
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"header", "Classic Margherita Pizza", "Chicken Alfredo Pasta"}, events)
}

func TestStream_NoResults(t *testing.T) {
	provider := testutil.EchoEnricher()
	svc := newLoadedService(t, testutil.TestCollection(), provider)

	var header = -1
	err := svc.Stream(context.Background(), "sushi",
		func(count int) error { header = count; return nil },
		func(card render.Card) error { t.Fatal("no cards expected"); return nil },
	)
	require.NoError(t, err)
	assert.Equal(t, 0, header)
	assert.Equal(t, 0, provider.CallCount())
}

func TestStream_EmitErrorStops(t *testing.T) {
	svc := newLoadedService(t, testutil.TestCollection(), testutil.EchoEnricher())
	errStop := errors.New("client gone")

	var emitted int
	err := svc.Stream(context.Background(), "i",
		func(int) error { return nil },
		func(render.Card) error {
			emitted++
			return errStop
		},
	)
	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 1, emitted)
}
