package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/windoze95/saltybytes-search/internal/ai"
	"github.com/windoze95/saltybytes-search/internal/config"
	"github.com/windoze95/saltybytes-search/internal/logger"
	"github.com/windoze95/saltybytes-search/internal/models"
	"github.com/windoze95/saltybytes-search/internal/render"
	"github.com/windoze95/saltybytes-search/internal/search"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyQuery is returned when the query is blank after trimming.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrCollectionUnavailable is returned when the collection failed to
	// load or was never loaded.
	ErrCollectionUnavailable = errors.New("recipe collection is unavailable")
)

// CollectionFetcher retrieves the recipe collection from its source.
type CollectionFetcher interface {
	Fetch(ctx context.Context, url string) (models.Collection, error)
}

// SearchOutcome is the rendered result of one search.
type SearchOutcome struct {
	Query string        `json:"query"`
	Count int           `json:"count"`
	Cards []render.Card `json:"recipes"`
}

// NoResults reports whether the search matched nothing.
func (o *SearchOutcome) NoResults() bool { return o.Count == 0 }

// RecipeService runs the fetch, filter, enrich and render pipeline.
type RecipeService struct {
	Cfg      *config.Config
	Fetcher  CollectionFetcher
	Provider ai.EnrichmentProvider

	mu      sync.RWMutex
	table   *search.Table
	loadErr error
	loaded  bool
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(cfg *config.Config, fetcher CollectionFetcher, provider ai.EnrichmentProvider) *RecipeService {
	return &RecipeService{
		Cfg:      cfg,
		Fetcher:  fetcher,
		Provider: provider,
	}
}

// Load fetches the collection once and builds its search table. The error,
// if any, is kept and reported by LoadErr.
func (s *RecipeService) Load(ctx context.Context) error {
	collection, err := s.Fetcher.Fetch(ctx, s.Cfg.EnvVars.RecipesURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	if err != nil {
		s.loadErr = err
		s.table = nil
		return err
	}
	s.loadErr = nil
	s.table = search.NewTable(collection)
	return nil
}

// LoadErr returns the error from Load, or ErrCollectionUnavailable if Load
// has not run.
func (s *RecipeService) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return ErrCollectionUnavailable
	}
	return s.loadErr
}

// Size returns the number of recipes in the loaded collection.
func (s *RecipeService) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return 0
	}
	return s.table.Len()
}

// Filter runs the query filter without enrichment.
func (s *RecipeService) Filter(rawQuery string) (search.ResultSet, error) {
	query, ok := search.NormalizeQuery(rawQuery)
	if !ok {
		return search.ResultSet{}, ErrEmptyQuery
	}

	s.mu.RLock()
	table := s.table
	s.mu.RUnlock()
	if table == nil {
		return search.ResultSet{}, ErrCollectionUnavailable
	}

	rs := table.Search(query)
	logger.Get().Info("recipe search",
		zap.String("query", query),
		zap.Int("results", rs.Len()),
	)
	return rs, nil
}

// Search filters the collection and enriches every match. A failed
// enrichment degrades only its own card. The enricher is never called when
// nothing matches.
func (s *RecipeService) Search(ctx context.Context, rawQuery string) (*SearchOutcome, error) {
	rs, err := s.Filter(rawQuery)
	if err != nil {
		return nil, err
	}

	outcome := &SearchOutcome{Query: rs.Query, Count: rs.Len()}
	if rs.Empty() {
		return outcome, nil
	}

	outcome.Cards = make([]render.Card, 0, rs.Len())
	err = s.enrichInOrder(ctx, rs.Recipes, func(card render.Card) error {
		outcome.Cards = append(outcome.Cards, card)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", rs.Query, err)
	}
	return outcome, nil
}

// Stream is like Search but hands each card to emit as soon as it and every
// card before it are ready. onHeader is called once with the match count
// before any card.
func (s *RecipeService) Stream(ctx context.Context, rawQuery string, onHeader func(count int) error, emit func(render.Card) error) error {
	rs, err := s.Filter(rawQuery)
	if err != nil {
		return err
	}
	if err := onHeader(rs.Len()); err != nil {
		return err
	}
	if rs.Empty() {
		return nil
	}
	return s.enrichInOrder(ctx, rs.Recipes, emit)
}

func (s *RecipeService) concurrency() int {
	if n := s.Cfg.EnvVars.EnrichConcurrency; n > 0 {
		return n
	}
	return 1
}

// enrichInOrder enriches recipes on a bounded pool and calls emit in the
// original order.
func (s *RecipeService) enrichInOrder(ctx context.Context, recipes models.Collection, emit func(render.Card) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make([]chan render.Card, len(recipes))
	for i := range slots {
		slots[i] = make(chan render.Card, 1)
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency())
	go func() {
		for i, recipe := range recipes {
			i, recipe := i, recipe
			g.Go(func() error {
				slots[i] <- s.enrichCard(ctx, recipe)
				return nil
			})
		}
		_ = g.Wait()
	}()

	for i := range slots {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case card := <-slots[i]:
			if err := emit(card); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *RecipeService) enrichCard(ctx context.Context, recipe models.Recipe) render.Card {
	if err := ctx.Err(); err != nil {
		return render.NewDegradedCard(recipe, err)
	}

	text, err := s.Provider.EnrichDescription(ctx, ai.EnrichRequest{
		Name:        recipe.Name(),
		Description: recipe.Description(),
		Ingredients: recipe.Ingredients(),
	})
	if err != nil {
		logger.Get().Warn("failed to enrich recipe description",
			zap.String("recipe", recipe.Name()),
			zap.String("kind", ai.ErrorKind(err)),
			zap.Error(err),
		)
		return render.NewDegradedCard(recipe, err)
	}
	return render.NewCard(recipe, text)
}
