package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-search/internal/fetcher"
	"github.com/windoze95/saltybytes-search/internal/logger"
	"github.com/windoze95/saltybytes-search/internal/render"
	"github.com/windoze95/saltybytes-search/internal/search"
	"github.com/windoze95/saltybytes-search/internal/service"
	"go.uber.org/zap"
)

// SearchHandler serves the search page and the JSON search API.
type SearchHandler struct {
	Service *service.RecipeService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(recipeService *service.RecipeService) *SearchHandler {
	return &SearchHandler{Service: recipeService}
}

// Index handles GET /. It renders the empty search page, or the fetch error
// if the collection could not be loaded.
func (h *SearchHandler) Index(c *gin.Context) {
	data := render.NewPageData()
	if err := h.Service.LoadErr(); err != nil {
		data.FetchError = fetcher.UserMessage(err)
		c.HTML(http.StatusServiceUnavailable, render.PageTemplate, data)
		return
	}
	c.HTML(http.StatusOK, render.PageTemplate, data)
}

// SearchPage handles GET and POST /search. A blank query renders the page
// without running a search.
func (h *SearchHandler) SearchPage(c *gin.Context) {
	data := render.NewPageData()
	data.Query = queryParam(c, "query", "q")

	if err := h.Service.LoadErr(); err != nil {
		data.FetchError = fetcher.UserMessage(err)
		c.HTML(http.StatusServiceUnavailable, render.PageTemplate, data)
		return
	}

	query, ok := search.NormalizeQuery(data.Query)
	if !ok {
		c.HTML(http.StatusOK, render.PageTemplate, data)
		return
	}

	outcome, err := h.Service.Search(c.Request.Context(), query)
	if err != nil {
		logger.FromGin(c).Error("failed to search recipes", zap.String("query", query), zap.Error(err))
		data.Error = "Search failed. Please try again."
		c.HTML(http.StatusInternalServerError, render.PageTemplate, data)
		return
	}

	data.Query = outcome.Query
	data.Searched = true
	data.Count = outcome.Count
	data.Cards = outcome.Cards
	c.HTML(http.StatusOK, render.PageTemplate, data)
}

// SearchRecipes handles GET /v1/recipes/search?q=...
func (h *SearchHandler) SearchRecipes(c *gin.Context) {
	if err := h.Service.LoadErr(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": fetcher.UserMessage(err)})
		return
	}

	query, ok := search.NormalizeQuery(queryParam(c, "q", "query"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	outcome, err := h.Service.Search(c.Request.Context(), query)
	if err != nil {
		logger.FromGin(c).Error("failed to search recipes", zap.String("query", query), zap.Error(err))
		if errors.Is(err, service.ErrCollectionUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recipe collection is unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search recipes"})
		return
	}

	if outcome.Cards == nil {
		outcome.Cards = []render.Card{}
	}
	c.JSON(http.StatusOK, outcome)
}

// Ping handles GET /ping.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
