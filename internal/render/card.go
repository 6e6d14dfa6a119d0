package render

import (
	"github.com/windoze95/saltybytes-search/internal/ai"
	"github.com/windoze95/saltybytes-search/internal/models"
)

// Card is the view model for a single recipe result.
type Card struct {
	Name         string `json:"name"`
	Image        string `json:"image"`
	Description  string `json:"description"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	Degraded     bool   `json:"degraded,omitempty"`
	ErrorKind    string `json:"error_kind,omitempty"`
}

// NewCard combines a recipe's raw fields with its enriched description.
func NewCard(recipe models.Recipe, enriched string) Card {
	return Card{
		Name:         recipe.Name(),
		Image:        recipe.Image(),
		Description:  enriched,
		Ingredients:  recipe.Ingredients(),
		Instructions: recipe.Instructions(),
	}
}

// NewDegradedCard shows the raw description in place of an enrichment that
// failed with err.
func NewDegradedCard(recipe models.Recipe, err error) Card {
	card := NewCard(recipe, recipe.Description())
	card.Degraded = true
	card.ErrorKind = ai.ErrorKind(err)
	return card
}
