package testutil

import (
	"github.com/windoze95/saltybytes-search/internal/config"
	"github.com/windoze95/saltybytes-search/internal/models"
)

// TestConfig returns a minimal config suitable for tests.
func TestConfig() *config.Config {
	return &config.Config{
		EnvVars: config.EnvVars{
			Port:              "8080",
			RecipesURL:        "http://recipes.test/recipes",
			EnrichProvider:    config.ProviderOpenAI,
			OpenAIAPIKey:      "test-key",
			OpenAIModel:       "gpt-4",
			EnrichMaxTokens:   150,
			EnrichConcurrency: 1,
		},
		Prompts: config.DefaultPrompts(),
	}
}

// PastaCollection is the single-recipe collection used by the basic scenarios.
func PastaCollection() models.Collection {
	return models.Collection{
		models.ParseRecipe(`{"name":"Pasta","description":"Simple pasta","ingredients":"pasta, salt"}`),
	}
}

// TestCollection returns a small collection shaped like the public recipe feed.
func TestCollection() models.Collection {
	return models.Collection{
		models.ParseRecipe(`{"id":1,"name":"Classic Margherita Pizza","description":"Thin crust pizza","ingredients":["Pizza dough","Tomato sauce","Fresh mozzarella"],"instructions":["Preheat the oven","Bake"],"cuisine":"Italian","image":"https://cdn.test/recipe-images/1.webp"}`),
		models.ParseRecipe(`{"id":2,"name":"Vegetarian Stir-Fry","ingredients":["Tofu","Broccoli"],"instructions":["Stir","Fry"],"cuisine":"Asian","image":"https://cdn.test/recipe-images/2.webp"}`),
		models.ParseRecipe(`{"id":3,"name":"Chicken Alfredo Pasta","description":"Creamy pasta","ingredients":["Fettuccine","Chicken breast"],"instructions":["Cook pasta","Mix"],"cuisine":"Italian"}`),
		models.ParseRecipe(`{"id":4,"name":"Chocolate Chip Cookies","ingredients":["Butter","Chocolate chips"],"cuisine":"American","image":"https://cdn.test/recipe-images/4.webp"}`),
	}
}
