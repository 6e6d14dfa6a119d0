package models

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
	"github.com/windoze95/saltybytes-search/internal/util"
)

// Well-known recipe field keys.
const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldIngredients  = "ingredients"
	FieldInstructions = "instructions"
	FieldImage        = "image"
)

// Fallback values substituted when a field is absent.
const (
	FallbackName         = "No Name"
	FallbackDescription  = "No Description"
	FallbackIngredients  = "No Ingredients"
	FallbackInstructions = "No Instructions"
	FallbackImage        = ""
)

// Recipe is a single record from the remote recipe source. Every field is
// optional and untyped, so the record keeps the decoded values alongside the
// order in which their keys appeared.
type Recipe struct {
	Keys   []string
	Fields map[string]interface{}
}

// Collection is the ordered list of recipes returned by the source.
type Collection []Recipe

// NewRecipeFromResult builds a Recipe from a parsed JSON value. Non-object
// values produce a record with no fields.
func NewRecipeFromResult(value gjson.Result) Recipe {
	r := Recipe{Fields: make(map[string]interface{})}
	if !value.IsObject() {
		return r
	}
	value.ForEach(func(key, field gjson.Result) bool {
		k := key.String()
		if _, seen := r.Fields[k]; !seen {
			r.Keys = append(r.Keys, k)
		}
		r.Fields[k] = field.Value()
		return true
	})
	return r
}

// ParseRecipe parses a single JSON object into a Recipe.
func ParseRecipe(raw string) Recipe {
	return NewRecipeFromResult(gjson.Parse(raw))
}

// Get returns the raw value stored under key and whether it is present.
// A JSON null counts as absent.
func (r Recipe) Get(key string) (interface{}, bool) {
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the coerced value of key, or fallback when it is absent.
func (r Recipe) String(key, fallback string) string {
	v, ok := r.Get(key)
	if !ok {
		return fallback
	}
	return CoerceString(v)
}

// Name returns the recipe name or "No Name".
func (r Recipe) Name() string { return r.String(FieldName, FallbackName) }

// Description returns the recipe description or "No Description".
func (r Recipe) Description() string { return r.String(FieldDescription, FallbackDescription) }

// Ingredients returns the ingredient list as text or "No Ingredients".
func (r Recipe) Ingredients() string { return r.String(FieldIngredients, FallbackIngredients) }

// Instructions returns the instructions as text or "No Instructions".
func (r Recipe) Instructions() string { return r.String(FieldInstructions, FallbackInstructions) }

// Image returns the image URL or an empty string.
func (r Recipe) Image() string { return r.String(FieldImage, FallbackImage) }

// CoerceString turns a decoded JSON value into the text used for matching
// and display. Arrays are joined with ", ", objects become compact JSON and
// null becomes the empty string.
func CoerceString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []interface{}:
		parts := make([]string, len(t))
		for i, elem := range t {
			parts[i] = CoerceString(elem)
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		s, err := util.SerializeToJSONString(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return s
	default:
		s, err := cast.ToStringE(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return s
	}
}
