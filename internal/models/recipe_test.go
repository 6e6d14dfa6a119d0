package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRecipe_KeepsKeyOrder(t *testing.T) {
	r := ParseRecipe(`{"name":"Pasta","rating":4.5,"ingredients":["pasta","salt"],"id":3}`)

	assert.Equal(t, []string{"name", "rating", "ingredients", "id"}, r.Keys)
	assert.Equal(t, "Pasta", r.Name())
	assert.Equal(t, "pasta, salt", r.Ingredients())
}

func TestParseRecipe_NonObject(t *testing.T) {
	r := ParseRecipe(`[1,2]`)
	assert.Empty(t, r.Keys)
	assert.Equal(t, FallbackName, r.Name())
}

func TestRecipe_Fallbacks(t *testing.T) {
	r := ParseRecipe(`{}`)

	assert.Equal(t, "No Name", r.Name())
	assert.Equal(t, "No Description", r.Description())
	assert.Equal(t, "No Ingredients", r.Ingredients())
	assert.Equal(t, "No Instructions", r.Instructions())
	assert.Equal(t, "", r.Image())
}

func TestRecipe_NullIsAbsent(t *testing.T) {
	r := ParseRecipe(`{"name":null,"image":null}`)

	assert.Equal(t, "No Name", r.Name())
	assert.Equal(t, "", r.Image())
}

func TestRecipe_EmptyStringIsPresent(t *testing.T) {
	r := ParseRecipe(`{"name":""}`)
	assert.Equal(t, "", r.Name())
}

func TestCoerceString(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"string", "Pasta", "Pasta"},
		{"integer float", float64(30), "30"},
		{"fraction", 4.6, "4.6"},
		{"bool", true, "true"},
		{"list", []interface{}{"a", float64(2), nil}, "a, 2, "},
		{"nested list", []interface{}{[]interface{}{"x", "y"}, "z"}, "x, y, z"},
		{"object", map[string]interface{}{"b": float64(1), "a": "x"}, `{"a":"x","b":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceString(tt.in))
		})
	}
}
