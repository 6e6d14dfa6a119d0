// Package search filters a recipe collection by a free-text query.
//
// The collection is first flattened into a Table: one row per recipe and one
// column per key observed anywhere in the collection. Cells are coerced to
// text once, so a query only has to do substring checks.
package search

import (
	"strings"

	"github.com/windoze95/saltybytes-search/internal/models"
)

// Table is the tabular view of a Collection.
type Table struct {
	Columns []string

	records models.Collection
	cells   [][]string // lower-cased, one slice per row, aligned with Columns
}

// ResultSet is the ordered subsequence of a Collection matching a query.
type ResultSet struct {
	Query   string
	Indices []int
	Recipes models.Collection
}

// Len returns the number of matching recipes.
func (rs ResultSet) Len() int { return len(rs.Recipes) }

// Empty reports whether nothing matched.
func (rs ResultSet) Empty() bool { return len(rs.Recipes) == 0 }

// NewTable builds the tabular view of collection. The collection is not
// modified. Missing cells become the empty string.
func NewTable(collection models.Collection) *Table {
	var columns []string
	index := make(map[string]int)
	for _, r := range collection {
		for _, k := range r.Keys {
			if _, ok := index[k]; !ok {
				index[k] = len(columns)
				columns = append(columns, k)
			}
		}
	}

	cells := make([][]string, len(collection))
	for i, r := range collection {
		row := make([]string, len(columns))
		for k, v := range r.Fields {
			row[index[k]] = strings.ToLower(models.CoerceString(v))
		}
		cells[i] = row
	}

	return &Table{
		Columns: columns,
		records: collection,
		cells:   cells,
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.records) }

// Search returns the rows with at least one cell containing the trimmed query,
// case-insensitively, in source order. An empty query matches every row;
// callers gate on NormalizeQuery first.
func (t *Table) Search(query string) ResultSet {
	q := strings.ToLower(strings.TrimSpace(query))
	rs := ResultSet{Query: strings.TrimSpace(query)}
	for i, row := range t.cells {
		if q == "" || rowContains(row, q) {
			rs.Indices = append(rs.Indices, i)
			rs.Recipes = append(rs.Recipes, t.records[i])
		}
	}
	return rs
}

func rowContains(row []string, q string) bool {
	for _, cell := range row {
		if strings.Contains(cell, q) {
			return true
		}
	}
	return false
}

// Search is a convenience wrapper building a Table and querying it once.
func Search(collection models.Collection, query string) ResultSet {
	return NewTable(collection).Search(query)
}

// NormalizeQuery trims raw and reports whether anything is left to search.
func NormalizeQuery(raw string) (string, bool) {
	q := strings.TrimSpace(raw)
	return q, q != ""
}
