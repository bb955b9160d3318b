// Package food holds the shared food catalog of basic and composite foods.
package food

import (
	"math"
	"regexp"
	"strings"

	"github.com/hpungsan/yada/internal/errors"
)

// Kind distinguishes basic foods from composite (recipe-style) foods.
type Kind string

const (
	KindBasic     Kind = "basic"
	KindComposite Kind = "composite"
)

// Component is one weighted ingredient of a composite food.
type Component struct {
	FoodID   string  `json:"food_id"`
	Servings float64 `json:"servings"`
}

// Food is an immutable catalog entry.
type Food struct {
	// ID is unique across basic and composite foods
	ID string `json:"id"`

	// Name is the display name (defaults to ID)
	Name string `json:"name"`

	// Keywords is an ordered set of search keywords
	Keywords []string `json:"keywords"`

	Kind Kind `json:"kind"`

	// CaloriesPerServing is stored for basic foods and cached at creation
	// time for composite foods.
	CaloriesPerServing float64 `json:"calories_per_serving"`

	// Components is empty for basic foods
	Components []Component `json:"components,omitempty"`
}

// IsComposite reports whether f is a composite food.
func (f Food) IsComposite() bool {
	return f.Kind == KindComposite
}

func (f Food) clone() Food {
	out := f
	out.Keywords = append([]string(nil), f.Keywords...)
	if f.Components != nil {
		out.Components = append([]Component(nil), f.Components...)
	}
	return out
}

// Definition describes a food to be added to the catalog.
// A definition with components is composite; Calories is ignored for it.
type Definition struct {
	ID         string      `json:"id"`
	Name       string      `json:"name,omitempty"`
	Keywords   []string    `json:"keywords,omitempty"`
	Calories   float64     `json:"calories,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// IsComposite reports whether the definition describes a composite food.
func (d Definition) IsComposite() bool {
	return len(d.Components) > 0
}

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims, lowercases and collapses internal whitespace.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// NormalizeKeywords trims keywords and drops empties and case-insensitive
// duplicates, keeping first-seen order and casing.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = whitespaceRegex.ReplaceAllString(strings.TrimSpace(k), " ")
		norm := strings.ToLower(k)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, k)
	}
	return out
}

// cleanID validates and trims a food id.
func cleanID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest("food id is required")
	}
	if strings.ContainsAny(id, " \t\n") {
		return "", errors.NewInvalidRequest("food id must not contain whitespace: " + id)
	}
	return id, nil
}

func validCalories(c float64) bool {
	return c >= 0 && !math.IsNaN(c) && !math.IsInf(c, 0)
}

// cleanComponents trims component ids and checks serving counts.
func cleanComponents(components []Component) ([]Component, error) {
	if len(components) == 0 {
		return nil, errors.NewInvalidRequest("composite food needs at least one component")
	}
	out := make([]Component, len(components))
	for i, comp := range components {
		id := strings.TrimSpace(comp.FoodID)
		if id == "" {
			return nil, errors.NewInvalidRequest("component food id is required")
		}
		if !(comp.Servings > 0) || math.IsInf(comp.Servings, 0) {
			return nil, errors.NewInvalidServings(comp.Servings)
		}
		out[i] = Component{FoodID: id, Servings: comp.Servings}
	}
	return out, nil
}
