package food

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/hpungsan/yada/internal/errors"
)

// Catalog owns all food definitions. It is append-only: foods are never
// edited or removed once added.
type Catalog struct {
	foods map[string]*Food
	order []string // insertion order
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{foods: make(map[string]*Food)}
}

// Len returns the number of foods.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Has reports whether id names a food in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.foods[id]
	return ok
}

// Get returns a copy of the food with the given id.
func (c *Catalog) Get(id string) (Food, bool) {
	f, ok := c.foods[id]
	if !ok {
		return Food{}, false
	}
	return f.clone(), true
}

// All yields every food in insertion order.
func (c *Catalog) All() iter.Seq[Food] {
	return func(yield func(Food) bool) {
		n := len(c.order)
		for _, id := range c.order[:n] {
			if !yield(c.foods[id].clone()) {
				return
			}
		}
	}
}

// CaloriesPerServing returns the stored (basic) or cached (composite) calories.
func (c *Catalog) CaloriesPerServing(id string) (float64, error) {
	f, ok := c.foods[id]
	if !ok {
		return 0, errors.NewUnknownFood(id)
	}
	return f.CaloriesPerServing, nil
}

// AddBasic adds a basic food with directly specified calories.
func (c *Catalog) AddBasic(def Definition) (Food, error) {
	id, err := cleanID(def.ID)
	if err != nil {
		return Food{}, err
	}
	if c.Has(id) {
		return Food{}, errors.NewDuplicateID(id)
	}
	if def.IsComposite() {
		return Food{}, errors.NewInvalidRequest("basic food must not have components")
	}
	if !validCalories(def.Calories) {
		return Food{}, errors.NewInvalidRequest("calories per serving must be a non-negative number")
	}

	f := &Food{
		ID:                 id,
		Name:               displayName(def.Name, id),
		Keywords:           NormalizeKeywords(def.Keywords),
		Kind:               KindBasic,
		CaloriesPerServing: def.Calories,
	}
	c.insert(f)
	return f.clone(), nil
}

// AddComposite adds a composite food. Its calories per serving are computed
// once, here, as the weighted sum of its components' calories.
func (c *Catalog) AddComposite(def Definition) (Food, error) {
	id, err := cleanID(def.ID)
	if err != nil {
		return Food{}, err
	}
	if c.Has(id) {
		return Food{}, errors.NewDuplicateID(id)
	}
	components, err := cleanComponents(def.Components)
	if err != nil {
		return Food{}, err
	}
	if err := c.checkAcyclic(id, components); err != nil {
		return Food{}, err
	}

	var total float64
	for _, comp := range components {
		cal, err := c.CaloriesPerServing(comp.FoodID)
		if err != nil {
			return Food{}, errors.NewUnknownComponent(id, comp.FoodID)
		}
		total += comp.Servings * cal
	}

	f := &Food{
		ID:                 id,
		Name:               displayName(def.Name, id),
		Keywords:           NormalizeKeywords(def.Keywords),
		Kind:               KindComposite,
		CaloriesPerServing: total,
		Components:         components,
	}
	c.insert(f)
	return f.clone(), nil
}

// Add dispatches to AddBasic or AddComposite.
func (c *Catalog) Add(def Definition) (Food, error) {
	if def.IsComposite() {
		return c.AddComposite(def)
	}
	return c.AddBasic(def)
}

// Restore loads previously persisted foods in their stored order. Cached
// composite calories are kept as stored, not recomputed. Every component
// must already be present, so restored graphs stay acyclic.
func (c *Catalog) Restore(foods []Food) error {
	for _, f := range foods {
		id, err := cleanID(f.ID)
		if err != nil {
			return err
		}
		if c.Has(id) {
			return errors.NewDuplicateID(id)
		}
		if !validCalories(f.CaloriesPerServing) {
			return errors.NewInvalidRequest("stored calories for " + id + " are invalid")
		}
		restored := f.clone()
		restored.ID = id
		restored.Name = displayName(f.Name, id)
		restored.Keywords = NormalizeKeywords(f.Keywords)
		if f.Kind == KindComposite || len(f.Components) > 0 {
			restored.Kind = KindComposite
			components, err := cleanComponents(f.Components)
			if err != nil {
				return err
			}
			if err := c.checkAcyclic(id, components); err != nil {
				return err
			}
			restored.Components = components
		} else {
			restored.Kind = KindBasic
			restored.Components = nil
		}
		c.insert(&restored)
	}
	return nil
}

// Clone returns an independent catalog with the same foods. Foods are
// immutable, so they are shared.
func (c *Catalog) Clone() *Catalog {
	return &Catalog{foods: maps.Clone(c.foods), order: slices.Clone(c.order)}
}

func (c *Catalog) insert(f *Food) {
	c.foods[f.ID] = f
	c.order = append(c.order, f.ID)
}

// checkAcyclic verifies that a node id with the given components can be
// added without creating a cycle. Each component must exist; the walk over
// the existing graph visits every node at most once.
func (c *Catalog) checkAcyclic(id string, components []Component) error {
	visited := make(map[string]bool)

	var walk func(node string, path []string) error
	walk = func(node string, path []string) error {
		path = append(path, node)
		if node == id {
			return errors.NewCyclicReference(id, path)
		}
		if visited[node] {
			return nil
		}
		visited[node] = true

		f, ok := c.foods[node]
		if !ok {
			return errors.NewInternalConsistency("catalog references missing food " + node)
		}
		for _, child := range f.Components {
			if err := walk(child.FoodID, path); err != nil {
				return err
			}
		}
		return nil
	}

	for _, comp := range components {
		if comp.FoodID == id {
			return errors.NewCyclicReference(id, []string{id, id})
		}
		if !c.Has(comp.FoodID) {
			return errors.NewUnknownComponent(id, comp.FoodID)
		}
		if err := walk(comp.FoodID, []string{id}); err != nil {
			return err
		}
	}
	return nil
}

func displayName(name, id string) string {
	name = whitespaceRegex.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return id
	}
	return name
}
