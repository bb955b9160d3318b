// Package source supplies food definitions from outside the catalog.
package source

import (
	"context"

	"github.com/hpungsan/yada/internal/food"
)

// Source produces food definitions for import. Definitions may reference
// each other in any order and may reference foods already in the catalog.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]food.Definition, error)
}

// Builtin is the sample catalog seeded on first start.
type Builtin struct{}

func (Builtin) Name() string { return "builtin" }

func (Builtin) Fetch(ctx context.Context) ([]food.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []food.Definition{
		{ID: "chicken", Name: "Chicken Breast", Keywords: []string{"chicken", "meat", "protein"}, Calories: 165},
		{ID: "apple", Name: "Apple", Keywords: []string{"apple", "fruit"}, Calories: 95},
		{ID: "pb", Name: "Peanut Butter", Keywords: []string{"peanut", "butter"}, Calories: 190},
		{ID: "rice", Name: "White Rice", Keywords: []string{"rice", "grain"}, Calories: 206},
		{ID: "butter", Name: "Butter", Keywords: []string{"butter", "fat"}, Calories: 102},
		{ID: "bread", Name: "Bread Slice", Keywords: []string{"bread", "grain"}, Calories: 80},
		{ID: "egg", Name: "Egg", Keywords: []string{"egg", "protein"}, Calories: 78},
		{ID: "banana", Name: "Banana", Keywords: []string{"banana", "fruit"}, Calories: 105},
		{ID: "seeds", Name: "Seeds", Keywords: []string{"seed", "seeds"}, Calories: 300},
		{ID: "milk", Name: "Whole Milk", Keywords: []string{"milk", "dairy"}, Calories: 149},
		{ID: "sprout", Name: "Sprouts", Keywords: []string{"sprout", "sprouts"}, Calories: 250},
		{ID: "cheese", Name: "Cheddar Cheese", Keywords: []string{"cheese", "dairy"}, Calories: 113},

		{ID: "pb_sandwich", Name: "Peanut Butter Sandwich", Keywords: []string{"sandwich", "peanut"},
			Components: []food.Component{{FoodID: "bread", Servings: 2}, {FoodID: "pb", Servings: 1}}},
		{ID: "csalad", Name: "Chicken Salad", Keywords: []string{"salad", "chicken", "greens"},
			Components: []food.Component{{FoodID: "chicken", Servings: 2}, {FoodID: "sprout", Servings: 1}}},
		{ID: "vada", Name: "Medhu Vada", Keywords: []string{"medhu", "vada"},
			Components: []food.Component{{FoodID: "rice", Servings: 2}, {FoodID: "sprout", Servings: 2}}},
		{ID: "bshake", Name: "Banana Shake", Keywords: []string{"shake", "banana", "bananashake"},
			Components: []food.Component{{FoodID: "banana", Servings: 2}, {FoodID: "milk", Servings: 2}}},
	}, nil
}
