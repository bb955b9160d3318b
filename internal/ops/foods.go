package ops

import (
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/db"
	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/food"
)

// AddBasicFoodInput contains parameters for the AddBasicFood operation.
type AddBasicFoodInput struct {
	ID       string // required
	Name     string // default: ID
	Keywords []string
	Calories float64 // per serving, >= 0
}

// ComponentInput is one component of a composite food.
type ComponentInput struct {
	FoodID   string
	Servings float64
}

// AddCompositeFoodInput contains parameters for the AddCompositeFood operation.
type AddCompositeFoodInput struct {
	ID         string // required
	Name       string
	Keywords   []string
	Components []ComponentInput // required, non-empty
}

// FoodOutput describes one catalog food.
type FoodOutput struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Kind       food.Kind        `json:"kind"`
	Calories   float64          `json:"calories_per_serving"`
	Keywords   []string         `json:"keywords"`
	Components []food.Component `json:"components,omitempty"`
}

// SearchFoodsInput contains parameters for the SearchFoods operation.
type SearchFoodsInput struct {
	Query    string // whitespace-separated terms; empty matches everything
	MatchAll bool   // every term must match (default: any term)
	Ranked   bool   // exact keyword matches first
	Limit    int    // default: 20, max: 100
}

// SearchFoodsOutput contains the result of the SearchFoods operation.
type SearchFoodsOutput struct {
	Items   []FoodOutput `json:"items"`
	HasMore bool         `json:"has_more"`
}

// GetFoodInput contains parameters for the GetFood operation.
type GetFoodInput struct {
	ID string // required
}

// AddBasicFood adds a basic food to the catalog and stores it.
func (s *Session) AddBasicFood(input AddBasicFoodInput) (*FoodOutput, error) {
	return s.addFood(food.Definition{
		ID:       input.ID,
		Name:     input.Name,
		Keywords: input.Keywords,
		Calories: input.Calories,
	}, false)
}

// AddCompositeFood adds a composite food to the catalog and stores it.
func (s *Session) AddCompositeFood(input AddCompositeFoodInput) (*FoodOutput, error) {
	components := make([]food.Component, 0, len(input.Components))
	for _, c := range input.Components {
		components = append(components, food.Component{FoodID: strings.TrimSpace(c.FoodID), Servings: c.Servings})
	}
	return s.addFood(food.Definition{
		ID:         input.ID,
		Name:       input.Name,
		Keywords:   input.Keywords,
		Components: components,
	}, true)
}

// addFood validates def against a copy of the catalog and swaps the copy in
// only after the food is stored.
func (s *Session) addFood(def food.Definition, composite bool) (*FoodOutput, error) {
	next := s.catalog.Clone()

	var (
		f   food.Food
		err error
	)
	if composite {
		f, err = next.AddComposite(def)
	} else {
		f, err = next.AddBasic(def)
	}
	if err != nil {
		return nil, err
	}

	if err := db.InsertFood(s.db, f); err != nil {
		return nil, err
	}
	s.catalog = next

	s.logger.Debug("food added",
		zap.String("id", f.ID),
		zap.String("kind", string(f.Kind)),
		zap.Float64("calories", f.CaloriesPerServing))
	return foodOutput(f), nil
}

// SearchFoods matches foods by case-insensitive keyword containment.
func (s *Session) SearchFoods(input SearchFoodsInput) (*SearchFoodsOutput, error) {
	return SearchCatalog(s.catalog, input)
}

// GetFood returns one food by ID.
func (s *Session) GetFood(input GetFoodInput) (*FoodOutput, error) {
	return LookupFood(s.catalog, input)
}

// SearchCatalog runs a food search against cat.
func SearchCatalog(cat *food.Catalog, input SearchFoodsInput) (*SearchFoodsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	q := food.ParseQuery(input.Query, input.MatchAll)
	q.Ranked = input.Ranked

	out := &SearchFoodsOutput{Items: []FoodOutput{}}
	for id := range cat.Search(q) {
		if len(out.Items) == limit {
			out.HasMore = true
			break
		}
		f, ok := cat.Get(id)
		if !ok {
			return nil, errors.NewInternalConsistency("search returned missing food " + id)
		}
		out.Items = append(out.Items, *foodOutput(f))
	}
	return out, nil
}

// LookupFood returns one food of cat by ID.
func LookupFood(cat *food.Catalog, input GetFoodInput) (*FoodOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	f, ok := cat.Get(id)
	if !ok {
		return nil, errors.NewUnknownFood(id)
	}
	return foodOutput(f), nil
}

func foodOutput(f food.Food) *FoodOutput {
	keywords := f.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return &FoodOutput{
		ID:         f.ID,
		Name:       f.Name,
		Kind:       f.Kind,
		Calories:   f.CaloriesPerServing,
		Keywords:   keywords,
		Components: f.Components,
	}
}
