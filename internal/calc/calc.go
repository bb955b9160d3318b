// Package calc provides the daily calorie target formulas.
package calc

import (
	"slices"
	"strings"

	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/profile"
)

// Default is the strategy used when none is selected.
const Default = "harris-benedict"

// Calculator is a named target strategy.
type Calculator interface {
	Name() string
	ComputeTarget(p profile.Profile) float64
}

// HarrisBenedict is the revised Harris-Benedict equation.
type HarrisBenedict struct{}

func (HarrisBenedict) Name() string { return "harris-benedict" }

func (HarrisBenedict) ComputeTarget(p profile.Profile) float64 {
	age := float64(p.Age)
	var bmr float64
	if p.Gender == profile.GenderMale {
		bmr = 88.362 + 13.397*p.WeightKG + 4.799*p.HeightCM - 5.677*age
	} else {
		bmr = 447.593 + 9.247*p.WeightKG + 3.098*p.HeightCM - 4.330*age
	}
	return bmr * p.Activity.Factor()
}

// MifflinStJeor is the Mifflin-St Jeor equation.
type MifflinStJeor struct{}

func (MifflinStJeor) Name() string { return "mifflin-st-jeor" }

func (MifflinStJeor) ComputeTarget(p profile.Profile) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Gender == profile.GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr * p.Activity.Factor()
}

var registry = map[string]Calculator{
	HarrisBenedict{}.Name(): HarrisBenedict{},
	MifflinStJeor{}.Name():  MifflinStJeor{},
}

var aliases = map[string]string{
	"hb":             "harris-benedict",
	"harris":         "harris-benedict",
	"msj":            "mifflin-st-jeor",
	"mifflin":        "mifflin-st-jeor",
	"mifflin-stjeor": "mifflin-st-jeor",
}

// Lookup returns the calculator registered under name. Matching ignores case
// and accepts underscores for dashes plus a few short aliases.
func Lookup(name string) (Calculator, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if full, ok := aliases[key]; ok {
		key = full
	}
	c, ok := registry[key]
	if !ok {
		return nil, errors.NewInvalidRequest("unknown strategy: " + name)
	}
	return c, nil
}

// Names returns the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
