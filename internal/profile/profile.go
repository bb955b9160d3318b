// Package profile tracks a user's body profile over time with carry-over
// semantics: a date without its own record uses the nearest earlier one.
package profile

import (
	"strings"

	"github.com/hpungsan/yada/internal/calendar"
	"github.com/hpungsan/yada/internal/errors"
)

// Gender selects the sex-specific metabolic formula.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender accepts "male", "m", "female", "f"; anything else is Other.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderOther
	}
}

// ActivityLevel is an ordinal from Sedentary (1) to ExtremelyActive (5).
type ActivityLevel int

const (
	Sedentary ActivityLevel = iota + 1
	LightlyActive
	ModeratelyActive
	VeryActive
	ExtremelyActive
)

var activityNames = map[ActivityLevel]string{
	Sedentary:        "sedentary",
	LightlyActive:    "lightly_active",
	ModeratelyActive: "moderately_active",
	VeryActive:       "very_active",
	ExtremelyActive:  "extremely_active",
}

// activityFactors is the multiplier table shared by every calculator.
var activityFactors = map[ActivityLevel]float64{
	Sedentary:        1.2,
	LightlyActive:    1.375,
	ModeratelyActive: 1.55,
	VeryActive:       1.725,
	ExtremelyActive:  1.9,
}

// Valid reports whether a is one of the defined levels.
func (a ActivityLevel) Valid() bool {
	_, ok := activityFactors[a]
	return ok
}

// Factor returns the energy expenditure multiplier for a.
func (a ActivityLevel) Factor() float64 {
	return activityFactors[a]
}

// String returns the level's name, e.g. "very_active".
func (a ActivityLevel) String() string {
	if name, ok := activityNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseActivityLevel accepts a level name, its short form ("lightly",
// "very") or its ordinal ("1".."5").
func ParseActivityLevel(s string) (ActivityLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	for level, name := range activityNames {
		short, _, _ := strings.Cut(name, "_")
		if s == name || s == short || (len(s) == 1 && s[0] == byte('0'+level)) {
			return level, nil
		}
	}
	return 0, errors.NewInvalidRequest("unknown activity level: " + s)
}

// Profile is a snapshot of the inputs to a calorie calculation.
type Profile struct {
	Gender   Gender        `json:"gender"`
	HeightCM float64       `json:"height_cm"`
	Age      int           `json:"age"`
	WeightKG float64       `json:"weight_kg"`
	Activity ActivityLevel `json:"activity_level"`

	// Date is the date of the explicit record this profile came from
	Date calendar.Date `json:"date"`
}

// Fields is a partial profile update; nil fields keep the carried-over value.
type Fields struct {
	Gender   *Gender
	HeightCM *float64
	Age      *int
	WeightKG *float64
	Activity *ActivityLevel
}

// IsEmpty reports whether no field is set.
func (f Fields) IsEmpty() bool {
	return f.Gender == nil && f.HeightCM == nil && f.Age == nil && f.WeightKG == nil && f.Activity == nil
}

// merge applies f onto base.
func (f Fields) merge(base Profile) Profile {
	if f.Gender != nil {
		base.Gender = *f.Gender
	}
	if f.HeightCM != nil {
		base.HeightCM = *f.HeightCM
	}
	if f.Age != nil {
		base.Age = *f.Age
	}
	if f.WeightKG != nil {
		base.WeightKG = *f.WeightKG
	}
	if f.Activity != nil {
		base.Activity = *f.Activity
	}
	return base
}

// missing lists fields that must be supplied when there is no baseline.
func (f Fields) missing() []string {
	var out []string
	if f.Gender == nil {
		out = append(out, "gender")
	}
	if f.HeightCM == nil {
		out = append(out, "height_cm")
	}
	if f.Age == nil {
		out = append(out, "age")
	}
	if f.WeightKG == nil {
		out = append(out, "weight_kg")
	}
	if f.Activity == nil {
		out = append(out, "activity_level")
	}
	return out
}

// Validate checks that p is usable by a calculator.
func (p Profile) Validate() error {
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return errors.NewInvalidRequest("unknown gender: " + string(p.Gender))
	}
	if !(p.HeightCM > 0) {
		return errors.NewInvalidRequest("height_cm must be positive")
	}
	if !(p.WeightKG > 0) {
		return errors.NewInvalidRequest("weight_kg must be positive")
	}
	if p.Age <= 0 {
		return errors.NewInvalidRequest("age must be positive")
	}
	if !p.Activity.Valid() {
		return errors.NewInvalidRequest("activity_level must be between 1 and 5")
	}
	return nil
}
