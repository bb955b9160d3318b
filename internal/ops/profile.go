package ops

import (
	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/calendar"
	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/profile"
)

// UpdateProfileInput contains parameters for the UpdateProfile operation.
// Nil fields keep the value carried over from the profile in effect.
type UpdateProfileInput struct {
	Date     string // default: active date
	Gender   *string
	HeightCM *float64
	Age      *int
	WeightKG *float64
	Activity *string // name or 1-5
}

// GetProfileInput contains parameters for the GetProfile operation.
type GetProfileInput struct {
	Date string // default: active date
}

// ProfileOutput describes the profile in effect on a date.
type ProfileOutput struct {
	Date     string  `json:"date"`
	From     string  `json:"effective_from"`
	Explicit bool    `json:"explicit"`
	Gender   string  `json:"gender"`
	HeightCM float64 `json:"height_cm"`
	Age      int     `json:"age"`
	WeightKG float64 `json:"weight_kg"`
	Activity string  `json:"activity_level"`
	Strategy string  `json:"strategy"`
	Target   float64 `json:"target_calories"`
}

// UpdateProfile writes the profile record for a date. Records at other
// dates are unchanged.
func (s *Session) UpdateProfile(input UpdateProfileInput) (*ProfileOutput, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, err
	}

	var fields profile.Fields
	if input.Gender != nil {
		g := profile.ParseGender(*input.Gender)
		fields.Gender = &g
	}
	fields.HeightCM = input.HeightCM
	fields.Age = input.Age
	fields.WeightKG = input.WeightKG
	if input.Activity != nil {
		a, err := profile.ParseActivityLevel(*input.Activity)
		if err != nil {
			return nil, err
		}
		fields.Activity = &a
	}
	if fields.IsEmpty() {
		return nil, errors.NewInvalidRequest("at least one profile field is required")
	}

	p, err := s.undo.UpdateProfile(date, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("profile updated", zap.String("user", s.user), zap.String("date", date.String()))
	return s.profileOutput(date, p, true), nil
}

// GetProfile returns the profile in effect on a date and its calorie target
// under the active strategy.
func (s *Session) GetProfile(input GetProfileInput) (*ProfileOutput, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, err
	}

	p, err := s.profiles.GetProfile(date)
	if err != nil {
		return nil, err
	}
	_, explicit := s.profiles.Explicit(date)
	return s.profileOutput(date, p, explicit), nil
}

func (s *Session) profileOutput(date calendar.Date, p profile.Profile, explicit bool) *ProfileOutput {
	return &ProfileOutput{
		Date:     date.String(),
		From:     p.Date.String(),
		Explicit: explicit,
		Gender:   string(p.Gender),
		HeightCM: p.HeightCM,
		Age:      p.Age,
		WeightKG: p.WeightKG,
		Activity: p.Activity.String(),
		Strategy: s.strategy.Name(),
		Target:   roundCal(s.strategy.ComputeTarget(p)),
	}
}
