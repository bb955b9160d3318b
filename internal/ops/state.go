package ops

import (
	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/calc"
	"github.com/hpungsan/yada/internal/calendar"
	"github.com/hpungsan/yada/internal/db"
)

// SetDateInput contains parameters for the SetDate operation.
type SetDateInput struct {
	Date string // today, yesterday, tomorrow or YYYY-MM-DD
}

// DateOutput reports the active date.
type DateOutput struct {
	Date  string `json:"date"`
	Today string `json:"today"`
}

// SetStrategyInput contains parameters for the SetStrategy operation.
type SetStrategyInput struct {
	Name string
}

// StrategyOutput reports the active strategy.
type StrategyOutput struct {
	Strategy  string   `json:"strategy"`
	Available []string `json:"available"`
}

// SetDate changes the date commands apply to when they name none.
func (s *Session) SetDate(input SetDateInput) (*DateOutput, error) {
	if input.Date == "" {
		input.Date = "today"
	}
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, err
	}
	s.date = date
	return s.Date(), nil
}

// Date returns the active date.
func (s *Session) Date() *DateOutput {
	return &DateOutput{Date: s.date.String(), Today: calendar.Today(s.now).String()}
}

// SetStrategy switches the calorie calculator. Only targets change; logged
// entries and profile records are untouched. A logged-in user's choice is
// stored immediately.
func (s *Session) SetStrategy(input SetStrategyInput) (*StrategyOutput, error) {
	c, err := calc.Lookup(input.Name)
	if err != nil {
		return nil, err
	}
	if s.user != "" {
		if err := db.UpdateUserStrategy(s.db, s.user, c.Name()); err != nil {
			return nil, err
		}
	}
	s.strategy = c
	s.logger.Debug("strategy set", zap.String("user", s.user), zap.String("strategy", c.Name()))
	return s.Strategy(), nil
}

// Strategy returns the active strategy.
func (s *Session) Strategy() *StrategyOutput {
	return &StrategyOutput{Strategy: s.strategy.Name(), Available: calc.Names()}
}
