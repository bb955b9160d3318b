package ops

import (
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/dailylog"
	"github.com/hpungsan/yada/internal/undo"
)

// AddEntryInput contains parameters for the AddEntry operation.
type AddEntryInput struct {
	Date     string  // default: active date
	FoodID   string  // required
	Servings float64 // > 0
}

// AddEntryOutput contains the result of the AddEntry operation.
type AddEntryOutput struct {
	Date     string  `json:"date"`
	Position int     `json:"position"`
	FoodID   string  `json:"food_id"`
	Servings float64 `json:"servings"`
	Calories float64 `json:"calories"`
}

// ListEntriesInput contains parameters for the ListEntries operation.
type ListEntriesInput struct {
	Date string // default: active date
}

// ListEntriesOutput contains the result of the ListEntries operation.
type ListEntriesOutput struct {
	Date    string          `json:"date"`
	Entries []dailylog.Line `json:"entries"`
	Total   float64         `json:"total_calories"`
}

// RemoveEntryInput contains parameters for the RemoveEntry operation.
type RemoveEntryInput struct {
	Date     string // default: active date
	Position int    // 1-based
}

// RemoveEntryOutput contains the result of the RemoveEntry operation.
type RemoveEntryOutput struct {
	Date     string  `json:"date"`
	Position int     `json:"position"`
	FoodID   string  `json:"food_id"`
	Servings float64 `json:"servings"`
}

// UndoOutput describes the command that was undone.
type UndoOutput struct {
	Undone    string `json:"undone"`
	Date      string `json:"date"`
	Position  int    `json:"position,omitempty"`
	Remaining int    `json:"remaining"`
}

// AddEntry logs servings of a food on a date.
func (s *Session) AddEntry(input AddEntryInput) (*AddEntryOutput, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, err
	}
	foodID := strings.TrimSpace(input.FoodID)
	servings := input.Servings

	pos, err := s.undo.AddEntry(s.catalog, date, foodID, servings, s.now())
	if err != nil {
		return nil, err
	}
	cal, err := s.catalog.CaloriesPerServing(foodID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("entry added",
		zap.String("user", s.user),
		zap.String("date", date.String()),
		zap.Int("position", pos),
		zap.String("food", foodID))
	return &AddEntryOutput{
		Date:     date.String(),
		Position: pos,
		FoodID:   foodID,
		Servings: servings,
		Calories: roundCal(cal * servings),
	}, nil
}

// ListEntries returns a date's entries with their calories.
func (s *Session) ListEntries(input ListEntriesInput) (*ListEntriesOutput, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, err
	}

	lines, err := s.log.ListEntries(s.catalog, date)
	if err != nil {
		return nil, err
	}
	total, err := s.log.TotalCalories(s.catalog, date)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].Calories = roundCal(lines[i].Calories)
	}
	if lines == nil {
		lines = []dailylog.Line{}
	}
	return &ListEntriesOutput{Date: date.String(), Entries: lines, Total: roundCal(total)}, nil
}

// RemoveEntry deletes the entry at a 1-based position.
func (s *Session) RemoveEntry(input RemoveEntryInput) (*RemoveEntryOutput, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, err
	}

	e, err := s.undo.RemoveEntry(date, input.Position)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("entry removed",
		zap.String("user", s.user),
		zap.String("date", date.String()),
		zap.Int("position", input.Position))
	return &RemoveEntryOutput{
		Date:     date.String(),
		Position: input.Position,
		FoodID:   e.FoodID,
		Servings: e.Servings,
	}, nil
}

// UndoLog reverts the most recent log change.
func (s *Session) UndoLog() (*UndoOutput, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	rec, err := s.undo.UndoLog()
	if err != nil {
		return nil, err
	}
	out := undoOutput(rec)
	out.Remaining = s.undo.LogDepth()
	s.logger.Debug("log undone", zap.String("user", s.user), zap.String("kind", rec.Kind()))
	return out, nil
}

// UndoProfile reverts the most recent profile change.
func (s *Session) UndoProfile() (*UndoOutput, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	rec, err := s.undo.UndoProfile()
	if err != nil {
		return nil, err
	}
	out := undoOutput(rec)
	out.Remaining = s.undo.ProfileDepth()
	s.logger.Debug("profile undone", zap.String("user", s.user), zap.String("date", out.Date))
	return out, nil
}

func undoOutput(rec undo.Record) *UndoOutput {
	out := &UndoOutput{Undone: rec.Kind()}
	switch r := rec.(type) {
	case undo.EntryAdded:
		out.Date, out.Position = r.Date.String(), r.Position
	case undo.EntryRemoved:
		out.Date, out.Position = r.Date.String(), r.Position
	case undo.ProfileChanged:
		out.Date = r.Date.String()
	}
	return out
}
