// Package dailylog keeps a user's food log: per calendar date, an ordered
// list of entries referencing catalog foods by ID.
package dailylog

import (
	"crypto/rand"
	"iter"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/yada/internal/calendar"
	"github.com/hpungsan/yada/internal/errors"
)

// Pricer resolves a food's calories per serving. *food.Catalog implements it.
type Pricer interface {
	CaloriesPerServing(id string) (float64, error)
}

// Entry is one logged food. Entries never move between dates.
type Entry struct {
	ID        string    `json:"id"`
	FoodID    string    `json:"food_id"`
	Servings  float64   `json:"servings"`
	CreatedAt time.Time `json:"created_at"`
}

// Line is an entry priced for display.
type Line struct {
	Position int     `json:"position"`
	EntryID  string  `json:"entry_id"`
	FoodID   string  `json:"food_id"`
	Servings float64 `json:"servings"`
	Calories float64 `json:"calories"`
}

// Log maps dates to their entries. Positions are 1-based.
type Log struct {
	days map[calendar.Date][]Entry
}

// New returns an empty log.
func New() *Log {
	return &Log{days: make(map[calendar.Date][]Entry)}
}

// NewEntryID returns a fresh ULID for an entry created at t.
func NewEntryID(t time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return id.String(), nil
}

// Count returns the number of entries on date.
func (l *Log) Count(date calendar.Date) int {
	return len(l.days[date])
}

// AddEntry appends an entry for foodID and returns its 1-based position.
func (l *Log) AddEntry(p Pricer, date calendar.Date, foodID string, servings float64, at time.Time) (int, error) {
	if !(servings > 0) || math.IsInf(servings, 0) {
		return 0, errors.NewInvalidServings(servings)
	}
	if _, err := p.CaloriesPerServing(foodID); err != nil {
		return 0, err
	}
	id, err := NewEntryID(at)
	if err != nil {
		return 0, err
	}
	l.days[date] = append(l.days[date], Entry{
		ID:        id,
		FoodID:    foodID,
		Servings:  servings,
		CreatedAt: at,
	})
	return len(l.days[date]), nil
}

// RemoveEntry removes and returns the entry at position. Later entries shift
// down by one.
func (l *Log) RemoveEntry(date calendar.Date, position int) (Entry, error) {
	entries := l.days[date]
	if position < 1 || position > len(entries) {
		return Entry{}, errors.NewIndexOutOfRange(date.String(), position, len(entries))
	}
	e := entries[position-1]
	l.days[date] = slices.Delete(entries, position-1, position)
	return e, nil
}

// InsertEntryAt puts e back at position, shifting later entries up. It is
// the inverse of RemoveEntry and is only used by undo.
func (l *Log) InsertEntryAt(date calendar.Date, position int, e Entry) error {
	entries := l.days[date]
	if position < 1 || position > len(entries)+1 {
		return errors.NewIndexOutOfRange(date.String(), position, len(entries))
	}
	l.days[date] = slices.Insert(entries, position-1, e)
	return nil
}

// TotalCalories sums servings times calories per serving over date's entries.
func (l *Log) TotalCalories(p Pricer, date calendar.Date) (float64, error) {
	var total float64
	for _, e := range l.days[date] {
		cal, err := p.CaloriesPerServing(e.FoodID)
		if err != nil {
			return 0, errors.NewInternalConsistency("log entry " + e.ID + " references unresolvable food " + e.FoodID)
		}
		total += e.Servings * cal
	}
	return total, nil
}

// ListEntries returns date's entries priced against p, in position order.
func (l *Log) ListEntries(p Pricer, date calendar.Date) ([]Line, error) {
	entries := l.days[date]
	lines := make([]Line, 0, len(entries))
	for i, e := range entries {
		cal, err := p.CaloriesPerServing(e.FoodID)
		if err != nil {
			return nil, errors.NewInternalConsistency("log entry " + e.ID + " references unresolvable food " + e.FoodID)
		}
		lines = append(lines, Line{
			Position: i + 1,
			EntryID:  e.ID,
			FoodID:   e.FoodID,
			Servings: e.Servings,
			Calories: e.Servings * cal,
		})
	}
	return lines, nil
}

// Entries yields (position, entry) pairs for date. Each pass reads the
// entries as they are when iteration starts.
func (l *Log) Entries(date calendar.Date) iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i, e := range slices.Clone(l.days[date]) {
			if !yield(i+1, e) {
				return
			}
		}
	}
}

// Day returns a copy of date's entries.
func (l *Log) Day(date calendar.Date) []Entry {
	return slices.Clone(l.days[date])
}

// Dates returns every date that has a bucket, including emptied ones, sorted.
func (l *Log) Dates() []calendar.Date {
	return slices.Sorted(maps.Keys(l.days))
}

// SetDay replaces date's entries, e.g. when loading from storage.
func (l *Log) SetDay(date calendar.Date, entries []Entry) {
	l.days[date] = slices.Clone(entries)
}
