package profile

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	"github.com/hpungsan/yada/internal/calendar"
	"github.com/hpungsan/yada/internal/errors"
)

// Calculator computes a daily calorie target from a profile.
type Calculator interface {
	ComputeTarget(p Profile) float64
}

// Previous is the explicit record at a date before an update.
// Present is false when the date had no explicit record.
type Previous struct {
	Record  Profile
	Present bool
}

// Tracker stores explicit profile records keyed by date.
type Tracker struct {
	records map[calendar.Date]Profile
	dates   []calendar.Date // sorted ascending
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{records: make(map[calendar.Date]Profile)}
}

// Len returns the number of explicit records.
func (t *Tracker) Len() int {
	return len(t.dates)
}

// Explicit returns the record stored at exactly date, if any.
func (t *Tracker) Explicit(date calendar.Date) (Profile, bool) {
	p, ok := t.records[date]
	return p, ok
}

// GetProfile returns the record at date, or the latest record before it.
func (t *Tracker) GetProfile(date calendar.Date) (Profile, error) {
	if p, ok := t.records[date]; ok {
		return p, nil
	}
	// index of the first date after the requested one
	i := sort.Search(len(t.dates), func(i int) bool { return date.Before(t.dates[i]) })
	if i == 0 {
		return Profile{}, errors.NewNoProfileEstablished(date.String())
	}
	return t.records[t.dates[i-1]], nil
}

// UpdateProfile merges fields onto the profile in effect at date and stores
// the result as the explicit record for date. Records at other dates are not
// touched. The returned Previous describes what was at date before.
func (t *Tracker) UpdateProfile(date calendar.Date, fields Fields) (Previous, error) {
	base, err := t.GetProfile(date)
	if err != nil {
		if missing := fields.missing(); len(missing) > 0 {
			return Previous{}, errors.NewInvalidRequest(
				fmt.Sprintf("first profile needs all fields; missing: %s", strings.Join(missing, ", ")))
		}
		base = Profile{}
	} else if fields.IsEmpty() {
		return Previous{}, errors.NewInvalidRequest("no profile fields to update")
	}

	next := fields.merge(base)
	next.Date = date
	if err := next.Validate(); err != nil {
		return Previous{}, err
	}

	prev, present := t.records[date]
	t.set(date, next)
	return Previous{Record: prev, Present: present}, nil
}

// Restore puts date back to a previous state, deleting the explicit record
// when it was absent before.
func (t *Tracker) Restore(date calendar.Date, prev Previous) {
	if prev.Present {
		t.set(date, prev.Record)
		return
	}
	t.delete(date)
}

// ComputeTarget returns calc's target for the profile in effect at date.
func (t *Tracker) ComputeTarget(date calendar.Date, calc Calculator) (float64, error) {
	p, err := t.GetProfile(date)
	if err != nil {
		return 0, err
	}
	return calc.ComputeTarget(p), nil
}

// History yields explicit records in ascending date order.
func (t *Tracker) History() iter.Seq[Profile] {
	return func(yield func(Profile) bool) {
		for _, d := range slices.Clone(t.dates) {
			if !yield(t.records[d]) {
				return
			}
		}
	}
}

// Load replaces all records, e.g. from storage.
func (t *Tracker) Load(records []Profile) error {
	t.records = make(map[calendar.Date]Profile, len(records))
	t.dates = nil
	for _, p := range records {
		if err := p.Validate(); err != nil {
			return err
		}
		t.set(p.Date, p)
	}
	return nil
}

func (t *Tracker) set(date calendar.Date, p Profile) {
	p.Date = date
	if _, ok := t.records[date]; !ok {
		i, _ := slices.BinarySearch(t.dates, date)
		t.dates = slices.Insert(t.dates, i, date)
	}
	t.records[date] = p
}

func (t *Tracker) delete(date calendar.Date) {
	if _, ok := t.records[date]; !ok {
		return
	}
	delete(t.records, date)
	if i, found := slices.BinarySearch(t.dates, date); found {
		t.dates = slices.Delete(t.dates, i, i+1)
	}
}
