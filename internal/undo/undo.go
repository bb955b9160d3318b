// Package undo wraps the mutating log and profile operations and records
// their inverses on two independent stacks.
package undo

import (
	"time"

	"github.com/hpungsan/yada/internal/calendar"
	"github.com/hpungsan/yada/internal/dailylog"
	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/profile"
)

// Stack names used in EMPTY_UNDO_STACK errors.
const (
	StackLog     = "log"
	StackProfile = "profile"
)

// Record is an inverse action. The set of variants is closed.
type Record interface {
	Kind() string
	record()
}

// EntryAdded is undone by removing the entry at Position.
type EntryAdded struct {
	Date     calendar.Date
	Position int
}

// EntryRemoved is undone by reinserting Entry at Position.
type EntryRemoved struct {
	Date     calendar.Date
	Position int
	Entry    dailylog.Entry
}

// ProfileChanged is undone by restoring Previous at Date.
type ProfileChanged struct {
	Date     calendar.Date
	Previous profile.Previous
}

func (EntryAdded) Kind() string     { return "entry_added" }
func (EntryRemoved) Kind() string   { return "entry_removed" }
func (ProfileChanged) Kind() string { return "profile_changed" }

func (EntryAdded) record()     {}
func (EntryRemoved) record()   {}
func (ProfileChanged) record() {}

// Coordinator owns the undo stacks for one session. It is not safe for
// concurrent use.
type Coordinator struct {
	log      *dailylog.Log
	profiles *profile.Tracker

	logStack     []Record
	profileStack []Record
}

// New returns a coordinator over log and profiles with empty stacks.
func New(log *dailylog.Log, profiles *profile.Tracker) *Coordinator {
	return &Coordinator{log: log, profiles: profiles}
}

// AddEntry adds an entry and records EntryAdded on success.
func (c *Coordinator) AddEntry(p dailylog.Pricer, date calendar.Date, foodID string, servings float64, at time.Time) (int, error) {
	pos, err := c.log.AddEntry(p, date, foodID, servings, at)
	if err != nil {
		return 0, err
	}
	c.logStack = append(c.logStack, EntryAdded{Date: date, Position: pos})
	return pos, nil
}

// RemoveEntry removes an entry and records EntryRemoved on success.
func (c *Coordinator) RemoveEntry(date calendar.Date, position int) (dailylog.Entry, error) {
	e, err := c.log.RemoveEntry(date, position)
	if err != nil {
		return dailylog.Entry{}, err
	}
	c.logStack = append(c.logStack, EntryRemoved{Date: date, Position: position, Entry: e})
	return e, nil
}

// UpdateProfile updates the profile and records ProfileChanged on success.
func (c *Coordinator) UpdateProfile(date calendar.Date, fields profile.Fields) (profile.Profile, error) {
	prev, err := c.profiles.UpdateProfile(date, fields)
	if err != nil {
		return profile.Profile{}, err
	}
	c.profileStack = append(c.profileStack, ProfileChanged{Date: date, Previous: prev})
	p, _ := c.profiles.Explicit(date)
	return p, nil
}

// UndoLog reverses the most recent log mutation and returns its record.
// The record is popped only if the inverse applied cleanly.
func (c *Coordinator) UndoLog() (Record, error) {
	if len(c.logStack) == 0 {
		return nil, errors.NewEmptyUndoStack(StackLog)
	}
	top := c.logStack[len(c.logStack)-1]

	var err error
	switch r := top.(type) {
	case EntryAdded:
		_, err = c.log.RemoveEntry(r.Date, r.Position)
	case EntryRemoved:
		err = c.log.InsertEntryAt(r.Date, r.Position, r.Entry)
	default:
		return nil, errors.NewInternalConsistency("unexpected record on log stack: " + top.Kind())
	}
	if err != nil {
		return nil, errors.NewInternalConsistency("undo " + top.Kind() + ": " + err.Error())
	}

	c.logStack = c.logStack[:len(c.logStack)-1]
	return top, nil
}

// UndoProfile reverses the most recent profile update and returns its record.
func (c *Coordinator) UndoProfile() (Record, error) {
	if len(c.profileStack) == 0 {
		return nil, errors.NewEmptyUndoStack(StackProfile)
	}
	top := c.profileStack[len(c.profileStack)-1]

	r, ok := top.(ProfileChanged)
	if !ok {
		return nil, errors.NewInternalConsistency("unexpected record on profile stack: " + top.Kind())
	}
	c.profiles.Restore(r.Date, r.Previous)

	c.profileStack = c.profileStack[:len(c.profileStack)-1]
	return top, nil
}

// LogDepth returns the number of undoable log mutations.
func (c *Coordinator) LogDepth() int { return len(c.logStack) }

// ProfileDepth returns the number of undoable profile updates.
func (c *Coordinator) ProfileDepth() int { return len(c.profileStack) }

// Reset discards both stacks.
func (c *Coordinator) Reset() {
	c.logStack = nil
	c.profileStack = nil
}
