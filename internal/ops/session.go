package ops

import (
	"context"
	"database/sql"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/calc"
	"github.com/hpungsan/yada/internal/dailylog"
	"github.com/hpungsan/yada/internal/db"
	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/profile"
	"github.com/hpungsan/yada/internal/undo"
)

// MaxUsernameLen is the longest accepted username.
const MaxUsernameLen = 64

// RegisterInput contains parameters for the Register operation.
type RegisterInput struct {
	Name string // required

	// Login logs the new user in after registering.
	Login bool
}

// RegisterOutput contains the result of the Register operation.
type RegisterOutput struct {
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
	LoggedIn bool   `json:"logged_in"`
}

// LoginInput contains parameters for the Login operation.
type LoginInput struct {
	Name string // required
}

// LoginOutput contains the result of the Login operation.
type LoginOutput struct {
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
	Date     string `json:"date"`
	Days     int    `json:"days"`
	Profiles int    `json:"profiles"`
}

// LogoutOutput contains the result of the Logout operation.
type LogoutOutput struct {
	Name string `json:"name"`
}

// SaveOutput contains the result of the Save operation.
type SaveOutput struct {
	Name     string `json:"name"`
	Days     int    `json:"days"`
	Profiles int    `json:"profiles"`
}

// Register creates a user with the configured default strategy.
func (s *Session) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	name, err := cleanUsername(input.Name)
	if err != nil {
		return nil, err
	}
	strategy, err := calc.Lookup(s.cfg.DefaultStrategy)
	if err != nil {
		return nil, err
	}

	if err := db.InsertUser(s.db, &db.User{Name: name, Strategy: strategy.Name()}); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user", name))

	out := &RegisterOutput{Name: name, Strategy: strategy.Name()}
	if input.Login {
		if _, err := s.Login(ctx, LoginInput{Name: name}); err != nil {
			return nil, err
		}
		out.LoggedIn = true
	}
	return out, nil
}

// Login loads a user's log and profile history and starts fresh undo
// stacks. A user already logged in is saved and logged out first.
func (s *Session) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	name, err := cleanUsername(input.Name)
	if err != nil {
		return nil, err
	}

	u, err := db.GetUser(s.db, name)
	if err != nil {
		return nil, err
	}

	// Save the current user first; they may be the one logging in again.
	if s.user != "" {
		if _, err := s.Logout(ctx); err != nil {
			return nil, err
		}
	}

	log, tracker, err := loadUserState(s.db, name)
	if err != nil {
		return nil, err
	}
	days := log.Dates()

	strategy, err := calc.Lookup(u.Strategy)
	if err != nil {
		s.logger.Warn("unknown stored strategy, using default",
			zap.String("user", name), zap.String("strategy", u.Strategy))
		strategy, _ = calc.Lookup(calc.Default)
	}

	s.user = name
	s.log = log
	s.profiles = tracker
	s.undo = undo.New(log, tracker)
	s.strategy = strategy

	s.logger.Info("user logged in", zap.String("user", name), zap.Int("days", len(days)))
	return &LoginOutput{
		Name:     name,
		Strategy: strategy.Name(),
		Date:     s.date.String(),
		Days:     len(days),
		Profiles: tracker.Len(),
	}, nil
}

// Logout saves the user's state, then discards it along with both undo
// stacks.
func (s *Session) Logout(ctx context.Context) (*LogoutOutput, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	if _, err := s.Save(ctx); err != nil {
		return nil, err
	}

	name := s.user
	s.undo.Reset()
	s.user = ""
	s.log = nil
	s.profiles = nil
	s.undo = nil
	if def, err := calc.Lookup(s.cfg.DefaultStrategy); err == nil {
		s.strategy = def
	}

	s.logger.Info("user logged out", zap.String("user", name))
	return &LogoutOutput{Name: name}, nil
}

// Save writes the user's log, profile history and strategy to the database.
// Undo stacks are not persisted.
func (s *Session) Save(ctx context.Context) (*SaveOutput, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := db.ReplaceLog(s.db, s.user, s.log); err != nil {
		return nil, err
	}
	if err := db.ReplaceProfiles(s.db, s.user, s.profiles.History()); err != nil {
		return nil, err
	}
	if err := db.UpdateUserStrategy(s.db, s.user, s.strategy.Name()); err != nil {
		return nil, err
	}

	s.logger.Debug("session saved", zap.String("user", s.user))
	return &SaveOutput{
		Name:     s.user,
		Days:     len(s.log.Dates()),
		Profiles: s.profiles.Len(),
	}, nil
}

// cleanUsername trims name and rejects empty names, names with whitespace
// or control characters, and overly long names.
func cleanUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.NewInvalidRequest("name is required")
	}
	if len(name) > MaxUsernameLen {
		return "", errors.NewInvalidRequest("name is too long")
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", errors.NewInvalidRequest("name must not contain whitespace")
		}
	}
	return name, nil
}

// loadUserState reads a user's saved log and profile history.
func loadUserState(database *sql.DB, name string) (*dailylog.Log, *profile.Tracker, error) {
	days, err := db.LoadLog(database, name)
	if err != nil {
		return nil, nil, err
	}
	log := dailylog.New()
	for d, entries := range days {
		log.SetDay(d, entries)
	}

	records, err := db.LoadProfiles(database, name)
	if err != nil {
		return nil, nil, err
	}
	tracker := profile.NewTracker()
	if err := tracker.Load(records); err != nil {
		return nil, nil, errors.NewInternalConsistency("stored profile for " + name + " is invalid: " + err.Error())
	}
	return log, tracker, nil
}
