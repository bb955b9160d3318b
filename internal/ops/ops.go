package ops

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/calc"
	"github.com/hpungsan/yada/internal/calendar"
	"github.com/hpungsan/yada/internal/config"
	"github.com/hpungsan/yada/internal/dailylog"
	"github.com/hpungsan/yada/internal/db"
	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/food"
	"github.com/hpungsan/yada/internal/profile"
	"github.com/hpungsan/yada/internal/source"
	"github.com/hpungsan/yada/internal/undo"
)

// Search limits
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// Options configures a Session.
type Options struct {
	// Logger defaults to a no-op logger
	Logger *zap.Logger

	// Now defaults to time.Now
	Now func() time.Time

	// ExportsDir is the only directory food files are read from or written
	// to by ImportFile and ExportFoods.
	ExportsDir string
}

// Session is one interactive session: the shared catalog plus, after Login,
// one user's log, profile history and undo stacks. Commands must be issued
// one at a time.
type Session struct {
	db     *sql.DB
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time

	exportsDir string

	catalog *food.Catalog

	user     string
	log      *dailylog.Log
	profiles *profile.Tracker
	undo     *undo.Coordinator

	date     calendar.Date
	strategy calc.Calculator
}

// NewSession loads the catalog and returns a session with nobody logged in.
// An empty catalog is seeded with the built-in foods unless disabled.
func NewSession(ctx context.Context, database *sql.DB, cfg *config.Config, opts Options) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	strategy, err := calc.Lookup(cfg.DefaultStrategy)
	if err != nil {
		return nil, err
	}

	cat, err := LoadCatalog(database)
	if err != nil {
		return nil, err
	}

	s := &Session{
		db:         database,
		cfg:        cfg,
		logger:     opts.Logger,
		now:        opts.Now,
		exportsDir: opts.ExportsDir,
		catalog:    cat,
		date:       calendar.Today(opts.Now),
		strategy:   strategy,
	}

	if cat.Len() == 0 && cfg.ShouldSeed() {
		out, err := s.ImportFoods(ctx, source.Builtin{})
		if err != nil {
			return nil, err
		}
		s.logger.Info("seeded catalog", zap.Int("foods", len(out.Added)))
	}
	return s, nil
}

// Catalog returns the session's food catalog for read-only use.
func (s *Session) Catalog() *food.Catalog {
	return s.catalog
}

// User returns the logged-in user, or "".
func (s *Session) User() string {
	return s.user
}

func (s *Session) requireUser() error {
	if s.user == "" {
		return errors.NewNoSession()
	}
	return nil
}

// resolveDate maps "" to the active date and accepts today, yesterday,
// tomorrow or YYYY-MM-DD.
func (s *Session) resolveDate(in string) (calendar.Date, error) {
	switch strings.ToLower(strings.TrimSpace(in)) {
	case "":
		return s.date, nil
	case "today":
		return calendar.Today(s.now), nil
	case "yesterday":
		return calendar.Today(s.now).AddDays(-1), nil
	case "tomorrow":
		return calendar.Today(s.now).AddDays(1), nil
	}
	return calendar.Parse(in)
}

// LoadCatalog reads the stored food catalog.
func LoadCatalog(database *sql.DB) (*food.Catalog, error) {
	foods, err := db.LoadCatalog(database)
	if err != nil {
		return nil, err
	}
	cat := food.NewCatalog()
	if err := cat.Restore(foods); err != nil {
		return nil, errors.NewInternalConsistency("stored catalog is invalid: " + err.Error())
	}
	return cat, nil
}

// roundCal rounds a calorie value to one decimal place for output.
func roundCal(v float64) float64 {
	return math.Round(v*10) / 10
}
