package ops

import (
	"database/sql"

	"github.com/hpungsan/yada/internal/calc"
	"github.com/hpungsan/yada/internal/calendar"
	"github.com/hpungsan/yada/internal/db"
)

// View is a read-only snapshot of one user's stored state. It never writes
// to the database and is independent of any Session.
type View struct {
	User     string
	Strategy string

	state dayState
}

// LoadView reads username's saved log and profile history.
func LoadView(database *sql.DB, username string) (*View, error) {
	name, err := cleanUsername(username)
	if err != nil {
		return nil, err
	}
	u, err := db.GetUser(database, name)
	if err != nil {
		return nil, err
	}
	cat, err := LoadCatalog(database)
	if err != nil {
		return nil, err
	}

	log, tracker, err := loadUserState(database, name)
	if err != nil {
		return nil, err
	}

	strategy, err := calc.Lookup(u.Strategy)
	if err != nil {
		strategy, _ = calc.Lookup(calc.Default)
	}

	return &View{
		User:     name,
		Strategy: strategy.Name(),
		state:    dayState{catalog: cat, log: log, profiles: tracker, strategy: strategy},
	}, nil
}

// Dates returns the dates with saved entries, most recent first.
func (v *View) Dates() []calendar.Date {
	dates := v.state.log.Dates()
	out := make([]calendar.Date, 0, len(dates))
	for i := len(dates) - 1; i >= 0; i-- {
		if v.state.log.Count(dates[i]) > 0 {
			out = append(out, dates[i])
		}
	}
	return out
}

// Summary is Session.Summary over the saved state.
func (v *View) Summary(date calendar.Date) (*SummaryOutput, error) {
	return v.state.summary(date)
}

// DayReport is Session.DayReport over the saved state.
func (v *View) DayReport(date calendar.Date) (*DayReportOutput, error) {
	return v.state.report(v.User, date)
}
