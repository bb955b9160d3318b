package ops

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hpungsan/yada/internal/calc"
	"github.com/hpungsan/yada/internal/calendar"
	"github.com/hpungsan/yada/internal/dailylog"
	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/food"
	"github.com/hpungsan/yada/internal/profile"
)

// Summary statuses
const (
	StatusUnder    = "under"
	StatusOver     = "over"
	StatusOnTarget = "on_target"
)

// SummaryInput contains parameters for the Summary and DayReport operations.
type SummaryInput struct {
	Date string // default: active date
}

// SummaryOutput compares a date's intake to its target. Target, Difference
// and Status are omitted when no profile is established for the date.
type SummaryOutput struct {
	Date       string   `json:"date"`
	Entries    int      `json:"entries"`
	Consumed   float64  `json:"consumed"`
	Strategy   string   `json:"strategy"`
	Target     *float64 `json:"target,omitempty"`
	Difference *float64 `json:"difference,omitempty"` // consumed - target
	Status     string   `json:"status,omitempty"`
}

// DayReportOutput is a Markdown rendering of one date.
type DayReportOutput struct {
	Date     string `json:"date"`
	Markdown string `json:"markdown"`
}

// dayState is everything needed to describe a date.
type dayState struct {
	catalog  *food.Catalog
	log      *dailylog.Log
	profiles *profile.Tracker
	strategy calc.Calculator
}

// Summary returns consumed calories, target and their difference for a date.
func (s *Session) Summary(input SummaryInput) (*SummaryOutput, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, err
	}
	return s.state().summary(date)
}

// DayReport renders a date's entries and summary as Markdown.
func (s *Session) DayReport(input SummaryInput) (*DayReportOutput, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, err
	}
	return s.state().report(s.user, date)
}

func (s *Session) state() dayState {
	return dayState{catalog: s.catalog, log: s.log, profiles: s.profiles, strategy: s.strategy}
}

func (d dayState) summary(date calendar.Date) (*SummaryOutput, error) {
	consumed, err := d.log.TotalCalories(d.catalog, date)
	if err != nil {
		return nil, err
	}
	out := &SummaryOutput{
		Date:     date.String(),
		Entries:  d.log.Count(date),
		Consumed: roundCal(consumed),
		Strategy: d.strategy.Name(),
	}

	target, err := d.profiles.ComputeTarget(date, d.strategy)
	if errors.Is(err, errors.ErrNoProfileEstablished) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	t := roundCal(target)
	diff := roundCal(out.Consumed - t)
	out.Target = &t
	out.Difference = &diff
	switch {
	case diff < 0:
		out.Status = StatusUnder
	case diff > 0:
		out.Status = StatusOver
	default:
		out.Status = StatusOnTarget
	}
	return out, nil
}

func (d dayState) report(user string, date calendar.Date) (*DayReportOutput, error) {
	sum, err := d.summary(date)
	if err != nil {
		return nil, err
	}
	lines, err := d.log.ListEntries(d.catalog, date)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", user, date)
	if len(lines) == 0 {
		b.WriteString("No entries.\n\n")
	} else {
		b.WriteString("| # | Food | Servings | Calories |\n")
		b.WriteString("|---:|---|---:|---:|\n")
		for _, l := range lines {
			name := l.FoodID
			if f, ok := d.catalog.Get(l.FoodID); ok {
				name = f.Name
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
				l.Position, escapeCell(name), formatNum(l.Servings), formatNum(roundCal(l.Calories)))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "- **Consumed:** %s\n", formatNum(sum.Consumed))
	if sum.Target == nil {
		b.WriteString("- **Target:** no profile established\n")
	} else {
		fmt.Fprintf(&b, "- **Target (%s):** %s\n", sum.Strategy, formatNum(*sum.Target))
		fmt.Fprintf(&b, "- **Difference:** %s (%s)\n", formatNum(*sum.Difference), sum.Status)
	}
	return &DayReportOutput{Date: date.String(), Markdown: b.String()}, nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
