package web

import (
	"database/sql"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/hpungsan/yada/internal/calendar"
	"github.com/hpungsan/yada/internal/config"
	"github.com/hpungsan/yada/internal/db"
	"github.com/hpungsan/yada/internal/ops"
)

// Day list limits
const (
	defaultDayLimit = 30
	maxDayLimit     = 366
)

// Handlers contains HTTP route handlers for the dashboard. Every handler
// reads saved state only; nothing is written.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleUsers handles GET /users: list registered users.
func (h *Handlers) HandleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := db.ListUsers(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		if users == nil {
			users = []db.User{}
		}
		renderJSON(w, http.StatusOK, map[string]any{"users": users})
		return
	}

	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{Name: u.Name, Strategy: u.Strategy, CreatedAt: u.CreatedAt})
	}
	h.renderer.renderPage(w, r, "users", UsersPageData{
		PageData: PageData{Title: "Users", Version: h.renderer.version, Nav: "users"},
		Users:    rows,
	})
}

// HandleUser handles GET /users/{name}: a user's logged days, most recent
// first, each with its summary.
func (h *Handlers) HandleUser(w http.ResponseWriter, r *http.Request) {
	view, err := ops.LoadView(h.db, r.PathValue("name"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	limit := parseIntParam(r, "limit", defaultDayLimit)
	if limit <= 0 {
		limit = defaultDayLimit
	}
	limit = min(limit, maxDayLimit)

	dates := view.Dates()
	days := make([]*ops.SummaryOutput, 0, min(len(dates), limit))
	for _, d := range dates[:min(len(dates), limit)] {
		s, err := view.Summary(d)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		days = append(days, s)
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"user":     view.User,
			"strategy": view.Strategy,
			"days":     days,
			"has_more": len(dates) > limit,
		})
		return
	}

	h.renderer.renderPage(w, r, "user", UserPageData{
		PageData: PageData{Title: view.User, Version: h.renderer.version, Nav: "users"},
		User:     view.User,
		Strategy: view.Strategy,
		Days:     days,
	})
}

// HandleDay handles GET /users/{name}/days/{date}: the day report.
func (h *Handlers) HandleDay(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.Parse(r.PathValue("date"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	view, err := ops.LoadView(h.db, r.PathValue("name"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	summary, err := view.Summary(date)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, summary)
		return
	}

	report, err := view.DayReport(date)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// Dates are most recent first: the previous day follows date.
	data := DayPageData{
		PageData:     PageData{Title: view.User + " " + date.String(), Version: h.renderer.version, Nav: "users"},
		User:         view.User,
		Summary:      summary,
		RenderedHTML: renderMarkdown(report.Markdown),
	}
	dates := view.Dates()
	i, found := slices.BinarySearchFunc(dates, date, func(a, b calendar.Date) int {
		return strings.Compare(string(b), string(a))
	})
	if found {
		if i > 0 {
			data.Next = dates[i-1].String()
		}
		if i+1 < len(dates) {
			data.Prev = dates[i+1].String()
		}
	}
	h.renderer.renderPage(w, r, "day", data)
}

// HandleFoods handles GET /foods: search the catalog. An empty query lists
// every food up to the limit.
func (h *Handlers) HandleFoods(w http.ResponseWriter, r *http.Request) {
	cat, err := ops.LoadCatalog(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	query := r.URL.Query().Get("q")
	matchAll := parseBoolParam(r, "all")
	result, err := ops.SearchCatalog(cat, ops.SearchFoodsInput{
		Query:    query,
		MatchAll: matchAll,
		Ranked:   query != "",
		Limit:    parseIntParam(r, "limit", ops.DefaultSearchLimit),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	data := FoodsPageData{
		PageData: PageData{Title: "Foods", Version: h.renderer.version, Nav: "foods"},
		Query:    query,
		MatchAll: matchAll,
		Items:    result.Items,
		HasMore:  result.HasMore,
		Total:    cat.Len(),
	}

	// htmx search-as-you-type swaps only the results table.
	if r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "foods", "results", data)
		return
	}
	h.renderer.renderPage(w, r, "foods", data)
}

// HandleFood handles GET /foods/{id}: one food and, for composites, what
// each component contributes per serving.
func (h *Handlers) HandleFood(w http.ResponseWriter, r *http.Request) {
	cat, err := ops.LoadCatalog(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	f, err := ops.LookupFood(cat, ops.GetFoodInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, f)
		return
	}

	rows := make([]ComponentRow, 0, len(f.Components))
	for _, c := range f.Components {
		row := ComponentRow{FoodID: c.FoodID, Name: c.FoodID, Servings: c.Servings}
		if comp, ok := cat.Get(c.FoodID); ok {
			row.Name = comp.Name
			row.Calories = c.Servings * comp.CaloriesPerServing
		}
		rows = append(rows, row)
	}
	h.renderer.renderPage(w, r, "food", FoodPageData{
		PageData:   PageData{Title: f.Name, Version: h.renderer.version, Nav: "foods"},
		Food:       f,
		Components: rows,
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
