package tasks

import (
	"strings"
	"time"

	"task-tracker-api/internal/models"

	"golang.org/x/text/cases"
)

// CategoryAll disables the category filter
const CategoryAll = "All"

// Filter narrows what the list and board views show. Zero values match everything.
type Filter struct {
	Query    string
	From     time.Time
	To       time.Time
	Category models.TaskCategory
	Status   models.TaskStatus
}

// FilterParams are the raw query-string values
type FilterParams struct {
	Query    string `form:"q"`
	From     string `form:"from"`
	To       string `form:"to"`
	Category string `form:"category"`
	Status   string `form:"status"`
}

// Parse validates the raw values
func (p FilterParams) Parse() (Filter, error) {
	v := &ValidationError{}
	f := Filter{Query: strings.TrimSpace(p.Query)}

	if p.From != "" {
		t, ok := ParseDate(p.From)
		if !ok {
			v.add("from", "from must be a calendar date")
		}
		f.From = t
	}
	if p.To != "" {
		t, ok := ParseDate(p.To)
		if !ok {
			v.add("to", "to must be a calendar date")
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		v.add("to", "to must not be before from")
	}
	if c := strings.TrimSpace(p.Category); c != "" && !strings.EqualFold(c, CategoryAll) {
		f.Category = checkCategory(v, c)
	}
	if p.Status != "" {
		f.Status = checkStatus(v, p.Status)
	}
	return f, v.orNil()
}

// Match reports whether t passes every set criterion
func (f Filter) Match(t models.Task) bool {
	if f.Query != "" {
		fold := cases.Fold()
		if !strings.Contains(fold.String(t.Title), fold.String(f.Query)) {
			return false
		}
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		due, ok := ParseDate(t.DueDate)
		if !ok {
			return false
		}
		if !f.From.IsZero() && due.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && due.After(f.To) {
			return false
		}
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

// Apply returns the tasks that match, in input order
func (f Filter) Apply(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
