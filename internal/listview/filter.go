package listview

import (
	"strings"

	"github.com/yukikurage/task-dashboard/internal/models"
)

// Filter is a conjunction of optional equality constraints over task fields.
// An empty field matches every task.
type Filter struct {
	Status   string `json:"status"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// Matches reports whether the task satisfies every non-empty constraint
func (f Filter) Matches(task models.Task) bool {
	return (f.Status == "" || string(task.Status) == f.Status) &&
		(f.Category == "" || string(task.Category) == f.Category) &&
		(f.Priority == "" || string(task.Priority) == f.Priority)
}

// NormalizeSearch trims a search term and lower cases it
func NormalizeSearch(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// matchesSearch does a case-insensitive literal substring match on id and
// title. term must already be normalized.
func matchesSearch(task models.Task, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(task.ID), term) ||
		strings.Contains(strings.ToLower(task.Title), term)
}

// apply returns the tasks matching both the filter and the search term,
// preserving the input order
func apply(tasks []models.Task, f Filter, term string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) && matchesSearch(t, term) {
			out = append(out, t)
		}
	}
	return out
}
