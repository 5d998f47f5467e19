package listview

import (
	"strings"

	"github.com/yukikurage/task-dashboard/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	unassignedLabel  = "Unassigned"
	unknownUserLabel = "Unknown User"
)

// Row is the view-model of one task table row
type Row struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	CategoryLabel string   `json:"category_label"`
	Priority      string   `json:"priority"`
	Status        string   `json:"status"`
	StatusLabel   string   `json:"status_label"`
	AssigneeID    string   `json:"assignee_id,omitempty"`
	AssigneeName  string   `json:"assignee_name"`
	Actions       []string `json:"actions"`
}

// View is everything needed to draw the task table and its pager
type View struct {
	Rows       []Row       `json:"rows"`
	Pagination Pagination  `json:"pagination"`
	Records    RecordRange `json:"records"`
	Filter     Filter      `json:"filter"`
	Search     string      `json:"search"`
}

// Snapshot pairs the rendered view with the modal currently shown. Version
// grows with every published change.
type Snapshot struct {
	Version uint64 `json:"version"`
	View    View   `json:"view"`
	Modal   Modal  `json:"modal"`
}

// Humanize turns a snake_case key into a title cased label
func Humanize(key string) string {
	if key == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// renderInput is the state Render reads
type renderInput struct {
	filtered []models.Task
	names    map[string]string
	page     int
	pageSize int
	filter   Filter
	search   string
	actions  []string
}

// render is a pure function of its input
func render(in renderInput) View {
	total := TotalPages(len(in.filtered), in.pageSize)
	start, end := pageBounds(in.page, in.pageSize, len(in.filtered))

	rows := make([]Row, 0, end-start)
	for _, task := range in.filtered[start:end] {
		rows = append(rows, toRow(task, in.names, in.actions))
	}

	return View{
		Rows:       rows,
		Pagination: buildPagination(in.page, total, in.pageSize),
		Records:    buildRecordRange(start, end, len(in.filtered)),
		Filter:     in.filter,
		Search:     in.search,
	}
}

func toRow(task models.Task, names map[string]string, actions []string) Row {
	row := Row{
		ID:            task.ID,
		Title:         task.Title,
		Category:      string(task.Category),
		CategoryLabel: Humanize(string(task.Category)),
		Priority:      string(task.Priority),
		Status:        string(task.Status),
		StatusLabel:   Humanize(string(task.Status)),
		AssigneeName:  unassignedLabel,
		Actions:       append([]string(nil), actions...),
	}

	if task.IsAssigned() {
		row.AssigneeID = *task.AssignedTo
		if name, ok := names[row.AssigneeID]; ok {
			row.AssigneeName = name
		} else {
			row.AssigneeName = unknownUserLabel
		}
	}

	return row
}
