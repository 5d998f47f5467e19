package listview

import "github.com/yukikurage/task-dashboard/internal/models"

type ModalKind string

const (
	ModalNone           ModalKind = ""
	ModalTaskDetail     ModalKind = "task_detail"
	ModalTaskEdit       ModalKind = "task_edit"
	ModalTaskAssignment ModalKind = "task_assignment"
	ModalCreateUser     ModalKind = "create_user"
)

// Candidate is a user offered in the assignment modal
type Candidate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	TaskCount int    `json:"task_count"`
}

// Modal is the selection surface shown on top of the task table
type Modal struct {
	Kind       ModalKind    `json:"kind"`
	Task       *models.Task `json:"task,omitempty"`
	Candidates []Candidate  `json:"candidates,omitempty"`
}

// Open reports whether a modal is shown
func (m Modal) Open() bool {
	return m.Kind != ModalNone
}

// NewUser is the payload of the create-user form
type NewUser struct {
	Name  string
	Email string
	Role  string
}

// candidatesFrom lists active users with role user, in input order
func candidatesFrom(users []models.User) []Candidate {
	out := make([]Candidate, 0, len(users))
	for _, u := range users {
		if !u.Assignable() {
			continue
		}
		out = append(out, Candidate{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			TaskCount: u.TaskCount,
		})
	}
	return out
}

func hasCandidate(candidates []Candidate, userID string) bool {
	for _, c := range candidates {
		if c.ID == userID {
			return true
		}
	}
	return false
}
