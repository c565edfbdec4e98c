package domain

import (
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task belongs to exactly one project for its whole lifetime. CompletedBy
// records whoever last toggled completion, in either direction.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	DueDate     time.Time `json:"due_date"`
	Completed   bool      `json:"completed"`
	ProjectID   string    `json:"project"`
	CompletedBy *string   `json:"completed_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Completer is the populated form of CompletedBy.
type Completer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View is a task with its completer populated.
type View struct {
	Task
	CompletedBy *Completer `json:"completed_by"`
}

// NewView populates the completer of t from people.
func NewView(t Task, people map[string]auth.Identity) View {
	v := View{Task: t}
	if t.CompletedBy != nil {
		if who, ok := people[*t.CompletedBy]; ok {
			v.CompletedBy = &Completer{ID: who.ID, Name: who.Name}
		}
	}
	return v
}

// Fields carries task attributes for create and edit. Nil fields are left
// unchanged on edit.
type Fields struct {
	Name        *string
	Description *string
	Priority    *Priority
	DueDate     *time.Time
}

// NewTask builds a task for projectID from f. Name, description and
// priority are required; the due date defaults to now.
func NewTask(projectID string, f Fields, now time.Time) (*Task, error) {
	t := &Task{ProjectID: projectID, DueDate: now}
	if f.Name == nil {
		return nil, apperr.Validation("name is required")
	}
	if f.Description == nil {
		return nil, apperr.Validation("description is required")
	}
	if f.Priority == nil {
		return nil, apperr.Validation("priority is required")
	}
	if err := t.Apply(f); err != nil {
		return nil, err
	}
	return t, nil
}

// Apply overwrites the provided fields.
func (t *Task) Apply(f Fields) error {
	if f.Name != nil {
		name := strings.TrimSpace(*f.Name)
		if name == "" {
			return apperr.Validation("name is required")
		}
		t.Name = name
	}
	if f.Description != nil {
		desc := strings.TrimSpace(*f.Description)
		if desc == "" {
			return apperr.Validation("description is required")
		}
		t.Description = desc
	}
	if f.Priority != nil {
		if !f.Priority.Valid() {
			return apperr.Validation("priority must be one of Low, Medium, High")
		}
		t.Priority = *f.Priority
	}
	if f.DueDate != nil {
		t.DueDate = *f.DueDate
	}
	return nil
}

// ToggleCompletion inverts the completion state and attributes the change
// to actorID.
func (t *Task) ToggleCompletion(actorID string) {
	t.Completed = !t.Completed
	t.CompletedBy = &actorID
}
