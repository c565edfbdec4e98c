package domain

import (
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/access"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
	taskdomain "github.com/GoSim-25-26J-441/taskroom-backend/internal/tasks/domain"
)

// Project is owned by exactly one creator, who is never also listed among
// its collaborators.
type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	DueDate       time.Time `json:"due_date"`
	Client        string    `json:"client"`
	CreatorID     string    `json:"creator"`
	TaskIDs       []string  `json:"-"`
	Collaborators []string  `json:"collaborators"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Access returns the part of p that authorization decides on.
func (p *Project) Access() *access.Project {
	if p == nil {
		return nil
	}
	return &access.Project{CreatorID: p.CreatorID, Collaborators: p.Collaborators}
}

// Detail is a project with its tasks and collaborators populated.
type Detail struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	DueDate       time.Time         `json:"due_date"`
	Client        string            `json:"client"`
	CreatorID     string            `json:"creator"`
	Tasks         []taskdomain.View `json:"tasks"`
	Collaborators []auth.Identity   `json:"collaborators"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Fields carries project attributes for create and edit. Nil fields are
// left unchanged on edit.
type Fields struct {
	Name        *string
	Description *string
	Client      *string
	DueDate     *time.Time
}

// NewProject builds a project created by creatorID. Name, description and
// client are required; the due date defaults to now.
func NewProject(creatorID string, f Fields, now time.Time) (*Project, error) {
	p := &Project{
		CreatorID:     creatorID,
		DueDate:       now,
		TaskIDs:       []string{},
		Collaborators: []string{},
	}
	for _, req := range []struct {
		v    *string
		name string
	}{{f.Name, "name"}, {f.Description, "description"}, {f.Client, "client"}} {
		if req.v == nil {
			return nil, apperr.Validation(req.name + " is required")
		}
	}
	if err := p.Apply(f); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply overwrites the provided fields.
func (p *Project) Apply(f Fields) error {
	set := func(dst *string, v *string, name string) error {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		if s == "" {
			return apperr.Validation(name + " is required")
		}
		*dst = s
		return nil
	}
	if err := set(&p.Name, f.Name, "name"); err != nil {
		return err
	}
	if err := set(&p.Description, f.Description, "description"); err != nil {
		return err
	}
	if err := set(&p.Client, f.Client, "client"); err != nil {
		return err
	}
	if f.DueDate != nil {
		p.DueDate = *f.DueDate
	}
	return nil
}
