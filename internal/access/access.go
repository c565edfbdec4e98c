// Package access decides whether an actor may perform an action on a
// project or on a task owned by a project. Every function is a pure
// predicate over identity ids; no storage is touched here.
package access

import "github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"

type Action string

const (
	ActionRead                Action = "read"
	ActionCreate              Action = "create"
	ActionEdit                Action = "edit"
	ActionDelete              Action = "delete"
	ActionManageCollaborators Action = "manage-collaborators"
	ActionToggle              Action = "toggle-completion"
)

type Decision int

const (
	Denied Decision = iota
	Authorized
)

func (d Decision) String() string {
	if d == Authorized {
		return "authorized"
	}
	return "denied"
}

// Project is the part of a project record that authorization looks at.
type Project struct {
	CreatorID     string
	Collaborators []string
}

func (p Project) IsCreator(actorID string) bool {
	return actorID != "" && p.CreatorID == actorID
}

func (p Project) IsCollaborator(actorID string) bool {
	if actorID == "" {
		return false
	}
	for _, id := range p.Collaborators {
		if id == actorID {
			return true
		}
	}
	return false
}

func (p Project) IsMember(actorID string) bool {
	return p.IsCreator(actorID) || p.IsCollaborator(actorID)
}

// DecideProject evaluates an action on a project.
//
// Create needs no existing record; any authenticated actor may create.
// Read is open to members, everything else to the creator only.
func DecideProject(actorID string, p Project, action Action) Decision {
	if actorID == "" {
		return Denied
	}
	switch action {
	case ActionCreate:
		return Authorized
	case ActionRead:
		return decision(p.IsMember(actorID))
	case ActionEdit, ActionDelete, ActionManageCollaborators:
		return decision(p.IsCreator(actorID))
	}
	return Denied
}

// DecideTask evaluates an action on a task, given the task's owning project.
// Only completion toggling is open to collaborators.
func DecideTask(actorID string, owner Project, action Action) Decision {
	if actorID == "" {
		return Denied
	}
	switch action {
	case ActionRead, ActionEdit, ActionDelete, ActionCreate:
		return decision(owner.IsCreator(actorID))
	case ActionToggle:
		return decision(owner.IsMember(actorID))
	}
	return Denied
}

// AuthorizeProject resolves existence before permission: a nil project is
// NotFound, a denied action is Forbidden.
func AuthorizeProject(actorID string, p *Project, action Action) error {
	if p == nil {
		return apperr.NotFound("project not found")
	}
	if DecideProject(actorID, *p, action) != Authorized {
		return apperr.Forbidden(deniedMessage(action))
	}
	return nil
}

// AuthorizeTask resolves existence before permission for task actions.
// taskExists is false when the task lookup came back empty; owner is nil
// when the owning project could not be resolved.
func AuthorizeTask(actorID string, taskExists bool, owner *Project, action Action) error {
	if !taskExists {
		return apperr.NotFound("task not found")
	}
	if owner == nil {
		return apperr.NotFound("project not found")
	}
	if DecideTask(actorID, *owner, action) != Authorized {
		return apperr.Forbidden(deniedMessage(action))
	}
	return nil
}

func decision(ok bool) Decision {
	if ok {
		return Authorized
	}
	return Denied
}

func deniedMessage(action Action) string {
	switch action {
	case ActionCreate:
		return "not allowed to add tasks to this project"
	case ActionManageCollaborators:
		return "only the project creator can manage collaborators"
	}
	return "action not allowed"
}
