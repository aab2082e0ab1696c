// Package access decides whether an actor may perform an action on a board,
// task or comment. Every decision goes through Authorizer.Check so the rule
// set lives in one place.
package access

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/apperr"
	"github.com/hugh/kanmind/internal/database/models"
)

type Kind string

const (
	KindBoard   Kind = "board"
	KindTask    Kind = "task"
	KindComment Kind = "comment"
)

type Action string

const (
	ActionView       Action = "view"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionCreateTask Action = "create_task"
	ActionComment    Action = "comment"
)

// Policy answers for a single object kind. Allow must return false for any
// action it does not know.
type Policy interface {
	Kind() Kind
	Allow(actor uuid.UUID, action Action, object any) bool
}

type Authorizer struct {
	policies map[Kind]Policy
}

// NewAuthorizer builds an authorizer from the given policies. With no
// arguments it uses the default board, task and comment policies.
func NewAuthorizer(policies ...Policy) *Authorizer {
	if len(policies) == 0 {
		policies = []Policy{BoardPolicy{}, TaskPolicy{}, CommentPolicy{}}
	}
	a := &Authorizer{policies: make(map[Kind]Policy, len(policies))}
	for _, p := range policies {
		a.policies[p.Kind()] = p
	}
	return a
}

// Check returns nil when actor may perform action on object, otherwise an
// error wrapping apperr.ErrForbidden. Unknown kinds are denied.
func (a *Authorizer) Check(actor uuid.UUID, kind Kind, action Action, object any) error {
	p, ok := a.policies[kind]
	if !ok || object == nil || !p.Allow(actor, action, object) {
		return fmt.Errorf("%s %s: %w", kind, action, apperr.ErrForbidden)
	}
	return nil
}

// Allowed is Check as a boolean.
func (a *Authorizer) Allowed(actor uuid.UUID, kind Kind, action Action, object any) bool {
	return a.Check(actor, kind, action, object) == nil
}

// BoardPolicy expects a *models.Board with Members preloaded.
type BoardPolicy struct{}

func (BoardPolicy) Kind() Kind { return KindBoard }

func (BoardPolicy) Allow(actor uuid.UUID, action Action, object any) bool {
	board, ok := object.(*models.Board)
	if !ok || board == nil {
		return false
	}
	switch action {
	case ActionView, ActionUpdate, ActionDelete, ActionCreateTask:
		return board.IsOwnerOrMember(actor)
	}
	return false
}

// TaskPolicy expects a *models.Task whose Board is loaded with its Members.
type TaskPolicy struct{}

func (TaskPolicy) Kind() Kind { return KindTask }

func (TaskPolicy) Allow(actor uuid.UUID, action Action, object any) bool {
	task, ok := object.(*models.Task)
	if !ok || task == nil || task.Board == nil {
		return false
	}
	switch action {
	case ActionView, ActionUpdate, ActionComment:
		return task.Board.IsOwnerOrMember(actor)
	case ActionDelete:
		return task.IsReviewer(actor) || task.Board.IsOwner(actor)
	}
	return false
}

type CommentPolicy struct{}

func (CommentPolicy) Kind() Kind { return KindComment }

func (CommentPolicy) Allow(actor uuid.UUID, action Action, object any) bool {
	comment, ok := object.(*models.TaskComment)
	if !ok || comment == nil {
		return false
	}
	return action == ActionDelete && comment.AuthorID == actor
}

// Compile-time interface satisfaction checks
var (
	_ Policy = BoardPolicy{}
	_ Policy = TaskPolicy{}
	_ Policy = CommentPolicy{}
)
