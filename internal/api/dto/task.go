package dto

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/api/validation"
	"github.com/hugh/kanmind/internal/database/models"
	"github.com/hugh/kanmind/internal/tasks"
)

// CreateTaskRequest keeps id fields raw so a malformed id is reported
// against its field.
type CreateTaskRequest struct {
	Board       json.RawMessage     `json:"board"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	AssigneeID  json.RawMessage     `json:"assignee_id"`
	ReviewerID  json.RawMessage     `json:"reviewer_id"`
	DueDate     *models.Date        `json:"due_date"`
}

func (r CreateTaskRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if board, ok := parseID(r.Board); !ok {
		errors["board"] = "Must be a valid UUID."
	} else if board == nil || *board == uuid.Nil {
		errors["board"] = "This field is required."
	}
	if msg := validation.CheckTitle(r.Title); msg != "" {
		errors["title"] = msg
	}
	if _, ok := parseID(r.AssigneeID); !ok {
		errors["assignee_id"] = "Invalid user."
	}
	if _, ok := parseID(r.ReviewerID); !ok {
		errors["reviewer_id"] = "Invalid user."
	}
	return errors
}

// Input assumes Validate reported no problems.
func (r CreateTaskRequest) Input() tasks.CreateInput {
	in := tasks.CreateInput{
		Title:       r.Title,
		Description: validation.SanitizeString(r.Description),
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
	}
	if board, _ := parseID(r.Board); board != nil {
		in.BoardID = *board
	}
	in.AssigneeID, _ = parseID(r.AssigneeID)
	in.ReviewerID, _ = parseID(r.ReviewerID)
	return in
}

// UpdateTaskRequest distinguishes an absent assignee_id, reviewer_id or
// due_date from an explicit null.
type UpdateTaskRequest struct {
	Title       *string                     `json:"title"`
	Description *string                     `json:"description"`
	Status      *models.TaskStatus          `json:"status"`
	Priority    *models.TaskPriority        `json:"priority"`
	DueDate     tasks.Optional[models.Date] `json:"due_date"`
	AssigneeID  tasks.OptionalID            `json:"assignee_id"`
	ReviewerID  tasks.OptionalID            `json:"reviewer_id"`
}

func (r UpdateTaskRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Title != nil {
		if msg := validation.CheckTitle(*r.Title); msg != "" {
			errors["title"] = msg
		}
	}
	return errors
}

func (r UpdateTaskRequest) Patch() tasks.Patch {
	p := tasks.Patch{
		Title:      r.Title,
		Status:     r.Status,
		Priority:   r.Priority,
		DueDate:    r.DueDate,
		AssigneeID: r.AssigneeID,
		ReviewerID: r.ReviewerID,
	}
	if r.Description != nil {
		d := validation.SanitizeString(*r.Description)
		p.Description = &d
	}
	return p
}

// BoardTaskResponse is a task nested in a board detail
type BoardTaskResponse struct {
	ID            uuid.UUID           `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        models.TaskStatus   `json:"status"`
	Priority      models.TaskPriority `json:"priority"`
	Assignee      *UserSummary        `json:"assignee"`
	Reviewer      *UserSummary        `json:"reviewer"`
	DueDate       *models.Date        `json:"due_date"`
	CommentsCount int                 `json:"comments_count"`
}

func NewBoardTask(t *models.Task) BoardTaskResponse {
	return BoardTaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		Assignee:      NewUserSummaryPtr(t.Assignee),
		Reviewer:      NewUserSummaryPtr(t.Reviewer),
		DueDate:       t.DueDate,
		CommentsCount: t.CommentsCount,
	}
}

type TaskResponse struct {
	ID            uuid.UUID           `json:"id"`
	Board         uuid.UUID           `json:"board"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        models.TaskStatus   `json:"status"`
	Priority      models.TaskPriority `json:"priority"`
	Assignee      *UserSummary        `json:"assignee"`
	Reviewer      *UserSummary        `json:"reviewer"`
	DueDate       *models.Date        `json:"due_date"`
	CommentsCount int                 `json:"comments_count"`
}

func NewTaskResponse(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Board:         t.BoardID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		Assignee:      NewUserSummaryPtr(t.Assignee),
		Reviewer:      NewUserSummaryPtr(t.Reviewer),
		DueDate:       t.DueDate,
		CommentsCount: t.CommentsCount,
	}
}

func NewTaskResponses(ts []models.Task) []TaskResponse {
	out := make([]TaskResponse, len(ts))
	for i := range ts {
		out[i] = NewTaskResponse(&ts[i])
	}
	return out
}

// TaskPatchResponse omits board and comments_count
type TaskPatchResponse struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Assignee    *UserSummary        `json:"assignee"`
	Reviewer    *UserSummary        `json:"reviewer"`
	DueDate     *models.Date        `json:"due_date"`
}

func NewTaskPatchResponse(t *models.Task) TaskPatchResponse {
	return TaskPatchResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Assignee:    NewUserSummaryPtr(t.Assignee),
		Reviewer:    NewUserSummaryPtr(t.Reviewer),
		DueDate:     t.DueDate,
	}
}
