// Package tasks owns tasks on boards, including assignee and reviewer
// references and the assigned/reviewing listings.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/access"
	"github.com/hugh/kanmind/internal/apperr"
	"github.com/hugh/kanmind/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound  = apperr.NotFound("Task")
	ErrBoardNotFound = apperr.NotFound("Board")
)

// Counter is satisfied by prometheus.Counter.
type Counter interface {
	Inc()
}

type Store struct {
	db      *gorm.DB
	authz   *access.Authorizer
	log     *slog.Logger
	created Counter
}

func NewStore(db *gorm.DB, authz *access.Authorizer, log *slog.Logger) *Store {
	return &Store{db: db, authz: authz, log: log}
}

func (s *Store) WithCreatedCounter(c Counter) *Store {
	s.created = c
	return s
}

type CreateInput struct {
	BoardID     uuid.UUID
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	AssigneeID  *uuid.UUID
	ReviewerID  *uuid.UUID
	DueDate     *models.Date
}

// Patch replaces only the fields that are present. The board is immutable.
type Patch struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     Optional[models.Date]
	AssigneeID  OptionalID
	ReviewerID  OptionalID
}

func (s *Store) Create(ctx context.Context, actor uuid.UUID, input CreateInput) (*models.Task, error) {
	db := s.db.WithContext(ctx)

	var board models.Board
	if err := db.Preload("Members").First(&board, "id = ?", input.BoardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	if err := s.authz.Check(actor, access.KindBoard, access.ActionCreateTask, &board); err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.TaskStatusToDo
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	problems := map[string]string{}
	checkEnums(problems, &input.Status, &input.Priority)
	if err := checkParticipant(db, problems, &board, "assignee_id", input.AssigneeID); err != nil {
		return nil, err
	}
	if err := checkParticipant(db, problems, &board, "reviewer_id", input.ReviewerID); err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, &apperr.ValidationError{Fields: problems}
	}

	task := models.Task{
		BoardID:     board.ID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		AssigneeID:  input.AssigneeID,
		ReviewerID:  input.ReviewerID,
		DueDate:     input.DueDate,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	if s.created != nil {
		s.created.Inc()
	}
	s.log.Info("task created", "task_id", task.ID, "board_id", board.ID, "actor_id", actor)
	return s.reload(ctx, task.ID)
}

// Load returns the task with its board and the board's members, without any
// access check.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).
		Preload("Board.Members").
		First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *Store) Update(ctx context.Context, actor, id uuid.UUID, patch Patch) (*models.Task, error) {
	task, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Check(actor, access.KindTask, access.ActionUpdate, task); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	problems := map[string]string{}
	checkEnums(problems, patch.Status, patch.Priority)
	if patch.AssigneeID.Set {
		if err := checkParticipant(db, problems, task.Board, "assignee_id", patch.AssigneeID.Value); err != nil {
			return nil, err
		}
	}
	if patch.ReviewerID.Set {
		if err := checkParticipant(db, problems, task.Board, "reviewer_id", patch.ReviewerID.Value); err != nil {
			return nil, err
		}
	}
	if len(problems) > 0 {
		return nil, &apperr.ValidationError{Fields: problems}
	}

	changes := map[string]interface{}{}
	if patch.Title != nil {
		changes["title"] = *patch.Title
	}
	if patch.Description != nil {
		changes["description"] = *patch.Description
	}
	if patch.Status != nil {
		changes["status"] = *patch.Status
	}
	if patch.Priority != nil {
		changes["priority"] = *patch.Priority
	}
	if patch.DueDate.Set {
		changes["due_date"] = patch.DueDate.Value
	}
	if patch.AssigneeID.Set {
		changes["assignee_id"] = patch.AssigneeID.Value
	}
	if patch.ReviewerID.Set {
		changes["reviewer_id"] = patch.ReviewerID.Value
	}

	if len(changes) > 0 {
		if err := db.Model(&models.Task{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("updating task: %w", err)
		}
	}
	return s.reload(ctx, id)
}

// Delete removes the task and its comments.
func (s *Store) Delete(ctx context.Context, actor, id uuid.UUID) error {
	task, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Check(actor, access.KindTask, access.ActionDelete, task); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Task{}).Error
	})
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	s.log.Info("task deleted", "task_id", id, "actor_id", actor)
	return nil
}

// ListAssignedTo does not re-check board membership.
func (s *Store) ListAssignedTo(ctx context.Context, actor uuid.UUID) ([]models.Task, error) {
	return s.listWhere(ctx, "assignee_id = ?", actor)
}

// ListReviewing does not re-check board membership.
func (s *Store) ListReviewing(ctx context.Context, actor uuid.UUID) ([]models.Task, error) {
	return s.listWhere(ctx, "reviewer_id = ?", actor)
}

func (s *Store) listWhere(ctx context.Context, query string, actor uuid.UUID) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := s.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Reviewer").
		Where(query, actor).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) reload(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Reviewer").
		First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func checkEnums(problems map[string]string, status *models.TaskStatus, priority *models.TaskPriority) {
	if status != nil && !status.Valid() {
		problems["status"] = fmt.Sprintf("%q is not a valid choice.", *status)
	}
	if priority != nil && !priority.Valid() {
		problems["priority"] = fmt.Sprintf("%q is not a valid choice.", *priority)
	}
}

// checkParticipant requires a referenced user to exist and to be the board's
// owner or a member. A nil id is always acceptable.
func checkParticipant(db *gorm.DB, problems map[string]string, board *models.Board, field string, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return fmt.Errorf("checking %s: %w", field, err)
	}
	if count == 0 {
		problems[field] = "Invalid user."
		return nil
	}
	if !board.IsOwnerOrMember(*id) {
		label := "Assignee"
		if field == "reviewer_id" {
			label = "Reviewer"
		}
		problems[field] = label + " is not a member of this board."
	}
	return nil
}
