// Package comments owns task comments and keeps each task's comments_count
// in step with its live comment rows.
package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/access"
	"github.com/hugh/kanmind/internal/apperr"
	"github.com/hugh/kanmind/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = apperr.NotFound("Task")
	ErrCommentNotFound = apperr.NotFound("Comment")
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
	deleted Counter
}

func NewStore(db *gorm.DB, authz *access.Authorizer, log *slog.Logger) *Store {
	return &Store{db: db, authz: authz, log: log}
}

func (s *Store) WithCounters(created, deleted Counter) *Store {
	s.created = created
	s.deleted = deleted
	return s
}

// List returns the task's comments oldest first, authors loaded.
func (s *Store) List(ctx context.Context, actor, taskID uuid.UUID) ([]models.TaskComment, error) {
	if _, err := s.authorizedTask(ctx, actor, taskID, access.ActionView); err != nil {
		return nil, err
	}

	comments := []models.TaskComment{}
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// Create inserts the comment and increments the task counter in one
// transaction.
func (s *Store) Create(ctx context.Context, actor, taskID uuid.UUID, content string) (*models.TaskComment, error) {
	if _, err := s.authorizedTask(ctx, actor, taskID, access.ActionComment); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Field("content", "This field may not be blank.")
	}

	comment := models.TaskComment{TaskID: taskID, AuthorID: actor, Content: content}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Task{}).
			Where("id = ?", taskID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error
	})
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	if err := s.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", comment.ID).Error; err != nil {
		return nil, fmt.Errorf("reloading comment: %w", err)
	}

	if s.created != nil {
		s.created.Inc()
	}
	s.log.Info("comment created", "comment_id", comment.ID, "task_id", taskID, "author_id", actor)
	return &comment, nil
}

// Delete removes the comment, then decrements the counter. The decrement
// never takes the counter below zero.
func (s *Store) Delete(ctx context.Context, actor, taskID, commentID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	var task models.Task
	if err := db.Select("id").First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	var comment models.TaskComment
	if err := db.First(&comment, "id = ? AND task_id = ?", commentID, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if err := s.authz.Check(actor, access.KindComment, access.ActionDelete, &comment); err != nil {
		return err
	}

	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", comment.ID).Delete(&models.TaskComment{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		if removed == 0 {
			// Already gone; a concurrent delete did the decrement.
			return nil
		}
		return tx.Model(&models.Task{}).
			Where("id = ? AND comments_count > 0", taskID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - ?", 1)).Error
	})
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if removed == 0 {
		return ErrCommentNotFound
	}

	if s.deleted != nil {
		s.deleted.Inc()
	}
	s.log.Info("comment deleted", "comment_id", commentID, "task_id", taskID, "actor_id", actor)
	return nil
}

func (s *Store) authorizedTask(ctx context.Context, actor, taskID uuid.UUID, action access.Action) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).Preload("Board.Members").First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if err := s.authz.Check(actor, access.KindTask, action, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
