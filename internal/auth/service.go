package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/apperr"
	"github.com/hugh/kanmind/internal/boards"
	"github.com/hugh/kanmind/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = apperr.NotFound("User")
	ErrInvalidCredentials = apperr.Invalid("Invalid credentials.")
)

// Service is the user directory: registration, credential checks and lookups.
type Service struct {
	db     *gorm.DB
	tokens *TokenIssuer
	log    *slog.Logger
}

func NewService(db *gorm.DB, tokens *TokenIssuer, log *slog.Logger) *Service {
	return &Service{db: db, tokens: tokens, log: log}
}

type RegisterInput struct {
	Fullname         string
	Email            string
	Password         string
	RepeatedPassword string
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.Password != input.RepeatedPassword {
		return nil, apperr.Field("repeated_password", "Passwords do not match.")
	}

	// Exact match: "A@x.com" and "a@x.com" may both register.
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", input.Email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return nil, apperr.Field("email", "Email already exists")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Fullname:     input.Fullname,
		Username:     input.Fullname,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// A concurrent registration can win between the count and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Field("email", "Email already exists")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return &user, nil
}

// Authenticate returns the user owning email when password matches its hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// FindByEmail matches email case-insensitively.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		Order("created_at ASC").
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes the user and everything that depends on it: their
// comments (keeping task counters in step), owned boards with their tasks,
// memberships, assignee/reviewer references and the token.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetUserByID(ctx, id); err != nil {
		return err
	}

	var key string
	if s.tokens != nil {
		key = s.tokens.storedKey(ctx, id)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := boards.DeleteOwnedBy(tx, id); err != nil {
			return err
		}

		type perTask struct {
			TaskID uuid.UUID
			N      int
		}
		var authored []perTask
		if err := tx.Model(&models.TaskComment{}).
			Select("task_id, COUNT(*) AS n").
			Where("author_id = ?", id).
			Group("task_id").
			Scan(&authored).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		for _, a := range authored {
			if err := tx.Model(&models.Task{}).
				Where("id = ?", a.TaskID).
				UpdateColumn("comments_count", gorm.Expr(
					"CASE WHEN comments_count > ? THEN comments_count - ? ELSE 0 END", a.N, a.N,
				)).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Task{}).Where("assignee_id = ?", id).
			UpdateColumn("assignee_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("reviewer_id = ?", id).
			UpdateColumn("reviewer_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.User{}).Error
	})
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if key != "" {
		s.tokens.evict(ctx, key)
	}
	s.log.Info("user deleted", "user_id", id)
	return nil
}
