package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/database/models"
)

// Directory defines the user directory operations handlers depend on.
type Directory interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// Tokens defines the token operations used by handlers and the auth middleware.
type Tokens interface {
	IssueOrGet(ctx context.Context, userID uuid.UUID) (string, error)
	Resolve(ctx context.Context, key string) (uuid.UUID, error)
	Revoke(ctx context.Context, userID uuid.UUID) error
}

// Compile-time interface satisfaction checks
var (
	_ Directory  = (*Service)(nil)
	_ Tokens     = (*TokenIssuer)(nil)
	_ TokenCache = (*RedisTokenCache)(nil)
)
