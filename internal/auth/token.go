package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/apperr"
	"github.com/hugh/kanmind/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tokenIssuer = "kanmind"

var ErrInvalidToken = fmt.Errorf("invalid token: %w", apperr.ErrUnauthenticated)

// TokenCache maps token keys to user ids in front of the database.
type TokenCache interface {
	Get(ctx context.Context, key string) (uuid.UUID, bool, error)
	Set(ctx context.Context, key string, userID uuid.UUID, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// TokenIssuer hands out one long-lived key per user. Keys are signed JWTs so
// forged or mangled keys are rejected before any storage lookup, but a key
// is only valid while its auth_tokens row exists.
type TokenIssuer struct {
	db     *gorm.DB
	secret []byte
	cache  TokenCache
	ttl    time.Duration
	log    *slog.Logger
}

func NewTokenIssuer(db *gorm.DB, secret string, log *slog.Logger) *TokenIssuer {
	return &TokenIssuer{db: db, secret: []byte(secret), log: log}
}

// WithCache enables resolve caching. A nil cache disables it.
func (t *TokenIssuer) WithCache(cache TokenCache, ttl time.Duration) *TokenIssuer {
	t.cache = cache
	t.ttl = ttl
	return t
}

// IssueOrGet returns the user's key, creating it on first use. Concurrent
// first calls for the same user all return the single stored key.
func (t *TokenIssuer) IssueOrGet(ctx context.Context, userID uuid.UUID) (string, error) {
	if key := t.storedKey(ctx, userID); key != "" {
		return key, nil
	}

	key, err := t.mint(userID)
	if err != nil {
		return "", fmt.Errorf("minting token: %w", err)
	}

	row := models.AuthToken{UserID: userID, Key: key}
	if err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&row).Error; err != nil {
		return "", fmt.Errorf("storing token: %w", err)
	}

	var stored models.AuthToken
	if err := t.db.WithContext(ctx).First(&stored, "user_id = ?", userID).Error; err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return stored.Key, nil
}

// Resolve maps a presented key to its user id.
func (t *TokenIssuer) Resolve(ctx context.Context, key string) (uuid.UUID, error) {
	subject, err := t.verify(key)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	if t.cache != nil {
		id, ok, err := t.cache.Get(ctx, key)
		if err != nil {
			t.log.Warn("token cache get failed", "error", err)
		} else if ok && id == subject {
			return id, nil
		}
	}

	var stored models.AuthToken
	if err := t.db.WithContext(ctx).First(&stored, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrInvalidToken
		}
		return uuid.Nil, err
	}
	if stored.UserID != subject {
		return uuid.Nil, ErrInvalidToken
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, key, stored.UserID, t.ttl); err != nil {
			t.log.Warn("token cache set failed", "error", err)
		}
	}
	return stored.UserID, nil
}

// Revoke deletes the user's key. Revoking a user without a key is a no-op.
func (t *TokenIssuer) Revoke(ctx context.Context, userID uuid.UUID) error {
	key := t.storedKey(ctx, userID)
	if err := t.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error; err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	if key != "" {
		t.evict(ctx, key)
	}
	return nil
}

func (t *TokenIssuer) storedKey(ctx context.Context, userID uuid.UUID) string {
	var stored models.AuthToken
	if err := t.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&stored).Error; err != nil {
		return ""
	}
	return stored.Key
}

func (t *TokenIssuer) evict(ctx context.Context, key string) {
	if t.cache == nil {
		return
	}
	if err := t.cache.Delete(ctx, key); err != nil {
		t.log.Warn("token cache delete failed", "error", err)
	}
}

func (t *TokenIssuer) mint(userID uuid.UUID) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Subject:  userID.String(),
		Issuer:   tokenIssuer,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) verify(key string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(key, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	return uuid.Parse(claims.Subject)
}
