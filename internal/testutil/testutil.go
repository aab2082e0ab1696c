package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/auth"
	"github.com/hugh/kanmind/internal/database"
	"github.com/hugh/kanmind/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestPassword = "testpassword123"

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Every connection to :memory: is a fresh database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Logger discards everything
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateTestUser creates a user with TestPassword
func CreateTestUser(t *testing.T, db *gorm.DB, fullname string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Fullname:     fullname,
		Username:     fullname,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestBoard creates a board owned by owner with the given members
func CreateTestBoard(t *testing.T, db *gorm.DB, owner *models.User, title string, members ...*models.User) *models.Board {
	t.Helper()

	board := &models.Board{Title: title, OwnerID: owner.ID}
	for _, m := range members {
		board.Members = append(board.Members, *m)
	}

	if err := db.Omit("Members.*").Create(board).Error; err != nil {
		t.Fatalf("failed to create test board: %v", err)
	}

	return board
}

// CreateTestTask creates a task on board with default status and priority
func CreateTestTask(t *testing.T, db *gorm.DB, board *models.Board, title string, mutate ...func(*models.Task)) *models.Task {
	t.Helper()

	task := &models.Task{
		BoardID:  board.ID,
		Title:    title,
		Status:   models.TaskStatusToDo,
		Priority: models.TaskPriorityMedium,
	}
	for _, fn := range mutate {
		fn(task)
	}

	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}

	return task
}

// CreateTestComment inserts a comment and bumps the task counter the way the
// comment store does
func CreateTestComment(t *testing.T, db *gorm.DB, task *models.Task, author *models.User, content string) *models.TaskComment {
	t.Helper()

	comment := &models.TaskComment{TaskID: task.ID, AuthorID: author.ID, Content: content}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Task{}).Where("id = ?", task.ID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error
	})
	if err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}

	return comment
}

// CreateTestTokenIssuer creates a token issuer for testing
func CreateTestTokenIssuer(db *gorm.DB) *auth.TokenIssuer {
	return auth.NewTokenIssuer(db, "test-secret-key-for-testing", Logger())
}

// IssueTestToken issues the stored token for user
func IssueTestToken(t *testing.T, tokens *auth.TokenIssuer, user *models.User) string {
	t.Helper()

	token, err := tokens.IssueOrGet(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to issue test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB     *gorm.DB
	Tokens *auth.TokenIssuer
	User   *models.User
	Token  string
}

// NewTestContext creates a complete test setup with DB, user, and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	tokens := CreateTestTokenIssuer(db)
	user := CreateTestUser(t, db, "Test User")
	token := IssueTestToken(t, tokens, user)

	return &TestSetup{
		DB:     db,
		Tokens: tokens,
		User:   user,
		Token:  token,
	}
}

// AddUser creates another user with a token in the same database
func (ts *TestSetup) AddUser(t *testing.T, fullname string) (*models.User, string) {
	t.Helper()
	user := CreateTestUser(t, ts.DB, fullname)
	return user, IssueTestToken(t, ts.Tokens, user)
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
