package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hugh/kanmind/internal/api/dto"
	"github.com/hugh/kanmind/internal/database/models"
	"github.com/hugh/kanmind/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	t.Run("successful registration", func(t *testing.T) {
		body := map[string]string{
			"fullname":          "New User",
			"email":             "newuser@example.com",
			"password":          "securepassword123",
			"repeated_password": "securepassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/registration", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "newuser@example.com", resp.Email)
		assert.Equal(t, "New User", resp.Fullname)

		// the returned key authenticates
		req = testutil.AuthenticatedRequest(t, "GET", "/api/me", nil, resp.Token)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := map[string]string{
			"fullname":          "First User",
			"email":             "duplicate@example.com",
			"password":          "securepassword123",
			"repeated_password": "securepassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/registration", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code)

		req = testutil.UnauthenticatedRequest(t, "POST", "/api/registration", body)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Email already exists", resp.Details["email"])
	})

	t.Run("passwords do not match", func(t *testing.T) {
		body := map[string]string{
			"fullname":          "Mismatch",
			"email":             "mismatch@example.com",
			"password":          "securepassword123",
			"repeated_password": "differentpassword",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/registration", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "repeated_password")
	})

	t.Run("missing fields", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/registration", map[string]string{})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		for _, field := range []string{"fullname", "email", "password", "repeated_password"} {
			assert.Contains(t, resp.Details, field)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/registration", "{not json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	t.Run("successful login returns the stored key", func(t *testing.T) {
		body := map[string]string{"email": tc.User.Email, "password": testutil.TestPassword}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, tc.Token, resp.Token)
		assert.Equal(t, tc.User.ID, resp.UserID)
		assert.Equal(t, tc.User.Fullname, resp.Fullname)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := map[string]string{"email": tc.User.Email, "password": "wrongpassword"}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Invalid credentials.", resp.Error)
	})

	t.Run("non-existent user", func(t *testing.T) {
		body := map[string]string{"email": "nonexistent@example.com", "password": "anypassword"}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("missing password", func(t *testing.T) {
		body := map[string]string{"email": tc.User.Email}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestAuthHandler_EmailCheck(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	t.Run("found case-insensitively", func(t *testing.T) {
		path := "/api/email-check?email=" + strings.ToUpper(tc.User.Email)
		req := testutil.AuthenticatedRequest(t, "GET", path, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		var resp dto.UserSummary
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, tc.User.ID, resp.ID)
		assert.Equal(t, tc.User.Fullname, resp.Fullname)
	})

	t.Run("unknown email", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/email-check?email=nobody@example.com", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusNotFound)
		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "User not found.", resp.Error)
	})

	t.Run("missing parameter", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/email-check", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "This query parameter is required.", resp.Details["email"])
	})

	t.Run("malformed email", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/email-check?email=not-an-email", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("requires authentication", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/email-check?email="+tc.User.Email, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestAuthHandler_DeleteMe(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	board := testutil.CreateTestBoard(t, tc.DB, tc.User, "Doomed")
	testutil.CreateTestTask(t, tc.DB, board, "Doomed task")

	req := testutil.AuthenticatedRequest(t, "DELETE", "/api/me", nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	var count int64
	require.NoError(t, tc.DB.Model(&models.Board{}).Where("id = ?", board.ID).Count(&count).Error)
	assert.Zero(t, count)

	// the key died with the user
	req = testutil.AuthenticatedRequest(t, "GET", "/api/me", nil, tc.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}
