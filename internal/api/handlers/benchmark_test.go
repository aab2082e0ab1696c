package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/api/dto"
	"github.com/hugh/kanmind/internal/boards"
	"github.com/hugh/kanmind/internal/database/models"
)

func benchBoard(tasks int) *models.Board {
	owner := models.User{Email: "owner@example.com", Fullname: "Owner"}
	owner.ID = uuid.New()
	board := &models.Board{Title: "Benchmark", OwnerID: owner.ID, Owner: &owner}
	board.ID = uuid.New()
	for i := 0; i < 5; i++ {
		m := models.User{Email: "member@example.com", Fullname: "Member"}
		m.ID = uuid.New()
		board.Members = append(board.Members, m)
	}
	due := models.NewDate(2026, 6, 1)
	for i := 0; i < tasks; i++ {
		task := models.Task{
			BoardID:     board.ID,
			Title:       "Task " + string(rune('A'+i%26)),
			Description: "Something to do",
			Status:      models.TaskStatusInProgress,
			Priority:    models.TaskPriorityHigh,
			AssigneeID:  &board.Members[i%5].ID,
			Assignee:    &board.Members[i%5],
			DueDate:     &due,
		}
		task.ID = uuid.New()
		board.Tasks = append(board.Tasks, task)
	}
	return board
}

// BenchmarkJSONSerialization benchmarks JSON encoding of common response types
func BenchmarkJSONSerialization(b *testing.B) {
	b.Run("ErrorResponse", func(b *testing.B) {
		resp := dto.ErrorResponse{
			Error: "Validation failed",
			Details: map[string]string{
				"title":       "This field may not be blank.",
				"assignee_id": "Invalid user.",
			},
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})

	b.Run("BoardSummaries", func(b *testing.B) {
		resp := make([]dto.BoardSummaryResponse, 20)
		for i := range resp {
			resp[i] = dto.NewBoardSummary(benchBoard(0), boards.Aggregates{MemberCount: 5, TicketCount: 12, TasksToDoCount: 4, TasksHighPrioCount: 2})
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})

	b.Run("BoardDetail", func(b *testing.B) {
		resp := dto.NewBoardDetail(benchBoard(50))
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})

	b.Run("AuthResponse", func(b *testing.B) {
		user := &models.User{Email: "user@example.com", Fullname: "Test User"}
		user.ID = uuid.New()
		resp := dto.NewAuthResponse("eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiIxMjMifQ.abc123", user)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})
}

// BenchmarkRequestParsing benchmarks JSON decoding of common request types
func BenchmarkRequestParsing(b *testing.B) {
	b.Run("LoginRequest", func(b *testing.B) {
		jsonData := []byte(`{"email":"user@example.com","password":"securepassword123"}`)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var req dto.LoginRequest
			_ = json.Unmarshal(jsonData, &req)
		}
	})

	b.Run("UpdateTaskRequest", func(b *testing.B) {
		jsonData := []byte(`{"status":"review","assignee_id":null,"due_date":"2026-06-01","reviewer_id":"` + uuid.NewString() + `"}`)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var req dto.UpdateTaskRequest
			_ = json.Unmarshal(jsonData, &req)
		}
	})

	b.Run("UpdateBoardRequestWithDecoder", func(b *testing.B) {
		ids := make([]string, 10)
		for i := range ids {
			ids[i] = `"` + uuid.NewString() + `"`
		}
		jsonData := `{"title":"Renamed","members":[` + strings.Join(ids, ",") + `]}`
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var req dto.UpdateBoardRequest
			_ = json.NewDecoder(strings.NewReader(jsonData)).Decode(&req)
			_ = req.Input()
		}
	})
}

// BenchmarkRequestValidation benchmarks request validation
func BenchmarkRequestValidation(b *testing.B) {
	b.Run("RegisterRequestValid", func(b *testing.B) {
		req := dto.RegisterRequest{
			Fullname:         "Test User",
			Email:            "user@example.com",
			Password:         "securepassword123",
			RepeatedPassword: "securepassword123",
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = req.Validate()
		}
	})

	b.Run("CreateTaskRequestInvalid", func(b *testing.B) {
		req := dto.CreateTaskRequest{Title: strings.Repeat("x", 300)}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = req.Validate()
		}
	})
}

// BenchmarkWriteJSON benchmarks the writeJSON helper function
func BenchmarkWriteJSON(b *testing.B) {
	b.Run("SmallResponse", func(b *testing.B) {
		resp := dto.SuccessResponse{Message: "OK"}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w := httptest.NewRecorder()
			writeJSON(w, http.StatusOK, resp)
		}
	})

	b.Run("LargeResponse", func(b *testing.B) {
		board := benchBoard(50)
		resp := dto.NewTaskResponses(board.Tasks)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w := httptest.NewRecorder()
			writeJSON(w, http.StatusOK, resp)
		}
	})
}
