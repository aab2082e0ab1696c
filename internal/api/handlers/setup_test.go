package handlers_test

import (
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/kanmind/internal/access"
	"github.com/hugh/kanmind/internal/api/handlers"
	"github.com/hugh/kanmind/internal/api/middleware"
	"github.com/hugh/kanmind/internal/auth"
	"github.com/hugh/kanmind/internal/boards"
	"github.com/hugh/kanmind/internal/comments"
	"github.com/hugh/kanmind/internal/tasks"
	"github.com/hugh/kanmind/internal/testutil"
)

func setupTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)
	log := testutil.Logger()

	authz := access.NewAuthorizer()
	authHandler := handlers.NewAuthHandler(auth.NewService(tc.DB, tc.Tokens, log), tc.Tokens, log)
	boardHandler := handlers.NewBoardHandler(boards.NewStore(tc.DB, authz, log), log)
	taskHandler := handlers.NewTaskHandler(tasks.NewStore(tc.DB, authz, log), log)
	commentHandler := handlers.NewCommentHandler(comments.NewStore(tc.DB, authz, log), log)

	r := chi.NewRouter()
	r.Post("/api/registration", authHandler.Register)
	r.Post("/api/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.Tokens))

		r.Get("/api/email-check", authHandler.EmailCheck)
		r.Get("/api/me", authHandler.Me)
		r.Delete("/api/me", authHandler.DeleteMe)

		r.Get("/api/boards", boardHandler.List)
		r.Post("/api/boards", boardHandler.Create)
		r.Get("/api/boards/{id}", boardHandler.Get)
		r.Patch("/api/boards/{id}", boardHandler.Update)
		r.Delete("/api/boards/{id}", boardHandler.Delete)

		r.Post("/api/tasks", taskHandler.Create)
		r.Get("/api/tasks/assigned-to-me", taskHandler.AssignedToMe)
		r.Get("/api/tasks/reviewing", taskHandler.Reviewing)
		r.Patch("/api/tasks/{id}", taskHandler.Update)
		r.Delete("/api/tasks/{id}", taskHandler.Delete)

		r.Get("/api/tasks/{id}/comments", commentHandler.List)
		r.Post("/api/tasks/{id}/comments", commentHandler.Create)
		r.Delete("/api/tasks/{id}/comments/{commentID}", commentHandler.Delete)
	})

	return r, tc
}
