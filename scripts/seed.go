//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/access"
	"github.com/hugh/kanmind/internal/apperr"
	"github.com/hugh/kanmind/internal/auth"
	"github.com/hugh/kanmind/internal/boards"
	"github.com/hugh/kanmind/internal/comments"
	"github.com/hugh/kanmind/internal/database"
	"github.com/hugh/kanmind/internal/database/models"
	"github.com/hugh/kanmind/internal/tasks"
	"github.com/hugh/kanmind/pkg/config"
	"github.com/hugh/kanmind/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ctx := context.Background()
	tokens := auth.NewTokenIssuer(db, cfg.Token.Secret, logger)
	users := auth.NewService(db, tokens, logger)

	email := os.Getenv("GUEST_EMAIL")
	password := os.Getenv("GUEST_PASSWORD")
	if email == "" {
		email = "guest@kanmind.local"
	}
	if password == "" {
		password = "guest1234"
	}

	if existing, err := users.FindByEmail(ctx, email); err == nil {
		fmt.Printf("Guest user already exists: %s (%s)\n", existing.Email, existing.ID)
		return
	} else if !errors.Is(err, apperr.ErrNotFound) {
		log.Fatalf("failed to look up guest user: %v", err)
	}

	guest, err := users.Register(ctx, auth.RegisterInput{
		Fullname:         "Guest User",
		Email:            email,
		Password:         password,
		RepeatedPassword: password,
	})
	if err != nil {
		log.Fatalf("failed to create guest user: %v", err)
	}

	colleague, err := users.Register(ctx, auth.RegisterInput{
		Fullname:         "Demo Colleague",
		Email:            "colleague-" + uuid.NewString()[:8] + "@kanmind.local",
		Password:         password,
		RepeatedPassword: password,
	})
	if err != nil {
		log.Fatalf("failed to create colleague: %v", err)
	}

	authz := access.NewAuthorizer()
	boardStore := boards.NewStore(db, authz, logger)
	taskStore := tasks.NewStore(db, authz, logger)
	commentStore := comments.NewStore(db, authz, logger)

	board, err := boardStore.Create(ctx, guest.ID, boards.CreateInput{
		Title:     "Demo Board",
		MemberIDs: []uuid.UUID{guest.ID, colleague.ID},
	})
	if err != nil {
		log.Fatalf("failed to create board: %v", err)
	}

	high := models.TaskPriorityHigh
	seeds := []tasks.CreateInput{
		{Title: "Sketch the landing page", Status: models.TaskStatusToDo, Priority: high, AssigneeID: &guest.ID, ReviewerID: &colleague.ID},
		{Title: "Set up CI", Status: models.TaskStatusInProgress, Priority: models.TaskPriorityMedium, AssigneeID: &colleague.ID},
		{Title: "Write onboarding docs", Status: models.TaskStatusReview, Priority: models.TaskPriorityLow, ReviewerID: &guest.ID},
		{Title: "Pick a logo", Status: models.TaskStatusDone, Priority: models.TaskPriorityLow},
	}

	var first *models.Task
	for _, in := range seeds {
		in.BoardID = board.ID
		task, err := taskStore.Create(ctx, guest.ID, in)
		if err != nil {
			log.Fatalf("failed to create task %q: %v", in.Title, err)
		}
		if first == nil {
			first = task
		}
	}

	if _, err := commentStore.Create(ctx, colleague.ID, first.ID, "Happy to review once the first draft is up."); err != nil {
		log.Fatalf("failed to create comment: %v", err)
	}

	token, err := tokens.IssueOrGet(ctx, guest.ID)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	fmt.Printf("Demo data created successfully!\n")
	fmt.Printf("Email: %s\n", guest.Email)
	fmt.Printf("Password: %s\n", password)
	fmt.Printf("Board: %s (%s)\n", board.Title, board.ID)
	fmt.Printf("Token: %s\n", token)
}
