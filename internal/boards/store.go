// Package boards owns boards, their member sets and the per-board task
// aggregates shown in listings.
package boards

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

var ErrBoardNotFound = apperr.NotFound("Board")

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

// WithCreatedCounter counts successful creates.
func (s *Store) WithCreatedCounter(c Counter) *Store {
	s.created = c
	return s
}

type CreateInput struct {
	Title     string
	MemberIDs []uuid.UUID
}

// UpdateInput is a partial update. MembersSet distinguishes an absent
// members field from an empty list. TitleErr and MembersErr carry decode
// problems found before the board was loaded.
type UpdateInput struct {
	Title      *string
	TitleErr   string
	MemberIDs  []uuid.UUID
	MembersSet bool
	MembersErr string
}

// Aggregates are computed per read, never stored.
type Aggregates struct {
	MemberCount        int
	TicketCount        int
	TasksToDoCount     int
	TasksHighPrioCount int
}

type Summary struct {
	Board models.Board
	Aggregates
}

// Create makes actor the owner. Member ids that match no user are dropped.
func (s *Store) Create(ctx context.Context, actor uuid.UUID, input CreateInput) (*models.Board, error) {
	board := models.Board{Title: input.Title, OwnerID: actor}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members, err := usersByID(tx, input.MemberIDs)
		if err != nil {
			return err
		}
		board.Members = members
		return tx.Omit("Members.*").Create(&board).Error
	})
	if err != nil {
		return nil, fmt.Errorf("creating board: %w", err)
	}

	if s.created != nil {
		s.created.Inc()
	}
	s.log.Info("board created", "board_id", board.ID, "owner_id", actor, "members", len(board.Members))
	return &board, nil
}

// ListVisibleTo returns boards the actor owns or is a member of, newest first.
func (s *Store) ListVisibleTo(ctx context.Context, actor uuid.UUID) ([]Summary, error) {
	db := s.db.WithContext(ctx)
	memberOf := db.Model(&models.BoardMember{}).Select("board_id").Where("user_id = ?", actor)

	var boards []models.Board
	if err := db.
		Where("owner_id = ?", actor).
		Or("id IN (?)", memberOf).
		Order("created_at DESC, id DESC").
		Find(&boards).Error; err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}

	ids := make([]uuid.UUID, len(boards))
	for i, b := range boards {
		ids[i] = b.ID
	}
	aggs, err := s.aggregates(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, len(boards))
	for i, b := range boards {
		out[i] = Summary{Board: b, Aggregates: aggs[b.ID]}
	}
	return out, nil
}

// Load fetches a board with its members and owner, without any access check.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	return loadBoard(s.db.WithContext(ctx), id)
}

// Get returns the board with owner, members and tasks (with assignee and
// reviewer) loaded.
func (s *Store) Get(ctx context.Context, actor, id uuid.UUID) (*models.Board, error) {
	board, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Check(actor, access.KindBoard, access.ActionView, board); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Reviewer").
		Where("board_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&board.Tasks).Error; err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	return board, nil
}

// Update checks access before reporting any input problem, applies the
// title, then replaces membership wholesale when members were supplied.
// Every distinct member id must name an existing user; otherwise membership
// is left unchanged.
func (s *Store) Update(ctx context.Context, actor, id uuid.UUID, input UpdateInput) (*models.Board, error) {
	board, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Check(actor, access.KindBoard, access.ActionUpdate, board); err != nil {
		return nil, err
	}

	if input.TitleErr != "" {
		return nil, apperr.Field("title", input.TitleErr)
	}

	db := s.db.WithContext(ctx)
	if input.Title != nil {
		if err := db.Model(&models.Board{}).Where("id = ?", board.ID).Update("title", *input.Title).Error; err != nil {
			return nil, fmt.Errorf("updating title: %w", err)
		}
		board.Title = *input.Title
	}

	if input.MembersErr != "" {
		return nil, apperr.Field("members", input.MembersErr)
	}
	if input.MembersSet {
		distinct := dedupe(input.MemberIDs)
		users, err := usersByID(db, distinct)
		if err != nil {
			return nil, err
		}
		if len(users) != len(distinct) {
			return nil, apperr.Field("members", "one or more member IDs are invalid")
		}
		if err := db.Transaction(func(tx *gorm.DB) error {
			return replaceMembers(tx, board.ID, users)
		}); err != nil {
			return nil, fmt.Errorf("replacing members: %w", err)
		}
		board.Members = users
	}

	return board, nil
}

// Delete removes the board along with its tasks, their comments and the
// membership rows.
func (s *Store) Delete(ctx context.Context, actor, id uuid.UUID) error {
	board, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Check(actor, access.KindBoard, access.ActionDelete, board); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteBoards(tx, []uuid.UUID{id})
	})
	if err != nil {
		return fmt.Errorf("deleting board: %w", err)
	}

	s.log.Info("board deleted", "board_id", id, "actor_id", actor)
	return nil
}

// Aggregates returns the aggregate counters for one board.
func (s *Store) Aggregates(ctx context.Context, id uuid.UUID) (Aggregates, error) {
	aggs, err := s.aggregates(ctx, []uuid.UUID{id})
	if err != nil {
		return Aggregates{}, err
	}
	return aggs[id], nil
}

func (s *Store) aggregates(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Aggregates, error) {
	out := make(map[uuid.UUID]Aggregates, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	db := s.db.WithContext(ctx)

	var members []struct {
		BoardID uuid.UUID
		N       int
	}
	if err := db.Model(&models.BoardMember{}).
		Select("board_id, COUNT(*) AS n").
		Where("board_id IN ?", ids).
		Group("board_id").
		Scan(&members).Error; err != nil {
		return nil, fmt.Errorf("counting members: %w", err)
	}

	var tasks []struct {
		BoardID  uuid.UUID
		Total    int
		ToDo     int
		HighPrio int
	}
	if err := db.Model(&models.Task{}).
		Select(
			"board_id, COUNT(*) AS total, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS to_do, "+
				"SUM(CASE WHEN priority = ? THEN 1 ELSE 0 END) AS high_prio",
			models.TaskStatusToDo, models.TaskPriorityHigh,
		).
		Where("board_id IN ?", ids).
		Group("board_id").
		Scan(&tasks).Error; err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}

	for _, m := range members {
		a := out[m.BoardID]
		a.MemberCount = m.N
		out[m.BoardID] = a
	}
	for _, t := range tasks {
		a := out[t.BoardID]
		a.TicketCount = t.Total
		a.TasksToDoCount = t.ToDo
		a.TasksHighPrioCount = t.HighPrio
		out[t.BoardID] = a
	}
	return out, nil
}

func loadBoard(db *gorm.DB, id uuid.UUID) (*models.Board, error) {
	var board models.Board
	if err := db.Preload("Owner").Preload("Members").First(&board, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}

func usersByID(db *gorm.DB, ids []uuid.UUID) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := db.Where("id IN ?", ids).Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("resolving members: %w", err)
	}
	return users, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
