package comments_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/access"
	"github.com/hugh/kanmind/internal/apperr"
	"github.com/hugh/kanmind/internal/comments"
	"github.com/hugh/kanmind/internal/database/models"
	"github.com/hugh/kanmind/internal/testutil"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type countingCounter struct {
	mu sync.Mutex
	n  int
}

func (c *countingCounter) Inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func commentsCount(t *testing.T, db *gorm.DB, taskID uuid.UUID) int {
	t.Helper()
	var task models.Task
	require.NoError(t, db.First(&task, "id = ?", taskID).Error)
	return task.CommentsCount
}

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	created, deleted := &countingCounter{}, &countingCounter{}
	store := comments.NewStore(db, access.NewAuthorizer(), testutil.Logger()).WithCounters(created, deleted)
	ctx := testutil.TestContext(t)

	owner := testutil.CreateTestUser(t, db, "Owner")
	member := testutil.CreateTestUser(t, db, "")
	require.NoError(t, db.Model(member).Update("username", "member42").Error)
	stranger := testutil.CreateTestUser(t, db, "Stranger")
	board := testutil.CreateTestBoard(t, db, owner, "Board", member)
	task := testutil.CreateTestTask(t, db, board, "Task")

	first, err := store.Create(ctx, owner.ID, task.ID, "first")
	require.NoError(t, err)
	require.NotNil(t, first.Author)
	assert.Equal(t, "Owner", first.Author.DisplayName())

	second, err := store.Create(ctx, member.ID, task.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, "member42", second.Author.DisplayName(), "falls back to username")

	assert.Equal(t, 2, commentsCount(t, db, task.ID))
	assert.Equal(t, 2, created.n)

	list, err := store.List(ctx, member.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	t.Run("blank content rejected", func(t *testing.T) {
		_, err := store.Create(ctx, owner.ID, task.ID, "   ")
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "content")
		assert.Equal(t, 2, commentsCount(t, db, task.ID))
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		_, err := store.Create(ctx, stranger.ID, task.ID, "hi")
		assert.ErrorIs(t, err, apperr.ErrForbidden)
		_, err = store.List(ctx, stranger.ID, task.ID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := store.List(ctx, owner.ID, uuid.New())
		assert.ErrorIs(t, err, comments.ErrTaskNotFound)
	})
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	deleted := &countingCounter{}
	store := comments.NewStore(db, access.NewAuthorizer(), testutil.Logger()).WithCounters(nil, deleted)
	ctx := testutil.TestContext(t)

	owner := testutil.CreateTestUser(t, db, "Owner")
	member := testutil.CreateTestUser(t, db, "Member")
	board := testutil.CreateTestBoard(t, db, owner, "Board", member)
	task := testutil.CreateTestTask(t, db, board, "Task")
	otherTask := testutil.CreateTestTask(t, db, board, "Other")
	comment := testutil.CreateTestComment(t, db, task, member, "mine")

	t.Run("comment on another task is not found", func(t *testing.T) {
		err := store.Delete(ctx, member.ID, otherTask.ID, comment.ID)
		assert.ErrorIs(t, err, comments.ErrCommentNotFound)
	})

	t.Run("missing task", func(t *testing.T) {
		err := store.Delete(ctx, member.ID, uuid.New(), comment.ID)
		assert.ErrorIs(t, err, comments.ErrTaskNotFound)
	})

	t.Run("board owner who is not the author is forbidden", func(t *testing.T) {
		err := store.Delete(ctx, owner.ID, task.ID, comment.ID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("author deletes and counter drops", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, member.ID, task.ID, comment.ID))
		assert.Zero(t, commentsCount(t, db, task.ID))
		assert.Equal(t, 1, deleted.n)

		err := store.Delete(ctx, member.ID, task.ID, comment.ID)
		assert.ErrorIs(t, err, comments.ErrCommentNotFound)
		assert.Zero(t, commentsCount(t, db, task.ID))
	})

	t.Run("counter never goes negative", func(t *testing.T) {
		c := testutil.CreateTestComment(t, db, task, member, "drift")
		require.NoError(t, db.Model(&models.Task{}).Where("id = ?", task.ID).UpdateColumn("comments_count", 0).Error)

		require.NoError(t, store.Delete(ctx, member.ID, task.ID, c.ID))
		assert.Zero(t, commentsCount(t, db, task.ID))
	})
}

func TestStore_ConcurrentCreates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := comments.NewStore(db, access.NewAuthorizer(), testutil.Logger())
	ctx := testutil.TestContext(t)

	owner := testutil.CreateTestUser(t, db, "Owner")
	users := []*models.User{owner}
	for i := 0; i < 4; i++ {
		users = append(users, testutil.CreateTestUser(t, db, "Member"))
	}
	board := testutil.CreateTestBoard(t, db, owner, "Board", users[1:]...)
	task := testutil.CreateTestTask(t, db, board, "Hot task")

	const perUser = 5
	var wg sync.WaitGroup
	for _, u := range users {
		for i := 0; i < perUser; i++ {
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				_, err := store.Create(ctx, id, task.ID, "concurrent")
				assert.NoError(t, err)
			}(u.ID)
		}
	}
	wg.Wait()

	assert.Equal(t, len(users)*perUser, commentsCount(t, db, task.ID))
}

func TestStore_ConcurrentCreateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := comments.NewStore(db, access.NewAuthorizer(), testutil.Logger())
	ctx := testutil.TestContext(t)

	owner := testutil.CreateTestUser(t, db, "Owner")
	member := testutil.CreateTestUser(t, db, "Member")
	board := testutil.CreateTestBoard(t, db, owner, "Board", member)
	task := testutil.CreateTestTask(t, db, board, "Busy task")

	const existing, fresh = 10, 15
	ids := make([]uuid.UUID, 0, existing)
	for i := 0; i < existing; i++ {
		c, err := store.Create(ctx, owner.ID, task.ID, "old")
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			assert.NoError(t, store.Delete(ctx, owner.ID, task.ID, id))
		}(id)
	}
	for i := 0; i < fresh; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, member.ID, task.ID, "new")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var live int64
	require.NoError(t, db.Model(&models.TaskComment{}).Where("task_id = ?", task.ID).Count(&live).Error)
	assert.Equal(t, int64(fresh), live)
	assert.Equal(t, fresh, commentsCount(t, db, task.ID))
}

// After N creates and M deletes (M <= N) the counter equals N-M and matches
// the live row count.
func TestProperty_CounterArithmetic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("comments_count tracks creates minus deletes", prop.ForAll(
		func(n, m int) bool {
			if m > n {
				m = n
			}
			db := testutil.SetupTestDB(t)
			store := comments.NewStore(db, access.NewAuthorizer(), testutil.Logger())
			ctx := testutil.TestContext(t)

			owner := testutil.CreateTestUser(t, db, "Owner")
			board := testutil.CreateTestBoard(t, db, owner, "Board")
			task := testutil.CreateTestTask(t, db, board, "Task")

			ids := make([]uuid.UUID, 0, n)
			for i := 0; i < n; i++ {
				c, err := store.Create(ctx, owner.ID, task.ID, "c")
				if err != nil {
					return false
				}
				ids = append(ids, c.ID)
			}
			for i := 0; i < m; i++ {
				if err := store.Delete(ctx, owner.ID, task.ID, ids[i]); err != nil {
					return false
				}
			}

			var live int64
			db.Model(&models.TaskComment{}).Where("task_id = ?", task.ID).Count(&live)
			count := commentsCount(t, db, task.ID)
			return count == n-m && int64(count) == live
		},
		gen.IntRange(0, 12),
		gen.IntRange(0, 12),
	))

	properties.TestingRun(t)
}
