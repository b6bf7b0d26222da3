package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/concerts/internal/database"
	"github.com/Shivanand-hulikatti/concerts/internal/model"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testPoolErr  error
)

// getPool connects to TEST_DATABASE_URL once per test binary. Tests that need
// Postgres are skipped when the variable is not set.
func getPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testPoolOnce.Do(func() {
		ctx := context.Background()
		testPool, testPoolErr = pgxpool.New(ctx, url)
		if testPoolErr == nil {
			testPoolErr = database.Migrate(ctx, testPool)
		}
	})
	require.NoError(t, testPoolErr)
	return testPool
}

func createUser(t *testing.T, users *UserRepository) *model.User {
	t.Helper()
	suffix := uuid.NewString()
	u := &model.User{
		Username:     "user-" + suffix,
		Email:        suffix + "@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func createEvent(t *testing.T, events *EventRepository, owner string, mutate func(*model.Event)) *model.Event {
	t.Helper()
	e := &model.Event{
		Timestamp:   time.Date(2030, 1, 1, 20, 0, 0, 0, time.UTC),
		Title:       "Title",
		Artist:      "Artist",
		Genre:       "Genre",
		VenueName:   "Hall",
		Status:      model.StatusUpcoming,
		Description: "desc",
		Tickets:     5,
		Price:       10,
		Image:       "/static/images/image-regular.png",
		UserID:      owner,
	}
	if mutate != nil {
		mutate(e)
	}
	require.NoError(t, events.Create(context.Background(), e))
	return e
}

func ids(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestBookCapacity(t *testing.T) {
	pool := getPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	events := NewEventRepository(pool)
	bookings := NewBookingRepository(pool)

	owner := createUser(t, users)
	buyer := createUser(t, users)

	t.Run("over capacity leaves state unchanged", func(t *testing.T) {
		e := createEvent(t, events, owner.ID, nil)
		buyer := createUser(t, users)

		err := bookings.Book(ctx, &model.Booking{EventID: e.ID, UserID: buyer.ID, Tickets: 6})
		assert.ErrorIs(t, err, model.ErrNotEnoughTickets)

		got, err := events.GetByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.Tickets)

		list, err := bookings.ListByUser(ctx, buyer.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("exact capacity sells out", func(t *testing.T) {
		e := createEvent(t, events, owner.ID, nil)
		buyer := createUser(t, users)

		b := &model.Booking{EventID: e.ID, UserID: buyer.ID, Tickets: 5}
		require.NoError(t, bookings.Book(ctx, b))
		assert.Equal(t, 50.0, b.Price)

		got, err := events.GetByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Tickets)
		assert.Equal(t, "booked", got.DisplayStatus())
		assert.Equal(t, model.StatusUpcoming, got.Status)

		list, err := bookings.ListByUser(ctx, buyer.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 5, list[0].Tickets)
	})

	t.Run("concurrent bookings never oversell", func(t *testing.T) {
		e := createEvent(t, events, owner.ID, func(e *model.Event) { e.Tickets = 3 })

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			success int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := bookings.Book(ctx, &model.Booking{EventID: e.ID, UserID: buyer.ID, Tickets: 1}); err == nil {
					mu.Lock()
					success++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 3, success)
		got, err := events.GetByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Tickets)
	})

	t.Run("missing event", func(t *testing.T) {
		err := bookings.Book(ctx, &model.Booking{EventID: uuid.NewString(), UserID: buyer.ID, Tickets: 1})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestSearchIntersection(t *testing.T) {
	pool := getPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	events := NewEventRepository(pool)

	owner := createUser(t, users)
	tag := uuid.NewString()[:8]

	jazz := createEvent(t, events, owner.ID, func(e *model.Event) {
		e.Title = tag + " Jazz Night"
		e.Genre = "jazz"
		e.Timestamp = time.Date(2031, 3, 1, 20, 0, 0, 0, time.UTC)
	})
	rock := createEvent(t, events, owner.ID, func(e *model.Event) {
		e.Title = tag + " Rock Night"
		e.Genre = "rock"
		e.Timestamp = time.Date(2031, 2, 1, 20, 0, 0, 0, time.UTC)
	})
	cancelled := createEvent(t, events, owner.ID, func(e *model.Event) {
		e.Title = tag + " Jazz Brunch"
		e.Genre = "jazz"
		e.Status = model.StatusCancelled
		e.Timestamp = time.Date(2031, 4, 1, 11, 0, 0, 0, time.UTC)
	})

	all, err := events.Search(ctx, model.EventFilter{Title: tag})
	require.NoError(t, err)
	assert.Equal(t, []string{rock.ID, jazz.ID, cancelled.ID}, ids(all), "ordered by timestamp")

	byGenre, err := events.Search(ctx, model.EventFilter{Title: tag, Genre: "jazz"})
	require.NoError(t, err)
	assert.Equal(t, []string{jazz.ID, cancelled.ID}, ids(byGenre))

	byGenreAndStatus, err := events.Search(ctx, model.EventFilter{Title: tag, Genre: "jazz", Status: "upcoming"})
	require.NoError(t, err)
	assert.Equal(t, []string{jazz.ID}, ids(byGenreAndStatus))

	bound := time.Date(2031, 3, 1, 20, 0, 0, 0, time.UTC)
	inclusive, err := events.Search(ctx, model.EventFilter{Title: tag, After: &bound, Before: &bound})
	require.NoError(t, err)
	assert.Equal(t, []string{jazz.ID}, ids(inclusive), "bounds are inclusive")

	none, err := events.Search(ctx, model.EventFilter{Title: tag, Artist: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteCascades(t *testing.T) {
	pool := getPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	events := NewEventRepository(pool)
	bookings := NewBookingRepository(pool)
	comments := NewCommentRepository(pool)

	owner := createUser(t, users)
	e := createEvent(t, events, owner.ID, nil)

	require.NoError(t, bookings.Book(ctx, &model.Booking{EventID: e.ID, UserID: owner.ID, Tickets: 2}))
	require.NoError(t, comments.Create(ctx, &model.Comment{EventID: e.ID, UserID: owner.ID, Description: "great"}))

	require.NoError(t, events.Delete(ctx, e.ID))

	_, err := events.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	left, err := bookings.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	leftComments, err := comments.ListByEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, leftComments)

	assert.ErrorIs(t, events.Delete(ctx, e.ID), model.ErrNotFound)
}

func TestCreateUserDuplicates(t *testing.T) {
	pool := getPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)

	u := createUser(t, users)

	err := users.Create(ctx, &model.User{Username: u.Username, Email: uuid.NewString() + "@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, model.ErrUserExists)

	err = users.Create(ctx, &model.User{Username: "other-" + uuid.NewString(), Email: u.Email, PasswordHash: "x"})
	assert.ErrorIs(t, err, model.ErrUserExists)

	got, err := users.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	names, err := users.Usernames(ctx, []string{u.ID, "not-a-uuid"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{u.ID: u.Username}, names)
}
