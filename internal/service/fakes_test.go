package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Shivanand-hulikatti/concerts/internal/model"
	"github.com/Shivanand-hulikatti/concerts/internal/storage"
)

// memStore is an in-memory stand-in for the repositories.
type memStore struct {
	mu       sync.Mutex
	seq      int
	users    map[string]model.User
	events   map[string]model.Event
	comments []model.Comment
	bookings []model.Booking
	lastFilt model.EventFilter
	// writeErr, when set, fails event creates and updates.
	writeErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]model.User{},
		events: map[string]model.Event{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return prefix + strconv.Itoa(m.seq)
}

type memEvents struct{ *memStore }

func (m memEvents) Create(_ context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	e.ID = m.nextID("e")
	m.events[e.ID] = *e
	return nil
}

func (m memEvents) Update(_ context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if _, ok := m.events[e.ID]; !ok {
		return model.ErrNotFound
	}
	m.events[e.ID] = *e
	return nil
}

func (m memEvents) GetByID(_ context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &e, nil
}

func (m memEvents) Search(_ context.Context, f model.EventFilter) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilt = f

	var out []model.Event
	for _, e := range m.events {
		if f.Title != "" && !strings.Contains(e.Title, f.Title) {
			continue
		}
		if f.Genre != "" && !strings.Contains(e.Genre, f.Genre) {
			continue
		}
		if f.Status != "" && string(e.Status) != f.Status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m memEvents) ListByUser(_ context.Context, userID string) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Event
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m memEvents) ListByIDs(_ context.Context, ids []string) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Event
	for _, id := range ids {
		if e, ok := m.events[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m memEvents) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return model.ErrNotFound
	}
	delete(m.events, id)

	bookings := m.bookings[:0]
	for _, b := range m.bookings {
		if b.EventID != id {
			bookings = append(bookings, b)
		}
	}
	m.bookings = bookings

	comments := m.comments[:0]
	for _, c := range m.comments {
		if c.EventID != id {
			comments = append(comments, c)
		}
	}
	m.comments = comments
	return nil
}

type memBookings struct{ *memStore }

func (m memBookings) Book(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[b.EventID]
	if !ok {
		return model.ErrNotFound
	}
	if err := e.Reserve(b.Tickets); err != nil {
		return err
	}
	m.events[e.ID] = e

	b.ID = m.nextID("b")
	b.Price = float64(b.Tickets) * e.Price
	m.bookings = append(m.bookings, *b)
	return nil
}

func (m memBookings) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type memComments struct{ *memStore }

func (m memComments) Create(_ context.Context, c *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID("c")
	m.comments = append(m.comments, *c)
	return nil
}

func (m memComments) ListByEvent(_ context.Context, eventID string) ([]model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Comment
	for _, c := range m.comments {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return model.ErrUserExists
		}
	}
	u.ID = m.nextID("u")
	m.users[u.ID] = *u
	return nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &u, nil
}

func (m memUsers) Usernames(_ context.Context, ids []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := map[string]string{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			names[id] = u.Username
		}
	}
	return names, nil
}

type memImages struct {
	staged    []string
	committed []string
	discarded []string
	commitErr error
}

func (m *memImages) Stage(u storage.Upload) (*storage.Staged, error) {
	name := storage.SecureFilename(u.Filename)
	if name == "" {
		return nil, storage.ErrInvalidFilename
	}
	m.staged = append(m.staged, name)
	return &storage.Staged{Path: "/static/images/" + name}, nil
}

func (m *memImages) Commit(st *storage.Staged) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = append(m.committed, st.Path)
	return nil
}

func (m *memImages) Discard(st *storage.Staged) error {
	m.discarded = append(m.discarded, st.Path)
	return nil
}
