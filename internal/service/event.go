package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/concerts/internal/form"
	"github.com/Shivanand-hulikatti/concerts/internal/model"
	"github.com/Shivanand-hulikatti/concerts/internal/storage"
	"github.com/Shivanand-hulikatti/concerts/internal/view"
)

// EventOptions carries the settings EventService needs from config.
type EventOptions struct {
	DefaultImage string
	// SearchLimit caps search results; 0 means no cap.
	SearchLimit int
}

// EventService orchestrates event-related business operations.
type EventService struct {
	events   EventStore
	comments CommentStore
	users    UserStore
	images   ImageStore
	opts     EventOptions
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, comments CommentStore, users UserStore, images ImageStore, opts EventOptions) *EventService {
	return &EventService{events: events, comments: comments, users: users, images: images, opts: opts}
}

// Search returns the events matching every criterion in f, earliest first.
func (s *EventService) Search(ctx context.Context, f model.EventFilter) ([]view.Event, error) {
	f.Limit = s.opts.SearchLimit
	events, err := s.events.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return view.NewEvents(events), nil
}

// Detail returns an event with its comments, each carrying the author's name.
func (s *EventService) Detail(ctx context.Context, id string) (*view.EventDetail, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	authors := make([]string, 0, len(comments))
	for _, c := range comments {
		authors = append(authors, c.UserID)
	}
	names, err := s.users.Usernames(ctx, uniq(authors))
	if err != nil {
		return nil, fmt.Errorf("load comment authors: %w", err)
	}

	return &view.EventDetail{
		Event:    view.NewEvent(*event),
		Comments: view.NewComments(comments, names),
	}, nil
}

// ListOwned returns the events created by userID.
func (s *EventService) ListOwned(ctx context.Context, userID string) ([]view.Event, error) {
	events, err := s.events.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned events: %w", err)
	}
	return view.NewEvents(events), nil
}

// SaveResult describes what Save did.
type SaveResult struct {
	Event   *model.Event
	Created bool
	// DefaultImage is set when a new event got the placeholder image because
	// nothing was uploaded.
	DefaultImage bool
}

// Save updates the event named by f.EventID, or creates a new one when the
// id is empty or unknown. The submitting user becomes the owner.
//
// The image is the new upload when one is given, otherwise the event's
// current image, otherwise the default image.
func (s *EventService) Save(ctx context.Context, userID string, f form.Event, upload *storage.Upload) (*SaveResult, error) {
	var existing *model.Event
	if f.EventID != "" {
		e, err := s.events.GetByID(ctx, f.EventID)
		switch {
		case err == nil:
			existing = e
		case !errors.Is(err, model.ErrNotFound):
			return nil, fmt.Errorf("load event: %w", err)
		}
	}

	res := &SaveResult{Created: existing == nil}

	ev := existing
	if ev == nil {
		ev = &model.Event{}
	}
	f.Apply(ev)
	ev.UserID = userID

	var staged *storage.Staged
	switch {
	case upload != nil:
		st, err := s.images.Stage(*upload)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		staged = st
		ev.Image = st.Path
	case existing != nil:
		// keep the current image
	default:
		ev.Image = s.opts.DefaultImage
		res.DefaultImage = true
	}

	if err := s.store(ctx, ev, res.Created); err != nil {
		if staged != nil {
			s.discard(staged)
		}
		return nil, err
	}
	if staged != nil {
		if err := s.images.Commit(staged); err != nil {
			s.discard(staged)
			return nil, fmt.Errorf("save image: %w", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"event_id": ev.ID,
		"user_id":  userID,
		"created":  res.Created,
	}).Info("event saved")

	res.Event = ev
	return res, nil
}

func (s *EventService) store(ctx context.Context, ev *model.Event, create bool) error {
	if create {
		if err := s.events.Create(ctx, ev); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		return nil
	}
	if err := s.events.Update(ctx, ev); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (s *EventService) discard(st *storage.Staged) {
	if err := s.images.Discard(st); err != nil {
		logrus.WithError(err).WithField("image", st.Path).Warn("could not remove staged image")
	}
}

// Delete removes an event with its bookings and comments. Only the owner may
// delete it.
func (s *EventService) Delete(ctx context.Context, userID, id string) error {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.UserID != userID {
		return model.ErrForbidden
	}

	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}

	logrus.WithFields(logrus.Fields{"event_id": id, "user_id": userID}).Info("event deleted")
	return nil
}
