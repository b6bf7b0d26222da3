package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/concerts/internal/auth"
	"github.com/Shivanand-hulikatti/concerts/internal/form"
	"github.com/Shivanand-hulikatti/concerts/internal/model"
)

// AccountService registers users, logs them in and resolves sessions.
type AccountService struct {
	users    UserStore
	sessions *auth.Sessions
}

// NewAccountService constructs an AccountService with its dependencies.
func NewAccountService(users UserStore, sessions *auth.Sessions) *AccountService {
	return &AccountService{users: users, sessions: sessions}
}

// Register creates an account. It returns model.ErrUserExists when the
// username or email is taken. The new user is not logged in.
func (s *AccountService) Register(ctx context.Context, f form.Register) (*model.User, error) {
	hash, err := auth.HashPassword(f.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     f.Username,
		Email:        strings.ToLower(f.Email),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, model.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logrus.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// Login checks the credentials and returns a session token for the user.
func (s *AccountService) Login(ctx context.Context, f form.Login) (string, *model.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(f.Email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", nil, model.ErrIncorrectEmail
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, f.Password) {
		return "", nil, model.ErrIncorrectPassword
	}

	token, err := s.sessions.Issue(u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// User resolves a session token to its user. Invalid tokens and tokens of
// deleted users yield auth.ErrInvalidSession.
func (s *AccountService) User(ctx context.Context, token string) (*model.User, error) {
	id, err := s.sessions.Parse(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, auth.ErrInvalidSession
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return u, nil
}
