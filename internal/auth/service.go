package auth

import (
	"context"
	"errors"
	"time"

	"booktrack/internal/user"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

const tokenTTL = 24 * time.Hour

type Service struct {
	users  user.Store
	secret string
}

func NewService(users user.Store, secret string) *Service {
	return &Service{users: users, secret: secret}
}

func (s *Service) Register(ctx context.Context, username, email, password string) (user.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return user.User{}, err
	}
	u := user.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (user.User, string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, "", ErrInvalidCredentials
		}
		return user.User{}, "", err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return user.User{}, "", ErrInvalidCredentials
	}
	token, err := GenerateToken(s.secret, u.ID, tokenTTL)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (user.User, error) {
	return s.users.GetByID(ctx, userID)
}
