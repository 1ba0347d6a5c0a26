package app

import (
	"context"
	"strings"
	"time"

	"bookaway/internal/domain"
)

type UserService struct {
	users    domain.UserRepository
	hasher   domain.PasswordHasher
	issuer   domain.TokenIssuer
	tokenTTL time.Duration
}

func NewUserService(users domain.UserRepository, hasher domain.PasswordHasher, issuer domain.TokenIssuer, tokenTTL time.Duration) *UserService {
	return &UserService{users: users, hasher: hasher, issuer: issuer, tokenTTL: tokenTTL}
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return domain.User{}, "", domain.Validationf("all fields are required")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, "", err
	}
	u := domain.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, &u); err != nil {
		return domain.User{}, "", err
	}
	token, err := s.issuer.Issue(u.ID, s.tokenTTL)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, "", domain.Validationf("all fields are required")
	}
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Absent account and wrong password look identical to the caller.
		return domain.User{}, "", domain.ErrUnauthorized
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return domain.User{}, "", domain.ErrUnauthorized
	}
	token, err := s.issuer.Issue(u.ID, s.tokenTTL)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}
