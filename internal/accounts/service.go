package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"clubhub/internal/rbac"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("accounts: user not found")
	ErrEmailTaken         = errors.New("accounts: email already registered")
	ErrInvalidCredentials = errors.New("accounts: invalid email or password")
	ErrInvalidArgument    = errors.New("accounts: invalid argument")
)

const MinPasswordLength = 8

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
	ByID(ctx context.Context, id string) (User, error)
}

type Service struct {
	repo  Repository
	cost  int
	clock func() time.Time

	// dummyHash is compared against when the email is unknown, so both failure paths
	// cost one bcrypt comparison.
	dummyHash []byte
}

func NewService(repo Repository, cost int) (*Service, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("clubhub-placeholder"), cost)
	if err != nil {
		return nil, fmt.Errorf("accounts: init: %w", err)
	}
	return &Service{repo: repo, cost: cost, clock: time.Now, dummyHash: dummy}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	email := normalizeEmail(reg.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return User{}, fmt.Errorf("%w: email is not valid", ErrInvalidArgument)
	}
	if len(reg.Password) < MinPasswordLength {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidArgument, MinPasswordLength)
	}
	first := strings.TrimSpace(reg.FirstName)
	last := strings.TrimSpace(reg.LastName)
	if first == "" || last == "" {
		return User{}, fmt.Errorf("%w: first and last name are required", ErrInvalidArgument)
	}
	role := reg.Role
	if role == "" {
		role = rbac.RoleStudent
	}
	if !role.Valid() {
		return User{}, fmt.Errorf("%w: unknown user_type %q", ErrInvalidArgument, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("accounts: hash password: %w", err)
	}

	return s.repo.Create(ctx, User{
		Email:        email,
		FirstName:    first,
		LastName:     last,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.clock().UTC(),
	})
}

// Authenticate returns ErrInvalidCredentials for both an unknown email and a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.ByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.ByID(ctx, id)
}
