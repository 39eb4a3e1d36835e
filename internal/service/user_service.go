package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"clearplot/internal/cache"
	"clearplot/internal/domain"
	"clearplot/internal/repository"
)

var (
	// ErrUserAlreadyExists is returned when attempting to register with an existing email.
	ErrUserAlreadyExists = errors.New("User already exists")
	// ErrUserNotFound is returned when no account matches the email or id.
	ErrUserNotFound = errors.New("User not found")
	// ErrInvalidPassword indicates the password does not match the stored hash.
	ErrInvalidPassword = errors.New("Invalid password")
)

// TokenIssuer mints session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Cache is the read-through cache used by the services. Implementations must
// treat failures as misses.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, v any)
	Delete(ctx context.Context, keys ...string)
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetPublic(ctx context.Context, id string) (*domain.User, error)
	UpdateName(ctx context.Context, id, name string) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	cache  Cache
}

func NewUserService(users repository.UserRepository, tokens TokenIssuer, c Cache) UserService {
	return &userService{
		users:  users,
		tokens: tokens,
		cache:  cacheOrNoop(c),
	}
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if email == "" {
		return nil, domain.NewValidationError("email", "is required")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "is required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent registration can win between the lookup and the insert
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", domain.NewValidationError("email", "is required")
	}
	if password == "" {
		return "", domain.NewValidationError("password", "is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *userService) GetPublic(ctx context.Context, id string) (*domain.User, error) {
	var cached domain.User
	if s.cache.GetJSON(ctx, cache.UserKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	public := sanitizeUser(user)
	s.cache.SetJSON(ctx, cache.UserKey(id), public)
	return public, nil
}

func (s *userService) UpdateName(ctx context.Context, id, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	user, err := s.users.UpdateName(ctx, id, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.cache.Delete(ctx, cache.UserKey(id))
	return sanitizeUser(user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
