package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenfield-library/lending-system/internal/core/domain"
	"github.com/greenfield-library/lending-system/internal/core/ports"
)

// AuthService implements registration and login. It issues the JWT the rest
// of the system uses to resolve (callerID, callerRole).
type AuthService struct {
	users     ports.UserRepository
	events    ports.EventSink
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users ports.UserRepository, events ports.EventSink, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, events: events, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates a user keyed by email. Role is fixed at creation and
// never changes afterwards.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}
	if role != domain.RoleAdmin && role != domain.RoleStudent {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.events.Emit(ports.Event{
		Kind:    ports.EventUserRegistered,
		Subject: "New Registration",
		Message: fmt.Sprintf("New %s: %s (%s)", role, name, email),
		Key:     email,
		At:      time.Now().UTC(),
	})

	return created, nil
}

// Login verifies credentials and returns a signed token plus the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	s.events.Emit(ports.Event{
		Kind:    ports.EventUserLogin,
		Subject: "Login",
		Message: fmt.Sprintf("%s logged in", user.Name),
		Key:     user.Email,
		At:      time.Now().UTC(),
	})

	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
