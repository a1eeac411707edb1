package ports

import (
	"context"

	"github.com/greenfield-library/lending-system/internal/core/domain"
)

// AuthService implements the registration/login boundary. The rest of the
// core only ever sees the resolved (callerID, callerRole) identity.
type AuthService interface {
	Register(ctx context.Context, name, email, password, role string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
