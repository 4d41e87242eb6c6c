package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dsamate/dsamate/internal/identity/jwt"
	httperrors "github.com/dsamate/dsamate/pkg/http/errors"
)

// Login failure sentinels. The HTTP handler owns the client-facing texts.
var (
	ErrUnknownUser = errors.New("unknown username")
	ErrBadPassword = errors.New("password mismatch")
)

type userStore interface {
	Create(ctx context.Context, user User, roles []string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	RolesFor(ctx context.Context, userID uuid.UUID) ([]string, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}

// Service handles registration and login against the identity store and
// delegates token issuance to the jwt manager.
type Service struct {
	users  userStore
	tokens *jwt.Manager
	logger zerolog.Logger
}

// NewService creates the identity service.
func NewService(users userStore, tokens *jwt.Manager, logger zerolog.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

// Register creates a new account with the requested roles.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	if req.Username == "" {
		return httperrors.NewValidation("username", "username is required")
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return httperrors.NewValidation("password", err.Error())
	}

	user := User{Email: req.Username, PasswordHash: passwordHash}
	created, err := s.users.Create(ctx, user, req.Roles)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID.String()).Str("email", created.Email).Msg("user registered")
	return nil
}

// Login authenticates a user and returns a signed token carrying the user's
// email and roles.
func (s *Service) Login(ctx context.Context, req LoginRequest) (string, error) {
	user, err := s.users.GetByEmail(ctx, req.Username)
	if err != nil {
		if errors.Is(err, httperrors.ErrNotFound) {
			return "", ErrUnknownUser
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return "", ErrBadPassword
	}

	roles, err := s.users.RolesFor(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("load roles: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, roles)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("last login update failed")
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return token, nil
}

// ValidateToken parses a bearer token; used by the auth middleware.
func (s *Service) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokens.Validate(token)
}
