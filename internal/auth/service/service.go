package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketing_dashboard_backend/internal/auth/password"
	"marketing_dashboard_backend/internal/auth/repository"
	"marketing_dashboard_backend/internal/auth/token"
	"marketing_dashboard_backend/internal/events"
	"marketing_dashboard_backend/platform/apperr"
	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/httpkit"
	"marketing_dashboard_backend/platform/logger"

	"github.com/google/uuid"
)

const refreshTokenBytes = 48

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
	ErrTokenInvalid       = apperr.Unauthorized("token invalid")
	ErrTokenExpired       = apperr.Unauthorized("token expired")
)

// Tokens is the result of a sign-in or refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type Profile struct {
	ID        uuid.UUID
	Email     string
	Role      string
	CreatedAt time.Time
}

type Service struct {
	repo repository.AuthRepository
	cfg  config.AuthServiceConfig
	bus  events.Bus
	log  *logger.Logger
	now  func() time.Time
}

func New(repo repository.AuthRepository, cfg config.AuthServiceConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus, log: log, now: time.Now}
}

// SignIn checks the password, issues a token pair and announces the new
// session so the tenant resolver can seed the active client.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (Tokens, error) {
	email = strings.TrimSpace(email)
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return Tokens{}, err
		}
		s.log.AuthEvent("sign_in", email, false, "unknown email")
		return Tokens{}, ErrInvalidCredentials
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "password mismatch")
		return Tokens{}, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return Tokens{}, err
	}
	s.log.AuthEvent("sign_in", email, true, "")

	s.announce(ctx, events.SessionSignedIn{
		BaseEvent: events.NewBaseEvent(),
		UserID:    user.ID,
		Role:      user.Role,
	})
	return tokens, nil
}

// Refresh rotates the refresh token. The presented token is revoked whether
// or not it is still valid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Tokens{}, ErrTokenInvalid
		}
		return Tokens{}, err
	}
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		return Tokens{}, err
	}
	if s.now().After(expiresAt) {
		return Tokens{}, ErrTokenExpired
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Tokens{}, ErrTokenInvalid
		}
		return Tokens{}, err
	}
	return s.issueTokens(ctx, user)
}

// SignOut revokes the refresh token and announces the end of the session,
// which clears the user's active and remembered client.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	hash := token.HashSHA256(refreshToken)
	userID, _, err := s.repo.GetRefreshToken(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		return err
	}

	s.announce(ctx, events.SessionSignedOut{
		BaseEvent: events.NewBaseEvent(),
		UserID:    userID,
	})
	return nil
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Profile{}, apperr.NotFound("user not found")
		}
		return Profile{}, err
	}
	return toProfile(user), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]Profile, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, toProfile(user))
	}
	return profiles, nil
}

// CreateUser registers a user. Only admins call this; there is no public
// sign-up.
func (s *Service) CreateUser(ctx context.Context, email, plainPassword, role string) (Profile, error) {
	if role != httpkit.RoleAdmin && role != httpkit.RoleMember {
		return Profile{}, apperr.Validation("role must be admin or member")
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return Profile{}, err
	}

	user, err := s.repo.CreateUser(ctx, strings.ToLower(strings.TrimSpace(email)), hash, role)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return Profile{}, apperr.Conflict(err.Error())
		}
		return Profile{}, err
	}
	return toProfile(user), nil
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (Tokens, error) {
	now := s.now()
	accessToken, err := token.SignAccess(user.ID, user.Role, now, s.cfg.GetAccessTokenTTL(), s.cfg.GetJWTAccessSecret())
	if err != nil {
		return Tokens{}, err
	}

	refreshToken, err := token.GenerateRandomToken(refreshTokenBytes)
	if err != nil {
		return Tokens{}, err
	}
	expiresAt := now.Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, token.HashSHA256(refreshToken), expiresAt); err != nil {
		return Tokens{}, err
	}

	return Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// announce waits for session handlers so the next request already sees the
// seeded or cleared client. Handler failures do not fail the sign-in.
func (s *Service) announce(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.log.WithContext(ctx).Error("session handlers failed", "event", event.EventName(), "error", err)
	}
}

func toProfile(user repository.User) Profile {
	return Profile{ID: user.ID, Email: user.Email, Role: user.Role, CreatedAt: user.CreatedAt}
}
