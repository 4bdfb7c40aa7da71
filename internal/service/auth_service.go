package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/panel-dashboard/internal/auth"
	"github.com/spec-kit/panel-dashboard/internal/config"
	"github.com/spec-kit/panel-dashboard/internal/domain"
	"github.com/spec-kit/panel-dashboard/internal/repository"
	apperrors "github.com/spec-kit/panel-dashboard/pkg/util/errorutil"
)

const panelEmailDomain = "cyberpanel.local"

// AuthService coordinates login, logout and account creation.
//
// Two kinds of accounts can sign in: the panel administrator, whose
// credentials live in the panel configuration, and local accounts stored
// with a bcrypt hash. The panel administrator gets a local ADMIN row on first
// login so that sessions and activities always point at a user id.
type AuthService struct {
	users       repository.UserRepository
	tokens      *auth.TokenManager
	revocations auth.RevocationStore
	directory   UserDirectory
	panelConfig func() config.PanelConfig
	bcryptCost  int
	logger      *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	Tokens      *auth.TokenManager
	Revocations auth.RevocationStore
	Directory   UserDirectory
	PanelConfig func() config.PanelConfig
	BcryptCost  int
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	panelConfig := deps.PanelConfig
	if panelConfig == nil {
		panelConfig = config.LoadPanel
	}
	return &AuthService{
		users:       deps.UserRepo,
		tokens:      deps.Tokens,
		revocations: deps.Revocations,
		directory:   deps.Directory,
		panelConfig: panelConfig,
		bcryptCost:  deps.BcryptCost,
		logger:      logger,
	}
}

// LoginResult is an issued session.
type LoginResult struct {
	Token   string
	Session domain.Session
	User    *domain.User
}

// Login authenticates by username or email and issues a session token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}

	if cfg := s.panelConfig(); s.isPanelAdmin(cfg, identifier, password) {
		user, err := s.ensurePanelAdmin(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s.issue(user, cfg.Username)
	}

	user, err := s.verifyLocal(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user, usernameFor(user))
}

// CheckCredentials validates credentials without issuing a session.
func (s *AuthService) CheckCredentials(ctx context.Context, identifier, password string) error {
	if s.isPanelAdmin(s.panelConfig(), strings.TrimSpace(identifier), password) {
		return nil
	}
	_, err := s.verifyLocal(ctx, strings.TrimSpace(identifier), password)
	return err
}

// Logout revokes the session until its token would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if s.revocations == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, sessionID, expiresAt); err != nil {
		return apperrors.NewDomainError("SESSION_STORE_UNAVAILABLE", "could not revoke session", http.StatusServiceUnavailable, nil)
	}
	return nil
}

// CreateUserInput describes a new local account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// CreateUser registers a local account.
func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Profile is the caller's identity plus the panel websites attributed to it.
type Profile struct {
	UserID   string
	Username string
	Email    string
	Role     domain.Role
	Websites []string
}

func (s *AuthService) Profile(ctx context.Context, principal *auth.Principal) Profile {
	websites := []string{}
	if s.directory != nil {
		websites = s.directory.GetUserWebsites(ctx, principal.Username)
	}
	return Profile{
		UserID:   principal.UserID,
		Username: principal.Username,
		Email:    principal.Email,
		Role:     principal.Role,
		Websites: websites,
	}
}

func (s *AuthService) isPanelAdmin(cfg config.PanelConfig, identifier, password string) bool {
	if cfg.Username == "" {
		return false
	}
	if identifier != cfg.Username && !strings.EqualFold(identifier, cfg.AdminEmail) {
		return false
	}
	return auth.SecretEqual(cfg.Password, password)
}

func (s *AuthService) ensurePanelAdmin(ctx context.Context, cfg config.PanelConfig) (*domain.User, error) {
	email := cfg.Username + "@" + panelEmailDomain
	if s.directory != nil {
		if cached, ok := s.directory.GetUser(ctx, cfg.Username); ok && cached.Email != "" {
			email = cached.Email
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if user.Role != domain.RoleAdmin {
			user.Role = domain.RoleAdmin
			if err := s.users.Update(ctx, user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	user = &domain.User{
		Name:   "Administrator",
		Email:  email,
		Role:   domain.RoleAdmin,
		Status: domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("created local account for panel admin", zap.String("user_id", user.ID))
	return user, nil
}

func (s *AuthService) verifyLocal(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewUnauthorized("account suspended")
	}
	if user.PasswordHash == "" || auth.ComparePassword(user.PasswordHash, password) != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User, username string) (*LoginResult, error) {
	token, session, err := s.tokens.Issue(user, username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Session: session, User: user}, nil
}

// usernameFor derives the panel username of a local account: its name when
// set, otherwise the local part of its email.
func usernameFor(user *domain.User) string {
	if name := strings.TrimSpace(user.Name); name != "" && !strings.Contains(name, " ") {
		return name
	}
	if at := strings.Index(user.Email, "@"); at > 0 {
		return user.Email[:at]
	}
	return user.Email
}
