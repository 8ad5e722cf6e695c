package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"subaacare-server/internal/models"
	"subaacare-server/internal/sessions"
	"subaacare-server/internal/store"
	"subaacare-server/internal/utils"
)

const minPasswordLength = 6

var validate = validator.New()

// RegisterInput carries a sign-up request. Profile fields are read only for
// PROFESSIONAL registrations.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Profile  ProfileInput
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	User      models.UserSanitized `json:"user"`
	Profile   *models.Profile      `json:"profile,omitempty"`
}

// Account is the current user with their profile, if any.
type Account struct {
	User    models.UserSanitized `json:"user"`
	Profile *models.Profile      `json:"profile,omitempty"`
}

// AuthService registers users and issues and verifies session tokens.
type AuthService struct {
	repo     store.Repository
	tokens   *utils.TokenManager
	denylist sessions.Denylist
	log      *zap.Logger
}

func NewAuthService(repo store.Repository, tokens *utils.TokenManager, denylist sessions.Denylist, log *zap.Logger) *AuthService {
	if denylist == nil {
		denylist = sessions.Noop{}
	}
	return &AuthService{repo: repo, tokens: tokens, denylist: denylist, log: log}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := models.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, ValidationError("name, email and password are required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, ValidationError("email is not a valid address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, ValidationError("password must be at least %d characters", minPasswordLength)
	}

	role := models.RolePatient
	if strings.TrimSpace(in.Role) != "" {
		r, ok := models.ParseRole(in.Role)
		if !ok {
			return nil, ValidationError("role must be PATIENT or PROFESSIONAL")
		}
		role = r
	}
	if role == models.RoleAdmin {
		return nil, ValidationError("admin accounts cannot be registered")
	}

	var profile *models.Profile
	if role == models.RoleProfessional {
		p, err := in.Profile.build()
		if err != nil {
			return nil, err
		}
		profile = p
	}

	if _, err := s.repo.UserByEmail(ctx, email); err == nil {
		return nil, ConflictError("an account with this email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, InternalError("lookup user by email", err)
	}

	user := &models.User{Name: name, Email: email, Role: role}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, InternalError("hash password", err)
	}
	if err := s.repo.CreateUser(ctx, user, profile); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ConflictError("an account with this email already exists")
		}
		return nil, InternalError("create user", err)
	}
	s.log.Info("user registered", zap.String("userID", user.ID), zap.String("role", string(role)))

	return s.issue(user, profile)
}

// Login answers unknown emails and wrong passwords identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ValidationError("email and password are required")
	}

	user, err := s.repo.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, AuthError("invalid email or password")
	}
	if err != nil {
		return nil, InternalError("lookup user by email", err)
	}
	if !user.CheckPassword(password) {
		return nil, AuthError("invalid email or password")
	}

	profile, err := s.profileOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issue(user, profile)
}

// VerifySession turns a bearer token into a Caller.
func (s *AuthService) VerifySession(ctx context.Context, token string) (Caller, error) {
	if strings.TrimSpace(token) == "" {
		return Caller{}, AuthError("authentication required")
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return Caller{}, AuthError("invalid or expired token")
	}

	denied, err := s.denylist.IsDenied(ctx, claims.ID)
	if err != nil {
		return Caller{}, InternalError("check session denylist", err)
	}
	if denied {
		return Caller{}, AuthError("session has been revoked")
	}

	return Caller{
		UserID:    claims.UserID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *AuthService) Me(ctx context.Context, caller Caller) (*Account, error) {
	user, err := s.repo.UserByID(ctx, caller.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError("user not found")
	}
	if err != nil {
		return nil, InternalError("load user", err)
	}
	profile, err := s.profileOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Account{User: user.Sanitize(), Profile: profile}, nil
}

// Logout revokes the caller's token when a denylist is configured.
func (s *AuthService) Logout(ctx context.Context, caller Caller) error {
	if caller.TokenID == "" {
		return AuthError("authentication required")
	}
	if err := s.denylist.Deny(ctx, caller.TokenID, caller.ExpiresAt); err != nil {
		return InternalError("deny session", err)
	}
	return nil
}

// CreateAdmin provisions an administrator. It reports created=false without
// error when the email is already taken by an admin.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (user *models.User, created bool, err error) {
	name = strings.TrimSpace(name)
	email = models.NormalizeEmail(email)
	if name == "" || email == "" {
		return nil, false, ValidationError("name and email are required")
	}
	if len(password) < minPasswordLength {
		return nil, false, ValidationError("password must be at least %d characters", minPasswordLength)
	}

	existing, err := s.repo.UserByEmail(ctx, email)
	switch {
	case err == nil && existing.Role == models.RoleAdmin:
		return existing, false, nil
	case err == nil:
		return nil, false, ConflictError("email belongs to a non-admin account")
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, InternalError("lookup user by email", err)
	}

	user = &models.User{Name: name, Email: email, Role: models.RoleAdmin}
	if err := user.SetPassword(password); err != nil {
		return nil, false, InternalError("hash password", err)
	}
	if err := s.repo.CreateUser(ctx, user, nil); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, false, ConflictError("an account with this email already exists")
		}
		return nil, false, InternalError("create admin", err)
	}
	s.log.Info("admin created", zap.String("userID", user.ID))
	return user, true, nil
}

func (s *AuthService) issue(user *models.User, profile *models.Profile) (*AuthResult, error) {
	token, claims, err := s.tokens.Generate(user)
	if err != nil {
		return nil, InternalError("issue token", err)
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user.Sanitize(),
		Profile:   profile,
	}, nil
}

func (s *AuthService) profileOf(ctx context.Context, user *models.User) (*models.Profile, error) {
	if user.Role != models.RoleProfessional {
		return nil, nil
	}
	profile, err := s.repo.ProfileByUserID(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, InternalError("load profile", err)
	}
	return profile, nil
}
