package users

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/auth"
	"github.com/rafidahmed/tinbari-backend/pkg/config"
	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	"github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
	"github.com/rafidahmed/tinbari-backend/pkg/security"
)

// Service authenticates operators and seeds the bootstrap admin.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	EnsureAdmin(ctx context.Context) error
}

// LoginResult carries the minted access token alongside the account.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// CreateUserInput registers a new operator account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     enums.UserRole
}

type service struct {
	repo     Repository
	jwt      config.JWTConfig
	password config.PasswordConfig
	admin    config.AdminConfig
	logg     *logger.Logger
}

// NewService wires the users service.
func NewService(repo Repository, jwt config.JWTConfig, password config.PasswordConfig, admin config.AdminConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, jwt: jwt, password: password, admin: admin, logg: logg}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.New(errors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "looking up user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
	}

	now := time.Now()
	token, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "minting access token")
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "operator logged in")
	return &LoginResult{Token: token, ExpiresAt: now.Add(s.jwt.Expiration()), User: user}, nil
}

func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" {
		return nil, errors.New(errors.CodeValidation, "name and email are required")
	}
	if len(input.Password) < 6 {
		return nil, errors.New(errors.CodeValidation, "password must be at least 6 characters")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleManager
	}
	if !role.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, errors.New(errors.CodeConflict, "an account with this email already exists")
	} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeInternal, err, "checking for existing user")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "hashing password")
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating user")
	}
	return user, nil
}

// EnsureAdmin creates the configured admin account when no users exist yet.
func (s *service) EnsureAdmin(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "counting users")
	}
	if count > 0 {
		return nil
	}

	if _, err := s.CreateUser(ctx, CreateUserInput{
		Name:     s.admin.Name,
		Email:    s.admin.Email,
		Password: s.admin.Password,
		Role:     enums.UserRoleAdmin,
	}); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "email", s.admin.Email), "seeded bootstrap admin account")
	return nil
}
