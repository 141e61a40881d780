// Package services implements the storefront's use cases on top of the
// repositories: registration and login, catalog reads, cart mutation,
// profile management and sample data seeding.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/logging"
	"github.com/gogamastore/storefront/internal/server/auth"
	"github.com/gogamastore/storefront/internal/server/models"
	"github.com/gogamastore/storefront/internal/server/repositories/repomanager"
)

// Session is what a successful register or login hands back.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

type Registration struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

type UserService struct {
	repos  repomanager.RepositoryManager
	issuer *auth.Issuer
	logger logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(m repomanager.RepositoryManager, issuer *auth.Issuer, logger logging.Logger) *UserService {
	return &UserService{repos: m, issuer: issuer, logger: logger.With("module", "users")}
}

// Register creates an account and returns a session for it. A taken email
// yields common.ErrEmailTaken, also when two registrations race.
func (s *UserService) Register(ctx context.Context, r Registration) (*Session, error) {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = strings.TrimSpace(r.Phone)

	if err := validateRegistration(r); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(r.Password)
	if err != nil {
		if auth.IsPasswordTooLong(err) {
			return nil, fmt.Errorf("%w: password must be at most 72 bytes", common.ErrValidation)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	user, err := s.repos.Users().Create(ctx, &models.User{
		Email:        r.Email,
		FullName:     r.FullName,
		Phone:        r.Phone,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrEmailTaken
		}
		return nil, unavailable(err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.session(user)
}

// Login checks credentials. An unknown email and a wrong password produce
// the same common.ErrBadCredentials and cost one bcrypt comparison each.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repos.Users().GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.VerifyPassword(password, s.dummy())
			return nil, common.ErrBadCredentials
		}
		return nil, unavailable(err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, common.ErrBadCredentials
	}
	return s.session(user)
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	email, err := s.issuer.Subject(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repos.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownSubject
		}
		return nil, unavailable(err)
	}
	return user, nil
}

func (s *UserService) session(user *models.User) (*Session, error) {
	token, exp, err := s.issuer.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return &Session{AccessToken: token, ExpiresAt: exp, User: user}, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("storefront-timing-equalizer")
	})
	return s.dummyHash
}

func validateRegistration(r Registration) error {
	switch {
	case r.FullName == "":
		return fmt.Errorf("%w: full_name is required", common.ErrValidation)
	case r.Email == "":
		return fmt.Errorf("%w: email is required", common.ErrValidation)
	case r.Password == "":
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return fmt.Errorf("%w: email is not a valid address", common.ErrValidation)
	}
	return nil
}

// unavailable wraps a store failure so callers see common.ErrUnavailable
// while the cause stays inspectable.
func unavailable(err error) error {
	if errors.Is(err, common.ErrVersionConflict) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
}
