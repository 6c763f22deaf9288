package service

import (
	"context"
	"errors"
	autherrors "gatepass/internal/auth/errors"
	"gatepass/internal/auth/repository"
	"gatepass/pkg/config"
	apperrors "gatepass/pkg/errors"
	"gatepass/pkg/model"
	"gatepass/pkg/sanitizer"
	"gatepass/pkg/validation"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password"

type AuthService interface {
	Register(ctx context.Context, reg *model.UserRegistration) (*model.AuthResponse, error)
	Login(ctx context.Context, creds *model.Credentials) (*model.AuthResponse, error)
}

type TokenIssuer interface {
	IssueAuthToken(userID, email, name string, ttl time.Duration) (string, time.Time, error)
}

type authService struct {
	repo      repository.UserRepository
	issuer    TokenIssuer
	validator *validation.Validator
	cfg       *config.Config
	now       func() time.Time
	hashCost  int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(repo repository.UserRepository, issuer TokenIssuer, cfg *config.Config) AuthService {
	return &authService{
		repo:      repo,
		issuer:    issuer,
		validator: validation.New(),
		cfg:       cfg,
		now:       time.Now,
		hashCost:  bcrypt.DefaultCost,
	}
}

func (s *authService) Register(ctx context.Context, reg *model.UserRegistration) (*model.AuthResponse, error) {
	log := s.cfg.Log.FromContext(ctx)

	reg.Name = sanitizer.NormalizeName(reg.Name)
	reg.Email = sanitizer.NormalizeEmail(reg.Email)
	if err := s.validator.Struct(reg); err != nil {
		log.Warn("User registration validation failed", "email", reg.Email, "error", err)
		return nil, validation.AppError("User registration validation failed", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.hashCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to register user", err)
	}

	user := &model.User{
		Name:         reg.Name,
		Email:        reg.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, autherrors.ErrEmailTaken) {
			return nil, apperrors.Conflict("User already exists")
		}
		log.Error("Failed to create user", "email", reg.Email, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	log.Info("User registered", "user_id", user.ID, "email", user.Email)
	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, creds *model.Credentials) (*model.AuthResponse, error) {
	log := s.cfg.Log.FromContext(ctx)

	creds.Email = sanitizer.NormalizeEmail(creds.Email)
	if err := s.validator.Struct(creds); err != nil {
		return nil, validation.AppError("Login validation failed", err)
	}

	user, err := s.repo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, autherrors.ErrNotFound) {
			// Spend the same bcrypt time as a real comparison.
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(creds.Password))
			log.Info("Login failed: unknown email", "email", creds.Email)
			return nil, apperrors.Unauthorized(invalidCredentials)
		}
		log.Error("Failed to look up user", "email", creds.Email, "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		log.Info("Login failed: wrong password", "email", creds.Email)
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	log.Info("User logged in", "user_id", user.ID, "email", user.Email)
	return s.respond(user)
}

func (s *authService) respond(user *model.User) (*model.AuthResponse, error) {
	token, _, err := s.issuer.IssueAuthToken(user.ID, user.Email, user.Name, s.cfg.AuthTokenTTL)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}
	return &model.AuthResponse{
		Token: token,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

func (s *authService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("gatepass-unknown-user"), s.hashCost)
	})
	return s.dummyHash
}
