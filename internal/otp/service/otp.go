package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	otperrors "gatepass/internal/otp/errors"
	"gatepass/internal/otp/repository"
	"gatepass/pkg/config"
	apperrors "gatepass/pkg/errors"
	"gatepass/pkg/metrics"
	"gatepass/pkg/model"
	"gatepass/pkg/sanitizer"
	"gatepass/pkg/validation"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const CodeLength = 6

type OTPService interface {
	Send(ctx context.Context, req *model.OTPSendRequest) (*model.OTPSendResponse, error)
	Verify(ctx context.Context, req *model.OTPVerifyRequest) (*model.OTPVerifyResponse, error)
}

type VerificationIssuer interface {
	IssueVerificationToken(phone string, ttl time.Duration) (string, time.Time, error)
}

type otpService struct {
	repo       repository.OTPCodeRepository
	dispatcher Dispatcher
	issuer     VerificationIssuer
	validator  *validation.Validator
	phones     *sanitizer.PhoneNormalizer
	metrics    *metrics.Metrics
	cfg        *config.Config
	now        func() time.Time
	newCode    func() (string, error)
	hashCost   int
}

func NewOTPService(
	repo repository.OTPCodeRepository,
	dispatcher Dispatcher,
	issuer VerificationIssuer,
	m *metrics.Metrics,
	cfg *config.Config,
) OTPService {
	return &otpService{
		repo:       repo,
		dispatcher: dispatcher,
		issuer:     issuer,
		validator:  validation.New(),
		phones:     sanitizer.NewPhoneNormalizer(cfg.PhoneRegions),
		metrics:    m,
		cfg:        cfg,
		now:        time.Now,
		newCode:    GenerateCode,
		hashCost:   bcrypt.DefaultCost,
	}
}

// Send issues a fresh code for the phone, replacing any earlier one. A code
// supplied by the client is ignored.
func (s *otpService) Send(ctx context.Context, req *model.OTPSendRequest) (*model.OTPSendResponse, error) {
	log := s.cfg.Log.FromContext(ctx)

	phone := s.phones.Normalize(req.PhoneNumber)
	if phone == "" {
		return nil, apperrors.Validation("Invalid phone number", map[string]any{
			"phoneNumber": "must be a valid phone number",
		})
	}

	code, err := s.newCode()
	if err != nil {
		return nil, apperrors.Internal("Failed to generate verification code", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to generate verification code", err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	record := &model.OTPCode{
		Phone:     phone,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(s.cfg.OTPTTL),
		CreatedAt: now,
	}
	if err := s.repo.Replace(ctx, record); err != nil {
		log.Error("Failed to store one-time code", "phone", phone, "error", err)
		return nil, apperrors.Internal("Failed to issue verification code", err)
	}

	if err := s.dispatcher.Dispatch(ctx, model.OTPRequested{
		Phone:     phone,
		Code:      code,
		ExpiresAt: record.ExpiresAt,
	}); err != nil {
		log.Error("Failed to dispatch one-time code", "phone", phone, "dispatcher", s.dispatcher.Name(), "error", err)
		return nil, apperrors.Unavailable("SMS delivery").WithCause(err)
	}

	s.metrics.OTPIssued()
	log.Info("One-time code issued", "phone", phone, "expires_at", record.ExpiresAt, "dispatcher", s.dispatcher.Name())

	return &model.OTPSendResponse{
		Message:   "Verification code sent",
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (s *otpService) Verify(ctx context.Context, req *model.OTPVerifyRequest) (*model.OTPVerifyResponse, error) {
	log := s.cfg.Log.FromContext(ctx)

	req.Code = sanitizer.TrimAndNormalize(req.Code)
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.AppError("Verification request validation failed", err)
	}
	phone := s.phones.Normalize(req.PhoneNumber)
	if phone == "" {
		return nil, apperrors.Validation("Invalid phone number", map[string]any{
			"phoneNumber": "must be a valid phone number",
		})
	}

	record, err := s.repo.ConsumeAttempt(ctx, phone, s.now().UTC(), s.cfg.OTPMaxAttempts)
	if err != nil {
		switch {
		case errors.Is(err, otperrors.ErrTooManyAttempts):
			s.metrics.OTPVerification("locked")
			log.Warn("One-time code locked after too many attempts", "phone", phone)
			return nil, apperrors.TooManyRequests("Too many attempts, request a new code")
		case errors.Is(err, otperrors.ErrNotFound):
			s.metrics.OTPVerification("expired")
			return nil, apperrors.Unauthorized("Invalid or expired code")
		}
		log.Error("Failed to verify one-time code", "phone", phone, "error", err)
		return nil, apperrors.Internal("Failed to verify code", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(req.Code)); err != nil {
		s.metrics.OTPVerification("mismatch")
		log.Info("One-time code mismatch", "phone", phone, "attempts", record.Attempts)
		return nil, apperrors.Unauthorized("Invalid or expired code").WithCause(otperrors.ErrInvalidCode)
	}

	if err := s.repo.Delete(ctx, phone); err != nil {
		log.Error("Failed to delete used one-time code", "phone", phone, "error", err)
		return nil, apperrors.Internal("Failed to verify code", err)
	}

	token, expiresAt, err := s.issuer.IssueVerificationToken(phone, s.cfg.OTPTokenTTL)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue verification token", err)
	}

	s.metrics.OTPVerification("ok")
	log.Info("Phone number verified", "phone", phone)
	return &model.OTPVerifyResponse{
		VerificationToken: token,
		ExpiresAt:         expiresAt,
	}, nil
}

// GenerateCode returns CodeLength random decimal digits.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
