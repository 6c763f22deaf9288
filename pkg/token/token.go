package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	PurposeAuth              = "auth"
	PurposePhoneVerification = "phone_verification"
)

var (
	ErrExpired        = errors.New("token has expired")
	ErrInvalid        = errors.New("invalid token")
	ErrWrongPurpose   = errors.New("token was issued for a different purpose")
	ErrMissingSubject = errors.New("token subject is required")
)

// AuthClaims are carried by admin session tokens.
type AuthClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// VerificationClaims prove that the subject phone passed OTP verification.
type VerificationClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Service signs and validates HS256 tokens for one issuer.
type Service struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

func NewService(signingKey, issuer string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		now:        time.Now,
	}
}

func (s *Service) registered(subject string, ttl time.Duration) (jwt.RegisteredClaims, time.Time) {
	now := s.now()
	expiresAt := now.Add(ttl)
	return jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    s.issuer,
		ID:        uuid.NewString(),
	}, expiresAt
}

func (s *Service) IssueAuthToken(userID, email, name string, ttl time.Duration) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, ErrMissingSubject
	}
	rc, expiresAt := s.registered(userID, ttl)
	signed, err := s.sign(AuthClaims{
		UserID:           userID,
		Email:            email,
		Name:             name,
		Purpose:          PurposeAuth,
		RegisteredClaims: rc,
	})
	return signed, expiresAt, err
}

func (s *Service) IssueVerificationToken(phone string, ttl time.Duration) (string, time.Time, error) {
	if phone == "" {
		return "", time.Time{}, ErrMissingSubject
	}
	rc, expiresAt := s.registered(phone, ttl)
	signed, err := s.sign(VerificationClaims{
		Purpose:          PurposePhoneVerification,
		RegisteredClaims: rc,
	})
	return signed, expiresAt, err
}

func (s *Service) VerifyAuthToken(raw string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	if err := s.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != PurposeAuth {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// VerifyPhoneToken validates a verification token and returns the phone it was issued for.
func (s *Service) VerifyPhoneToken(raw string) (string, error) {
	claims := &VerificationClaims{}
	if err := s.parse(raw, claims); err != nil {
		return "", err
	}
	if claims.Purpose != PurposePhoneVerification {
		return "", ErrWrongPurpose
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

func (s *Service) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) parse(raw string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrInvalid
	}
	if !parsed.Valid {
		return ErrInvalid
	}
	return nil
}
