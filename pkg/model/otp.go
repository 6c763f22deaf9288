package model

import "time"

// OTPCode is the stored, hashed one-time code for a phone. At most one per phone.
type OTPCode struct {
	ID        string    `bson:"_id,omitempty"`
	Phone     string    `bson:"phone"`
	CodeHash  string    `bson:"code_hash"`
	Attempts  int       `bson:"attempts"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

func (c *OTPCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

type OTPSendRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	// OTP is accepted for compatibility with older clients and ignored.
	OTP string `json:"otp,omitempty"`
}

type OTPSendResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type OTPVerifyRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
}

type OTPVerifyResponse struct {
	VerificationToken string    `json:"verificationToken"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

// OTPRequested is the event payload handed to the SMS notifier.
type OTPRequested struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}
