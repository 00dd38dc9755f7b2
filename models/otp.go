package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OtpSession correlates a login attempt with the code sent for it.
type OtpSession struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UUIDToken   string             `json:"uuidToken" bson:"uuidToken"`
	ContactInfo string             `json:"contactInfo" bson:"contactInfo"`
	OTP         string             `json:"-" bson:"otp"`
	// CreatedAt is the issue time. Resend resets it and the TTL index reaps on it.
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Age is the time elapsed since the current code was issued.
func (s *OtpSession) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// ExpiredAt reports whether the session is older than ttl at now.
// A session exactly ttl old is still valid.
func (s *OtpSession) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return s.Age(now) > ttl
}
