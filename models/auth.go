// models/auth.go

package models

import "strings"

// ContactInfo is the login identifier: exactly one of Email or MobileNumber.
type ContactInfo struct {
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	MobileNumber string `json:"mobileNumber,omitempty" validate:"omitempty,e164"`
}

// Value returns the populated contact, email first.
func (c ContactInfo) Value() string {
	if c.Email != "" {
		return c.Email
	}
	return c.MobileNumber
}

// IsEmail reports whether the contact is delivered by email.
func (c ContactInfo) IsEmail() bool { return c.Email != "" }

// ContactFromValue rebuilds a ContactInfo from a stored contact string.
func ContactFromValue(v string) ContactInfo {
	if strings.Contains(v, "@") {
		return ContactInfo{Email: v}
	}
	return ContactInfo{MobileNumber: v}
}

type LoginRequest struct {
	ContactInfo
}

type VerifyRequest struct {
	UUIDToken string `json:"uuidToken" validate:"required,uuid4"`
	OTP       string `json:"otp" validate:"required,otp6"`
}

type ResendRequest struct {
	UUIDToken string `json:"uuidToken" validate:"required,uuid4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type RegisterRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobileNumber" validate:"required,e164"`
	Address      string `json:"address,omitempty" validate:"omitempty,max=255"`
	Pincode      string `json:"pincode,omitempty" validate:"omitempty,numeric,min=4,max=10"`
}

// LoginResponse is the payload of a successful login.
type LoginResponse struct {
	User      *User  `json:"user"`
	UUIDToken string `json:"uuidToken"`
}

// TokenResponse is the payload of verify, refresh and federated login.
type TokenResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
