// models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of account roles. It is fixed per identity.
type Role string

const (
	RoleUser    Role = "USER"
	RolePartner Role = "PARTNER"
	RoleAdmin   Role = "ADMIN"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RolePartner, RoleAdmin}

// ParseRole maps a path segment such as "partner" onto a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// User model
type User struct {
	ID           primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email,omitempty" bson:"email,omitempty"`
	MobileNumber string             `json:"mobileNumber,omitempty" bson:"mobileNumber,omitempty"`
	Address      string             `json:"address,omitempty" bson:"address,omitempty"`
	Pincode      string             `json:"pincode,omitempty" bson:"pincode,omitempty"`
	Avatar       string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Role         Role               `json:"role" bson:"role"`
	// RefreshToken holds a hash of the current refresh token, never the token.
	RefreshToken string    `json:"-" bson:"refreshToken,omitempty"`
	IsBlocked    bool      `json:"isBlocked" bson:"isBlocked"`
	IsVerify     bool      `json:"isVerify" bson:"isVerify"`
	GoogleID     string    `json:"googleId,omitempty" bson:"googleId,omitempty"`
	FacebookID   string    `json:"facebookId,omitempty" bson:"facebookId,omitempty"`
	AppleID      string    `json:"appleId,omitempty" bson:"appleId,omitempty"`
	Provider     string    `json:"provider,omitempty" bson:"provider,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ProviderProfile is the normalised identity returned by an OAuth provider.
type ProviderProfile struct {
	Provider string
	ID       string
	Name     string
	Email    string
	Avatar   string
}
