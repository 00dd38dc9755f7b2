package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salus-app/salus_backend/models"
)

func TestValidatorMessages(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&models.VerifyRequest{UUIDToken: "nope", OTP: "12a"})
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"uuidToken must be a valid UUID", "Invalid OTP format"}, ValidationMessages(err))

	err = v.Validate(&models.LoginRequest{ContactInfo: models.ContactInfo{MobileNumber: "98765"}})
	require.Error(t, err)
	assert.Contains(t, ValidationMessages(err)[0], "mobile number")

	assert.NoError(t, v.Validate(&models.VerifyRequest{UUIDToken: "9b2f4c1e-3d5a-4e6f-8a7b-000000000001", OTP: "012345"}))
}

func TestSanitizers(t *testing.T) {
	email, err := SanitizeEmail("  Asha@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", email)
	_, err = SanitizeEmail("asha@")
	assert.Error(t, err)

	mobile, err := SanitizeMobile("+91 (98765) 43-210")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", mobile)
	_, err = SanitizeMobile("0098765")
	assert.Error(t, err)

	assert.Equal(t, "&lt;b&gt;Asha&lt;/b&gt;", SanitizeInput(" <b>Asha</b>\x00 "))
}
