package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/salus-app/salus_backend/config"
	"github.com/salus-app/salus_backend/models"
)

func newTestTokenService() *TokenService {
	return NewTokenService(config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
	})
}

func TestIssueAndParsePair(t *testing.T) {
	svc := newTestTokenService()
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@b.co", Name: "Asha", Role: models.RolePartner}

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)

	access, err := svc.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), access.Subject)
	assert.Equal(t, models.RolePartner, access.Role)
	assert.Equal(t, "a@b.co", access.Email)

	refresh, err := svc.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), refresh.Subject)
	assert.NotEmpty(t, refresh.Id)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	svc := newTestTokenService()
	pair, err := svc.IssuePair(&models.User{ID: primitive.NewObjectID(), Role: models.RoleUser})
	require.NoError(t, err)

	_, err = svc.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)
	_, err = svc.ParseRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	svc := newTestTokenService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	pair, err := svc.IssuePair(&models.User{ID: primitive.NewObjectID(), Role: models.RoleUser})
	require.NoError(t, err)

	_, err = svc.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	svc := newTestTokenService()
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	a, err := svc.IssuePair(user)
	require.NoError(t, err)
	b, err := svc.IssuePair(user)
	require.NoError(t, err)
	assert.NotEqual(t, a.RefreshToken, b.RefreshToken)
}

func TestIssuePairRequiresID(t *testing.T) {
	_, err := newTestTokenService().IssuePair(&models.User{})
	assert.Error(t, err)
}
