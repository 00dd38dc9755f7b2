package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/config"
)

func newSessionRepo(mt *mtest.T, now time.Time) *OtpSessionRepository {
	repo := NewOtpSessionRepository(mt.DB)
	repo.now = func() time.Time { return now }
	repo.newToken = func() string { return "0b6f0c7e-3f0e-4b8e-9f53-5a7c4d1e2f10" }
	return repo
}

func TestOtpSessionRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ns := "salus." + config.OtpSessionsCollection

	mt.Run("create returns the generated token", func(mt *mtest.T) {
		repo := newSessionRepo(mt, now)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		token, err := repo.Create(context.Background(), "a@b.com", "123456")
		require.NoError(t, err)
		assert.Equal(t, "0b6f0c7e-3f0e-4b8e-9f53-5a7c4d1e2f10", token)
	})

	mt.Run("create surfaces token collision as persistence error", func(mt *mtest.T) {
		repo := newSessionRepo(mt, now)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))

		_, err := repo.Create(context.Background(), "a@b.com", "123456")
		require.Error(t, err)
		assert.Equal(t, apierror.KindPersistence, apierror.KindOf(err))
	})

	mt.Run("find by token decodes the session", func(mt *mtest.T) {
		repo := newSessionRepo(mt, now)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "uuidToken", Value: "tok"},
			{Key: "contactInfo", Value: "a@b.com"},
			{Key: "otp", Value: "004211"},
			{Key: "createdAt", Value: now},
		}))

		session, err := repo.FindByToken(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", session.ContactInfo)
		assert.Equal(t, "004211", session.OTP)
		assert.True(t, session.CreatedAt.Equal(now))
	})

	mt.Run("find by unknown token is not found", func(mt *mtest.T) {
		repo := newSessionRepo(mt, now)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByToken(context.Background(), "missing")
		require.Error(t, err)
		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, apierror.KindNotFound, apiErr.Kind)
		assert.Equal(t, 402, apiErr.StatusCode())
	})

	mt.Run("update code returns the new session value", func(mt *mtest.T) {
		later := now.Add(2 * time.Minute)
		repo := newSessionRepo(mt, later)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "uuidToken", Value: "tok"},
				{Key: "contactInfo", Value: "a@b.com"},
				{Key: "otp", Value: "999000"},
				{Key: "createdAt", Value: later},
			}},
		})

		session, err := repo.UpdateCode(context.Background(), "tok", "999000")
		require.NoError(t, err)
		assert.Equal(t, "999000", session.OTP)
		assert.True(t, session.CreatedAt.Equal(later))
	})

	mt.Run("update code on unknown token is not found", func(mt *mtest.T) {
		repo := newSessionRepo(mt, now)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := repo.UpdateCode(context.Background(), "missing", "111111")
		assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
	})
}
