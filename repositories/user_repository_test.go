package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/config"
	"github.com/salus-app/salus_backend/models"
)

func TestContactFilter(t *testing.T) {
	assert.Equal(t, bson.M{"email": "a@b.com"}, contactFilter("A@b.com"))
	assert.Equal(t, bson.M{"mobileNumber": "+919999999999"}, contactFilter("+919999999999"))
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "salus." + config.UsersCollection
	id := primitive.NewObjectID()

	mt.Run("find by contact", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Asha"},
			{Key: "email", Value: "a@b.com"},
			{Key: "role", Value: "PARTNER"},
		}))

		user, err := repo.FindByContact(context.Background(), "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, models.RolePartner, user.Role)
	})

	mt.Run("find by contact miss", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByContact(context.Background(), "+15550001111")
		assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
	})

	mt.Run("find by malformed id is not found without a query", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		_, err := repo.FindByID(context.Background(), "not-an-object-id")
		assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
	})

	mt.Run("create rejects existing email or mobile", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}))

		err := repo.Create(context.Background(), &models.User{Email: "a@b.com", MobileNumber: "+15550001111"})
		assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	})

	mt.Run("create assigns the inserted id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: 0}}),
			mtest.CreateSuccessResponse(),
		)

		user := &models.User{Name: "Asha", Email: "a@b.com", MobileNumber: "+15550001111", Role: models.RoleUser}
		require.NoError(t, repo.Create(context.Background(), user))
		assert.False(t, user.ID.IsZero())
		assert.False(t, user.CreatedAt.IsZero())
	})

	mt.Run("save refresh token on missing user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.SaveRefreshToken(context.Background(), id, "hash")
		assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
	})

	mt.Run("provider lookup without create does not insert", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
		)

		profile := models.ProviderProfile{Provider: "google", ID: "g-1", Email: "new@example.com"}
		_, err := repo.FindOrCreateFromProvider(context.Background(), profile, false)
		assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
	})

	mt.Run("clear refresh token", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		require.NoError(t, repo.ClearRefreshToken(context.Background(), id))
	})
}
