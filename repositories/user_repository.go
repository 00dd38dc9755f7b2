package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/config"
	"github.com/salus-app/salus_backend/models"
)

// UserRepository is the MongoDB identity store.
type UserRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(config.UsersCollection),
		now:        time.Now,
	}
}

// contactFilter matches on email when the contact looks like one, otherwise
// on mobile number.
func contactFilter(contact string) bson.M {
	if strings.Contains(contact, "@") {
		return bson.M{"email": strings.ToLower(contact)}
	}
	return bson.M{"mobileNumber": contact}
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.NotFound("user not found")
	}
	if err != nil {
		return nil, apierror.Persistence("Failed to get user by "+what, err)
	}
	return &user, nil
}

// FindByContact looks a user up by email or mobile number.
func (r *UserRepository) FindByContact(ctx context.Context, contact string) (*models.User, error) {
	return r.findOne(ctx, contactFilter(contact), "contact information")
}

// FindByID looks a user up by its hex ObjectID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apierror.NotFound("user not found")
	}
	return r.findOne(ctx, bson.M{"_id": objID}, "ID")
}

// Create inserts a new user. Email and mobile number must both be unused.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	or := bson.A{}
	if user.Email != "" {
		or = append(or, bson.M{"email": user.Email})
	}
	if user.MobileNumber != "" {
		or = append(or, bson.M{"mobileNumber": user.MobileNumber})
	}
	if len(or) > 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"$or": or})
		if err != nil {
			return apierror.Persistence("Failed to check existing users", err)
		}
		if n > 0 {
			return apierror.Conflict("User with email or mobileNumber already exist.")
		}
	}

	now := r.now()
	user.CreatedAt, user.UpdatedAt = now, now
	res, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apierror.Conflict("User with email or mobileNumber already exist.")
	}
	if err != nil {
		return apierror.Persistence("Failed to create the user", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

// SaveRefreshToken stores the hash of the current refresh token and marks
// the user verified.
func (r *UserRepository) SaveRefreshToken(ctx context.Context, id primitive.ObjectID, tokenHash string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"refreshToken": tokenHash,
		"isVerify":     true,
		"updatedAt":    r.now(),
	}})
	if err != nil {
		return apierror.Persistence("Failed to save refresh token", err)
	}
	if res.MatchedCount == 0 {
		return apierror.NotFound("user not found")
	}
	return nil
}

// ClearRefreshToken revokes the stored refresh token.
func (r *UserRepository) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"refreshToken": ""},
		"$set":   bson.M{"updatedAt": r.now()},
	})
	if err != nil {
		return apierror.Persistence("Not able to update refresh token", err)
	}
	return nil
}

// FindOrCreateFromProvider resolves an OAuth profile to a user: by provider
// id first, then by email (linking the provider id), else a new USER when
// create is set. Without create a miss is reported as not found.
func (r *UserRepository) FindOrCreateFromProvider(ctx context.Context, profile models.ProviderProfile, create bool) (*models.User, error) {
	providerKey := strings.ToLower(profile.Provider) + "Id"

	user, err := r.findOne(ctx, bson.M{providerKey: profile.ID}, "provider ID")
	if err == nil {
		return user, nil
	}
	if apierror.KindOf(err) != apierror.KindNotFound {
		return nil, err
	}

	if profile.Email != "" {
		var linked models.User
		err := r.collection.FindOneAndUpdate(ctx,
			bson.M{"email": strings.ToLower(profile.Email)},
			bson.M{"$set": bson.M{providerKey: profile.ID, "updatedAt": r.now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&linked)
		if err == nil {
			return &linked, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierror.Persistence("Failed to link provider account", err)
		}
	}

	if !create {
		return nil, apierror.NotFound("user not found")
	}
	user = &models.User{
		Name:     profile.Name,
		Email:    strings.ToLower(profile.Email),
		Avatar:   profile.Avatar,
		Role:     models.RoleUser,
		Provider: profile.Provider,
	}
	switch strings.ToLower(profile.Provider) {
	case "google":
		user.GoogleID = profile.ID
	case "facebook":
		user.FacebookID = profile.ID
	case "apple":
		user.AppleID = profile.ID
	default:
		return nil, apierror.Validation("Unsupported provider")
	}
	if err := r.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
