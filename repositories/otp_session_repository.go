package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/config"
	"github.com/salus-app/salus_backend/models"
)

// OtpSessionRepository persists OTP sessions. Expiry is left to the TTL index
// on createdAt created by config.SetupCollections.
type OtpSessionRepository struct {
	collection *mongo.Collection
	now        func() time.Time
	newToken   func() string
}

func NewOtpSessionRepository(db *mongo.Database) *OtpSessionRepository {
	return &OtpSessionRepository{
		collection: db.Collection(config.OtpSessionsCollection),
		now:        time.Now,
		newToken:   uuid.NewString,
	}
}

// Create stores a new session and returns its token. A token collision
// surfaces as a persistence error; there is no retry.
func (r *OtpSessionRepository) Create(ctx context.Context, contact, code string) (string, error) {
	now := r.now()
	session := models.OtpSession{
		UUIDToken:   r.newToken(),
		ContactInfo: contact,
		OTP:         code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return "", apierror.Persistence("Failed to create otp session", err)
	}
	return session.UUIDToken, nil
}

// FindByToken returns the session for token.
func (r *OtpSessionRepository) FindByToken(ctx context.Context, token string) (*models.OtpSession, error) {
	var session models.OtpSession
	err := r.collection.FindOne(ctx, bson.M{"uuidToken": token}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.SessionNotFound()
	}
	if err != nil {
		return nil, apierror.Persistence("Failed to get otp session by uuidToken", err)
	}
	return &session, nil
}

// UpdateCode replaces the code, resets the issue time and returns the new
// session value. Concurrent updates are last-write-wins.
func (r *OtpSessionRepository) UpdateCode(ctx context.Context, token, code string) (*models.OtpSession, error) {
	now := r.now()
	var session models.OtpSession
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"uuidToken": token},
		bson.M{"$set": bson.M{"otp": code, "createdAt": now, "updatedAt": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.SessionNotFound()
	}
	if err != nil {
		return nil, apierror.Persistence("Failed to update otp session", err)
	}
	return &session, nil
}
