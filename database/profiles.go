package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"club18/models"
)

// ProfileStore adapts the users collection to the session machine's
// ProfileSource. Lookups right after signup can race the insert, so
// callers treat errors as retryable.
type ProfileStore struct{}

func (ProfileStore) ProfileByID(ctx context.Context, uid string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := Users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, err
	}

	user.Normalize()
	return &user, nil
}
