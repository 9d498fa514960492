package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	domain "github.com/open-builders/gws-backend/internal/domain/user"
)

// userDocument mirrors the account service's "users" collection.
type userDocument struct {
	ID              interface{} `bson:"_id"`
	KickUsername    string      `bson:"kickUsername"`
	RainbetUsername string      `bson:"rainbetUsername"`
	Role            string      `bson:"role"`
}

// UserRepository reads user profiles.
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection("users")}
}

// GetByID accepts either an ObjectID hex string or a plain string id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var key interface{} = id
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		key = oid
	}
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	role := doc.Role
	if role == "" {
		role = domain.RoleUser
	}
	return &domain.User{
		ID:             id,
		Username:       doc.KickUsername,
		ExternalHandle: doc.RainbetUsername,
		Role:           role,
	}, nil
}
