package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wayfare-app/wayfare/internal/domain"
	"github.com/wayfare-app/wayfare/internal/persistence/db"
)

type userRepository struct {
	db *mongo.Database
}

func NewUserRepository(database *mongo.Database) domain.UserRepository {
	return &userRepository{
		db: database,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.UsersCollection)

	var user domain.User
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, wrapUnavailable(err)
	}

	return &user, nil
}

func uniqueIndex() *options.IndexOptions {
	return options.Index().SetUnique(true)
}

// wrapUnavailable tags driver failures with the shared Unavailable kind
// so handlers map them to 503 instead of 500.
func wrapUnavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
}
