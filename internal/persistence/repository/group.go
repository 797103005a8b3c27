package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wayfare-app/wayfare/internal/domain"
	"github.com/wayfare-app/wayfare/internal/persistence/db"
)

type groupRepository struct {
	db *mongo.Database
}

func NewGroupRepository(database *mongo.Database) domain.GroupRepository {
	return &groupRepository{
		db: database,
	}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	if group == nil || group.ID == "" {
		return domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.GroupsCollection)

	if _, err := collection.InsertOne(ctx, group); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrGroupAlreadyExists
		}
		return wrapUnavailable(err)
	}

	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.GroupsCollection)

	var group domain.Group
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&group)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, wrapUnavailable(err)
	}

	return &group, nil
}

// AddMember performs the seat claim as one conditional update: the
// filter only matches while the user is absent from the member set and
// a seat remains, so concurrent approvals cannot overshoot capacity.
func (r *groupRepository) AddMember(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	if groupID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.GroupsCollection)

	filter := bson.M{
		"id":      groupID,
		"members": bson.M{"$ne": userID},
		"$expr": bson.M{
			"$lt": bson.A{bson.M{"$size": "$members"}, "$max_members"},
		},
	}
	update := bson.M{
		"$addToSet": bson.M{"members": userID},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, wrapUnavailable(err)
	}

	if result.ModifiedCount == 0 {
		// The conditional update matched nothing; read back to report
		// which precondition failed.
		group, err := r.GetByID(ctx, groupID)
		if err != nil {
			return nil, err
		}
		if group.IsMember(userID) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, domain.ErrGroupFull
	}

	return r.GetByID(ctx, groupID)
}

func (r *groupRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.GroupsCollection)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: uniqueIndex(),
	})
	return err
}
