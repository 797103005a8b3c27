package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wayfare-app/wayfare/internal/domain"
	"github.com/wayfare-app/wayfare/internal/persistence/db"
)

type joinRequestRepository struct {
	db *mongo.Database
}

func NewJoinRequestRepository(database *mongo.Database) domain.JoinRequestRepository {
	return &joinRequestRepository{
		db: database,
	}
}

// CreatePending relies on the partial unique index over
// (group_id, requester_id) with status=pending: a racing duplicate
// insert fails with a duplicate-key error instead of double-inserting.
func (r *joinRequestRepository) CreatePending(ctx context.Context, request *domain.JoinRequest) error {
	if request == nil || request.ID == "" || request.GroupID == "" || request.RequesterID == "" {
		return domain.ErrInvalidInput
	}
	if request.Status != domain.RequestPending {
		return domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.JoinRequestsCollection)

	if _, err := collection.InsertOne(ctx, request); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateRequest
		}
		return wrapUnavailable(err)
	}

	return nil
}

func (r *joinRequestRepository) GetByID(ctx context.Context, id string) (*domain.JoinRequest, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.JoinRequestsCollection)

	var request domain.JoinRequest
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, wrapUnavailable(err)
	}

	return &request, nil
}

// Transition only matches while the request is still pending, so a
// terminal request never transitions twice.
func (r *joinRequestRepository) Transition(ctx context.Context, id string, to domain.RequestStatus) (*domain.JoinRequest, error) {
	if id == "" || (to != domain.RequestApproved && to != domain.RequestRejected) {
		return nil, domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.JoinRequestsCollection)

	filter := bson.M{"id": id, "status": domain.RequestPending}
	update := bson.M{"$set": bson.M{"status": to}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var request domain.JoinRequest
	err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&request)
	if err == nil {
		return &request, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, wrapUnavailable(err)
	}

	// Nothing matched: either the request doesn't exist or it already
	// reached a terminal status.
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrRequestNotPending
}

func (r *joinRequestRepository) ListPending(ctx context.Context, groupID string) ([]domain.JoinRequest, error) {
	if groupID == "" {
		return nil, domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.JoinRequestsCollection)

	filter := bson.M{"group_id": groupID, "status": domain.RequestPending}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapUnavailable(err)
	}
	defer cursor.Close(ctx)

	var requests []domain.JoinRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, wrapUnavailable(err)
	}

	return requests, nil
}

func (r *joinRequestRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.JoinRequestsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: uniqueIndex(),
		},
		{
			// At most one pending request per (group, requester).
			Keys: bson.D{
				{Key: "group_id", Value: 1},
				{Key: "requester_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.RequestPending}),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
