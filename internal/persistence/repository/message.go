package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wayfare-app/wayfare/internal/domain"
	"github.com/wayfare-app/wayfare/internal/persistence/db"
)

type messageRepository struct {
	db *mongo.Database
}

func NewMessageRepository(database *mongo.Database) domain.MessageRepository {
	return &messageRepository{
		db: database,
	}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	if message == nil || message.ID == "" || message.GroupID == "" {
		return domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.MessagesCollection)

	if _, err := collection.InsertOne(ctx, message); err != nil {
		return wrapUnavailable(err)
	}

	return nil
}

func (r *messageRepository) GetRecent(ctx context.Context, groupID string, limit int) ([]domain.ChatMessage, error) {
	if groupID == "" {
		return nil, domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.MessagesCollection)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := collection.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, wrapUnavailable(err)
	}
	defer cursor.Close(ctx)

	var messages []domain.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, wrapUnavailable(err)
	}

	// The query walks the log newest-first; replay wants ascending.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *messageRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.MessagesCollection)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "group_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	return err
}
