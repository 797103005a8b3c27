package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates every index the repositories rely on for
// correctness: unique IDs, the at-most-one-pending-request guarantee
// and the history sort order. Run once at startup.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	repos := []interface {
		EnsureIndexes(context.Context) error
	}{
		&groupRepository{db: database},
		&joinRequestRepository{db: database},
		&messageRepository{db: database},
	}

	for _, r := range repos {
		if err := r.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}
