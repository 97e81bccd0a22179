package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	meetingserrors "roomly/internal/meetings/errors"
	"roomly/pkg/config"
	"roomly/pkg/model"
)

const SlotLockCollectionName = "Slot_locks"

// SlotLockRepository stores advisory locks keyed by resource. The unique _id
// makes a second Create for the same resource fail.
type SlotLockRepository interface {
	Create(ctx context.Context, lock *model.SlotLock) error
	Renew(ctx context.Context, id, owner string, now, expiresAt time.Time) error
	Delete(ctx context.Context, id, owner string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoSlotLockRepository struct {
	collection *mongo.Collection
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		collection: db.Collection(SlotLockCollectionName),
	}
}

// Create inserts the lock. A held lock yields ErrSlotLocked; an expired one
// that the sweeper has not removed yet is taken over.
func (r *mongoSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) error {
	lock.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to create slot lock: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lock.ID,
		"expires_at": bson.M{"$lte": lock.CreatedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to clear expired slot lock: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", meetingserrors.ErrSlotLocked, lock.ID)
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", meetingserrors.ErrSlotLocked, lock.ID)
		}
		return fmt.Errorf("failed to create slot lock: %w", err)
	}
	return nil
}

// Renew moves the expiry of a live lock held by owner. A lock that has
// expired or changed hands yields ErrLockExpired.
func (r *mongoSlotLockRepository) Renew(ctx context.Context, id, owner string, now, expiresAt time.Time) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":        id,
			"owner":      owner,
			"expires_at": bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{"expires_at": expiresAt}},
	)
	if err != nil {
		return fmt.Errorf("failed to renew slot lock: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", meetingserrors.ErrLockExpired, id)
	}
	return nil
}

// Delete removes the lock only if owner still holds it.
func (r *mongoSlotLockRepository) Delete(ctx context.Context, id, owner string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to delete slot lock: %w", err)
	}
	return nil
}

func (r *mongoSlotLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired slot locks: %w", err)
	}
	return res.DeletedCount, nil
}
