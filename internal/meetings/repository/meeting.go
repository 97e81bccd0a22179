package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	meetingserrors "roomly/internal/meetings/errors"
	"roomly/pkg/config"
	mongotx "roomly/pkg/db/mongo"
	"roomly/pkg/model"
)

const (
	CollectionName = "Meetings"
)

type MeetingRepository interface {
	Create(ctx context.Context, meeting *model.Meeting) error
	FindByID(ctx context.Context, id string) (*model.Meeting, error)
	Find(ctx context.Context, filter model.MeetingFilter) ([]*model.Meeting, error)
	FindOverlappingByRoom(ctx context.Context, roomID string, from, to int64) ([]*model.Meeting, error)
	FindOverlappingByParticipants(ctx context.Context, memberIDs []string, from, to int64) ([]*model.Meeting, error)
	Delete(ctx context.Context, id string) (*model.Meeting, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoMeetingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoMeetingRepository(cfg *config.Config) MeetingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMeetingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo, cfg.Log),
	}
}

// withTimeout bounds ctx by timeout unless it is a session context, which
// cannot be wrapped without leaving the transaction.
func (r *mongoMeetingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoMeetingRepository) Create(ctx context.Context, meeting *model.Meeting) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	meeting.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, meeting)
	if err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		meeting.ID = oid.Hex()
	}
	return nil
}

func (r *mongoMeetingRepository) FindByID(ctx context.Context, id string) (*model.Meeting, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", meetingserrors.ErrInvalidID, id)
	}

	var meeting model.Meeting
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&meeting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, meetingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}

	return &meeting, nil
}

func (r *mongoMeetingRepository) Find(ctx context.Context, filter model.MeetingFilter) ([]*model.Meeting, error) {
	return r.find(ctx, buildSearchFilter(filter))
}

func (r *mongoMeetingRepository) FindOverlappingByRoom(ctx context.Context, roomID string, from, to int64) ([]*model.Meeting, error) {
	return r.find(ctx, buildSearchFilter(model.MeetingFilter{
		RoomID: roomID,
		From:   &from,
		To:     &to,
	}))
}

func (r *mongoMeetingRepository) FindOverlappingByParticipants(ctx context.Context, memberIDs []string, from, to int64) ([]*model.Meeting, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	filter := buildSearchFilter(model.MeetingFilter{From: &from, To: &to})
	filter["participant_ids"] = bson.M{"$in": memberIDs}
	return r.find(ctx, filter)
}

func (r *mongoMeetingRepository) find(ctx context.Context, filter bson.M) ([]*model.Meeting, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "from", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find meetings: %w", err)
	}
	defer cursor.Close(ctx)

	meetings := []*model.Meeting{}
	if err = cursor.All(ctx, &meetings); err != nil {
		return nil, fmt.Errorf("failed to decode meetings: %w", err)
	}

	return meetings, nil
}

// Delete removes the meeting and returns the removed document.
func (r *mongoMeetingRepository) Delete(ctx context.Context, id string) (*model.Meeting, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", meetingserrors.ErrInvalidID, id)
	}

	var meeting model.Meeting
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&meeting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, meetingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete meeting: %w", err)
	}

	return &meeting, nil
}

func (r *mongoMeetingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// buildSearchFilter translates a MeetingFilter into a Mongo query. A time
// window selects meetings overlapping [From, To): from < To and to > From.
func buildSearchFilter(f model.MeetingFilter) bson.M {
	filter := bson.M{}

	if f.RoomID != "" {
		filter["room_id"] = f.RoomID
	}
	if f.MemberID != "" {
		filter["participant_ids"] = f.MemberID
	}
	if f.To != nil {
		filter["from"] = bson.M{"$lt": *f.To}
	}
	if f.From != nil {
		filter["to"] = bson.M{"$gt": *f.From}
	}

	return filter
}
