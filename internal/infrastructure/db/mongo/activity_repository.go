package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookly/bookly-api/internal/core/domain"
)

const activityCollection = "auth_activity"

// ActivityRepository implements ports.ActivityRecorder on a MongoDB
// collection. Documents are append-only.
type ActivityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{coll: db.Collection(activityCollection)}
}

type activityDoc struct {
	Type       string            `bson:"type"`
	UserID     string            `bson:"user_id,omitempty"`
	Username   string            `bson:"username,omitempty"`
	Email      string            `bson:"email,omitempty"`
	Metadata   map[string]string `bson:"metadata,omitempty"`
	OccurredAt time.Time         `bson:"occurred_at"`
	RecordedAt time.Time         `bson:"recorded_at"`
}

// EnsureIndexes creates the lookup indexes and, when retention is positive,
// a TTL index that expires old entries.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}
	if retention > 0 {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: "recorded_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention / time.Second)),
		})
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("activity indexes: %w", err)
	}
	return nil
}

// Record persists a single auth event.
func (r *ActivityRepository) Record(ctx context.Context, event domain.ActivityEvent) error {
	doc := activityDoc{
		Type:       string(event.Type),
		UserID:     event.UserID,
		Username:   event.Username,
		Email:      event.Email,
		Metadata:   event.Metadata,
		OccurredAt: event.OccurredAt.UTC(),
		RecordedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// RecentByEmail returns the latest events for email, newest first.
func (r *ActivityRepository) RecentByEmail(ctx context.Context, email string, limit int64) ([]domain.ActivityEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{"email": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	defer cur.Close(ctx)

	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	out := make([]domain.ActivityEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.ActivityEvent{
			Type:       domain.ActivityType(d.Type),
			UserID:     d.UserID,
			Username:   d.Username,
			Email:      d.Email,
			Metadata:   d.Metadata,
			OccurredAt: d.OccurredAt,
		})
	}
	return out, nil
}
