package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

// AuditRepository stores admin log events. It implements both
// ports.AuditWriter and ports.AuditReader.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(collectionAdminLogs)}
}

type mongoAuditEvent struct {
	Kind      string    `bson:"event_type"`
	Message   string    `bson:"message"`
	UserEmail string    `bson:"user_email,omitempty"`
	IP        string    `bson:"ip,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
}

// Write persists a single event.
func (r *AuditRepository) Write(ctx context.Context, event domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAuditEvent{
		Kind:      string(event.Kind),
		Message:   event.Message,
		UserEmail: event.UserEmail,
		IP:        event.IP,
		Timestamp: event.Timestamp.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Recent returns the newest limit events.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAuditEvent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}

	events := make([]domain.AuditEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, domain.AuditEvent{
			Kind:      domain.AuditKind(d.Kind),
			Message:   d.Message,
			UserEmail: d.UserEmail,
			IP:        d.IP,
			Timestamp: d.Timestamp.UTC(),
		})
	}
	return events, nil
}

// EnsureIndexes creates the descending timestamp index used by Recent.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	return err
}
