package status

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	EmailCollection        = "email_notification_status"
	NotificationCollection = "notification_status"
)

// MongoStore keeps status rows in two MongoDB collections.
type MongoStore struct {
	emails        *mongo.Collection
	notifications *mongo.Collection
	now           func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		emails:        db.Collection(EmailCollection),
		notifications: db.Collection(NotificationCollection),
		now:           time.Now,
	}
}

// EnsureIndexes creates the unique (partition, row) indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "partition_key", Value: 1}, {Key: "row_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, coll := range []*mongo.Collection{s.emails, s.notifications} {
		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			return errors.Join(ErrStore, err)
		}
	}
	return nil
}

func (s *MongoStore) LogEmailStatus(ctx context.Context, st EmailStatus) error {
	if err := validKeys(st.PartitionKey, st.RowKey); err != nil {
		return err
	}
	if st.Timestamp.IsZero() {
		st.Timestamp = s.now().UTC()
	}
	return upsert(ctx, s.emails, st.PartitionKey, st.RowKey, st)
}

func (s *MongoStore) LogNotificationStatus(ctx context.Context, st NotificationStatus) error {
	if err := validKeys(st.PartitionKey, st.RowKey); err != nil {
		return err
	}
	if st.Timestamp.IsZero() {
		st.Timestamp = s.now().UTC()
	}
	return upsert(ctx, s.notifications, st.PartitionKey, st.RowKey, st)
}

func (s *MongoStore) EmailStatuses(ctx context.Context, partition string) ([]EmailStatus, error) {
	var out []EmailStatus
	if err := findPartition(ctx, s.emails, partition, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) NotificationStatuses(ctx context.Context, partition string) ([]NotificationStatus, error) {
	var out []NotificationStatus
	if err := findPartition(ctx, s.notifications, partition, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func upsert(ctx context.Context, coll *mongo.Collection, partition, row string, doc any) error {
	filter := bson.D{{Key: "partition_key", Value: partition}, {Key: "row_key", Value: row}}
	if _, err := coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true)); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func findPartition(ctx context.Context, coll *mongo.Collection, partition string, out any) error {
	cur, err := coll.Find(ctx,
		bson.D{{Key: "partition_key", Value: partition}},
		options.Find().SetSort(bson.D{{Key: "row_key", Value: 1}}),
	)
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}
