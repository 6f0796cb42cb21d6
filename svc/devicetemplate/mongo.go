package devicetemplate

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const Collection = "device_notification_templates"

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

// EnsureIndexes creates the unique (device type, platform) index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "device_type", Value: 1}, {Key: "platform", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (s *MongoStore) ByType(ctx context.Context, deviceType string) ([]Template, error) {
	cur, err := s.coll.Find(ctx,
		bson.D{{Key: "device_type", Value: deviceType}},
		options.Find().SetSort(bson.D{{Key: "platform", Value: 1}}),
	)
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}

	out := []Template{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	return out, nil
}

func (s *MongoStore) Put(ctx context.Context, t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	filter := bson.D{{Key: "device_type", Value: t.DeviceType}, {Key: "platform", Value: t.Platform}}
	if _, err := s.coll.ReplaceOne(ctx, filter, t, options.Replace().SetUpsert(true)); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}
