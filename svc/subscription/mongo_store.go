package subscription

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/fleetdesk/pkg/mongo"
)

const collectionName = "subscriptions"

// MongoStore keeps subscriptions in the "subscriptions" collection.
// The unique index on user is what serializes concurrent provisioning,
// so EnsureIndexes must run before the store takes traffic.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique user index. It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("user_unique"),
	})
	if err != nil {
		return fmt.Errorf("subscriptions: create indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, userID string) (*Subscription, error) {
	var sub Subscription
	err := s.coll.FindOne(ctx, bson.D{{Key: "user", Value: userID}}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoSubscription
	}
	if err != nil {
		return nil, fmt.Errorf("subscriptions: find %s: %w", userID, err)
	}
	return &sub, nil
}

func (s *MongoStore) Create(ctx context.Context, sub *Subscription) error {
	if _, err := s.coll.InsertOne(ctx, sub); err != nil {
		if mongox.IsDuplicateKey(err) {
			return ErrSubscriptionExists
		}
		return fmt.Errorf("subscriptions: insert %s: %w", sub.UserID, err)
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, sub *Subscription) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "user", Value: sub.UserID}},
		sub,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("subscriptions: replace %s: %w", sub.UserID, err)
	}
	return nil
}
