package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"

	mongox "github.com/dmitrymomot/fleetdesk/pkg/mongo"
)

const (
	collectionName = "drivers"

	emailIndex   = "email_unique"
	licenseIndex = "license_number_unique"
)

// MongoRepository stores drivers in the "drivers" collection.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique email and license indexes and the
// owner lookup indexes.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(emailIndex),
		},
		{
			Keys:    bson.D{{Key: "licenseNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(licenseIndex),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("user_status"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "licenseExpiry", Value: 1}},
			Options: options.Index().SetName("user_license_expiry"),
		},
	})
	if err != nil {
		return fmt.Errorf("drivers: create indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, d *Driver) error {
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		if mongox.IsDuplicateKey(err) {
			return duplicateField(err)
		}
		return errors.Join(ErrFailedToCreate, err)
	}
	return nil
}

// duplicateField names the unique index a duplicate-key error tripped.
func duplicateField(err error) error {
	if strings.Contains(err.Error(), licenseIndex) {
		return ErrDuplicateLicense
	}
	return ErrDuplicateEmail
}

func owned(userID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: userID}}
}

func (r *MongoRepository) Get(ctx context.Context, userID, id string) (*Driver, error) {
	var d Driver
	if err := r.coll.FindOne(ctx, owned(userID, id)).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("drivers: get %s: %w", id, err)
	}
	return &d, nil
}

func (r *MongoRepository) Update(ctx context.Context, d *Driver) error {
	res, err := r.coll.ReplaceOne(ctx, owned(d.UserID, d.ID), d)
	if err != nil {
		if mongox.IsDuplicateKey(err) {
			return duplicateField(err)
		}
		return errors.Join(ErrFailedToUpdate, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.coll.DeleteOne(ctx, owned(userID, id))
	if err != nil {
		return fmt.Errorf("drivers: delete %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context, userID string, f Filter) ([]Driver, int64, error) {
	f = f.Normalized()
	filter := bson.D{{Key: "userId", Value: userID}}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: f.Status})
	}

	var (
		drivers []Driver
		total   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cur, err := r.coll.Find(gctx, filter, options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64(f.skip())).
			SetLimit(int64(f.Limit)))
		if err != nil {
			return err
		}
		return cur.All(gctx, &drivers)
	})
	g.Go(func() (err error) {
		total, err = r.coll.CountDocuments(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("drivers: list %s: %w", userID, err)
	}
	return drivers, total, nil
}

func (r *MongoRepository) Count(ctx context.Context, userID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "userId", Value: userID}})
	if err != nil {
		return 0, fmt.Errorf("drivers: count %s: %w", userID, err)
	}
	return n, nil
}

func (r *MongoRepository) CountByStatus(ctx context.Context, userID string, status Status) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{
		{Key: "userId", Value: userID},
		{Key: "status", Value: status},
	})
	if err != nil {
		return 0, fmt.Errorf("drivers: count %s by status: %w", userID, err)
	}
	return n, nil
}

func expiringFilter(userID string, until time.Time) bson.D {
	return bson.D{
		{Key: "userId", Value: userID},
		{Key: "licenseExpiry", Value: bson.D{{Key: "$lt", Value: until}}},
	}
}

func (r *MongoRepository) CountExpiringBefore(ctx context.Context, userID string, until time.Time) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, expiringFilter(userID, until))
	if err != nil {
		return 0, fmt.Errorf("drivers: count expiring %s: %w", userID, err)
	}
	return n, nil
}

func (r *MongoRepository) ExpiringBefore(ctx context.Context, userID string, until time.Time) ([]Driver, error) {
	cur, err := r.coll.Find(ctx,
		expiringFilter(userID, until),
		options.Find().SetSort(bson.D{{Key: "licenseExpiry", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("drivers: expiring %s: %w", userID, err)
	}

	var out []Driver
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("drivers: expiring %s: %w", userID, err)
	}
	return out, nil
}
