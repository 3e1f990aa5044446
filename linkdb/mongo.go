package linkdb

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection holds one document per web hosting service.
const DefaultCollection = "webhosting_linkage"

// collection is the part of *mongo.Collection the store uses.
type collection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

// MongoStore keeps linkages in a MongoDB collection keyed by service_id.
type MongoStore struct {
	coll collection
}

func NewMongoStore(db *mongo.Database, name string) *MongoStore {
	if name == "" {
		name = DefaultCollection
	}
	return &MongoStore{coll: db.Collection(name)}
}

// Open a connection to MongoDB and return the client.
func MongoConnect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Info("Connected to MongoDB!")
	return client, nil
}

// Upsert the linkage for a service
func (s *MongoStore) PersistLinkage(ctx context.Context, l Linkage) error {
	if l.ServiceID == "" {
		return ErrNoServiceID
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = time.Now()
	}
	filter := bson.D{{Key: "service_id", Value: l.ServiceID}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "account_id", Value: l.AccountID},
			{Key: "subscription_id", Value: l.SubscriptionID},
			{Key: "username", Value: l.Username},
			{Key: "ip", Value: l.IP},
			{Key: "follow_up", Value: l.FollowUp},
			{Key: "updated_at", Value: l.UpdatedAt},
		}},
	}
	result, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	log.Debugf("Linkage for service %s matched %d upserted %v", l.ServiceID, result.MatchedCount, result.UpsertedID)
	return nil
}

// Get the linkage for a service by service_id
func (s *MongoStore) ReadLinkage(ctx context.Context, serviceID string) (result Linkage, err error) {
	filter := bson.D{{Key: "service_id", Value: serviceID}}
	err = s.coll.FindOne(ctx, filter).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Linkage{ServiceID: serviceID}, nil
	}
	return
}
