package catalog

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pedalstack/pedalstack/pkg/errors"
)

// Collection names in the catalog database.
const (
	collectionPedals = "pedals"
	collectionBoards = "boards"
	collectionAmps   = "amps"
)

// MongoStore serves catalog records from a MongoDB database. The catalog is
// maintained by an external ingestion job; this store only reads.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to MongoDB and returns a store reading from the
// given database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connecting to catalog database")
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// Pedal implements Store.
func (s *MongoStore) Pedal(ctx context.Context, id string) (*PedalRecord, error) {
	var r PedalRecord
	err := s.db.Collection(collectionPedals).FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodePedalNotFound, "pedal %q not in catalog", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "fetching pedal %q", id)
	}
	return &r, nil
}

// Board implements Store.
func (s *MongoStore) Board(ctx context.Context, id string) (*BoardRecord, error) {
	var r BoardRecord
	err := s.db.Collection(collectionBoards).FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeBoardNotFound, "board %q not in catalog", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "fetching board %q", id)
	}
	return &r, nil
}

// Amp implements Store.
func (s *MongoStore) Amp(ctx context.Context, id string) (*AmpRecord, error) {
	var r AmpRecord
	err := s.db.Collection(collectionAmps).FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "amp %q not in catalog", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "fetching amp %q", id)
	}
	return &r, nil
}

// ListPedals implements Store.
func (s *MongoStore) ListPedals(ctx context.Context) ([]*PedalRecord, error) {
	opts := options.Find().SetSort(bson.M{"_id": 1})
	cur, err := s.db.Collection(collectionPedals).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "listing pedals")
	}
	defer cur.Close(ctx)

	var out []*PedalRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decoding pedal records")
	}
	return out, nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
