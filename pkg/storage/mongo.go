package storage

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
)

const backendMongo = "mongo"

// MongoStore keeps each layout as one document whose _id is the layout id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}

	db, coll := opts.Database, opts.Collection
	if db == "" {
		db = "gridlayout"
	}
	if coll == "" {
		coll = "layouts"
	}
	c := client.Database(db).Collection(coll)
	if _, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "updated_at", Value: -1}}}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create mongodb index")
	}
	return &MongoStore{client: client, coll: c}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (l *grid.Layout, err error) {
	start := time.Now()
	defer func() { observeLoad(ctx, backendMongo, id, start, err) }()
	if err := errors.ValidateLayoutID(id); err != nil {
		return nil, err
	}

	var out grid.Layout
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, NotFound(id)
		}
		return nil, storageError(err, "read", id)
	}
	if out.Items == nil {
		out.Items = []grid.Item{}
	}
	return &out, nil
}

// Save replaces the document, inserting it when missing.
func (s *MongoStore) Save(ctx context.Context, l *grid.Layout) (out *grid.Layout, err error) {
	start := time.Now()
	defer func() { observeSave(ctx, backendMongo, layoutID(l), start, err) }()

	out, err = prepare(l)
	if err != nil {
		return nil, err
	}
	// BSON datetimes hold milliseconds.
	out.CreatedAt = out.CreatedAt.Truncate(time.Millisecond)
	out.UpdatedAt = out.UpdatedAt.Truncate(time.Millisecond)

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": out.ID}, out, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, storageError(err, "save", out.ID)
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateLayoutID(id); err != nil {
		return err
	}
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return storageError(err, "delete", id)
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "updated_at", Value: 1},
			{Key: "items", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$items", bson.A{}}}}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list layouts")
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID        string    `bson:"_id"`
		Name      string    `bson:"name"`
		Items     int       `bson:"items"`
		UpdatedAt time.Time `bson:"updated_at"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode layout summaries")
	}

	out := make([]Summary, len(docs))
	for i, d := range docs {
		out[i] = Summary{ID: d.ID, Name: d.Name, Items: d.Items, UpdatedAt: d.UpdatedAt.UTC()}
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
