// internal/storage/mongo.go
package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jobsaddah/jobharvest/internal/utils"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

var mongoLogger = utils.NewComponentLogger("mongo-storage")

// MongoOptions defines MongoDB-specific configuration.
type MongoOptions struct {
	ConnectionString string        `yaml:"connection_string" json:"connection_string"`
	Database         string        `yaml:"database" json:"database"`
	Collection       string        `yaml:"collection" json:"collection"`
	Timeout          time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	MaxPoolSize      int           `yaml:"max_pool_size,omitempty" json:"max_pool_size,omitempty"`
}

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// mongoPosting is the persisted document shape. The ID is a Mongo ObjectID
// exposed to the pipeline as its hex form.
type mongoPosting struct {
	ID        primitive.ObjectID      `bson:"_id,omitempty"`
	Record    types.RecruitmentRecord `bson:"record"`
	CreatedAt time.Time               `bson:"created_at"`
	UpdatedAt time.Time               `bson:"updated_at"`
}

// NewMongoStore connects, pings, and prepares indexes.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.ConnectionString == "" {
		return nil, fmt.Errorf("mongo connection string is required")
	}
	if opts.Database == "" || opts.Collection == "" {
		return nil, fmt.Errorf("mongo database and collection are required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxPoolSize == 0 {
		opts.MaxPoolSize = 100
	}

	clientOptions := options.Client().
		ApplyURI(opts.ConnectionString).
		SetMaxPoolSize(uint64(opts.MaxPoolSize)).
		SetRetryWrites(true)

	connectCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(connectCtx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(opts.Database).Collection(opts.Collection),
		timeout:    opts.Timeout,
	}

	if err := store.ensureIndexes(connectCtx); err != nil {
		mongoLogger.Warnf("index creation failed: %v", err)
	}

	mongoLogger.Infof("connected to mongo %s.%s", opts.Database, opts.Collection)
	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "record.source_path", Value: 1}},
			Options: options.Index().SetName("source_path_idx"),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("updated_at_idx"),
		},
	})
	return err
}

func (s *MongoStore) FindBySourcePath(ctx context.Context, path string) (*types.StoredPosting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc mongoPosting
	err := s.collection.FindOne(ctx, bson.M{"record.source_path": path}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by source path: %w", err)
	}

	posting := doc.toStored()
	return &posting, nil
}

func (s *MongoStore) FindRecentCandidates(ctx context.Context, window time.Duration) ([]types.StoredPosting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cutoff := time.Now().Add(-window)
	cursor, err := s.collection.Find(ctx,
		bson.M{"updated_at": bson.M{"$gte": cutoff}},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find recent candidates: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]types.StoredPosting, 0)
	for cursor.Next(ctx) {
		var doc mongoPosting
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode candidate: %w", err)
		}
		out = append(out, doc.toStored())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("candidate cursor: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Upsert(ctx context.Context, posting types.StoredPosting) (*types.StoredPosting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	doc := mongoPosting{
		Record:    posting.Record,
		CreatedAt: posting.CreatedAt,
		UpdatedAt: posting.UpdatedAt,
	}

	if posting.ID == "" {
		doc.ID = primitive.NewObjectID()
		if _, err := s.collection.InsertOne(ctx, doc); err != nil {
			return nil, fmt.Errorf("insert posting: %w", err)
		}
	} else {
		oid, err := primitive.ObjectIDFromHex(posting.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid posting id %q: %w", posting.ID, err)
		}
		doc.ID = oid

		res := s.collection.FindOneAndReplace(ctx,
			bson.M{"_id": oid}, doc,
			options.FindOneAndReplace().SetUpsert(true).SetReturnDocument(options.After),
		)
		if err := res.Err(); err != nil {
			return nil, fmt.Errorf("replace posting: %w", err)
		}
	}

	stored := doc.toStored()
	return &stored, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (d mongoPosting) toStored() types.StoredPosting {
	return types.StoredPosting{
		ID:        d.ID.Hex(),
		Record:    d.Record,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
