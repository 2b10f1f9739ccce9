package server

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/pipeline"
)

// Store persists computed plans so clients can retrieve them later by ID.
type Store interface {
	SavePlan(ctx context.Context, p *pipeline.Plan) error
	Plan(ctx context.Context, id string) (*pipeline.Plan, error)
	Close(ctx context.Context) error
}

// MongoStore keeps plans in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	plans  *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connecting to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "pinging mongodb")
	}
	return &MongoStore{
		client: client,
		plans:  client.Database(database).Collection("plans"),
	}, nil
}

// SavePlan upserts a plan keyed by its ID.
func (s *MongoStore) SavePlan(ctx context.Context, p *pipeline.Plan) error {
	_, err := s.plans.ReplaceOne(ctx,
		bson.M{"_id": p.ID}, p,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "saving plan %s", p.ID)
	}
	return nil
}

// Plan retrieves a plan by ID.
func (s *MongoStore) Plan(ctx context.Context, id string) (*pipeline.Plan, error) {
	var p pipeline.Plan
	err := s.plans.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodePlanNotFound, "plan %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "loading plan %s", id)
	}
	return &p, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// MemoryStore keeps plans in process memory. It backs single-instance
// deployments without MongoDB, and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]*pipeline.Plan
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]*pipeline.Plan)}
}

// SavePlan stores a plan keyed by its ID.
func (s *MemoryStore) SavePlan(ctx context.Context, p *pipeline.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.ID] = p
	return nil
}

// Plan retrieves a plan by ID.
func (s *MemoryStore) Plan(ctx context.Context, id string) (*pipeline.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, errors.New(errors.ErrCodePlanNotFound, "plan %s not found", id)
	}
	return p, nil
}

// Close is a no-op.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }
