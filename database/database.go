// Package database wraps the MongoDB connection behind lungo's interface
// types, so the same data layer runs against a real deployment in production
// and the in-memory engine in tests.
package database

import (
	"context"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the database client and exposes the named collections.
type Store struct {
	client lungo.IClient
	engine *lungo.Engine // set only for in-memory stores
	db     lungo.IDatabase
}

// Connect dials a real MongoDB deployment and pings it before returning.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	wrapped := &lungo.MongoClient{Client: client}
	return &Store{client: wrapped, db: wrapped.Database(dbName)}, nil
}

// OpenMemory starts an in-memory MongoDB. Used by tests.
func OpenMemory(dbName string) (*Store, error) {
	client, engine, err := lungo.Open(nil, lungo.Options{
		Store: lungo.NewMemoryStore(),
	})
	if err != nil {
		return nil, err
	}
	return &Store{client: client, engine: engine, db: client.Database(dbName)}, nil
}

// Close releases the client or the in-memory engine.
func (s *Store) Close(ctx context.Context) error {
	if s.engine != nil {
		s.engine.Close()
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Users() lungo.ICollection       { return s.db.Collection("users") }
func (s *Store) Businesses() lungo.ICollection  { return s.db.Collection("businesses") }
func (s *Store) HiddenPosts() lungo.ICollection { return s.db.Collection("hiddenPosts") }
func (s *Store) HiddenTags() lungo.ICollection  { return s.db.Collection("hiddenTags") }
func (s *Store) PushSubs() lungo.ICollection    { return s.db.Collection("pushSubscriptions") }

// Collection returns an arbitrary collection by name. Post-kind collections
// resolve through models.PostKind.CollectionName.
func (s *Store) Collection(name string) lungo.ICollection {
	return s.db.Collection(name)
}
