package database

import (
	"context"
	"testing"

	"github.com/256dpi/lungo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// The production connect path wraps the driver client in lungo's exported
// MongoClient adapter; this pins that it satisfies the interface the Store
// is built on.
var _ lungo.IClient = &lungo.MongoClient{}

func TestOpenMemoryRoundTrip(t *testing.T) {
	store, err := OpenMemory("database_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	_, err = store.Users().InsertOne(ctx, bson.M{"firstName": "Ada"})
	require.NoError(t, err)

	count, err := store.Users().CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
