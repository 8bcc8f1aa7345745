package hidden

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielkmetz/ActivityPal-sub002/database"
	"github.com/danielkmetz/ActivityPal-sub002/models"
)

func setup(t *testing.T) (*Service, *database.Store) {
	t.Helper()
	store, err := database.OpenMemory("test-hidden")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return NewService(store), store
}

func TestHideIsIdempotent(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	target := primitive.NewObjectID()

	require.NoError(t, svc.Hide(ctx, user, models.KindReview, target))
	require.NoError(t, svc.Hide(ctx, user, models.KindReview, target))

	count, err := store.HiddenPosts().CountDocuments(ctx, bson.M{"userId": user})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	rows, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Review", rows[0].TargetRef)
	assert.Equal(t, target, rows[0].TargetID)
}

func TestUnhideRestoresVisibility(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	target := primitive.NewObjectID()

	require.NoError(t, svc.Hide(ctx, user, models.KindCheckIn, target))

	sets, err := svc.Sets(ctx, user)
	require.NoError(t, err)
	assert.False(t, sets.Visible(models.KindCheckIn, target))

	require.NoError(t, svc.Unhide(ctx, user, models.KindCheckIn, target))
	// Unhiding again is a no-op, not an error.
	require.NoError(t, svc.Unhide(ctx, user, models.KindCheckIn, target))

	sets, err = svc.Sets(ctx, user)
	require.NoError(t, err)
	assert.True(t, sets.Empty())
	assert.True(t, sets.Visible(models.KindCheckIn, target))
}

func TestSetsBucketsByDomain(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	review := primitive.NewObjectID()
	event := primitive.NewObjectID()
	promo := primitive.NewObjectID()

	require.NoError(t, svc.Hide(ctx, user, models.KindReview, review))
	require.NoError(t, svc.Hide(ctx, user, models.KindEvent, event))
	require.NoError(t, svc.Hide(ctx, user, models.KindPromotion, promo))

	sets, err := svc.Sets(ctx, user)
	require.NoError(t, err)

	assert.False(t, sets.Visible(models.KindReview, review))
	assert.False(t, sets.Visible(models.KindEvent, event))
	assert.False(t, sets.Visible(models.KindPromotion, promo))

	// Same id in a different bucket stays visible.
	assert.True(t, sets.Visible(models.KindEvent, review))
	assert.True(t, sets.Visible(models.KindReview, event))
	// Untouched ids stay visible.
	assert.True(t, sets.Visible(models.KindReview, primitive.NewObjectID()))

	// Query exclusion lists mirror the buckets.
	assert.Equal(t, []primitive.ObjectID{review}, sets.HiddenIDs(models.KindReview))
	assert.Equal(t, []primitive.ObjectID{event}, sets.HiddenIDs(models.KindEvent))
	assert.Equal(t, []primitive.ObjectID{promo}, sets.HiddenIDs(models.KindPromotion))
	assert.Nil(t, Sets{}.HiddenIDs(models.KindCheckIn))
}

func TestSetsAnonymousShortCircuits(t *testing.T) {
	svc, _ := setup(t)

	sets, err := svc.Sets(context.Background(), primitive.NilObjectID)
	require.NoError(t, err)
	assert.True(t, sets.Empty())
	assert.True(t, sets.Visible(models.KindReview, primitive.NewObjectID()))
}

func TestKeysUseRawTypes(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	invite := primitive.NewObjectID()

	require.NoError(t, svc.Hide(ctx, user, models.KindInvite, invite))

	keys, err := svc.Keys(ctx, user)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	// Stored as the model name, surfaced as the raw key.
	assert.Equal(t, models.KindInvite, keys[0].PostType)
	assert.Equal(t, invite.Hex(), keys[0].PostID)
}

func TestHideTagRequiresTag(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	tagged := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	photoTagged := primitive.NewObjectID()

	post := models.Review{
		ID:          primitive.NewObjectID(),
		UserID:      primitive.NewObjectID(),
		TaggedUsers: []primitive.ObjectID{tagged},
		Photos: []models.Photo{
			{PhotoKey: "photos/a.jpg", TaggedUsers: []primitive.ObjectID{photoTagged}},
		},
	}
	_, err := store.Collection(models.KindReview.CollectionName()).InsertOne(ctx, post)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.HideTag(ctx, stranger, models.KindReview, post.ID), ErrNotTagged)

	require.NoError(t, svc.HideTag(ctx, tagged, models.KindReview, post.ID))
	require.NoError(t, svc.HideTag(ctx, photoTagged, models.KindReview, post.ID))
	// Re-hiding stays a no-op.
	require.NoError(t, svc.HideTag(ctx, tagged, models.KindReview, post.ID))

	ids, err := svc.TagIDs(ctx, tagged)
	require.NoError(t, err)
	assert.Contains(t, ids, post.ID)

	require.NoError(t, svc.UnhideTag(ctx, tagged, models.KindReview, post.ID))
	ids, err = svc.TagIDs(ctx, tagged)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestHideTagMissingPost(t *testing.T) {
	svc, _ := setup(t)
	err := svc.HideTag(context.Background(), primitive.NewObjectID(), models.KindReview, primitive.NewObjectID())
	assert.True(t, IsNotFound(err))
}
