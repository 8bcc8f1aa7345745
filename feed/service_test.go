package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielkmetz/ActivityPal-sub002/database"
	"github.com/danielkmetz/ActivityPal-sub002/hidden"
	"github.com/danielkmetz/ActivityPal-sub002/models"
)

func setupService(t *testing.T) (*Service, *hidden.Service, *database.Store) {
	t.Helper()
	store, err := database.OpenMemory("test-feed")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	hiddenSvc := hidden.NewService(store)
	return NewService(store, hiddenSvc, nil, nil), hiddenSvc, store
}

func seedReview(t *testing.T, store *database.Store, user primitive.ObjectID, age time.Duration) models.Review {
	t.Helper()
	doc := models.Review{
		ID:         primitive.NewObjectID(),
		UserID:     user,
		PlaceID:    "place-1",
		Rating:     4,
		ReviewText: "solid",
		Photos:     []models.Photo{},
		Comments:   []models.Comment{},
		Likes:      []models.Like{},
		SortDate:   time.Now().Add(-age).UTC().Truncate(time.Millisecond),
	}
	_, err := store.Collection(models.KindReview.CollectionName()).InsertOne(context.Background(), doc)
	require.NoError(t, err)
	return doc
}

func seedCheckIn(t *testing.T, store *database.Store, user primitive.ObjectID, age time.Duration) models.CheckIn {
	t.Helper()
	doc := models.CheckIn{
		ID:       primitive.NewObjectID(),
		UserID:   user,
		PlaceID:  "place-2",
		Message:  "here now",
		Photos:   []models.Photo{},
		Comments: []models.Comment{},
		Likes:    []models.Like{},
		SortDate: time.Now().Add(-age).UTC().Truncate(time.Millisecond),
	}
	_, err := store.Collection(models.KindCheckIn.CollectionName()).InsertOne(context.Background(), doc)
	require.NoError(t, err)
	return doc
}

func TestPageMergesKindsDescending(t *testing.T) {
	svc, _, store := setupService(t)
	ctx := context.Background()
	author := primitive.NewObjectID()

	oldest := seedReview(t, store, author, 3*time.Hour)
	middle := seedCheckIn(t, store, author, 2*time.Hour)
	newest := seedReview(t, store, author, 1*time.Hour)

	page, err := svc.Page(ctx, primitive.NilObjectID, 10, nil)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, newest.ID, page[0].ID)
	assert.Equal(t, middle.ID, page[1].ID)
	assert.Equal(t, oldest.ID, page[2].ID)
	assert.Equal(t, "review", page[0].Type)
	assert.Equal(t, "check-in", page[1].Type)
}

func TestPageCursorWalksBackward(t *testing.T) {
	svc, _, store := setupService(t)
	ctx := context.Background()
	author := primitive.NewObjectID()

	var seeded []models.Review
	for i := 1; i <= 5; i++ {
		seeded = append(seeded, seedReview(t, store, author, time.Duration(i)*time.Hour))
	}

	first, err := svc.Page(ctx, primitive.NilObjectID, 2, nil)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, seeded[0].ID, first[0].ID)
	assert.Equal(t, seeded[1].ID, first[1].ID)

	after := &Cursor{SortDate: first[1].SortDate, ID: first[1].ID}
	second, err := svc.Page(ctx, primitive.NilObjectID, 2, after)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, seeded[2].ID, second[0].ID)
	assert.Equal(t, seeded[3].ID, second[1].ID)

	after = &Cursor{SortDate: second[1].SortDate, ID: second[1].ID}
	third, err := svc.Page(ctx, primitive.NilObjectID, 2, after)
	require.NoError(t, err)
	require.Len(t, third, 1, "short page signals exhaustion")
	assert.Equal(t, seeded[4].ID, third[0].ID)
}

func TestPageAppliesHiddenFilter(t *testing.T) {
	svc, hiddenSvc, store := setupService(t)
	ctx := context.Background()
	author := primitive.NewObjectID()
	viewer := primitive.NewObjectID()

	visible := seedReview(t, store, author, 1*time.Hour)
	suppressed := seedCheckIn(t, store, author, 2*time.Hour)

	require.NoError(t, hiddenSvc.Hide(ctx, viewer, models.KindCheckIn, suppressed.ID))

	page, err := svc.Page(ctx, viewer, 10, nil)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, visible.ID, page[0].ID)

	// Other viewers are unaffected.
	page, err = svc.Page(ctx, primitive.NewObjectID(), 10, nil)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestPageHiddenPostsDoNotConsumeLimit(t *testing.T) {
	svc, hiddenSvc, store := setupService(t)
	ctx := context.Background()
	author := primitive.NewObjectID()
	viewer := primitive.NewObjectID()

	newest := seedReview(t, store, author, 1*time.Hour)
	second := seedReview(t, store, author, 2*time.Hour)
	third := seedReview(t, store, author, 3*time.Hour)
	fourth := seedReview(t, store, author, 4*time.Hour)

	// The two newest posts fill the query window; hiding them must not
	// shorten the page while older visible posts remain.
	require.NoError(t, hiddenSvc.Hide(ctx, viewer, models.KindReview, newest.ID))
	require.NoError(t, hiddenSvc.Hide(ctx, viewer, models.KindReview, second.ID))

	page, err := svc.Page(ctx, viewer, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, third.ID, page[0].ID)
	assert.Equal(t, fourth.ID, page[1].ID)
}

func TestPageAttachesAuthors(t *testing.T) {
	svc, _, store := setupService(t)
	ctx := context.Background()

	user := models.User{
		ID:            primitive.NewObjectID(),
		FirstName:     "Dana",
		LastName:      "Reyes",
		Notifications: []models.Notification{},
	}
	_, err := store.Users().InsertOne(ctx, user)
	require.NoError(t, err)

	seedReview(t, store, user.ID, time.Hour)
	seedReview(t, store, primitive.NewObjectID(), 2*time.Hour) // no user doc

	page, err := svc.Page(ctx, primitive.NilObjectID, 10, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, page[0].Author)
	assert.Equal(t, "Dana Reyes", page[0].Author.Name)
	assert.Equal(t, "Unknown User", page[1].Author.Name)
}

func TestPageEmptyFeed(t *testing.T) {
	svc, _, _ := setupService(t)
	page, err := svc.Page(context.Background(), primitive.NilObjectID, 10, nil)
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}
