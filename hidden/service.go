// Package hidden maintains per-user hidden-post and hidden-tag sets and
// applies them as a single reusable filter across every feed read path.
package hidden

import (
	"context"
	"errors"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielkmetz/ActivityPal-sub002/database"
	"github.com/danielkmetz/ActivityPal-sub002/models"
)

// ErrNotTagged rejects hiding a tag on a post the user is not tagged in.
var ErrNotTagged = errors.New("user is not tagged in this post")

type Service struct {
	store *database.Store
}

func NewService(store *database.Store) *Service {
	return &Service{store: store}
}

// Hide upserts a hidden-post row keyed on (userId, targetRef, targetId).
// Hiding an already-hidden post is a no-op.
func (s *Service) Hide(ctx context.Context, userID primitive.ObjectID, kind models.PostKind, targetID primitive.ObjectID) error {
	return upsertRow(ctx, s.store.HiddenPosts(), userID, kind, targetID)
}

// Unhide deletes the matching row. Unhiding a post that was never hidden is
// a no-op, not an error.
func (s *Service) Unhide(ctx context.Context, userID primitive.ObjectID, kind models.PostKind, targetID primitive.ObjectID) error {
	_, err := s.store.HiddenPosts().DeleteOne(ctx, rowFilter(userID, kind, targetID))
	return err
}

// List returns every hidden-post row for the user, newest first.
func (s *Service) List(ctx context.Context, userID primitive.ObjectID) ([]models.HiddenPost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.store.HiddenPosts().Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []models.HiddenPost{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Key is a hidden item id with its public raw-type string, for client boot
// hydration.
type Key struct {
	PostType models.PostKind `json:"postType"`
	PostID   string          `json:"postId"`
}

// Keys maps the user's hidden rows to (rawType, id) pairs. Rows whose
// targetRef no longer parses are skipped rather than failing the whole list.
func (s *Service) Keys(ctx context.Context, userID primitive.ObjectID) ([]Key, error) {
	rows, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	keys := []Key{}
	for _, row := range rows {
		kind, ok := models.KindFromModelName(row.TargetRef)
		if !ok {
			continue
		}
		keys = append(keys, Key{PostType: kind, PostID: row.TargetID.Hex()})
	}
	return keys, nil
}

// Sets holds a viewer's hidden ids bucketed by target domain. The zero value
// hides nothing, which is what anonymous viewers get.
type Sets struct {
	generic    map[primitive.ObjectID]struct{}
	events     map[primitive.ObjectID]struct{}
	promotions map[primitive.ObjectID]struct{}
}

// Empty reports whether the viewer has nothing hidden.
func (s Sets) Empty() bool {
	return len(s.generic) == 0 && len(s.events) == 0 && len(s.promotions) == 0
}

func (s Sets) bucket(kind models.PostKind) map[primitive.ObjectID]struct{} {
	switch kind.Bucket() {
	case models.BucketEvent:
		return s.events
	case models.BucketPromotion:
		return s.promotions
	default:
		return s.generic
	}
}

// Visible reports whether a post survives the filter.
func (s Sets) Visible(kind models.PostKind, id primitive.ObjectID) bool {
	_, hidden := s.bucket(kind)[id]
	return !hidden
}

// HiddenIDs returns the ids a query for the kind must exclude, so hidden
// posts never consume slots of a limit-bounded page.
func (s Sets) HiddenIDs(kind models.PostKind) []primitive.ObjectID {
	bucket := s.bucket(kind)
	if len(bucket) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	return ids
}

// Sets loads the viewer's hidden ids once. Anonymous viewers get the empty
// set without a query.
func (s *Service) Sets(ctx context.Context, viewerID primitive.ObjectID) (Sets, error) {
	if viewerID.IsZero() {
		return Sets{}, nil
	}
	rows, err := s.List(ctx, viewerID)
	if err != nil {
		return Sets{}, err
	}
	out := Sets{
		generic:    map[primitive.ObjectID]struct{}{},
		events:     map[primitive.ObjectID]struct{}{},
		promotions: map[primitive.ObjectID]struct{}{},
	}
	for _, row := range rows {
		kind, ok := models.KindFromModelName(row.TargetRef)
		if !ok {
			continue
		}
		switch kind.Bucket() {
		case models.BucketEvent:
			out.events[row.TargetID] = struct{}{}
		case models.BucketPromotion:
			out.promotions[row.TargetID] = struct{}{}
		default:
			out.generic[row.TargetID] = struct{}{}
		}
	}
	return out, nil
}

// HideTag hides a tagged-appearance, after verifying the user is actually
// tagged in the post (post-level or any photo). Re-hiding is a no-op.
func (s *Service) HideTag(ctx context.Context, userID primitive.ObjectID, kind models.PostKind, targetID primitive.ObjectID) error {
	var post models.PostDoc
	err := s.store.Collection(kind.CollectionName()).
		FindOne(ctx, bson.M{"_id": targetID}).Decode(&post)
	if err != nil {
		return err
	}
	if !post.IsTagged(userID) {
		return ErrNotTagged
	}
	return upsertRow(ctx, s.store.HiddenTags(), userID, kind, targetID)
}

// UnhideTag deletes the matching hidden-tag row; missing rows are a no-op.
func (s *Service) UnhideTag(ctx context.Context, userID primitive.ObjectID, kind models.PostKind, targetID primitive.ObjectID) error {
	_, err := s.store.HiddenTags().DeleteOne(ctx, rowFilter(userID, kind, targetID))
	return err
}

// ListTags returns the user's hidden-tag rows, newest first.
func (s *Service) ListTags(ctx context.Context, userID primitive.ObjectID) ([]models.HiddenTag, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.store.HiddenTags().Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []models.HiddenTag{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// TagIDs returns the set of post ids hidden from the user's tagged surfaces.
func (s *Service) TagIDs(ctx context.Context, userID primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	rows, err := s.ListTags(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make(map[primitive.ObjectID]struct{}, len(rows))
	for _, row := range rows {
		ids[row.TargetID] = struct{}{}
	}
	return ids, nil
}

// IsNotFound reports whether err means the target post does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func rowFilter(userID primitive.ObjectID, kind models.PostKind, targetID primitive.ObjectID) bson.M {
	return bson.M{
		"userId":    userID,
		"targetRef": kind.ModelName(),
		"targetId":  targetID,
	}
}

func upsertRow(ctx context.Context, coll lungo.ICollection, userID primitive.ObjectID, kind models.PostKind, targetID primitive.ObjectID) error {
	_, err := coll.UpdateOne(ctx,
		rowFilter(userID, kind, targetID),
		bson.M{"$setOnInsert": bson.M{
			"userId":    userID,
			"targetRef": kind.ModelName(),
			"targetId":  targetID,
			"createdAt": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
