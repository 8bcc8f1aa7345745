package feed

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/danielkmetz/ActivityPal-sub002/database"
	"github.com/danielkmetz/ActivityPal-sub002/hidden"
	"github.com/danielkmetz/ActivityPal-sub002/models"
	"github.com/danielkmetz/ActivityPal-sub002/storage"
)

// Service builds feed pages: per-kind cursor queries merged descending,
// hidden-content filtering, and author denormalization.
type Service struct {
	store   *database.Store
	hidden  *hidden.Service
	storage *storage.S3
	log     *zap.Logger
}

func NewService(store *database.Store, hiddenSvc *hidden.Service, s3 *storage.S3, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, hidden: hiddenSvc, storage: s3, log: log}
}

// pageKinds are the post kinds the main feed serves; also the only kinds
// that advance the cursor.
var pageKinds = []models.PostKind{models.KindReview, models.KindCheckIn, models.KindInvite}

// Page returns up to limit items strictly older than after, sorted
// descending by sortDate with ids breaking ties, with the viewer's hidden
// posts removed. A short page signals exhaustion to the client.
func (s *Service) Page(ctx context.Context, viewerID primitive.ObjectID, limit int, after *Cursor) ([]Item, error) {
	sets, err := s.hidden.Sets(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	var merged []Item
	for _, kind := range pageKinds {
		items, err := s.queryKind(ctx, kind, limit, after, sets)
		if err != nil {
			return nil, err
		}
		merged = append(merged, items...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].SortDate.Equal(merged[j].SortDate) {
			return merged[i].SortDate.After(merged[j].SortDate)
		}
		return merged[i].ID.Hex() > merged[j].ID.Hex()
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	if err := s.attachAuthors(ctx, merged); err != nil {
		// Authors are decoration; the page itself is still valid.
		s.log.Warn("feed author enrichment failed", zap.Error(err))
	}
	if merged == nil {
		merged = []Item{}
	}
	return merged, nil
}

func cursorFilter(after *Cursor) bson.M {
	if after == nil {
		return bson.M{}
	}
	return bson.M{"$or": bson.A{
		bson.M{"sortDate": bson.M{"$lt": after.SortDate}},
		bson.M{"sortDate": after.SortDate, "_id": bson.M{"$lt": after.ID}},
	}}
}

func (s *Service) queryKind(ctx context.Context, kind models.PostKind, limit int, after *Cursor, sets hidden.Sets) ([]Item, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "sortDate", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	// Hidden posts are excluded in the query itself. Filtering after the
	// limit-bounded fetch would let hidden posts consume page slots and make
	// a short page look like exhaustion while visible posts remain.
	filter := cursorFilter(after)
	if ids := sets.HiddenIDs(kind); len(ids) > 0 {
		filter["_id"] = bson.M{"$nin": ids}
	}

	cursor, err := s.store.Collection(kind.CollectionName()).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []Item
	for cursor.Next(ctx) {
		it, err := s.decodeItem(kind, cursor.Decode)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, cursor.Err()
}

func (s *Service) decodeItem(kind models.PostKind, decode func(interface{}) error) (Item, error) {
	switch kind {
	case models.KindReview:
		var doc models.Review
		if err := decode(&doc); err != nil {
			return Item{}, err
		}
		s.presignPhotos(doc.Photos)
		return Item{Type: string(kind), ID: doc.ID, SortDate: doc.SortDate, Post: doc,
			Author: &Author{ID: doc.UserID}}, nil
	case models.KindCheckIn:
		var doc models.CheckIn
		if err := decode(&doc); err != nil {
			return Item{}, err
		}
		s.presignPhotos(doc.Photos)
		return Item{Type: string(kind), ID: doc.ID, SortDate: doc.SortDate, Post: doc,
			Author: &Author{ID: doc.UserID}}, nil
	default:
		var doc models.ActivityInvite
		if err := decode(&doc); err != nil {
			return Item{}, err
		}
		return Item{Type: string(kind), ID: doc.ID, SortDate: doc.SortDate, Post: doc,
			Author: &Author{ID: doc.UserID}}, nil
	}
}

func (s *Service) presignPhotos(photos []models.Photo) {
	if s.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := range photos {
		url, err := s.storage.PresignGet(ctx, photos[i].PhotoKey)
		if err != nil {
			s.log.Warn("photo presign failed", zap.String("key", photos[i].PhotoKey), zap.Error(err))
			continue
		}
		photos[i].URL = url
	}
}

// attachAuthors resolves the owning users for a page in one query and fills
// in names and presigned profile pictures.
func (s *Service) attachAuthors(ctx context.Context, items []Item) error {
	idSet := map[primitive.ObjectID]struct{}{}
	for _, it := range items {
		if it.Author != nil && !it.Author.ID.IsZero() {
			idSet[it.Author.ID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	cursor, err := s.store.Users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return err
	}

	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for i := range items {
		author := items[i].Author
		if author == nil {
			continue
		}
		user, ok := byID[author.ID]
		if !ok {
			author.Name = "Unknown User"
			continue
		}
		author.Name = user.FullName()
		if s.storage != nil && user.ProfilePicKey != "" {
			if url, err := s.storage.PresignGet(ctx, user.ProfilePicKey); err == nil {
				author.ProfilePicURL = url
			}
		}
	}
	return nil
}
