// Package handlers exposes the REST surface over the comment tree engine,
// the hidden-content filter, the notification manager and the feed service.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/danielkmetz/ActivityPal-sub002/database"
	"github.com/danielkmetz/ActivityPal-sub002/feed"
	"github.com/danielkmetz/ActivityPal-sub002/hidden"
	"github.com/danielkmetz/ActivityPal-sub002/middleware"
	"github.com/danielkmetz/ActivityPal-sub002/models"
	"github.com/danielkmetz/ActivityPal-sub002/notifications"
	"github.com/danielkmetz/ActivityPal-sub002/storage"
)

type Handlers struct {
	store    *database.Store
	notifs   *notifications.Manager
	push     *notifications.Push
	hidden   *hidden.Service
	feed     *feed.Service
	media    *storage.S3
	log      *zap.Logger
	pageSize int
}

func New(store *database.Store, notifs *notifications.Manager, push *notifications.Push, hiddenSvc *hidden.Service, feedSvc *feed.Service, media *storage.S3, log *zap.Logger, pageSize int) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 15
	}
	return &Handlers{
		store:    store,
		notifs:   notifs,
		push:     push,
		hidden:   hiddenSvc,
		feed:     feedSvc,
		media:    media,
		log:      log,
		pageSize: pageSize,
	}
}

// requestLog attaches the correlation id so 500s can be traced.
func (h *Handlers) requestLog(c *gin.Context) *zap.Logger {
	return h.log.With(zap.String("requestId", c.GetString(middleware.RequestIDKey)))
}

// currentUser reads the authenticated caller off the context. Responds 401
// and returns false when the token produced no usable id.
func (h *Handlers) currentUser(c *gin.Context) (primitive.ObjectID, string, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, "", false
	}
	return id, c.GetString("fullName"), true
}

// parsePostRef resolves the :postType/:postId segments. Responds 400 on
// unknown kinds or malformed ids.
func parsePostRef(c *gin.Context) (models.PostKind, primitive.ObjectID, bool) {
	kind, ok := models.ParsePostKind(c.Param("postType"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post type"})
		return "", primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return "", primitive.NilObjectID, false
	}
	return kind, id, true
}

// loadPost fetches the partial post document the mutation paths work on.
func (h *Handlers) loadPost(ctx context.Context, kind models.PostKind, id primitive.ObjectID) (*models.PostDoc, error) {
	var post models.PostDoc
	err := h.store.Collection(kind.CollectionName()).FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// saveArrays writes the mutated embedded arrays back. A targeted $set keeps
// the lost-update window as small as the read-modify-write pattern allows.
func (h *Handlers) saveArrays(ctx context.Context, kind models.PostKind, id primitive.ObjectID, fields bson.M) error {
	res, err := h.store.Collection(kind.CollectionName()).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func ownerRecipient(post *models.PostDoc) notifications.Recipient {
	return notifications.Recipient{ID: post.OwnerID(), IsBusiness: post.OwnerIsBusiness()}
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// presignComment fills the response-only media URL. Failures just omit the
// URL; the comment data is already correct.
func (h *Handlers) presignComment(ctx context.Context, node *models.Comment) {
	if node.Media == nil {
		return
	}
	url, err := h.media.PresignGet(ctx, node.Media.PhotoKey)
	if err != nil {
		h.log.Warn("comment media presign failed", zap.Error(err))
		return
	}
	node.MediaURL = url
}
