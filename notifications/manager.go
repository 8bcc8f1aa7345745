// Package notifications keeps per-user and per-business notification lists
// in lockstep with the live state of likes and comment trees. Creation is
// part of the primary flow; removal after deletes and unlikes is best-effort
// and never fails the mutation that triggered it.
package notifications

import (
	"context"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/danielkmetz/ActivityPal-sub002/database"
	"github.com/danielkmetz/ActivityPal-sub002/models"
)

// Recipient identifies a notification store: a user document or a business
// document.
type Recipient struct {
	ID         primitive.ObjectID
	IsBusiness bool
}

// Key is the five-tuple a like notification is deduplicated on. CommentID is
// the top-level ancestor and ReplyID the exact node; both are zero for
// post-level likes.
type Key struct {
	RelatedID primitive.ObjectID
	TargetID  primitive.ObjectID
	CommentID primitive.ObjectID
	ReplyID   primitive.ObjectID
	PostType  models.PostKind
}

type Manager struct {
	store *database.Store
	push  *Push // nil when web push is not configured
	log   *zap.Logger
}

func NewManager(store *database.Store, push *Push, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, push: push, log: log}
}

func (m *Manager) recipientColl(r Recipient) lungo.ICollection {
	if r.IsBusiness {
		return m.store.Businesses()
	}
	return m.store.Users()
}

// CommentAdded notifies the recipient that actor commented or replied.
// Self-notifications are skipped. typ is NotificationComment for top-level
// comments and NotificationReply for replies; commentID carries the
// top-level ancestor and replyID the new node (zero for top-level comments).
func (m *Manager) CommentAdded(ctx context.Context, r Recipient, typ string, actor primitive.ObjectID, actorName string, kind models.PostKind, postID, commentID, replyID primitive.ObjectID) error {
	if !r.IsBusiness && r.ID == actor {
		return nil
	}
	message := actorName + " commented on your post"
	if typ == models.NotificationReply {
		message = actorName + " replied to your comment"
	}
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		Type:      typ,
		Message:   message,
		RelatedID: actor,
		TypeRef:   "User",
		TargetID:  postID,
		TargetRef: kind.ModelName(),
		CommentID: commentID,
		ReplyID:   replyID,
		PostType:  kind,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	_, err := m.recipientColl(r).UpdateOne(ctx,
		bson.M{"_id": r.ID},
		bson.M{"$push": bson.M{"notifications": n}},
	)
	if err != nil {
		return err
	}
	m.deliver(r, n)
	return nil
}

// LikeToggled upserts or removes the like notification matching the
// five-tuple key. Liking while an identical notification exists is a no-op,
// so rapid toggling never stacks duplicates; unliking pulls the match.
func (m *Manager) LikeToggled(ctx context.Context, r Recipient, liked bool, key Key, actorName string) error {
	if !r.IsBusiness && r.ID == key.RelatedID {
		return nil
	}
	coll := m.recipientColl(r)

	match := bson.M{
		"type":      models.NotificationLike,
		"relatedId": key.RelatedID,
		"targetId":  key.TargetID,
		"commentId": key.CommentID,
		"replyId":   key.ReplyID,
		"postType":  key.PostType,
	}

	if !liked {
		_, err := coll.UpdateOne(ctx,
			bson.M{"_id": r.ID},
			bson.M{"$pull": bson.M{"notifications": match}},
		)
		return err
	}

	count, err := coll.CountDocuments(ctx, bson.M{
		"_id":           r.ID,
		"notifications": bson.M{"$elemMatch": match},
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	target := "your post"
	if !key.ReplyID.IsZero() {
		target = "your comment"
	}
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		Type:      models.NotificationLike,
		Message:   actorName + " liked " + target,
		RelatedID: key.RelatedID,
		TypeRef:   "User",
		TargetID:  key.TargetID,
		TargetRef: key.PostType.ModelName(),
		CommentID: key.CommentID,
		ReplyID:   key.ReplyID,
		PostType:  key.PostType,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	_, err = coll.UpdateOne(ctx,
		bson.M{"_id": r.ID},
		bson.M{"$push": bson.M{"notifications": n}},
	)
	if err != nil {
		return err
	}
	m.deliver(r, n)
	return nil
}

// CleanupAfterDelete removes every notification referencing a pruned
// subtree: like/reply notifications whose replyId is in the removed set,
// and, when a top-level comment was deleted, its original comment
// notification. The post owner's store type is unknown here, so both user
// and business stores are swept. Errors are logged and swallowed; a missed
// cleanup is cosmetic, the comment deletion already succeeded.
func (m *Manager) CleanupAfterDelete(ctx context.Context, kind models.PostKind, postID primitive.ObjectID, removedIDs []primitive.ObjectID, topLevelID primitive.ObjectID, topLevelDeleted bool) {
	m.bestEffort("cleanup after delete", m.cleanupAfterDelete(ctx, kind, postID, removedIDs, topLevelID, topLevelDeleted))
}

func (m *Manager) cleanupAfterDelete(ctx context.Context, kind models.PostKind, postID primitive.ObjectID, removedIDs []primitive.ObjectID, topLevelID primitive.ObjectID, topLevelDeleted bool) error {
	if len(removedIDs) > 0 {
		pull := bson.M{"$pull": bson.M{"notifications": bson.M{
			"type":     bson.M{"$in": bson.A{models.NotificationLike, models.NotificationReply}},
			"postType": kind,
			"targetId": postID,
			"replyId":  bson.M{"$in": removedIDs},
		}}}
		if err := m.sweep(ctx, pull); err != nil {
			return err
		}
	}
	if topLevelDeleted {
		pull := bson.M{"$pull": bson.M{"notifications": bson.M{
			"type":      models.NotificationComment,
			"postType":  kind,
			"targetId":  postID,
			"commentId": topLevelID,
		}}}
		if err := m.sweep(ctx, pull); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) sweep(ctx context.Context, update bson.M) error {
	if _, err := m.store.Users().UpdateMany(ctx, bson.M{}, update); err != nil {
		return err
	}
	if _, err := m.store.Businesses().UpdateMany(ctx, bson.M{}, update); err != nil {
		return err
	}
	return nil
}

// List returns the recipient's notifications, newest first.
func (m *Manager) List(ctx context.Context, r Recipient) ([]models.Notification, error) {
	var doc struct {
		Notifications []models.Notification `bson:"notifications"`
	}
	err := m.recipientColl(r).FindOne(ctx, bson.M{"_id": r.ID}).Decode(&doc)
	if err != nil {
		return nil, err
	}
	out := doc.Notifications
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if out == nil {
		out = []models.Notification{}
	}
	return out, nil
}

// MarkRead flags one notification as read. Unknown ids are a no-op.
func (m *Manager) MarkRead(ctx context.Context, r Recipient, notificationID primitive.ObjectID) error {
	coll := m.recipientColl(r)

	var doc struct {
		Notifications []models.Notification `bson:"notifications"`
	}
	if err := coll.FindOne(ctx, bson.M{"_id": r.ID}).Decode(&doc); err != nil {
		return err
	}
	changed := false
	for i := range doc.Notifications {
		if doc.Notifications[i].ID == notificationID && !doc.Notifications[i].Read {
			doc.Notifications[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	_, err := coll.UpdateOne(ctx,
		bson.M{"_id": r.ID},
		bson.M{"$set": bson.M{"notifications": doc.Notifications}},
	)
	return err
}

// bestEffort logs secondary-effect failures without propagating them.
func (m *Manager) bestEffort(op string, err error) {
	if err != nil {
		m.log.Warn("notification cleanup failed",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (m *Manager) deliver(r Recipient, n models.Notification) {
	if m.push == nil || r.IsBusiness {
		return
	}
	m.push.Send(r.ID, n)
}
