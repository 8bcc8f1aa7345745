package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationComment = "comment"
	NotificationReply   = "reply"
	NotificationLike    = "like"
)

// Notification lives in a user's or business's notifications array.
// RelatedID is the acting user; TargetID is the post the event happened on.
// CommentID carries the top-level ancestor comment and ReplyID the exact
// node, so like/reply notifications can be pulled precisely when their node
// is deleted or unliked.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Type      string             `bson:"type" json:"type"`
	Message   string             `bson:"message" json:"message"`
	RelatedID primitive.ObjectID `bson:"relatedId" json:"relatedId"`
	TypeRef   string             `bson:"typeRef" json:"typeRef"` // User or Business (actor)
	TargetID  primitive.ObjectID `bson:"targetId" json:"targetId"`
	TargetRef string             `bson:"targetRef" json:"targetRef"` // model name of the post
	CommentID primitive.ObjectID `bson:"commentId" json:"commentId"`
	ReplyID   primitive.ObjectID `bson:"replyId" json:"replyId"`
	PostType  PostKind           `bson:"postType" json:"postType"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
