package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaRef points at an uploaded photo or video by storage key.
type MediaRef struct {
	PhotoKey  string `bson:"photoKey" json:"photoKey"`
	MediaType string `bson:"mediaType" json:"mediaType"` // image, video
}

// Like is embedded in a post's, comment's or reply's likes array. At most one
// entry per userId per target.
type Like struct {
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	FullName string             `bson:"fullName" json:"fullName"`
	Date     time.Time          `bson:"date" json:"date"`
}

// Comment is a node in a post's comment tree. Replies hold the same shape,
// so the tree nests to arbitrary depth. A comment must carry non-empty text
// or media.
type Comment struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	FullName    string             `bson:"fullName" json:"fullName"`
	CommentText string             `bson:"commentText" json:"commentText"`
	Media       *MediaRef          `bson:"media,omitempty" json:"media,omitempty"`
	Likes       []Like             `bson:"likes" json:"likes"`
	Replies     []Comment          `bson:"replies" json:"replies"`
	Date        time.Time          `bson:"date" json:"date"`
	MediaURL    string             `bson:"-" json:"mediaUrl,omitempty"` // presigned, response only
}
