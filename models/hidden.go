package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HiddenPost suppresses an entire post for one user. Unique per
// (userId, targetRef, targetId).
type HiddenPost struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	TargetRef string             `bson:"targetRef" json:"targetRef"` // post model name
	TargetID  primitive.ObjectID `bson:"targetId" json:"targetId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// HiddenTag suppresses a post from the user's tagged-in surfaces only.
// Same uniqueness rule as HiddenPost.
type HiddenTag struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	TargetRef string             `bson:"targetRef" json:"targetRef"`
	TargetID  primitive.ObjectID `bson:"targetId" json:"targetId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
