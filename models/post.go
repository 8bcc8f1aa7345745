package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Photo is an uploaded image attached to a post, with per-photo tags.
type Photo struct {
	PhotoKey    string               `bson:"photoKey" json:"photoKey"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	TaggedUsers []primitive.ObjectID `bson:"taggedUsers,omitempty" json:"taggedUsers,omitempty"`
	URL         string               `bson:"-" json:"url,omitempty"` // presigned, response only
}

// PostDoc is the partial shape shared by every post kind: identity, owner,
// comment tree, likes and tag surfaces. Mutation paths decode whichever
// collection the kind resolves to into this struct, change it in memory and
// write the touched arrays back.
type PostDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	UserID      primitive.ObjectID   `bson:"userId,omitempty"`
	BusinessID  primitive.ObjectID   `bson:"businessId,omitempty"`
	Comments    []Comment            `bson:"comments"`
	Likes       []Like               `bson:"likes"`
	TaggedUsers []primitive.ObjectID `bson:"taggedUsers,omitempty"`
	Photos      []Photo              `bson:"photos,omitempty"`
	SortDate    time.Time            `bson:"sortDate"`
}

// OwnerIsBusiness reports whether the post belongs to a business document
// rather than a user document.
func (p *PostDoc) OwnerIsBusiness() bool {
	return !p.BusinessID.IsZero()
}

// OwnerID returns the owning user or business id.
func (p *PostDoc) OwnerID() primitive.ObjectID {
	if p.OwnerIsBusiness() {
		return p.BusinessID
	}
	return p.UserID
}

// IsTagged reports whether the user is tagged on the post itself or in any
// of its photos. Tag-hiding requires this precondition.
func (p *PostDoc) IsTagged(userID primitive.ObjectID) bool {
	for _, id := range p.TaggedUsers {
		if id == userID {
			return true
		}
	}
	for _, ph := range p.Photos {
		for _, id := range ph.TaggedUsers {
			if id == userID {
				return true
			}
		}
	}
	return false
}

// Review of a business, written by a user.
type Review struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID   `bson:"userId" json:"userId"`
	PlaceID      string               `bson:"placeId" json:"placeId"`
	BusinessName string               `bson:"businessName" json:"businessName"`
	Rating       int                  `bson:"rating" json:"rating"`
	ReviewText   string               `bson:"reviewText" json:"reviewText"`
	Photos       []Photo              `bson:"photos" json:"photos"`
	TaggedUsers  []primitive.ObjectID `bson:"taggedUsers,omitempty" json:"taggedUsers,omitempty"`
	Comments     []Comment            `bson:"comments" json:"comments"`
	Likes        []Like               `bson:"likes" json:"likes"`
	SortDate     time.Time            `bson:"sortDate" json:"sortDate"`
}

// CheckIn marks a user's visit to a place.
type CheckIn struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID   `bson:"userId" json:"userId"`
	PlaceID     string               `bson:"placeId" json:"placeId"`
	Message     string               `bson:"message" json:"message"`
	Photos      []Photo              `bson:"photos" json:"photos"`
	TaggedUsers []primitive.ObjectID `bson:"taggedUsers,omitempty" json:"taggedUsers,omitempty"`
	Comments    []Comment            `bson:"comments" json:"comments"`
	Likes       []Like               `bson:"likes" json:"likes"`
	SortDate    time.Time            `bson:"sortDate" json:"sortDate"`
}

// ActivityInvite asks friends to join an outing.
type ActivityInvite struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID   `bson:"userId" json:"userId"`
	PlaceID    string               `bson:"placeId" json:"placeId"`
	Note       string               `bson:"note" json:"note"`
	DateTime   time.Time            `bson:"dateTime" json:"dateTime"`
	Recipients []primitive.ObjectID `bson:"recipients" json:"recipients"`
	Comments   []Comment            `bson:"comments" json:"comments"`
	Likes      []Like               `bson:"likes" json:"likes"`
	SortDate   time.Time            `bson:"sortDate" json:"sortDate"`
}

// Promotion is a business-owned offer post.
type Promotion struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID  primitive.ObjectID `bson:"businessId" json:"businessId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Photos      []Photo            `bson:"photos" json:"photos"`
	Comments    []Comment          `bson:"comments" json:"comments"`
	Likes       []Like             `bson:"likes" json:"likes"`
	SortDate    time.Time          `bson:"sortDate" json:"sortDate"`
}

// Event is a business-owned happening with a date.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID  primitive.ObjectID `bson:"businessId" json:"businessId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Date        time.Time          `bson:"date" json:"date"`
	Photos      []Photo            `bson:"photos" json:"photos"`
	Comments    []Comment          `bson:"comments" json:"comments"`
	Likes       []Like             `bson:"likes" json:"likes"`
	SortDate    time.Time          `bson:"sortDate" json:"sortDate"`
}

// SharedPost wraps another post reshared by a user.
type SharedPost struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	OriginalType PostKind           `bson:"originalType" json:"originalType"`
	OriginalID   primitive.ObjectID `bson:"originalId" json:"originalId"`
	Caption      string             `bson:"caption" json:"caption"`
	Comments     []Comment          `bson:"comments" json:"comments"`
	Likes        []Like             `bson:"likes" json:"likes"`
	SortDate     time.Time          `bson:"sortDate" json:"sortDate"`
}
