package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string             `bson:"email" json:"email"`
	FirstName     string             `bson:"firstName" json:"firstName"`
	LastName      string             `bson:"lastName" json:"lastName"`
	ProfilePicKey string             `bson:"profilePicKey,omitempty" json:"profilePicKey,omitempty"`
	Notifications []Notification     `bson:"notifications" json:"notifications"`
}

func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Business struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlaceID       string             `bson:"placeId,omitempty" json:"placeId,omitempty"`
	BusinessName  string             `bson:"businessName" json:"businessName"`
	LogoKey       string             `bson:"logoKey,omitempty" json:"logoKey,omitempty"`
	Notifications []Notification     `bson:"notifications" json:"notifications"`
}
