package models

// PostKind is the closed set of post types that can carry comments, likes
// and hidden-state. Values are the raw keys used in URLs and client payloads.
type PostKind string

const (
	KindReview     PostKind = "review"
	KindCheckIn    PostKind = "check-in"
	KindInvite     PostKind = "invite"
	KindPromotion  PostKind = "promotion"
	KindEvent      PostKind = "event"
	KindSharedPost PostKind = "shared-post"
)

// HiddenBucket groups post kinds into the domains the hidden-content filter
// tracks separately.
type HiddenBucket int

const (
	BucketGeneric HiddenBucket = iota
	BucketEvent
	BucketPromotion
)

// ParsePostKind resolves a raw key from a URL segment. The second return is
// false for anything outside the closed set.
func ParsePostKind(raw string) (PostKind, bool) {
	switch PostKind(raw) {
	case KindReview, KindCheckIn, KindInvite, KindPromotion, KindEvent, KindSharedPost:
		return PostKind(raw), true
	}
	return "", false
}

// KindFromModelName maps a stored targetRef (internal model name) back to its
// raw key, e.g. "ActivityInvite" -> "invite".
func KindFromModelName(ref string) (PostKind, bool) {
	for _, k := range AllPostKinds() {
		if k.ModelName() == ref {
			return k, true
		}
	}
	return "", false
}

// AllPostKinds returns every member of the closed set.
func AllPostKinds() []PostKind {
	return []PostKind{KindReview, KindCheckIn, KindInvite, KindPromotion, KindEvent, KindSharedPost}
}

// ModelName is the internal model name stored as targetRef on hidden rows.
func (k PostKind) ModelName() string {
	switch k {
	case KindReview:
		return "Review"
	case KindCheckIn:
		return "CheckIn"
	case KindInvite:
		return "ActivityInvite"
	case KindPromotion:
		return "Promotion"
	case KindEvent:
		return "Event"
	case KindSharedPost:
		return "SharedPost"
	}
	return ""
}

// CollectionName is the MongoDB collection holding documents of this kind.
func (k PostKind) CollectionName() string {
	switch k {
	case KindReview:
		return "reviews"
	case KindCheckIn:
		return "checkins"
	case KindInvite:
		return "invites"
	case KindPromotion:
		return "promotions"
	case KindEvent:
		return "events"
	case KindSharedPost:
		return "sharedPosts"
	}
	return ""
}

// Bucket returns the hidden-filter domain for this kind.
func (k PostKind) Bucket() HiddenBucket {
	switch k {
	case KindEvent:
		return BucketEvent
	case KindPromotion:
		return BucketPromotion
	default:
		return BucketGeneric
	}
}

// Cursorable reports whether items of this kind advance the feed cursor.
// Only the feed's primary kinds do; synthetic rows never move the cursor.
func (k PostKind) Cursorable() bool {
	switch k {
	case KindReview, KindCheckIn, KindInvite:
		return true
	}
	return false
}
