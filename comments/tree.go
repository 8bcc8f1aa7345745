// Package comments implements the mutations on a post's nested comment/reply
// tree. All functions operate on the in-memory tree; persisting the changed
// array and running notification/media cleanup is the caller's job.
package comments

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielkmetz/ActivityPal-sub002/models"
)

// ErrEmptyComment rejects a comment with neither text nor media.
var ErrEmptyComment = errors.New("comment requires text or media")

// FindResult reports where a node sits in the tree. Siblings points at the
// slice physically containing the node, so removal and insertion work at any
// depth. TopLevelID is the root comment the node descends from (the node's
// own id when it is top-level). ParentID and ParentAuthorID are zero for
// top-level comments; the post owner stands in as the parent author there.
type FindResult struct {
	Node           *models.Comment
	Siblings       *[]models.Comment
	Index          int
	TopLevelID     primitive.ObjectID
	ParentID       primitive.ObjectID
	ParentAuthorID primitive.ObjectID
}

// Find locates a comment or reply by id at any depth. Returns nil when the
// id is not in the tree.
func Find(tree *[]models.Comment, targetID primitive.ObjectID) *FindResult {
	return find(tree, targetID, primitive.NilObjectID, primitive.NilObjectID, primitive.NilObjectID)
}

func find(siblings *[]models.Comment, target, topLevel, parentID, parentAuthor primitive.ObjectID) *FindResult {
	for i := range *siblings {
		node := &(*siblings)[i]
		top := topLevel
		if top.IsZero() {
			top = node.ID
		}
		if node.ID == target {
			return &FindResult{
				Node:           node,
				Siblings:       siblings,
				Index:          i,
				TopLevelID:     top,
				ParentID:       parentID,
				ParentAuthorID: parentAuthor,
			}
		}
		if res := find(&node.Replies, target, top, node.ID, node.UserID); res != nil {
			return res
		}
	}
	return nil
}

// Validate enforces the text-or-media invariant before persistence.
func Validate(text string, media *models.MediaRef) error {
	if strings.TrimSpace(text) != "" {
		return nil
	}
	if media != nil && media.PhotoKey != "" {
		return nil
	}
	return ErrEmptyComment
}

// New builds a comment node ready for insertion.
func New(userID primitive.ObjectID, fullName, text string, media *models.MediaRef) models.Comment {
	return models.Comment{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		FullName:    fullName,
		CommentText: text,
		Media:       media,
		Likes:       []models.Like{},
		Replies:     []models.Comment{},
		Date:        time.Now().UTC(),
	}
}

// InsertReply appends reply to the replies of the node matching parentID,
// top-level or nested. Returns the parent's context, or nil when the parent
// is not in the tree.
func InsertReply(tree *[]models.Comment, parentID primitive.ObjectID, reply models.Comment) *FindResult {
	res := Find(tree, parentID)
	if res == nil {
		return nil
	}
	res.Node.Replies = append(res.Node.Replies, reply)
	return res
}

// EditResult carries what Edit replaced so callers can schedule cleanup of
// media that is no longer referenced.
type EditResult struct {
	Node        *models.Comment
	OldMediaKey string
}

// Edit overwrites the node's text and media in place. A nil media keeps the
// existing attachment; a media with empty PhotoKey detaches it.
func Edit(tree *[]models.Comment, targetID primitive.ObjectID, text string, media *models.MediaRef) (EditResult, bool) {
	res := Find(tree, targetID)
	if res == nil {
		return EditResult{}, false
	}
	var oldKey string
	if res.Node.Media != nil {
		oldKey = res.Node.Media.PhotoKey
	}
	res.Node.CommentText = text
	if media != nil {
		if media.PhotoKey == "" {
			res.Node.Media = nil
		} else {
			res.Node.Media = media
		}
	}
	newKey := ""
	if res.Node.Media != nil {
		newKey = res.Node.Media.PhotoKey
	}
	if oldKey == newKey {
		oldKey = ""
	}
	return EditResult{Node: res.Node, OldMediaKey: oldKey}, true
}

// DeleteResult describes a pruned subtree: every removed node id (the target
// itself included) for notification cleanup, every media key referenced in
// the subtree for storage cleanup, and the top-level ancestor context.
type DeleteResult struct {
	RemovedIDs       []primitive.ObjectID
	RemovedMediaKeys []string
	TopLevelID       primitive.ObjectID
	WasTopLevel      bool
}

// Delete removes the node matching targetID and its whole subtree. Side
// effect data is collected before the tree is mutated, so a caller that
// persists the mutation always holds the full cleanup set.
func Delete(tree *[]models.Comment, targetID primitive.ObjectID) (DeleteResult, bool) {
	res := Find(tree, targetID)
	if res == nil {
		return DeleteResult{}, false
	}

	out := DeleteResult{
		TopLevelID:  res.TopLevelID,
		WasTopLevel: res.ParentID.IsZero(),
	}
	collect(res.Node, &out.RemovedIDs, &out.RemovedMediaKeys)

	sibs := *res.Siblings
	*res.Siblings = append(sibs[:res.Index], sibs[res.Index+1:]...)
	return out, true
}

// CollectSubtree returns the ids of the node and every descendant.
func CollectSubtree(node *models.Comment) []primitive.ObjectID {
	var ids []primitive.ObjectID
	var keys []string
	collect(node, &ids, &keys)
	return ids
}

func collect(node *models.Comment, ids *[]primitive.ObjectID, mediaKeys *[]string) {
	*ids = append(*ids, node.ID)
	if node.Media != nil && node.Media.PhotoKey != "" {
		*mediaKeys = append(*mediaKeys, node.Media.PhotoKey)
	}
	for i := range node.Replies {
		collect(&node.Replies[i], ids, mediaKeys)
	}
}

// ToggleLike flips the user's like on a likes array: present removes, absent
// appends. Works for post-level likes and comment/reply likes alike.
func ToggleLike(likes *[]models.Like, userID primitive.ObjectID, fullName string) bool {
	for i, l := range *likes {
		if l.UserID == userID {
			*likes = append((*likes)[:i], (*likes)[i+1:]...)
			return false
		}
	}
	*likes = append(*likes, models.Like{
		UserID:   userID,
		FullName: fullName,
		Date:     time.Now().UTC(),
	})
	return true
}
