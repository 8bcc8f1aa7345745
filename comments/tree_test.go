package comments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielkmetz/ActivityPal-sub002/models"
)

func node(author primitive.ObjectID, text string, replies ...models.Comment) models.Comment {
	c := New(author, "Test User", text, nil)
	c.Replies = replies
	return c
}

// buildTree returns a tree three levels deep:
//
//	c1
//	├── c1a
//	│   └── c1a1
//	│       └── c1a1x
//	└── c1b
//	c2
func buildTree() ([]models.Comment, map[string]primitive.ObjectID) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	c1a1x := node(alice, "c1a1x")
	c1a1 := node(bob, "c1a1", c1a1x)
	c1a := node(alice, "c1a", c1a1)
	c1b := node(bob, "c1b")
	c1 := node(alice, "c1", c1a, c1b)
	c2 := node(bob, "c2")

	ids := map[string]primitive.ObjectID{
		"c1": c1.ID, "c1a": c1a.ID, "c1a1": c1a1.ID, "c1a1x": c1a1x.ID,
		"c1b": c1b.ID, "c2": c2.ID,
		"alice": alice, "bob": bob,
	}
	return []models.Comment{c1, c2}, ids
}

func TestFindEveryNode(t *testing.T) {
	tree, ids := buildTree()

	cases := []struct {
		name   string
		top    string
		parent string // "" for top-level
	}{
		{"c1", "c1", ""},
		{"c2", "c2", ""},
		{"c1a", "c1", "c1"},
		{"c1b", "c1", "c1"},
		{"c1a1", "c1", "c1a"},
		{"c1a1x", "c1", "c1a1"},
	}
	for _, tc := range cases {
		res := Find(&tree, ids[tc.name])
		require.NotNil(t, res, tc.name)
		assert.Equal(t, ids[tc.name], res.Node.ID, tc.name)
		assert.Equal(t, tc.name, res.Node.CommentText)
		assert.Equal(t, ids[tc.top], res.TopLevelID, tc.name)
		if tc.parent == "" {
			assert.True(t, res.ParentID.IsZero(), tc.name)
			assert.True(t, res.ParentAuthorID.IsZero(), tc.name)
		} else {
			assert.Equal(t, ids[tc.parent], res.ParentID, tc.name)
			parent := Find(&tree, ids[tc.parent])
			assert.Equal(t, parent.Node.UserID, res.ParentAuthorID, tc.name)
		}
	}
}

func TestFindMissing(t *testing.T) {
	tree, _ := buildTree()
	assert.Nil(t, Find(&tree, primitive.NewObjectID()))
}

func TestInsertReplyNested(t *testing.T) {
	tree, ids := buildTree()

	reply := New(ids["bob"], "Bob", "deep reply", nil)
	res := InsertReply(&tree, ids["c1a1x"], reply)
	require.NotNil(t, res)
	assert.Equal(t, ids["c1a1x"], res.Node.ID)

	got := Find(&tree, reply.ID)
	require.NotNil(t, got)
	assert.Equal(t, ids["c1"], got.TopLevelID)
	assert.Equal(t, ids["c1a1x"], got.ParentID)
}

func TestInsertReplyMissingParent(t *testing.T) {
	tree, ids := buildTree()
	assert.Nil(t, InsertReply(&tree, primitive.NewObjectID(), New(ids["bob"], "Bob", "x", nil)))
}

func TestDeleteTopLevelPrunesSubtree(t *testing.T) {
	tree, ids := buildTree()

	res, ok := Delete(&tree, ids["c1"])
	require.True(t, ok)
	assert.True(t, res.WasTopLevel)
	assert.Equal(t, ids["c1"], res.TopLevelID)
	// c1 plus its 4 descendants
	assert.Len(t, res.RemovedIDs, 5)
	for _, name := range []string{"c1", "c1a", "c1a1", "c1a1x", "c1b"} {
		assert.Contains(t, res.RemovedIDs, ids[name], name)
		assert.Nil(t, Find(&tree, ids[name]), name)
	}
	require.Len(t, tree, 1)
	assert.Equal(t, ids["c2"], tree[0].ID)
}

func TestDeleteNestedLeavesAncestors(t *testing.T) {
	tree, ids := buildTree()

	res, ok := Delete(&tree, ids["c1a1"])
	require.True(t, ok)
	assert.False(t, res.WasTopLevel)
	assert.Equal(t, ids["c1"], res.TopLevelID)
	assert.ElementsMatch(t, []primitive.ObjectID{ids["c1a1"], ids["c1a1x"]}, res.RemovedIDs)

	assert.Nil(t, Find(&tree, ids["c1a1"]))
	assert.Nil(t, Find(&tree, ids["c1a1x"]))
	assert.NotNil(t, Find(&tree, ids["c1"]))
	assert.NotNil(t, Find(&tree, ids["c1a"]))
	assert.NotNil(t, Find(&tree, ids["c1b"]))
}

func TestDeleteCollectsMediaKeys(t *testing.T) {
	author := primitive.NewObjectID()
	child := New(author, "A", "", &models.MediaRef{PhotoKey: "photos/b.jpg", MediaType: "image"})
	parent := New(author, "A", "has media", &models.MediaRef{PhotoKey: "photos/a.jpg", MediaType: "image"})
	parent.Replies = []models.Comment{child}
	tree := []models.Comment{parent}

	res, ok := Delete(&tree, parent.ID)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"photos/a.jpg", "photos/b.jpg"}, res.RemovedMediaKeys)
	assert.Empty(t, tree)
}

func TestDeleteMissing(t *testing.T) {
	tree, _ := buildTree()
	_, ok := Delete(&tree, primitive.NewObjectID())
	assert.False(t, ok)
	assert.Len(t, tree, 2)
}

func TestEditReplacesTextAndMedia(t *testing.T) {
	tree, ids := buildTree()

	res := Find(&tree, ids["c1a1"])
	res.Node.Media = &models.MediaRef{PhotoKey: "photos/old.jpg", MediaType: "image"}

	edit, ok := Edit(&tree, ids["c1a1"], "updated", &models.MediaRef{PhotoKey: "photos/new.jpg", MediaType: "image"})
	require.True(t, ok)
	assert.Equal(t, "updated", edit.Node.CommentText)
	assert.Equal(t, "photos/new.jpg", edit.Node.Media.PhotoKey)
	assert.Equal(t, "photos/old.jpg", edit.OldMediaKey)
}

func TestEditKeepsMediaWhenNil(t *testing.T) {
	tree, ids := buildTree()
	res := Find(&tree, ids["c2"])
	res.Node.Media = &models.MediaRef{PhotoKey: "photos/keep.jpg", MediaType: "image"}

	edit, ok := Edit(&tree, ids["c2"], "new text", nil)
	require.True(t, ok)
	assert.Equal(t, "photos/keep.jpg", edit.Node.Media.PhotoKey)
	assert.Empty(t, edit.OldMediaKey, "unchanged media is not reported for cleanup")
}

func TestEditMissing(t *testing.T) {
	tree, _ := buildTree()
	_, ok := Edit(&tree, primitive.NewObjectID(), "x", nil)
	assert.False(t, ok)
}

func TestToggleLikeAlternates(t *testing.T) {
	user := primitive.NewObjectID()
	other := primitive.NewObjectID()
	likes := []models.Like{{UserID: other, FullName: "Other"}}

	liked := ToggleLike(&likes, user, "Test User")
	assert.True(t, liked)
	require.Len(t, likes, 2)
	assert.Equal(t, user, likes[1].UserID)

	liked = ToggleLike(&likes, user, "Test User")
	assert.False(t, liked)
	require.Len(t, likes, 1)
	assert.Equal(t, other, likes[0].UserID)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate("", nil), ErrEmptyComment)
	assert.ErrorIs(t, Validate("   ", &models.MediaRef{}), ErrEmptyComment)
	assert.NoError(t, Validate("hi", nil))
	assert.NoError(t, Validate("", &models.MediaRef{PhotoKey: "photos/x.jpg", MediaType: "image"}))
}
