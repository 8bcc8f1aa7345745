package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func item(typ string, age time.Duration) Item {
	return Item{
		Type:     typ,
		ID:       primitive.NewObjectID(),
		SortDate: time.Now().Add(-age).UTC(),
	}
}

func keys(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

func TestApplyPageMergeDropsDuplicates(t *testing.T) {
	a := item("review", 1*time.Hour)
	b := item("check-in", 2*time.Hour)
	c := item("invite", 3*time.Hour)
	d := item("review", 4*time.Hour)

	state := NewPageState()
	// Full first page, then a short page re-carrying c across the boundary.
	state.ApplyPage([]Item{a, b, c}, true, 3)
	assert.True(t, state.HasMore)
	require.NotNil(t, state.Cursor)
	assert.Equal(t, c.ID, state.Cursor.ID)

	state.ApplyPage([]Item{c, d}, false, 3)
	assert.Equal(t, keys([]Item{a, b, c, d}), keys(state.Items), "duplicate c dropped")
	assert.False(t, state.HasMore, "short page exhausts the feed")
	assert.Equal(t, d.ID, state.Cursor.ID)
}

func TestApplyPageRefreshResets(t *testing.T) {
	a := item("review", 1*time.Hour)
	b := item("check-in", 2*time.Hour)
	c := item("invite", 3*time.Hour)
	x := item("review", 1*time.Minute)
	y := item("check-in", 2*time.Minute)

	state := NewPageState()
	state.ApplyPage([]Item{a, b, c}, true, 3)
	require.Equal(t, c.ID, state.Cursor.ID)

	state.ApplyPage([]Item{x, y}, true, 3)
	assert.Equal(t, keys([]Item{x, y}), keys(state.Items))
	assert.True(t, state.Seen(x.Key()))
	assert.True(t, state.Seen(y.Key()))
	assert.False(t, state.Seen(a.Key()), "refresh resets seen keys")
	assert.Equal(t, y.ID, state.Cursor.ID)
	assert.False(t, state.HasMore, "short refresh page")
}

func TestApplyPageEmptyStops(t *testing.T) {
	state := NewPageState()
	state.ApplyPage([]Item{item("review", time.Hour)}, true, 1)
	require.True(t, state.HasMore)

	state.ApplyPage(nil, false, 1)
	assert.False(t, state.HasMore)
	assert.Len(t, state.Items, 1)
}

func TestApplyPageAllDuplicatesExhausts(t *testing.T) {
	a := item("review", 1*time.Hour)
	b := item("check-in", 2*time.Hour)

	state := NewPageState()
	state.ApplyPage([]Item{a, b}, true, 2)
	state.ApplyPage([]Item{a, b}, false, 2)

	assert.Len(t, state.Items, 2)
	assert.False(t, state.HasMore, "full page of known items means nothing new is coming")
}

func TestSyntheticItemsNeverAdvanceCursor(t *testing.T) {
	a := item("review", 1*time.Hour)
	sep := item(KindDateSeparator, 30*time.Minute)

	state := NewPageState()
	state.ApplyPage([]Item{a, sep}, true, 2)

	require.NotNil(t, state.Cursor)
	assert.Equal(t, a.ID, state.Cursor.ID, "separator after the last real item is skipped")
	assert.Len(t, state.Items, 2, "separator still renders in the list")

	// A page of only synthetic rows keeps the old cursor.
	prev := *state.Cursor
	state.ApplyPage([]Item{item(KindDateSeparator, 10*time.Minute)}, false, 2)
	assert.Equal(t, prev, *state.Cursor)
}

func TestLoaderPagination(t *testing.T) {
	a := item("review", 1*time.Hour)
	b := item("check-in", 2*time.Hour)
	c := item("invite", 3*time.Hour)
	d := item("review", 4*time.Hour)

	pages := [][]Item{{a, b, c}, {c, d}}
	var calls int
	var gotAfter []*Cursor
	fetch := func(ctx context.Context, after *Cursor, limit int) ([]Item, error) {
		gotAfter = append(gotAfter, after)
		page := pages[calls]
		calls++
		return page, nil
	}

	loader := NewLoader(fetch, 3)
	require.NoError(t, loader.Refresh(context.Background()))
	require.NoError(t, loader.LoadMore(context.Background()))

	items, cursor, hasMore := loader.State()
	assert.Equal(t, keys([]Item{a, b, c, d}), keys(items))
	assert.False(t, hasMore)
	assert.Equal(t, d.ID, cursor.ID)

	require.Len(t, gotAfter, 2)
	assert.Nil(t, gotAfter[0], "refresh requests the newest page")
	require.NotNil(t, gotAfter[1])
	assert.Equal(t, c.ID, gotAfter[1].ID)

	// Exhausted: no further fetches.
	require.NoError(t, loader.LoadMore(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestLoaderErrorLeavesStateConsistent(t *testing.T) {
	boom := errors.New("network down")
	var calls int
	fetch := func(ctx context.Context, after *Cursor, limit int) ([]Item, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return []Item{item("review", time.Hour)}, nil
	}

	loader := NewLoader(fetch, 3)
	assert.ErrorIs(t, loader.LoadMore(context.Background()), boom)

	_, _, hasMore := loader.State()
	assert.True(t, hasMore, "failed load stays retryable")

	require.NoError(t, loader.LoadMore(context.Background()))
	items, _, _ := loader.State()
	assert.Len(t, items, 1)
}

func TestLoaderSignalTriggersRefresh(t *testing.T) {
	var calls int
	fetch := func(ctx context.Context, after *Cursor, limit int) ([]Item, error) {
		calls++
		return []Item{item("review", time.Hour)}, nil
	}

	loader := NewLoader(fetch, 3)
	require.NoError(t, loader.SetSignal(context.Background(), "user-a"))
	assert.Equal(t, 1, calls)

	// Same signal again is a no-op.
	require.NoError(t, loader.SetSignal(context.Background(), "user-a"))
	assert.Equal(t, 1, calls)

	require.NoError(t, loader.SetSignal(context.Background(), "user-b"))
	assert.Equal(t, 2, calls)
}
