// Package feed implements both halves of the cursor-paginated feed: the
// server-side page query over the post collections and the client-style
// accumulator that merges pages into a deduplicated ordered list.
package feed

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielkmetz/ActivityPal-sub002/models"
)

// KindDateSeparator marks synthetic rows the server may interleave between
// days. They render in the list but never advance the cursor.
const KindDateSeparator = "date-separator"

// Cursor marks the oldest item fetched so far. Pages are requested strictly
// older than it, with the id breaking sortDate ties.
type Cursor struct {
	SortDate time.Time          `json:"sortDate"`
	ID       primitive.ObjectID `json:"id"`
}

// Item is one feed entry. Type holds a post kind's raw key or a synthetic
// kind such as KindDateSeparator.
type Item struct {
	Type     string             `json:"type"`
	ID       primitive.ObjectID `json:"id"`
	SortDate time.Time          `json:"sortDate"`
	Author   *Author            `json:"author,omitempty"`
	Post     interface{}        `json:"post,omitempty"`
}

// Author is the denormalized post owner attached to each item.
type Author struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	ProfilePicURL string             `json:"profilePicUrl,omitempty"`
	IsBusiness    bool               `json:"isBusiness,omitempty"`
}

// Key is the composite dedupe key. Two items with the same key are the same
// entry regardless of which page carried them.
func (it Item) Key() string {
	return it.Type + "-" + it.ID.Hex()
}

func (it Item) cursorable() bool {
	kind, ok := models.ParsePostKind(it.Type)
	return ok && kind.Cursorable()
}

// PageState accumulates server pages. The zero value is not usable; call
// NewPageState.
type PageState struct {
	Items   []Item
	Cursor  *Cursor
	HasMore bool
	seen    map[string]struct{}
}

func NewPageState() *PageState {
	return &PageState{
		Items:   []Item{},
		HasMore: true,
		seen:    map[string]struct{}{},
	}
}

// Seen reports whether the key is already merged. Exposed for tests.
func (s *PageState) Seen(key string) bool {
	_, ok := s.seen[key]
	return ok
}

// ApplyPage merges one raw server page. Refresh replaces the list with the
// page; append adds only unseen items. The next cursor derives from the last
// cursorable item of the raw page, so duplicates and synthetic rows still
// move pagination forward. The merged list never holds two items with the
// same composite key.
func (s *PageState) ApplyPage(page []Item, isRefresh bool, limit int) {
	if len(page) == 0 {
		s.HasMore = false
		return
	}

	if isRefresh {
		s.Items = []Item{}
		s.seen = map[string]struct{}{}
	}

	fresh := make([]Item, 0, len(page))
	for _, it := range page {
		key := it.Key()
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		fresh = append(fresh, it)
	}

	for i := len(page) - 1; i >= 0; i-- {
		if page[i].cursorable() {
			s.Cursor = &Cursor{SortDate: page[i].SortDate, ID: page[i].ID}
			break
		}
	}

	s.Items = append(s.Items, fresh...)
	if isRefresh {
		s.HasMore = len(page) >= limit
	} else {
		s.HasMore = len(page) >= limit && len(fresh) > 0
	}
}

// FetchFunc requests one page strictly older than after (nil for the newest
// page).
type FetchFunc func(ctx context.Context, after *Cursor, limit int) ([]Item, error)

// Loader drives infinite scroll over a FetchFunc. The loading guard drops
// re-entrant LoadMore calls; a changed refresh signal forces a full reset
// regardless of in-flight loads. Fetch errors leave the state untouched so a
// manual retry stays possible.
type Loader struct {
	mu      sync.Mutex
	state   *PageState
	fetch   FetchFunc
	limit   int
	loading bool
	signal  string
}

func NewLoader(fetch FetchFunc, limit int) *Loader {
	return &Loader{
		state: NewPageState(),
		fetch: fetch,
		limit: limit,
	}
}

// State returns a snapshot of the accumulated items and flags.
func (l *Loader) State() (items []Item, cursor *Cursor, hasMore bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items = append([]Item(nil), l.state.Items...)
	if l.state.Cursor != nil {
		c := *l.state.Cursor
		cursor = &c
	}
	return items, cursor, l.state.HasMore
}

// LoadMore fetches the next page and appends it. Skipped while a load is in
// flight or after the feed is exhausted.
func (l *Loader) LoadMore(ctx context.Context) error {
	return l.load(ctx, false)
}

// Refresh discards the accumulated list and fetches the newest page.
func (l *Loader) Refresh(ctx context.Context) error {
	return l.load(ctx, true)
}

// SetSignal refreshes the feed when the external dependency value changes.
func (l *Loader) SetSignal(ctx context.Context, signal string) error {
	l.mu.Lock()
	changed := signal != l.signal
	l.signal = signal
	l.mu.Unlock()
	if !changed {
		return nil
	}
	return l.Refresh(ctx)
}

func (l *Loader) load(ctx context.Context, isRefresh bool) error {
	l.mu.Lock()
	if !isRefresh && (l.loading || !l.state.HasMore) {
		l.mu.Unlock()
		return nil
	}
	l.loading = true
	var after *Cursor
	if !isRefresh && l.state.Cursor != nil {
		c := *l.state.Cursor
		after = &c
	}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.loading = false
		l.mu.Unlock()
	}()

	page, err := l.fetch(ctx, after, l.limit)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.state.ApplyPage(page, isRefresh, l.limit)
	l.mu.Unlock()
	return nil
}
