package notifications

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memInbox повторяет в памяти семантику SQL-репозитория: порядок выдачи,
// подсчёт непрочитанных по всей таблице и идемпотентность пометок.
type memInbox struct {
	nextID int64
	items  map[int64]*Notification
}

func newMemInbox() *memInbox { return &memInbox{items: map[int64]*Notification{}} }

func (m *memInbox) insert(n Notification, createdAt time.Time) int64 {
	n = withDefaults(n)
	m.nextID++
	n.ID = m.nextID
	n.CreatedAt = createdAt
	m.items[n.ID] = &n
	return n.ID
}

func (m *memInbox) Recent(_ context.Context, limit int) (*Feed, error) {
	if limit <= 0 {
		limit = 5
	}
	all := make([]*Notification, 0, len(m.items))
	for _, n := range m.items {
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	var f Feed
	for _, n := range all {
		if !n.IsRead {
			f.Unread++
		}
		if len(f.Items) < limit {
			f.Items = append(f.Items, *n)
		}
	}
	return &f, nil
}

func (m *memInbox) MarkRead(_ context.Context, id int64) error {
	n, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (m *memInbox) MarkAllRead(_ context.Context) (int64, error) {
	var transitioned int64
	for _, n := range m.items {
		if !n.IsRead {
			n.IsRead = true
			transitioned++
		}
	}
	return transitioned, nil
}

func (m *memInbox) PruneRead(_ context.Context, olderThan time.Time) (int64, error) {
	var removed int64
	for id, n := range m.items {
		if n.IsRead && n.CreatedAt.Before(olderThan) {
			delete(m.items, id)
			removed++
		}
	}
	return removed, nil
}

var inboxBase = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func seededInbox(n int) *memInbox {
	in := newMemInbox()
	for i := 0; i < n; i++ {
		in.insert(BookingCreated(int64(i+1), "Переговорная-A", "2024-06-01"),
			inboxBase.Add(time.Duration(i)*time.Minute))
	}
	return in
}

func TestMarkAllReadClearsUnread(t *testing.T) {
	ctx := context.Background()
	in := seededInbox(3)

	feed, err := in.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, feed.Unread)

	n, err := in.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	feed, err = in.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, feed.Unread)
	for _, item := range feed.Items {
		assert.True(t, item.IsRead)
	}

	// повторный вызов ничего не переводит
	n, err = in.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMarkReadIdempotent(t *testing.T) {
	ctx := context.Background()
	in := seededInbox(2)

	require.NoError(t, in.MarkRead(ctx, 1))
	require.NoError(t, in.MarkRead(ctx, 1))

	feed, err := in.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Unread)

	assert.ErrorIs(t, in.MarkRead(ctx, 99), ErrNotFound)
}

func TestRecentOrderAndUnreadScope(t *testing.T) {
	ctx := context.Background()
	in := seededInbox(7)

	// limit <= 0 — дефолтные 5, свежие сверху
	feed, err := in.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, feed.Items, 5)
	assert.Equal(t, int64(7), feed.Items[0].ID)
	assert.Equal(t, int64(3), feed.Items[4].ID)
	// счётчик непрочитанных — по всей таблице, не по странице
	assert.Equal(t, 7, feed.Unread)
}

func TestPruneReadKeepsUnreadAndFresh(t *testing.T) {
	ctx := context.Background()
	in := seededInbox(3)
	require.NoError(t, in.MarkRead(ctx, 1))
	require.NoError(t, in.MarkRead(ctx, 2))

	// под порог попадает только id=1: id=2 прочитана, но свежее порога
	removed, err := in.PruneRead(ctx, inboxBase.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	feed, err := in.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, feed.Items, 2)
	assert.Equal(t, 1, feed.Unread)
}
