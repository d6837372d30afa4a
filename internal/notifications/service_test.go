package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/identity"
	"turfbook/internal/users"
)

type memoryRepository struct {
	rows []Notification
}

func (m *memoryRepository) Create(_ context.Context, n *Notification) error {
	n.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, *n)
	return nil
}

func (m *memoryRepository) ListByUser(_ context.Context, userID int64, unreadOnly bool, _ int) ([]Notification, error) {
	var out []Notification
	for _, n := range m.rows {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memoryRepository) CountUnread(_ context.Context, userID int64) (int64, error) {
	var c int64
	for _, n := range m.rows {
		if n.UserID == userID && !n.IsRead {
			c++
		}
	}
	return c, nil
}

func (m *memoryRepository) MarkRead(_ context.Context, userID, id int64) error {
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserID == userID {
			m.rows[i].IsRead = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

func TestInbox(t *testing.T) {
	repo := &memoryRepository{}
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &Notification{UserID: 1, Message: "Booking approved"}))
	require.NoError(t, repo.Create(ctx, &Notification{UserID: 1, Message: "Payment received"}))
	require.NoError(t, repo.Create(ctx, &Notification{UserID: 2, Message: "Someone else's"}))

	svc := NewService(repo)
	me := identity.Identity{UserID: 1, Role: users.RoleOrganizer}

	inbox, err := svc.ListMine(ctx, me, false)
	require.NoError(t, err)
	assert.Len(t, inbox.Notifications, 2)
	assert.Equal(t, int64(2), inbox.Unread)

	require.NoError(t, svc.MarkRead(ctx, me, 1))
	inbox, err = svc.ListMine(ctx, me, true)
	require.NoError(t, err)
	assert.Len(t, inbox.Notifications, 1)
	assert.Equal(t, int64(1), inbox.Unread)

	err = svc.MarkRead(ctx, me, 3)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = svc.ListMine(ctx, identity.Identity{}, false)
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}
