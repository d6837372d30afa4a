package notifications

import (
	"context"
	"errors"

	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/identity"
)

type Inbox struct {
	Notifications []Notification `json:"notifications"`
	Unread        int64          `json:"unread"`
}

// Service exposes a user's own in-app notifications.
type Service interface {
	ListMine(ctx context.Context, caller identity.Identity, unreadOnly bool) (*Inbox, error)
	MarkRead(ctx context.Context, caller identity.Identity, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListMine(ctx context.Context, caller identity.Identity, unreadOnly bool) (*Inbox, error) {
	if !caller.Valid() {
		return nil, apperror.New(apperror.KindUnauthorized, "You must be signed in")
	}
	list, err := s.repo.ListByUser(ctx, caller.UserID, unreadOnly, 100)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load notifications", err)
	}
	unread, err := s.repo.CountUnread(ctx, caller.UserID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load notifications", err)
	}
	return &Inbox{Notifications: list, Unread: unread}, nil
}

func (s *service) MarkRead(ctx context.Context, caller identity.Identity, id int64) error {
	if !caller.Valid() {
		return apperror.New(apperror.KindUnauthorized, "You must be signed in")
	}
	if id <= 0 {
		return apperror.New(apperror.KindInvalidInput, "Invalid notification id")
	}
	if err := s.repo.MarkRead(ctx, caller.UserID, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return apperror.New(apperror.KindNotFound, "Notification not found")
		}
		return apperror.Wrap(apperror.KindInternal, "Could not update notification", err)
	}
	return nil
}
