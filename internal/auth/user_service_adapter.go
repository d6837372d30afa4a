package auth

import (
	"context"
	"fmt"

	"turfbook/internal/users"
)

// UserDirectory exposes user lookups to the notification mailer without
// the mailer depending on the auth package.
type UserDirectory struct {
	repo Repository
}

func NewUserDirectory(repo Repository) *UserDirectory {
	return &UserDirectory{
		repo: repo,
	}
}

// GetUser implements notifications.UserDirectory
func (d *UserDirectory) GetUser(ctx context.Context, userID int64) (*users.User, error) {
	user, err := d.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", userID, err)
	}
	return user, nil
}
