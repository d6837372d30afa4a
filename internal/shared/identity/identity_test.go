package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/shared/apperror"
	"turfbook/internal/users"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: 7, Role: users.RoleTurfOwner})

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, users.RoleTurfOwner, got.Role)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		roles   []users.Role
		wantErr bool
	}{
		{"matching role", Identity{UserID: 1, Role: users.RoleOrganizer}, []users.Role{users.RoleOrganizer}, false},
		{"one of many", Identity{UserID: 1, Role: users.RoleAdmin}, []users.Role{users.RoleTurfOwner, users.RoleAdmin}, false},
		{"wrong role", Identity{UserID: 1, Role: users.RoleOrganizer}, []users.Role{users.RoleTurfOwner}, true},
		{"anonymous", Identity{}, []users.Role{users.RoleOrganizer}, true},
		{"unknown role", Identity{UserID: 3, Role: "guest"}, []users.Role{"guest"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.RequireRole(tt.roles...)
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
				return
			}
			assert.NoError(t, err)
		})
	}
}
