package turfs

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

type fakeRepository struct {
	turfs  map[int64]*Turf
	nextID int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{turfs: map[int64]*Turf{}}
}

func (f *fakeRepository) Create(_ context.Context, turf *Turf) error {
	f.nextID++
	turf.ID = f.nextID
	cp := *turf
	f.turfs[turf.ID] = &cp
	return nil
}

func (f *fakeRepository) Update(_ context.Context, turf *Turf) error {
	cp := *turf
	f.turfs[turf.ID] = &cp
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id int64) (*Turf, error) {
	t, ok := f.turfs[id]
	if !ok {
		return nil, ErrTurfNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRepository) List(_ context.Context, _ TurfFilters) ([]Turf, int64, error) {
	var out []Turf
	for _, t := range f.turfs {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) ListByOwner(_ context.Context, ownerID int64) ([]Turf, error) {
	var out []Turf
	for _, t := range f.turfs {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

var (
	owner     = identity.Identity{UserID: 10, Role: users.RoleTurfOwner}
	otherOwn  = identity.Identity{UserID: 11, Role: users.RoleTurfOwner}
	organizer = identity.Identity{UserID: 20, Role: users.RoleOrganizer}
)

func TestCreateTurf(t *testing.T) {
	svc := NewService(newFakeRepository())

	turf, err := svc.CreateTurf(context.Background(), owner, CreateTurfRequest{
		Name: "Green Arena", Address: "12 Park Road", Capacity: 14, HourlyRate: 1200,
	})
	require.NoError(t, err)
	assert.Equal(t, owner.UserID, turf.OwnerID)

	_, err = svc.CreateTurf(context.Background(), organizer, CreateTurfRequest{Name: "Nope"})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}

func TestUpdateTurfOwnership(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	turf, err := svc.CreateTurf(context.Background(), owner, CreateTurfRequest{
		Name: "Green Arena", Address: "12 Park Road", Capacity: 14, HourlyRate: 1200,
	})
	require.NoError(t, err)

	rate := 1500.0
	_, err = svc.UpdateTurf(context.Background(), otherOwn, turf.ID, UpdateTurfRequest{HourlyRate: &rate})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.Equal(t, 1200.0, repo.turfs[turf.ID].HourlyRate)

	updated, err := svc.UpdateTurf(context.Background(), owner, turf.ID, UpdateTurfRequest{HourlyRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, updated.HourlyRate)
}

func TestGetTurfValidation(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.GetTurf(context.Background(), 0)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	_, err = svc.GetTurf(context.Background(), 99)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListTurfsPaging(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	for i := 0; i < 3; i++ {
		_, err := svc.CreateTurf(context.Background(), owner, CreateTurfRequest{
			Name: "Arena", Address: "Somewhere 1", Capacity: 10, HourlyRate: 800,
		})
		require.NoError(t, err)
	}

	res, err := svc.ListTurfs(context.Background(), TurfFilters{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, 2, res.TotalPages)

	mine, err := svc.ListOwnerTurfs(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}
