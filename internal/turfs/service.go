package turfs

import (
	"context"
	"errors"
	"math"

	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/identity"
	"turfbook/internal/users"
)

type Service interface {
	CreateTurf(ctx context.Context, caller identity.Identity, req CreateTurfRequest) (*Turf, error)
	UpdateTurf(ctx context.Context, caller identity.Identity, turfID int64, req UpdateTurfRequest) (*Turf, error)
	GetTurf(ctx context.Context, turfID int64) (*Turf, error)
	ListTurfs(ctx context.Context, filters TurfFilters) (*TurfListResponse, error)
	ListOwnerTurfs(ctx context.Context, caller identity.Identity) ([]Turf, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateTurf(ctx context.Context, caller identity.Identity, req CreateTurfRequest) (*Turf, error) {
	if err := caller.RequireRole(users.RoleTurfOwner, users.RoleAdmin); err != nil {
		return nil, err
	}

	turf := &Turf{
		OwnerID:    caller.UserID,
		Name:       req.Name,
		Address:    req.Address,
		Capacity:   req.Capacity,
		HourlyRate: req.HourlyRate,
		Facilities: req.Facilities,
		Photo:      req.Photo,
	}
	if err := s.repo.Create(ctx, turf); err != nil {
		return nil, apperror.Wrap(apperror.KindTransactionFailed, "Could not create turf", err)
	}
	return turf, nil
}

func (s *service) UpdateTurf(ctx context.Context, caller identity.Identity, turfID int64, req UpdateTurfRequest) (*Turf, error) {
	turf, err := s.GetTurf(ctx, turfID)
	if err != nil {
		return nil, err
	}
	// Admins may fix listings; owners only their own.
	if !turf.IsOwnedBy(caller.UserID) && !caller.IsAdmin() {
		return nil, apperror.New(apperror.KindNotFound, "Turf not found")
	}

	if req.Name != nil {
		turf.Name = *req.Name
	}
	if req.Address != nil {
		turf.Address = *req.Address
	}
	if req.Capacity != nil {
		turf.Capacity = *req.Capacity
	}
	if req.HourlyRate != nil {
		turf.HourlyRate = *req.HourlyRate
	}
	if req.Facilities != nil {
		turf.Facilities = *req.Facilities
	}
	if req.Photo != nil {
		turf.Photo = *req.Photo
	}

	if err := s.repo.Update(ctx, turf); err != nil {
		return nil, apperror.Wrap(apperror.KindTransactionFailed, "Could not update turf", err)
	}
	return turf, nil
}

func (s *service) GetTurf(ctx context.Context, turfID int64) (*Turf, error) {
	if turfID <= 0 {
		return nil, apperror.New(apperror.KindInvalidInput, "Invalid turf id")
	}
	turf, err := s.repo.GetByID(ctx, turfID)
	if err != nil {
		if errors.Is(err, ErrTurfNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "Turf not found")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load turf", err)
	}
	return turf, nil
}

func (s *service) ListTurfs(ctx context.Context, filters TurfFilters) (*TurfListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 {
		filters.Limit = 20
	}

	list, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not list turfs", err)
	}
	return &TurfListResponse{
		Turfs:      list,
		Total:      total,
		Page:       filters.Page,
		Limit:      filters.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filters.Limit))),
	}, nil
}

func (s *service) ListOwnerTurfs(ctx context.Context, caller identity.Identity) ([]Turf, error) {
	if err := caller.RequireRole(users.RoleTurfOwner); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not list turfs", err)
	}
	return list, nil
}
