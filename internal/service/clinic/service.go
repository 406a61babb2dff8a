package clinic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/reservly/booking-api/internal/model"
	"github.com/reservly/booking-api/internal/repository"
	"github.com/reservly/booking-api/pkg/errors"
	"github.com/reservly/booking-api/pkg/logger"
)

const (
	cacheTTL      = 5 * time.Minute
	cacheSweep    = 10 * time.Minute
	staffCacheTTL = time.Minute
)

// Service manages clinic and staff records. Reads are served through a
// short-lived in-process cache; writes invalidate the affected keys, so a
// stale entry can only survive on another instance until its TTL runs out.
type Service struct {
	clinics repository.ClinicRepository
	staff   repository.StaffRepository
	cache   *gocache.Cache
	logger  *logger.Logger
}

func NewService(clinics repository.ClinicRepository, staff repository.StaffRepository, log *logger.Logger) *Service {
	return &Service{
		clinics: clinics,
		staff:   staff,
		cache:   gocache.New(cacheTTL, cacheSweep),
		logger:  log,
	}
}

func clinicKey(id uuid.UUID) string    { return "clinic:" + id.String() }
func staffListKey(id uuid.UUID) string { return "staff:" + id.String() }

// CreateClinic registers a clinic in pending status. A clinic takes bookings
// only after it has been activated.
func (s *Service) CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error) {
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return nil, errors.Validation(fmt.Sprintf("invalid timezone %q", req.Timezone))
		}
	}

	clinic := &model.Clinic{
		Base:          model.Base{ID: uuid.New()},
		Name:          req.Name,
		Location:      req.Location,
		Timezone:      req.Timezone,
		BusinessHours: req.Hours,
		Status:        model.ClinicStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.clinics.Create(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}
	return clinic, nil
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	if cached, ok := s.cache.Get(clinicKey(id)); ok {
		return cached.(*model.Clinic), nil
	}

	clinic, err := s.clinics.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(clinicKey(id), clinic, cacheTTL)
	return clinic, nil
}

func (s *Service) ListClinics(ctx context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error) {
	return s.clinics.List(ctx, filters)
}

func (s *Service) UpdateClinic(ctx context.Context, id uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error) {
	clinic, err := s.clinics.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.Location != nil {
		clinic.Location = *req.Location
	}
	if req.Timezone != nil {
		if *req.Timezone != "" {
			if _, err := time.LoadLocation(*req.Timezone); err != nil {
				return nil, errors.Validation(fmt.Sprintf("invalid timezone %q", *req.Timezone))
			}
		}
		clinic.Timezone = *req.Timezone
	}
	if req.Hours != nil {
		clinic.BusinessHours = *req.Hours
	}
	if req.Status != nil {
		switch *req.Status {
		case model.ClinicStatusPending, model.ClinicStatusActive, model.ClinicStatusSuspended:
		default:
			return nil, errors.Validation(fmt.Sprintf("invalid clinic status %q", *req.Status))
		}
		clinic.Status = *req.Status
	}

	if err := s.clinics.Update(ctx, clinic); err != nil {
		return nil, err
	}
	s.cache.Delete(clinicKey(id))
	return clinic, nil
}

func (s *Service) CreateStaff(ctx context.Context, clinicID uuid.UUID, req *model.CreateStaffRequest) (*model.Staff, error) {
	if _, err := s.GetClinic(ctx, clinicID); err != nil {
		return nil, err
	}

	staff := &model.Staff{
		Base:            model.Base{ID: uuid.New()},
		ClinicID:        clinicID,
		Name:            req.Name,
		Role:            req.Role,
		ImageURL:        req.ImageURL,
		DefaultSchedule: req.DefaultSchedule,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}
	s.cache.Delete(staffListKey(clinicID))
	return staff, nil
}

func (s *Service) GetStaff(ctx context.Context, clinicID, id uuid.UUID) (*model.Staff, error) {
	return s.staff.Get(ctx, clinicID, id)
}

func (s *Service) ListStaff(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error) {
	if cached, ok := s.cache.Get(staffListKey(clinicID)); ok {
		return cached.([]*model.Staff), nil
	}

	list, err := s.staff.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(staffListKey(clinicID), list, staffCacheTTL)
	return list, nil
}

func (s *Service) UpdateStaff(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateStaffRequest) (*model.Staff, error) {
	staff, err := s.staff.Get(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.Role != nil {
		staff.Role = *req.Role
	}
	if req.ImageURL != nil {
		staff.ImageURL = *req.ImageURL
	}
	if req.DefaultSchedule != nil {
		staff.DefaultSchedule = *req.DefaultSchedule
	}

	if err := s.staff.Update(ctx, staff); err != nil {
		return nil, err
	}
	s.cache.Delete(staffListKey(clinicID))
	return staff, nil
}

func (s *Service) DeleteStaff(ctx context.Context, clinicID, id uuid.UUID) error {
	if err := s.staff.Delete(ctx, clinicID, id); err != nil {
		return err
	}
	s.cache.Delete(staffListKey(clinicID))
	return nil
}
