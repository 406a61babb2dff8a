package shift

import (
	"context"
	goerrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reservly/booking-api/internal/model"
	"github.com/reservly/booking-api/internal/repository"
	"github.com/reservly/booking-api/pkg/errors"
	"github.com/reservly/booking-api/pkg/logger"
	"github.com/reservly/booking-api/pkg/metrics"
)

// Fallback template for staff with no default schedule entry on a weekday.
const (
	defaultShiftStart = "09:00"
	defaultShiftEnd   = "18:00"
)

// Service reconciles staff shift requests into the published shift calendar
// and builds the editable day drafts for the admin UI.
type Service struct {
	shifts   repository.ShiftRepository
	requests repository.ShiftRequestRepository
	staff    repository.StaffRepository
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	shifts repository.ShiftRepository,
	requests repository.ShiftRequestRepository,
	staff repository.StaffRepository,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		shifts:   shifts,
		requests: requests,
		staff:    staff,
		logger:   log,
		metrics:  m,
	}
}

func (s *Service) CreateRequest(ctx context.Context, clinicID uuid.UUID, req *model.CreateShiftRequestRequest) (*model.ShiftRequest, error) {
	if err := validateShiftTimes(req.StartTime, req.EndTime, req.IsHoliday); err != nil {
		return nil, err
	}
	if _, err := model.ParseDate(req.Date); err != nil {
		return nil, errors.Validation(err.Error())
	}

	// The staff member must belong to this clinic.
	if _, err := s.staff.Get(ctx, clinicID, req.StaffID); err != nil {
		return nil, err
	}

	request := &model.ShiftRequest{
		Base:      model.Base{ID: uuid.New()},
		ClinicID:  clinicID,
		StaffID:   req.StaffID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsHoliday: req.IsHoliday,
		Status:    model.ShiftRequestStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create shift request: %w", err)
	}
	return request, nil
}

func (s *Service) ListRequests(ctx context.Context, clinicID uuid.UUID, status model.ShiftRequestStatus) ([]*model.ShiftRequest, error) {
	return s.requests.List(ctx, clinicID, status)
}

// ApproveRequest merges an approved request into the shift calendar. The
// shift upsert and the status flip happen in one repository transaction, so
// an approved request always manifests as a shift.
func (s *Service) ApproveRequest(ctx context.Context, id uuid.UUID) error {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return err
	}
	if req.Status != model.ShiftRequestStatusPending {
		return errors.Conflict("shift request already decided")
	}

	if err := s.requests.Approve(ctx, req); err != nil {
		return err
	}
	s.countDecision("approved")
	return nil
}

func (s *Service) RejectRequest(ctx context.Context, id uuid.UUID) error {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return err
	}
	if req.Status != model.ShiftRequestStatusPending {
		return errors.Conflict("shift request already decided")
	}

	if err := s.requests.UpdateStatus(ctx, id, model.ShiftRequestStatusRejected); err != nil {
		return err
	}
	s.countDecision("rejected")
	return nil
}

// BulkApprove approves the given requests concurrently. Approvals are
// independent; failures do not roll back requests that already succeeded, so
// callers must refresh state afterward to see what actually happened. The
// aggregate error keeps the failures' kind when they all agree; mixed kinds
// report as a store-level failure so contention never masks a broken store.
func (s *Service) BulkApprove(ctx context.Context, ids []uuid.UUID) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failed   []string
		failures []error
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if err := s.ApproveRequest(ctx, id); err != nil {
				s.logger.Error(err, "failed to approve shift request", "request_id", id.String())
				mu.Lock()
				failed = append(failed, id.String())
				failures = append(failures, err)
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	if len(failed) == 0 {
		return nil
	}

	sort.Strings(failed)
	msg := fmt.Sprintf("%d of %d approvals failed: %s", len(failed), len(ids), strings.Join(failed, ", "))
	if code, ok := commonErrorCode(failures); ok {
		return &errors.AppError{Code: code, Message: msg}
	}
	return errors.Store(msg, nil)
}

// commonErrorCode returns the error code shared by all errs, if they carry one.
func commonErrorCode(errs []error) (errors.ErrorCode, bool) {
	var code errors.ErrorCode
	for i, err := range errs {
		var appErr *errors.AppError
		if !goerrors.As(err, &appErr) {
			return 0, false
		}
		if i == 0 {
			code = appErr.Code
		} else if appErr.Code != code {
			return 0, false
		}
	}
	return code, true
}

// BuildDayDraft assembles the editable working set for one calendar date:
// persisted shifts verbatim, plus entries synthesized from each remaining
// staff member's default weekly template. Synthesized entries get a fresh id
// and are not persisted until the draft is saved.
func (s *Service) BuildDayDraft(ctx context.Context, clinicID uuid.UUID, date string) ([]*model.ShiftDraft, error) {
	weekday, err := model.WeekdayOfDate(date)
	if err != nil {
		return nil, errors.Validation(err.Error())
	}

	staffList, err := s.staff.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	existing, err := s.shifts.ListByDate(ctx, clinicID, date)
	if err != nil {
		return nil, err
	}
	byStaff := make(map[uuid.UUID]*model.Shift, len(existing))
	for _, shift := range existing {
		byStaff[shift.StaffID] = shift
	}

	drafts := make([]*model.ShiftDraft, 0, len(staffList))
	for _, st := range staffList {
		if shift, ok := byStaff[st.ID]; ok {
			drafts = append(drafts, &model.ShiftDraft{Shift: *shift, Persisted: true})
			continue
		}

		entry := model.Shift{
			Base:      model.Base{ID: uuid.New()},
			ClinicID:  clinicID,
			StaffID:   st.ID,
			Date:      date,
			StartTime: defaultShiftStart,
			EndTime:   defaultShiftEnd,
		}
		if pattern, ok := st.DefaultSchedule.Pattern(weekday); ok {
			entry.StartTime = pattern.Start
			entry.EndTime = pattern.End
			entry.IsHoliday = pattern.IsClosed
		}
		drafts = append(drafts, &model.ShiftDraft{Shift: entry, Persisted: false})
	}
	return drafts, nil
}

// SaveDayDraft upserts every entry of the draft, pre-existing and
// synthesized alike. Saving is idempotent per entry and rewrites unchanged
// rows too.
func (s *Service) SaveDayDraft(ctx context.Context, clinicID uuid.UUID, req *model.SaveShiftDraftRequest) ([]*model.Shift, error) {
	if _, err := model.ParseDate(req.Date); err != nil {
		return nil, errors.Validation(err.Error())
	}

	saved := make([]*model.Shift, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if err := validateShiftTimes(entry.StartTime, entry.EndTime, entry.IsHoliday); err != nil {
			return nil, err
		}
		shift := &model.Shift{
			ClinicID:  clinicID,
			StaffID:   entry.StaffID,
			Date:      req.Date,
			StartTime: entry.StartTime,
			EndTime:   entry.EndTime,
			IsHoliday: entry.IsHoliday,
		}
		if err := s.shifts.Upsert(ctx, shift); err != nil {
			return nil, err
		}
		saved = append(saved, shift)
	}
	return saved, nil
}

func (s *Service) ListShifts(ctx context.Context, clinicID uuid.UUID, date string) ([]*model.Shift, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, errors.Validation(err.Error())
	}
	return s.shifts.ListByDate(ctx, clinicID, date)
}

func (s *Service) DeleteShiftsInRange(ctx context.Context, clinicID uuid.UUID, from, to string) (int64, error) {
	if err := validateDateRange(from, to); err != nil {
		return 0, err
	}
	return s.shifts.DeleteRange(ctx, clinicID, from, to)
}

func (s *Service) DeleteRequestsInRange(ctx context.Context, clinicID uuid.UUID, from, to string) (int64, error) {
	if err := validateDateRange(from, to); err != nil {
		return 0, err
	}
	return s.requests.DeleteRange(ctx, clinicID, from, to)
}

func (s *Service) countDecision(decision string) {
	if s.metrics != nil {
		s.metrics.ShiftRequestsDecided.WithLabelValues(decision).Inc()
	}
}

// validateShiftTimes checks wall-clock ordering. Day-off entries carry no
// meaningful times, so they skip the ordering check.
func validateShiftTimes(start, end string, isHoliday bool) error {
	if isHoliday && start == "" && end == "" {
		return nil
	}
	startT, err := model.ParseWallClock(start)
	if err != nil {
		return errors.Validation(err.Error())
	}
	endT, err := model.ParseWallClock(end)
	if err != nil {
		return errors.Validation(err.Error())
	}
	if !endT.After(startT) {
		return errors.Validation("shift end must be after shift start")
	}
	return nil
}

func validateDateRange(from, to string) error {
	fromD, err := model.ParseDate(from)
	if err != nil {
		return errors.Validation(err.Error())
	}
	toD, err := model.ParseDate(to)
	if err != nil {
		return errors.Validation(err.Error())
	}
	if toD.Before(fromD) {
		return errors.Validation("date range end must not precede start")
	}
	return nil
}
