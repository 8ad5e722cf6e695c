package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"subaacare-server/internal/models"
	"subaacare-server/internal/store"
)

// BookingInput is a patient's request for a professional's time.
// ProfessionalID is the profile id.
type BookingInput struct {
	ProfessionalID string
	SlotID         string
	Start          time.Time
	End            time.Time
	Notes          string
}

// BookingService creates bookings and moves them through
// PENDING, CONFIRMED, CANCELLED and COMPLETED.
type BookingService struct {
	repo store.Repository
	log  *zap.Logger
	now  func() time.Time
	// requireSlot refuses bookings that do not match an open slot.
	requireSlot bool
}

func NewBookingService(repo store.Repository, log *zap.Logger, requireSlot bool) *BookingService {
	return &BookingService{repo: repo, log: log, now: time.Now, requireSlot: requireSlot}
}

func (s *BookingService) CreateBooking(ctx context.Context, caller Caller, in BookingInput) (*models.BookingView, error) {
	if err := RequireRole(caller, models.RolePatient); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ProfessionalID) == "" {
		return nil, ValidationError("professionalId is required")
	}
	if err := checkWindow(in.Start, in.End); err != nil {
		return nil, err
	}
	start, end := in.Start.UTC(), in.End.UTC()

	profile, err := s.repo.ProfileByID(ctx, in.ProfessionalID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !profile.IsApproved()) {
		return nil, NotFoundError("professional not found")
	}
	if err != nil {
		return nil, InternalError("load profile", err)
	}

	slot, err := s.matchSlot(ctx, profile.ID, in.SlotID, start, end)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		PatientID:      caller.UserID,
		ProfessionalID: profile.UserID,
		ProfileID:      profile.ID,
		Start:          start,
		End:            end,
		Status:         models.BookingPending,
	}
	if slot != nil {
		booking.SlotID = &slot.ID
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		booking.Notes = &notes
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, store.ErrSlotTaken) {
			return nil, ConflictError("this time slot has already been booked")
		}
		return nil, InternalError("create booking", err)
	}
	s.log.Info("booking created",
		zap.String("bookingID", booking.ID),
		zap.String("patientID", caller.UserID),
		zap.String("profileID", profile.ID),
	)

	booking.Profile = profile
	booking.Professional = profile.User
	v := booking.View()
	return &v, nil
}

// matchSlot finds the open slot the booking will claim. It returns nil, nil
// for an unslotted request when slots are not required.
func (s *BookingService) matchSlot(ctx context.Context, profileID, slotID string, start, end time.Time) (*models.AvailabilitySlot, error) {
	var (
		slot *models.AvailabilitySlot
		err  error
	)
	if slotID != "" {
		slot, err = s.repo.SlotByID(ctx, slotID)
		if err == nil && (slot.ProfileID != profileID || !slot.Matches(start, end)) {
			return nil, ValidationError("slot does not match the requested professional and time")
		}
	} else {
		slot, err = s.repo.FindSlot(ctx, profileID, start, end)
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		if slotID != "" {
			return nil, NotFoundError("slot not found")
		}
		if s.requireSlot {
			return nil, ConflictError("no open availability slot matches the requested time")
		}
		return nil, nil
	case err != nil:
		return nil, InternalError("find slot", err)
	case slot.Booked:
		return nil, ConflictError("this time slot has already been booked")
	}
	return slot, nil
}

func (s *BookingService) ListOwnBookings(ctx context.Context, caller Caller) ([]models.BookingView, error) {
	if err := RequireRole(caller, models.RolePatient); err != nil {
		return nil, err
	}
	return s.list(ctx, store.BookingFilter{PatientID: caller.UserID})
}

// ListProfessionalBookings returns the bookings made against the caller.
func (s *BookingService) ListProfessionalBookings(ctx context.Context, caller Caller) ([]models.BookingView, error) {
	if err := RequireRole(caller, models.RoleProfessional); err != nil {
		return nil, err
	}
	return s.list(ctx, store.BookingFilter{ProfessionalID: caller.UserID})
}

func (s *BookingService) list(ctx context.Context, filter store.BookingFilter) ([]models.BookingView, error) {
	bookings, err := s.repo.ListBookings(ctx, filter)
	if err != nil {
		return nil, InternalError("list bookings", err)
	}
	out := make([]models.BookingView, 0, len(bookings))
	for i := range bookings {
		out = append(out, bookings[i].View())
	}
	return out, nil
}

// UpdateStatus applies a lifecycle transition on behalf of caller.
// The owning professional confirms and completes; either party cancels;
// admins may do all three.
func (s *BookingService) UpdateStatus(ctx context.Context, caller Caller, bookingID, status string) (*models.BookingView, error) {
	if err := RequireRole(caller, models.RolePatient, models.RoleProfessional, models.RoleAdmin); err != nil {
		return nil, err
	}
	to, ok := models.ParseBookingStatus(status)
	if !ok {
		return nil, ValidationError("status must be one of CONFIRMED, CANCELLED or COMPLETED")
	}

	booking, err := s.repo.BookingByID(ctx, bookingID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError("booking not found")
	}
	if err != nil {
		return nil, InternalError("load booking", err)
	}

	if !mayTransition(caller, booking, to) {
		if isParty(caller, booking) {
			return nil, ForbiddenError("you may not set this booking to " + string(to))
		}
		return nil, ForbiddenError("booking does not belong to you")
	}
	if !booking.Status.CanTransition(to) {
		return nil, ConflictError("cannot change booking from " + string(booking.Status) + " to " + string(to))
	}

	updated, err := s.repo.TransitionBooking(ctx, booking.ID, booking.Status, to, s.now().UTC())
	if errors.Is(err, store.ErrStale) {
		return nil, ConflictError("booking was updated concurrently, reload and retry")
	}
	if err != nil {
		return nil, InternalError("update booking status", err)
	}
	s.log.Info("booking status changed",
		zap.String("bookingID", booking.ID),
		zap.String("from", string(booking.Status)),
		zap.String("to", string(to)),
		zap.String("actorID", caller.UserID),
	)
	v := updated.View()
	return &v, nil
}

func isParty(caller Caller, b *models.Booking) bool {
	return caller.UserID == b.PatientID || caller.UserID == b.ProfessionalID
}

func mayTransition(caller Caller, b *models.Booking, to models.BookingStatus) bool {
	if caller.Role == models.RoleAdmin {
		return true
	}
	switch to {
	case models.BookingConfirmed, models.BookingCompleted:
		return caller.Role == models.RoleProfessional && caller.UserID == b.ProfessionalID
	case models.BookingCancelled:
		return isParty(caller, b)
	}
	return false
}

// HousekeepResult counts what one Housekeep pass changed.
type HousekeepResult struct {
	Expired   int
	Completed int
}

// Housekeep cancels pending bookings whose start has passed, releasing their
// slots, and completes confirmed bookings whose end has passed.
func (s *BookingService) Housekeep(ctx context.Context, now time.Time) (HousekeepResult, error) {
	var res HousekeepResult

	pending, err := s.repo.ListBookings(ctx, store.BookingFilter{Status: models.BookingPending, StartsBefore: now})
	if err != nil {
		return res, InternalError("list stale bookings", err)
	}
	for _, b := range pending {
		changed, err := s.sweep(ctx, b.ID, models.BookingPending, models.BookingCancelled, now)
		if err != nil {
			return res, err
		}
		if changed {
			res.Expired++
		}
	}

	confirmed, err := s.repo.ListBookings(ctx, store.BookingFilter{Status: models.BookingConfirmed, EndsBefore: now})
	if err != nil {
		return res, InternalError("list finished bookings", err)
	}
	for _, b := range confirmed {
		changed, err := s.sweep(ctx, b.ID, models.BookingConfirmed, models.BookingCompleted, now)
		if err != nil {
			return res, err
		}
		if changed {
			res.Completed++
		}
	}
	return res, nil
}

// sweep skips a booking that moved on since it was listed.
func (s *BookingService) sweep(ctx context.Context, id string, from, to models.BookingStatus, now time.Time) (bool, error) {
	_, err := s.repo.TransitionBooking(ctx, id, from, to, now)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrStale), errors.Is(err, store.ErrNotFound):
		return false, nil
	}
	return false, InternalError("housekeep booking "+id, err)
}
