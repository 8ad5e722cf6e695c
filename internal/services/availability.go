package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"subaacare-server/internal/models"
	"subaacare-server/internal/store"
)

// Window bounds an availability search. A nil From means now; a nil To is
// unbounded.
type Window struct {
	From *time.Time
	To   *time.Time
}

type AvailabilityService struct {
	repo store.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewAvailabilityService(repo store.Repository, log *zap.Logger) *AvailabilityService {
	return &AvailabilityService{repo: repo, log: log, now: time.Now}
}

// CreateSlot publishes an open slot. Only approved professionals may publish.
func (s *AvailabilityService) CreateSlot(ctx context.Context, caller Caller, start, end time.Time) (*models.AvailabilitySlot, error) {
	if err := RequireRole(caller, models.RoleProfessional); err != nil {
		return nil, err
	}
	if err := checkWindow(start, end); err != nil {
		return nil, err
	}

	profile, err := ownProfile(ctx, s.repo, caller)
	if err != nil {
		if IsKind(err, KindNotFound) {
			return nil, ForbiddenError("your profile must be approved before publishing availability")
		}
		return nil, err
	}
	if !profile.IsApproved() {
		return nil, ForbiddenError("your profile must be approved before publishing availability")
	}

	slot := &models.AvailabilitySlot{ProfileID: profile.ID, Start: start.UTC(), End: end.UTC()}
	if err := s.repo.CreateSlot(ctx, slot); err != nil {
		return nil, InternalError("create slot", err)
	}
	s.log.Debug("slot created", zap.String("slotID", slot.ID), zap.String("profileID", profile.ID))
	return slot, nil
}

func (s *AvailabilityService) ListOwnSlots(ctx context.Context, caller Caller) ([]models.AvailabilitySlot, error) {
	if err := RequireRole(caller, models.RoleProfessional); err != nil {
		return nil, err
	}
	profile, err := ownProfile(ctx, s.repo, caller)
	if err != nil {
		return nil, err
	}
	slots, err := s.repo.ListSlots(ctx, profile.ID, false, time.Time{})
	if err != nil {
		return nil, InternalError("list slots", err)
	}
	return nonNil(slots), nil
}

func (s *AvailabilityService) DeleteSlot(ctx context.Context, caller Caller, slotID string) error {
	if err := RequireRole(caller, models.RoleProfessional); err != nil {
		return err
	}
	slot, err := s.repo.SlotByID(ctx, slotID)
	if errors.Is(err, store.ErrNotFound) {
		return NotFoundError("slot not found")
	}
	if err != nil {
		return InternalError("load slot", err)
	}

	profile, err := ownProfile(ctx, s.repo, caller)
	if err != nil {
		if IsKind(err, KindNotFound) {
			return ForbiddenError("slot does not belong to you")
		}
		return err
	}
	if slot.ProfileID != profile.ID {
		return ForbiddenError("slot does not belong to you")
	}

	switch err := s.repo.DeleteSlot(ctx, slotID); {
	case errors.Is(err, store.ErrSlotTaken):
		return ConflictError("slot is booked; cancel the booking first")
	case errors.Is(err, store.ErrNotFound):
		return NotFoundError("slot not found")
	case err != nil:
		return InternalError("delete slot", err)
	}
	return nil
}

// SearchAvailable returns approved professionals with at least one open slot
// overlapping the window, ordered by profile id with slots by start.
func (s *AvailabilityService) SearchAvailable(ctx context.Context, w Window, query, location string) ([]models.ProfessionalAvailability, error) {
	window := store.SlotWindow{From: s.now().UTC()}
	if w.From != nil {
		window.From = *w.From
	}
	if w.To != nil {
		window.To = *w.To
	}
	if !window.To.IsZero() && !window.From.Before(window.To) {
		if w.From == nil {
			return nil, ValidationError("end must be in the future when start is omitted")
		}
		return nil, ValidationError("start must be before end")
	}

	slots, err := s.repo.SearchOpenSlots(ctx, window, store.ProfileFilter{
		Status:   models.ProfileApproved,
		Query:    query,
		Location: location,
	})
	if err != nil {
		return nil, InternalError("search availability", err)
	}

	out := []models.ProfessionalAvailability{}
	for _, slot := range slots {
		if slot.Profile == nil {
			continue
		}
		if n := len(out); n == 0 || out[n-1].Professional.ID != slot.ProfileID {
			out = append(out, models.ProfessionalAvailability{Professional: slot.Profile.Summary(false)})
		}
		last := &out[len(out)-1]
		slot.Profile = nil
		last.Slots = append(last.Slots, slot)
	}
	return out, nil
}

// ListOpenSlots returns the future unbooked slots of an approved professional.
func (s *AvailabilityService) ListOpenSlots(ctx context.Context, profileID string) ([]models.AvailabilitySlot, error) {
	profile, err := s.repo.ProfileByID(ctx, profileID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !profile.IsApproved()) {
		return nil, NotFoundError("professional not found")
	}
	if err != nil {
		return nil, InternalError("load profile", err)
	}
	slots, err := s.repo.ListSlots(ctx, profile.ID, true, s.now().UTC())
	if err != nil {
		return nil, InternalError("list slots", err)
	}
	return nonNil(slots), nil
}

func checkWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ValidationError("start and end are required")
	}
	if !start.Before(end) {
		return ValidationError("start must be before end")
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
