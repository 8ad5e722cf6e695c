package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"subaacare-server/internal/models"
)

func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if booking.SlotID != nil {
			// Conditional update: of two concurrent claims only one sees booked=false.
			res := tx.Model(&models.AvailabilitySlot{}).
				Where("id = ? AND booked = ?", *booking.SlotID, false).
				Update("booked", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrSlotTaken
			}
		}
		return tx.Omit("Patient", "Professional", "Profile").Create(booking).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// The unique index on slot_id caught a claim the update did not.
		return ErrSlotTaken
	}
	return translate(err)
}

func (s *Store) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Preload("Patient").Preload("Professional").Preload("Profile").
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (s *Store) ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	q := s.db.WithContext(ctx).Preload("Patient").Preload("Professional").Preload("Profile")
	if filter.PatientID != "" {
		q = q.Where("patient_id = ?", filter.PatientID)
	}
	if filter.ProfessionalID != "" {
		q = q.Where("professional_id = ?", filter.ProfessionalID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if !filter.StartsBefore.IsZero() {
		q = q.Where("starts_at < ?", filter.StartsBefore)
	}
	if !filter.EndsBefore.IsZero() {
		q = q.Where("ends_at < ?", filter.EndsBefore)
	}

	var bookings []models.Booking
	if err := q.Order("starts_at ASC").Order("id ASC").Find(&bookings).Error; err != nil {
		return nil, translate(err)
	}
	return bookings, nil
}

func (s *Store) TransitionBooking(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) (*models.Booking, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, "id = ?", id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"status": to}
		if to == models.BookingCancelled {
			updates["cancelled_at"] = at
			updates["slot_id"] = nil
		}
		res := tx.Model(&models.Booking{}).Where("id = ? AND status = ?", id, from).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStale
		}

		if to == models.BookingCancelled && booking.SlotID != nil {
			return tx.Model(&models.AvailabilitySlot{}).
				Where("id = ?", *booking.SlotID).
				Update("booked", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return s.BookingByID(ctx, id)
}
