package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"subaacare-server/internal/models"
)

func (s *Store) CreateSlot(ctx context.Context, slot *models.AvailabilitySlot) error {
	return translate(s.db.WithContext(ctx).Omit("Profile").Create(slot).Error)
}

func (s *Store) SlotByID(ctx context.Context, id string) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	if err := s.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &slot, nil
}

func (s *Store) DeleteSlot(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot models.AvailabilitySlot
		if err := tx.First(&slot, "id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND booked = ?", id, false).Delete(&models.AvailabilitySlot{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSlotTaken
		}
		return nil
	}))
}

func (s *Store) ListSlots(ctx context.Context, profileID string, openOnly bool, from time.Time) ([]models.AvailabilitySlot, error) {
	q := s.db.WithContext(ctx).Where("profile_id = ?", profileID)
	if openOnly {
		q = q.Where("booked = ?", false)
	}
	if !from.IsZero() {
		q = q.Where("ends_at > ?", from)
	}

	var slots []models.AvailabilitySlot
	if err := q.Order("starts_at ASC").Order("id ASC").Find(&slots).Error; err != nil {
		return nil, translate(err)
	}
	return slots, nil
}

func (s *Store) FindSlot(ctx context.Context, profileID string, start, end time.Time) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	err := s.db.WithContext(ctx).
		Where("profile_id = ? AND starts_at = ? AND ends_at = ?", profileID, start, end).
		Order("booked ASC").
		First(&slot).Error
	if err != nil {
		return nil, translate(err)
	}
	return &slot, nil
}

func (s *Store) SearchOpenSlots(ctx context.Context, window SlotWindow, filter ProfileFilter) ([]models.AvailabilitySlot, error) {
	q := s.db.WithContext(ctx).
		Model(&models.AvailabilitySlot{}).
		Joins("JOIN profiles ON profiles.id = availability_slots.profile_id").
		Joins("JOIN users ON users.id = profiles.user_id").
		Preload("Profile.User").
		Where("availability_slots.booked = ?", false)
	if !window.To.IsZero() {
		q = q.Where("availability_slots.starts_at < ?", window.To)
	}
	if !window.From.IsZero() {
		q = q.Where("availability_slots.ends_at > ?", window.From)
	}
	q = applyProfileFilter(q, filter)

	var slots []models.AvailabilitySlot
	err := q.Order("availability_slots.profile_id ASC").
		Order("availability_slots.starts_at ASC").
		Order("availability_slots.id ASC").
		Find(&slots).Error
	if err != nil {
		return nil, translate(err)
	}
	return slots, nil
}
