package models

import (
	"time"
)

// AvailabilitySlot is a bookable time window published by a professional.
type AvailabilitySlot struct {
	BaseModel
	ProfileID string    `gorm:"size:36;not null;index:idx_slot_profile_start,priority:1" json:"profileId"`
	Start     time.Time `gorm:"column:starts_at;not null;index:idx_slot_profile_start,priority:2" json:"start"`
	End       time.Time `gorm:"column:ends_at;not null" json:"end"`
	Booked    bool      `gorm:"not null;default:false;index" json:"booked"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"-"`
}

// Overlaps reports whether the slot shares any instant with [from, to). A zero
// bound is open on that side.
func (s *AvailabilitySlot) Overlaps(from, to time.Time) bool {
	if !to.IsZero() && !s.Start.Before(to) {
		return false
	}
	if !from.IsZero() && !s.End.After(from) {
		return false
	}
	return true
}

// Matches reports whether the slot covers exactly [start, end).
func (s *AvailabilitySlot) Matches(start, end time.Time) bool {
	return s.Start.Equal(start) && s.End.Equal(end)
}

// ProfessionalAvailability groups the open slots of one approved professional.
type ProfessionalAvailability struct {
	Professional ProfessionalSummary `json:"professional"`
	Slots        []AvailabilitySlot  `json:"slots"`
}
