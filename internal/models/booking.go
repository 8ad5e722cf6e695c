package models

import (
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// ParseBookingStatus accepts any casing.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch st := BookingStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return st, true
	}
	return "", false
}

// CanTransition reports whether the lifecycle allows moving from one status to
// another. It says nothing about who may do it.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	switch s {
	case BookingPending:
		return to == BookingConfirmed || to == BookingCancelled
	case BookingConfirmed:
		return to == BookingCancelled || to == BookingCompleted
	}
	return false
}

// Booking represents a patient's request to occupy a professional's time
type Booking struct {
	BaseModel
	PatientID      string `gorm:"size:36;not null;index" json:"patientId"`
	ProfessionalID string `gorm:"size:36;not null;index" json:"professionalId"`
	ProfileID      string `gorm:"size:36;not null;index" json:"profileId"`

	// SlotID is cleared when the booking releases its slot, so the unique index
	// only ever holds live claims.
	SlotID      *string       `gorm:"size:36;uniqueIndex" json:"slotId,omitempty"`
	Start       time.Time     `gorm:"column:starts_at;not null;index" json:"start"`
	End         time.Time     `gorm:"column:ends_at;not null" json:"end"`
	Status      BookingStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Notes       *string       `gorm:"type:text" json:"notes,omitempty"`
	CancelledAt *time.Time    `json:"cancelledAt,omitempty"`

	// Relations
	Patient      *User    `gorm:"foreignKey:PatientID" json:"-"`
	Professional *User    `gorm:"foreignKey:ProfessionalID" json:"-"`
	Profile      *Profile `gorm:"foreignKey:ProfileID" json:"-"`
}

// BookingView is a booking joined with the display fields of both parties.
type BookingView struct {
	Booking
	PatientName      string `json:"patientName,omitempty"`
	ProfessionalName string `json:"professionalName,omitempty"`
	Specialties      string `json:"specialties,omitempty"`
	Location         string `json:"location,omitempty"`
}

// View flattens whatever relations were preloaded.
func (b *Booking) View() BookingView {
	v := BookingView{Booking: *b}
	if b.Patient != nil {
		v.PatientName = b.Patient.Name
	}
	if b.Professional != nil {
		v.ProfessionalName = b.Professional.Name
	}
	if b.Profile != nil {
		v.Specialties = b.Profile.Specialties
		v.Location = b.Profile.Location
	}
	return v
}
