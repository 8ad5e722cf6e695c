package models

import (
	"time"
)

// ProfileStatus is the moderation state of a professional profile.
type ProfileStatus string

const (
	ProfilePending  ProfileStatus = "pending"
	ProfileApproved ProfileStatus = "approved"
	ProfileRejected ProfileStatus = "rejected"
)

// Profile is a professional's bookable business record. There is at most one
// per user.
type Profile struct {
	BaseModel
	UserID          string        `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialties     string        `gorm:"type:text;not null" json:"specialties"`
	Location        string        `gorm:"size:255;not null;index" json:"location"`
	Category        string        `gorm:"size:100" json:"category,omitempty"`
	Bio             *string       `gorm:"type:text" json:"bio,omitempty"`
	HourlyRate      *float64      `json:"hourlyRate,omitempty"`
	ExperienceYears *int          `json:"experienceYears,omitempty"`
	Languages       *string       `gorm:"size:255" json:"languages,omitempty"`
	Status          ProfileStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RejectionReason *string       `gorm:"type:text" json:"rejectionReason"`
	ReviewedAt      *time.Time    `json:"reviewedAt,omitempty"`

	// Supporting documents reviewed by an admin before approval.
	IdentityProofDocID *string `gorm:"size:36" json:"identityProofDocId,omitempty"`
	AddressProofDocID  *string `gorm:"size:36" json:"addressProofDocId,omitempty"`
	QualificationDocID *string `gorm:"size:36" json:"qualificationDocId,omitempty"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// IsApproved reports whether the profile is publicly visible and may publish
// availability.
func (p *Profile) IsApproved() bool {
	return p.Status == ProfileApproved
}

// ProfessionalSummary is the public view of a profile joined with its owner's
// display fields. Email is only included for admin listings.
type ProfessionalSummary struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	Name            string        `json:"name"`
	Email           string        `json:"email,omitempty"`
	Specialties     string        `json:"specialties"`
	Location        string        `json:"location"`
	Category        string        `json:"category,omitempty"`
	Bio             *string       `json:"bio,omitempty"`
	HourlyRate      *float64      `json:"hourlyRate,omitempty"`
	ExperienceYears *int          `json:"experienceYears,omitempty"`
	Languages       *string       `json:"languages,omitempty"`
	Status          ProfileStatus `json:"status"`
	RejectionReason *string       `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Summary builds the public view. withEmail is set for admin callers only.
func (p *Profile) Summary(withEmail bool) ProfessionalSummary {
	s := ProfessionalSummary{
		ID:              p.ID,
		UserID:          p.UserID,
		Specialties:     p.Specialties,
		Location:        p.Location,
		Category:        p.Category,
		Bio:             p.Bio,
		HourlyRate:      p.HourlyRate,
		ExperienceYears: p.ExperienceYears,
		Languages:       p.Languages,
		Status:          p.Status,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
	}
	if p.User != nil {
		s.Name = p.User.Name
		if withEmail {
			s.Email = p.User.Email
		}
	}
	return s
}
