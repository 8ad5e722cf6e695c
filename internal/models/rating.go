package models

// Rating is a patient's score for a professional after a completed booking.
type Rating struct {
	BaseModel
	ProfileID string  `gorm:"size:36;not null;index" json:"profileId"`
	PatientID string  `gorm:"size:36;not null;index" json:"patientId"`
	BookingID string  `gorm:"size:36;not null;uniqueIndex" json:"bookingId"`
	Score     int     `gorm:"not null" json:"score"`
	Comment   *string `gorm:"type:text" json:"comment,omitempty"`

	Patient *User `gorm:"foreignKey:PatientID" json:"-"`
}

// RatingSummary aggregates the ratings of one profile.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// RatingView adds the patient's display name.
type RatingView struct {
	Rating
	PatientName string `json:"patientName,omitempty"`
}

// View flattens the preloaded patient.
func (r *Rating) View() RatingView {
	v := RatingView{Rating: *r}
	if r.Patient != nil {
		v.PatientName = r.Patient.Name
	}
	return v
}
