// Package store persists users, profiles, availability and bookings through gorm.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"subaacare-server/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrSlotTaken is returned when a slot claim loses to another booking.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrStale is returned when a conditional update finds the row in a
	// different state than expected.
	ErrStale = errors.New("record changed concurrently")
)

// ProfileFilter narrows profile and availability listings.
type ProfileFilter struct {
	Status   models.ProfileStatus
	Query    string // matches specialties, location or owner name
	Location string
	// OldestFirst orders by creation time instead of id.
	OldestFirst bool
}

// SlotWindow bounds a slot search. Zero values are open.
type SlotWindow struct {
	From time.Time
	To   time.Time
}

// BookingFilter narrows booking listings. Zero values are ignored.
type BookingFilter struct {
	PatientID      string
	ProfessionalID string
	Status         models.BookingStatus
	StartsBefore   time.Time
	EndsBefore     time.Time
}

type Users interface {
	// CreateUser inserts the user and, when profile is non-nil, its profile in
	// the same transaction.
	CreateUser(ctx context.Context, user *models.User, profile *models.Profile) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

type Profiles interface {
	ProfileByID(ctx context.Context, id string) (*models.Profile, error)
	ProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]models.Profile, error)
}

type Slots interface {
	CreateSlot(ctx context.Context, slot *models.AvailabilitySlot) error
	SlotByID(ctx context.Context, id string) (*models.AvailabilitySlot, error)
	// DeleteSlot removes an unbooked slot; a booked one yields ErrSlotTaken.
	DeleteSlot(ctx context.Context, id string) error
	// ListSlots returns the slots of a profile ordered by start. openOnly skips
	// booked slots; a non-zero from skips slots that ended before it.
	ListSlots(ctx context.Context, profileID string, openOnly bool, from time.Time) ([]models.AvailabilitySlot, error)
	// FindSlot returns the slot of profileID covering exactly [start, end),
	// preferring an unbooked one.
	FindSlot(ctx context.Context, profileID string, start, end time.Time) (*models.AvailabilitySlot, error)
	// SearchOpenSlots returns unbooked slots overlapping window whose profiles
	// match filter, ordered by profile id then start. Profile.User is loaded.
	SearchOpenSlots(ctx context.Context, window SlotWindow, filter ProfileFilter) ([]models.AvailabilitySlot, error)
}

type Bookings interface {
	// CreateBooking inserts the booking. When booking.SlotID is set the slot is
	// marked booked in the same transaction, or ErrSlotTaken is returned.
	CreateBooking(ctx context.Context, booking *models.Booking) error
	BookingByID(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	// TransitionBooking moves a booking from one status to another. Cancelling
	// releases the claimed slot. ErrStale means the booking was not in from.
	TransitionBooking(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) (*models.Booking, error)
}

type Ratings interface {
	CreateRating(ctx context.Context, rating *models.Rating) error
	ListRatings(ctx context.Context, profileID string) ([]models.Rating, error)
	RatingSummary(ctx context.Context, profileID string) (models.RatingSummary, error)
}

type Documents interface {
	// CreateDocument stores the file and saves the profile that now references
	// it in one transaction.
	CreateDocument(ctx context.Context, doc *models.ProfileDocument, profile *models.Profile) error
	DocumentByID(ctx context.Context, id string) (*models.ProfileDocument, error)
}

// Repository is everything the services need from persistence.
type Repository interface {
	Users
	Profiles
	Slots
	Bookings
	Ratings
	Documents
}

// Store implements Repository on a gorm connection.
type Store struct {
	db *gorm.DB
}

var _ Repository = (*Store)(nil)

// New wraps an open connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the connection for health checks and migrations.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern for a substring match.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// applyProfileFilter expects users to be joined on profiles.user_id.
func applyProfileFilter(q *gorm.DB, f ProfileFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("profiles.status = ?", f.Status)
	}
	if strings.TrimSpace(f.Query) != "" {
		p := containsPattern(f.Query)
		q = q.Where("(LOWER(profiles.specialties) LIKE ? OR LOWER(profiles.location) LIKE ? OR LOWER(users.name) LIKE ?)", p, p, p)
	}
	if strings.TrimSpace(f.Location) != "" {
		q = q.Where("LOWER(profiles.location) LIKE ?", containsPattern(f.Location))
	}
	return q
}
