// Package storetest provides an in-memory store.Repository for tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"subaacare-server/internal/models"
	"subaacare-server/internal/store"
)

// Memory is a mutex-guarded Repository. Every call observes the effects of
// earlier calls, so it behaves like a serialisable database.
type Memory struct {
	mu        sync.Mutex
	users     map[string]models.User
	profiles  map[string]models.Profile
	slots     map[string]models.AvailabilitySlot
	bookings  map[string]models.Booking
	ratings   map[string]models.Rating
	documents map[string]models.ProfileDocument
	clock     time.Time
}

var _ store.Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]models.User),
		profiles:  make(map[string]models.Profile),
		slots:     make(map[string]models.AvailabilitySlot),
		bookings:  make(map[string]models.Booking),
		ratings:   make(map[string]models.Rating),
		documents: make(map[string]models.ProfileDocument),
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// stamp hands out strictly increasing creation times so ordering by creation
// is deterministic.
func (m *Memory) stamp(base *models.BaseModel) {
	m.clock = m.clock.Add(time.Second)
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = m.clock
	}
	base.UpdatedAt = m.clock
}

// -- users --

func (m *Memory) CreateUser(_ context.Context, user *models.User, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = models.NormalizeEmail(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	m.stamp(&user.BaseModel)
	m.users[user.ID] = *user
	if profile != nil {
		profile.UserID = user.ID
		if profile.Status == "" {
			profile.Status = models.ProfilePending
		}
		m.stamp(&profile.BaseModel)
		m.profiles[profile.ID] = withoutUser(*profile)
	}
	return nil
}

func (m *Memory) UserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = models.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

// -- profiles --

func withoutUser(p models.Profile) models.Profile {
	p.User = nil
	return p
}

// loadProfile returns a copy with its owner attached. Callers hold m.mu.
func (m *Memory) loadProfile(p models.Profile) *models.Profile {
	if u, ok := m.users[p.UserID]; ok {
		p.User = &u
	}
	return &p
}

func (m *Memory) ProfileByID(_ context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.loadProfile(p), nil
}

func (m *Memory) ProfileByUserID(_ context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.UserID == userID {
			return m.loadProfile(p), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) SaveProfile(_ context.Context, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveProfile(profile)
}

func (m *Memory) saveProfile(profile *models.Profile) error {
	for _, p := range m.profiles {
		if p.UserID == profile.UserID && p.ID != profile.ID {
			return store.ErrDuplicate
		}
	}
	if profile.Status == "" {
		profile.Status = models.ProfilePending
	}
	m.stamp(&profile.BaseModel)
	m.profiles[profile.ID] = withoutUser(*profile)
	return nil
}

func (m *Memory) matches(p models.Profile, f store.ProfileFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		name := strings.ToLower(m.users[p.UserID].Name)
		if !strings.Contains(strings.ToLower(p.Specialties), q) &&
			!strings.Contains(strings.ToLower(p.Location), q) &&
			!strings.Contains(name, q) {
			return false
		}
	}
	if loc := strings.ToLower(strings.TrimSpace(f.Location)); loc != "" {
		if !strings.Contains(strings.ToLower(p.Location), loc) {
			return false
		}
	}
	return true
}

func (m *Memory) ListProfiles(_ context.Context, filter store.ProfileFilter) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Profile
	for _, p := range m.profiles {
		if m.matches(p, filter) {
			out = append(out, *m.loadProfile(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.OldestFirst && !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// -- slots --

func (m *Memory) CreateSlot(_ context.Context, slot *models.AvailabilitySlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[slot.ProfileID]; !ok {
		return store.ErrNotFound
	}
	m.stamp(&slot.BaseModel)
	s := *slot
	s.Profile = nil
	m.slots[slot.ID] = s
	return nil
}

func (m *Memory) SlotByID(_ context.Context, id string) (*models.AvailabilitySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (m *Memory) DeleteSlot(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return store.ErrNotFound
	}
	if s.Booked {
		return store.ErrSlotTaken
	}
	delete(m.slots, id)
	return nil
}

func sortSlots(slots []models.AvailabilitySlot) {
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.ProfileID != b.ProfileID {
			return a.ProfileID < b.ProfileID
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.ID < b.ID
	})
}

func (m *Memory) ListSlots(_ context.Context, profileID string, openOnly bool, from time.Time) ([]models.AvailabilitySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.AvailabilitySlot
	for _, s := range m.slots {
		if s.ProfileID != profileID || (openOnly && s.Booked) {
			continue
		}
		if !from.IsZero() && !s.End.After(from) {
			continue
		}
		out = append(out, s)
	}
	sortSlots(out)
	return out, nil
}

func (m *Memory) FindSlot(_ context.Context, profileID string, start, end time.Time) (*models.AvailabilitySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found *models.AvailabilitySlot
	for _, s := range m.slots {
		if s.ProfileID != profileID || !s.Matches(start, end) {
			continue
		}
		s := s
		if found == nil || (found.Booked && !s.Booked) {
			found = &s
		}
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}

func (m *Memory) SearchOpenSlots(_ context.Context, window store.SlotWindow, filter store.ProfileFilter) ([]models.AvailabilitySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.AvailabilitySlot
	for _, s := range m.slots {
		if s.Booked || !s.Overlaps(window.From, window.To) {
			continue
		}
		p, ok := m.profiles[s.ProfileID]
		if !ok || !m.matches(p, filter) {
			continue
		}
		s.Profile = m.loadProfile(p)
		out = append(out, s)
	}
	sortSlots(out)
	return out, nil
}

// -- bookings --

// loadBooking attaches relations. Callers hold m.mu.
func (m *Memory) loadBooking(b models.Booking) *models.Booking {
	if u, ok := m.users[b.PatientID]; ok {
		b.Patient = &u
	}
	if u, ok := m.users[b.ProfessionalID]; ok {
		b.Professional = &u
	}
	if p, ok := m.profiles[b.ProfileID]; ok {
		b.Profile = &p
	}
	return &b
}

func (m *Memory) CreateBooking(_ context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if booking.SlotID != nil {
		s, ok := m.slots[*booking.SlotID]
		if !ok || s.Booked {
			return store.ErrSlotTaken
		}
		s.Booked = true
		m.slots[s.ID] = s
	}
	if booking.Status == "" {
		booking.Status = models.BookingPending
	}
	m.stamp(&booking.BaseModel)
	b := *booking
	b.Patient, b.Professional, b.Profile = nil, nil, nil
	m.bookings[b.ID] = b
	return nil
}

func (m *Memory) BookingByID(_ context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.loadBooking(b), nil
}

func (m *Memory) ListBookings(_ context.Context, f store.BookingFilter) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Booking
	for _, b := range m.bookings {
		switch {
		case f.PatientID != "" && b.PatientID != f.PatientID,
			f.ProfessionalID != "" && b.ProfessionalID != f.ProfessionalID,
			f.Status != "" && b.Status != f.Status,
			!f.StartsBefore.IsZero() && !b.Start.Before(f.StartsBefore),
			!f.EndsBefore.IsZero() && !b.End.Before(f.EndsBefore):
			continue
		}
		out = append(out, *m.loadBooking(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) TransitionBooking(_ context.Context, id string, from, to models.BookingStatus, at time.Time) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if b.Status != from {
		return nil, store.ErrStale
	}
	b.Status = to
	if to == models.BookingCancelled {
		b.CancelledAt = &at
		if b.SlotID != nil {
			if s, ok := m.slots[*b.SlotID]; ok {
				s.Booked = false
				m.slots[s.ID] = s
			}
			b.SlotID = nil
		}
	}
	m.stamp(&b.BaseModel)
	m.bookings[id] = b
	return m.loadBooking(b), nil
}

// -- ratings --

func (m *Memory) CreateRating(_ context.Context, rating *models.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.ratings {
		if r.BookingID == rating.BookingID {
			return store.ErrDuplicate
		}
	}
	m.stamp(&rating.BaseModel)
	r := *rating
	r.Patient = nil
	m.ratings[r.ID] = r
	return nil
}

func (m *Memory) ListRatings(_ context.Context, profileID string) ([]models.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Rating
	for _, r := range m.ratings {
		if r.ProfileID != profileID {
			continue
		}
		if u, ok := m.users[r.PatientID]; ok {
			r.Patient = &u
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) RatingSummary(_ context.Context, profileID string) (models.RatingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum models.RatingSummary
	total := 0
	for _, r := range m.ratings {
		if r.ProfileID == profileID {
			sum.Count++
			total += r.Score
		}
	}
	if sum.Count > 0 {
		sum.Average = float64(total) / float64(sum.Count)
	}
	return sum, nil
}

// -- documents --

func (m *Memory) CreateDocument(_ context.Context, doc *models.ProfileDocument, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stamp(&doc.BaseModel)
	m.documents[doc.ID] = *doc
	profile.SetDocument(doc.Kind, doc.ID)
	return m.saveProfile(profile)
}

func (m *Memory) DocumentByID(_ context.Context, id string) (*models.ProfileDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}
