package store

import (
	"context"

	"subaacare-server/internal/models"
)

func (s *Store) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Preload("User").First(&profile, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *Store) ProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// SaveProfile inserts a new profile or updates every column of an existing one.
func (s *Store) SaveProfile(ctx context.Context, profile *models.Profile) error {
	db := s.db.WithContext(ctx).Omit("User")
	if profile.ID == "" {
		return translate(db.Create(profile).Error)
	}
	return translate(db.Save(profile).Error)
}

func (s *Store) ListProfiles(ctx context.Context, filter ProfileFilter) ([]models.Profile, error) {
	q := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Joins("JOIN users ON users.id = profiles.user_id").
		Preload("User")
	q = applyProfileFilter(q, filter)
	if filter.OldestFirst {
		q = q.Order("profiles.created_at ASC").Order("profiles.id ASC")
	} else {
		q = q.Order("profiles.id ASC")
	}

	var profiles []models.Profile
	if err := q.Find(&profiles).Error; err != nil {
		return nil, translate(err)
	}
	return profiles, nil
}
