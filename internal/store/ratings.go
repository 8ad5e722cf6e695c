package store

import (
	"context"

	"subaacare-server/internal/models"
)

func (s *Store) CreateRating(ctx context.Context, rating *models.Rating) error {
	return translate(s.db.WithContext(ctx).Omit("Patient").Create(rating).Error)
}

func (s *Store) ListRatings(ctx context.Context, profileID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := s.db.WithContext(ctx).
		Preload("Patient").
		Where("profile_id = ?", profileID).
		Order("created_at DESC").Order("id ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, translate(err)
	}
	return ratings, nil
}

func (s *Store) RatingSummary(ctx context.Context, profileID string) (models.RatingSummary, error) {
	var row struct {
		Average *float64
		Count   int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("AVG(score) AS average, COUNT(*) AS count").
		Where("profile_id = ?", profileID).
		Scan(&row).Error
	if err != nil {
		return models.RatingSummary{}, translate(err)
	}
	summary := models.RatingSummary{Count: row.Count}
	if row.Average != nil {
		summary.Average = *row.Average
	}
	return summary, nil
}
