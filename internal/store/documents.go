package store

import (
	"context"

	"gorm.io/gorm"

	"subaacare-server/internal/models"
)

func (s *Store) CreateDocument(ctx context.Context, doc *models.ProfileDocument, profile *models.Profile) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		profile.SetDocument(doc.Kind, doc.ID)
		return tx.Omit("User").Save(profile).Error
	}))
}

func (s *Store) DocumentByID(ctx context.Context, id string) (*models.ProfileDocument, error) {
	var doc models.ProfileDocument
	if err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}
