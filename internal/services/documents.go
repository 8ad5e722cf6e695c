package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"subaacare-server/internal/models"
	"subaacare-server/internal/store"
)

// DefaultMaxDocumentBytes caps uploads when no limit is configured.
const DefaultMaxDocumentBytes = 5 << 20

type DocumentService struct {
	repo     store.Repository
	log      *zap.Logger
	maxBytes int64
}

func NewDocumentService(repo store.Repository, log *zap.Logger, maxBytes int64) *DocumentService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}
	return &DocumentService{repo: repo, log: log, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted upload.
func (s *DocumentService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload attaches a supporting document to the caller's profile. A changed
// document needs a fresh review, so the profile returns to pending.
func (s *DocumentService) Upload(ctx context.Context, caller Caller, kind, fileName, contentType string, data []byte) (*models.DocumentInfo, error) {
	if err := RequireRole(caller, models.RoleProfessional); err != nil {
		return nil, err
	}
	k, ok := models.ParseDocumentKind(kind)
	if !ok {
		return nil, ValidationError("kind must be identity_proof, address_proof or qualification")
	}
	if len(data) == 0 {
		return nil, ValidationError("file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ValidationError("file exceeds the %d byte limit", s.maxBytes)
	}

	profile, err := ownProfile(ctx, s.repo, caller)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "." || name == string(filepath.Separator) {
		name = string(k)
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	doc := &models.ProfileDocument{
		ProfileID:   profile.ID,
		Kind:        k,
		FileName:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
	profile.Status = models.ProfilePending
	profile.RejectionReason = nil
	profile.ReviewedAt = nil
	if err := s.repo.CreateDocument(ctx, doc, profile); err != nil {
		return nil, InternalError("store document", err)
	}
	s.log.Info("document uploaded",
		zap.String("documentID", doc.ID),
		zap.String("profileID", profile.ID),
		zap.String("kind", string(k)),
		zap.Int64("size", doc.Size),
	)
	info := doc.Info()
	return &info, nil
}

// Get returns a document to an admin or to the professional who owns it.
func (s *DocumentService) Get(ctx context.Context, caller Caller, docID string) (*models.ProfileDocument, error) {
	if err := RequireRole(caller, models.RoleAdmin, models.RoleProfessional); err != nil {
		return nil, err
	}
	doc, err := s.repo.DocumentByID(ctx, docID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError("document not found")
	}
	if err != nil {
		return nil, InternalError("load document", err)
	}
	if caller.Role == models.RoleAdmin {
		return doc, nil
	}

	profile, err := s.repo.ProfileByUserID(ctx, caller.UserID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && profile.ID != doc.ProfileID) {
		return nil, ForbiddenError("document does not belong to you")
	}
	if err != nil {
		return nil, InternalError("load profile", err)
	}
	return doc, nil
}
