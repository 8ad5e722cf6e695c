package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"subaacare-server/internal/models"
	"subaacare-server/internal/store"
)

// DefaultRejectionReason is recorded when an admin rejects without a reason.
const DefaultRejectionReason = "Application did not meet the approval criteria"

// ProfileInput carries the professional attributes of a profile submission.
type ProfileInput struct {
	Specialties     string
	Location        string
	Category        string
	Bio             *string
	HourlyRate      *float64
	ExperienceYears *int
	Languages       *string
}

func (in ProfileInput) validate() error {
	if strings.TrimSpace(in.Specialties) == "" || strings.TrimSpace(in.Location) == "" {
		return ValidationError("specialties and location are required for professionals")
	}
	if in.HourlyRate != nil && *in.HourlyRate < 0 {
		return ValidationError("hourlyRate cannot be negative")
	}
	if in.ExperienceYears != nil && *in.ExperienceYears < 0 {
		return ValidationError("experienceYears cannot be negative")
	}
	return nil
}

// apply copies the input onto p and puts it back in the review queue.
func (in ProfileInput) apply(p *models.Profile) {
	p.Specialties = strings.TrimSpace(in.Specialties)
	p.Location = strings.TrimSpace(in.Location)
	p.Category = strings.TrimSpace(in.Category)
	p.Bio = in.Bio
	p.HourlyRate = in.HourlyRate
	p.ExperienceYears = in.ExperienceYears
	p.Languages = in.Languages
	p.Status = models.ProfilePending
	p.RejectionReason = nil
	p.ReviewedAt = nil
}

func (in ProfileInput) build() (*models.Profile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &models.Profile{}
	in.apply(p)
	return p, nil
}

// ProfessionalDetail is the public view of one approved professional.
type ProfessionalDetail struct {
	models.ProfessionalSummary
	Rating models.RatingSummary `json:"rating"`
}

// ApprovalService runs the moderation lifecycle of professional profiles:
// pending to approved or rejected, rejected back to pending on resubmission,
// and admin override between approved and rejected.
type ApprovalService struct {
	repo store.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewApprovalService(repo store.Repository, log *zap.Logger) *ApprovalService {
	return &ApprovalService{repo: repo, log: log, now: time.Now}
}

// SubmitProfile creates the caller's profile or replaces its attributes. Either
// way the profile goes back to pending.
func (s *ApprovalService) SubmitProfile(ctx context.Context, caller Caller, in ProfileInput) (*models.Profile, error) {
	if err := RequireRole(caller, models.RoleProfessional); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	profile, err := s.repo.ProfileByUserID(ctx, caller.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		profile = &models.Profile{UserID: caller.UserID}
	case err != nil:
		return nil, InternalError("load profile", err)
	}
	in.apply(profile)

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ConflictError("profile already exists")
		}
		return nil, InternalError("save profile", err)
	}
	s.log.Info("profile submitted for review", zap.String("profileID", profile.ID), zap.String("userID", caller.UserID))
	return profile, nil
}

// MyProfile returns the caller's own profile whatever its status.
func (s *ApprovalService) MyProfile(ctx context.Context, caller Caller) (*models.Profile, error) {
	if err := RequireRole(caller, models.RoleProfessional); err != nil {
		return nil, err
	}
	return s.ownProfile(ctx, caller)
}

func (s *ApprovalService) ListPending(ctx context.Context, caller Caller) ([]models.ProfessionalSummary, error) {
	if err := RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	profiles, err := s.repo.ListProfiles(ctx, store.ProfileFilter{Status: models.ProfilePending, OldestFirst: true})
	if err != nil {
		return nil, InternalError("list pending profiles", err)
	}
	return summaries(profiles, true), nil
}

// Approve is idempotent.
func (s *ApprovalService) Approve(ctx context.Context, caller Caller, profileID string) (*models.Profile, error) {
	return s.review(ctx, caller, profileID, models.ProfileApproved, nil)
}

func (s *ApprovalService) Reject(ctx context.Context, caller Caller, profileID, reason string) (*models.Profile, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}
	return s.review(ctx, caller, profileID, models.ProfileRejected, &reason)
}

func (s *ApprovalService) review(ctx context.Context, caller Caller, profileID string, status models.ProfileStatus, reason *string) (*models.Profile, error) {
	if err := RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	profile, err := s.repo.ProfileByID(ctx, profileID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError("profile not found")
	}
	if err != nil {
		return nil, InternalError("load profile", err)
	}

	if profile.Status == status && equalReason(profile.RejectionReason, reason) {
		return profile, nil
	}
	now := s.now()
	profile.Status = status
	profile.RejectionReason = reason
	profile.ReviewedAt = &now
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, InternalError("save profile", err)
	}
	s.log.Info("profile reviewed",
		zap.String("profileID", profile.ID),
		zap.String("status", string(status)),
		zap.String("adminID", caller.UserID),
	)
	return profile, nil
}

// ListProfessionals returns approved profiles matching the optional filters.
func (s *ApprovalService) ListProfessionals(ctx context.Context, query, location string) ([]models.ProfessionalSummary, error) {
	profiles, err := s.repo.ListProfiles(ctx, store.ProfileFilter{
		Status:   models.ProfileApproved,
		Query:    query,
		Location: location,
	})
	if err != nil {
		return nil, InternalError("list professionals", err)
	}
	return summaries(profiles, false), nil
}

// GetProfessional hides profiles that are not approved.
func (s *ApprovalService) GetProfessional(ctx context.Context, profileID string) (*ProfessionalDetail, error) {
	profile, err := s.repo.ProfileByID(ctx, profileID)
	return s.detail(ctx, profile, err)
}

func (s *ApprovalService) ProfileByUser(ctx context.Context, userID string) (*ProfessionalDetail, error) {
	profile, err := s.repo.ProfileByUserID(ctx, userID)
	return s.detail(ctx, profile, err)
}

func (s *ApprovalService) detail(ctx context.Context, profile *models.Profile, err error) (*ProfessionalDetail, error) {
	if errors.Is(err, store.ErrNotFound) || (err == nil && !profile.IsApproved()) {
		return nil, NotFoundError("professional not found")
	}
	if err != nil {
		return nil, InternalError("load profile", err)
	}
	rating, err := ratingSummary(ctx, s.repo, profile.ID)
	if err != nil {
		return nil, err
	}
	return &ProfessionalDetail{ProfessionalSummary: profile.Summary(false), Rating: rating}, nil
}

func (s *ApprovalService) ownProfile(ctx context.Context, caller Caller) (*models.Profile, error) {
	return ownProfile(ctx, s.repo, caller)
}

func ownProfile(ctx context.Context, repo store.Profiles, caller Caller) (*models.Profile, error) {
	profile, err := repo.ProfileByUserID(ctx, caller.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError("you have not submitted a professional profile")
	}
	if err != nil {
		return nil, InternalError("load profile", err)
	}
	return profile, nil
}

func summaries(profiles []models.Profile, withEmail bool) []models.ProfessionalSummary {
	out := make([]models.ProfessionalSummary, 0, len(profiles))
	for i := range profiles {
		out = append(out, profiles[i].Summary(withEmail))
	}
	return out
}

func equalReason(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
