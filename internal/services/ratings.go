package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"subaacare-server/internal/models"
	"subaacare-server/internal/store"
)

type RatingService struct {
	repo store.Repository
	log  *zap.Logger
}

func NewRatingService(repo store.Repository, log *zap.Logger) *RatingService {
	return &RatingService{repo: repo, log: log}
}

// Rate records the caller's score for a completed booking. Each booking can
// be rated once.
func (s *RatingService) Rate(ctx context.Context, caller Caller, profileID, bookingID string, score int, comment string) (*models.RatingView, error) {
	if err := RequireRole(caller, models.RolePatient); err != nil {
		return nil, err
	}
	if strings.TrimSpace(bookingID) == "" {
		return nil, ValidationError("bookingId is required")
	}
	if score < 1 || score > 5 {
		return nil, ValidationError("score must be between 1 and 5")
	}

	booking, err := s.repo.BookingByID(ctx, bookingID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError("booking not found")
	}
	if err != nil {
		return nil, InternalError("load booking", err)
	}
	if booking.PatientID != caller.UserID || booking.ProfileID != profileID {
		return nil, ForbiddenError("you can only rate professionals you have booked")
	}
	if booking.Status != models.BookingCompleted {
		return nil, ForbiddenError("only completed bookings can be rated")
	}

	rating := &models.Rating{
		ProfileID: profileID,
		PatientID: caller.UserID,
		BookingID: booking.ID,
		Score:     score,
	}
	if c := strings.TrimSpace(comment); c != "" {
		rating.Comment = &c
	}
	if err := s.repo.CreateRating(ctx, rating); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ConflictError("this booking has already been rated")
		}
		return nil, InternalError("create rating", err)
	}
	s.log.Info("rating recorded", zap.String("ratingID", rating.ID), zap.String("profileID", profileID))

	rating.Patient = booking.Patient
	v := rating.View()
	return &v, nil
}

// ratingSummary aggregates the scores shown on a professional's detail.
func ratingSummary(ctx context.Context, repo store.Ratings, profileID string) (models.RatingSummary, error) {
	sum, err := repo.RatingSummary(ctx, profileID)
	if err != nil {
		return models.RatingSummary{}, InternalError("summarise ratings", err)
	}
	return sum, nil
}

// List returns the ratings of an approved professional, newest first.
func (s *RatingService) List(ctx context.Context, profileID string) ([]models.RatingView, error) {
	profile, err := s.repo.ProfileByID(ctx, profileID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !profile.IsApproved()) {
		return nil, NotFoundError("professional not found")
	}
	if err != nil {
		return nil, InternalError("load profile", err)
	}
	ratings, err := s.repo.ListRatings(ctx, profileID)
	if err != nil {
		return nil, InternalError("list ratings", err)
	}
	out := make([]models.RatingView, 0, len(ratings))
	for i := range ratings {
		out = append(out, ratings[i].View())
	}
	return out, nil
}
