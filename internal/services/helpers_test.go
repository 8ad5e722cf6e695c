package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"subaacare-server/internal/models"
	"subaacare-server/internal/sessions"
	"subaacare-server/internal/store/storetest"
	"subaacare-server/internal/utils"
)

var (
	day1Nine = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	day1Ten  = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
)

type testEnv struct {
	repo         *storetest.Memory
	auth         *AuthService
	approval     *ApprovalService
	availability *AvailabilityService
	bookings     *BookingService
	ratings      *RatingService
	documents    *DocumentService
	admin        Caller
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, sessions.Noop{}, true)
}

func newTestEnvWith(t *testing.T, denylist sessions.Denylist, requireSlot bool) *testEnv {
	t.Helper()
	log := zap.NewNop()
	repo := storetest.NewMemory()
	clock := func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	e := &testEnv{
		repo:         repo,
		auth:         NewAuthService(repo, utils.NewTokenManager("test-secret", time.Hour), denylist, log),
		approval:     NewApprovalService(repo, log),
		availability: NewAvailabilityService(repo, log),
		bookings:     NewBookingService(repo, log, requireSlot),
		ratings:      NewRatingService(repo, log),
		documents:    NewDocumentService(repo, log, 64),
	}
	e.availability.now = clock
	e.bookings.now = clock
	e.approval.now = clock

	admin, _, err := e.auth.CreateAdmin(context.Background(), "Admin", "admin@x.com", "admin123")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	e.admin = Caller{UserID: admin.ID, Role: models.RoleAdmin}
	return e
}

// register signs a user up and returns the caller their token verifies to.
func (e *testEnv) register(t *testing.T, email string, role models.Role, profile ProfileInput) (*AuthResult, Caller) {
	t.Helper()
	ctx := context.Background()
	res, err := e.auth.Register(ctx, RegisterInput{
		Name:     "User " + email,
		Email:    email,
		Password: "pw123456",
		Role:     string(role),
		Profile:  profile,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	caller, err := e.auth.VerifySession(ctx, res.Token)
	if err != nil {
		t.Fatalf("VerifySession(%s): %v", email, err)
	}
	return res, caller
}

// approvedProfessional registers a professional and approves their profile.
func (e *testEnv) approvedProfessional(t *testing.T, email, specialties, location string) (*models.Profile, Caller) {
	t.Helper()
	res, caller := e.register(t, email, models.RoleProfessional, ProfileInput{Specialties: specialties, Location: location})
	profile, err := e.approval.Approve(context.Background(), e.admin, res.Profile.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	return profile, caller
}

func wantKind(t *testing.T, err error, k Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", k)
	}
	if got := KindOf(err); got != k {
		t.Fatalf("expected %s error, got %s (%v)", k, got, err)
	}
}

func strPtr(s string) *string { return &s }
