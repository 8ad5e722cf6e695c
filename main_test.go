package main

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"subaacare-server/internal/routes"
	"subaacare-server/internal/services"
	"subaacare-server/internal/sessions"
	"subaacare-server/internal/store/storetest"
	"subaacare-server/internal/utils"
)

func memoryServices() routes.Services {
	log := zap.NewNop()
	repo := storetest.NewMemory()
	return routes.Services{
		Auth:         services.NewAuthService(repo, utils.NewTokenManager("test-secret", time.Hour), sessions.Noop{}, log),
		Approval:     services.NewApprovalService(repo, log),
		Availability: services.NewAvailabilityService(repo, log),
		Bookings:     services.NewBookingService(repo, log, true),
		Ratings:      services.NewRatingService(repo, log),
		Documents:    services.NewDocumentService(repo, log, 0),
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc := memoryServices()

	if err := seed(ctx, svc, zap.NewNop(), "demo@x.com", "demo123456"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	list, err := svc.Approval.ListProfessionals(ctx, "physio", "Kochi")
	if err != nil {
		t.Fatalf("ListProfessionals: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected the seeded professional to be listed, got %d", len(list))
	}
	slots, err := svc.Availability.ListOpenSlots(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("ListOpenSlots: %v", err)
	}
	if len(slots) != 2 {
		t.Errorf("expected 2 open slots, got %d", len(slots))
	}

	// a second run finds the account and leaves the data alone
	if err := seed(ctx, svc, zap.NewNop(), "demo@x.com", "demo123456"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	slots, _ = svc.Availability.ListOpenSlots(ctx, list[0].ID)
	if len(slots) != 2 {
		t.Errorf("expected seeding to be idempotent, got %d slots", len(slots))
	}
}
