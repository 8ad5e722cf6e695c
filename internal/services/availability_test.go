package services

import (
	"context"
	"testing"
	"time"

	"subaacare-server/internal/models"
)

func TestCreateSlot(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	t.Run("UnapprovedForbidden", func(t *testing.T) {
		_, pro := e.register(t, "new@x.com", models.RoleProfessional, ProfileInput{Specialties: "nursing", Location: "Pune"})
		_, err := e.availability.CreateSlot(ctx, pro, day1Nine, day1Ten)
		wantKind(t, err, KindForbidden)
	})

	profile, pro := e.approvedProfessional(t, "d@x.com", "physiotherapy", "Kochi")

	t.Run("InvalidWindow", func(t *testing.T) {
		for _, w := range [][2]time.Time{{day1Ten, day1Nine}, {day1Nine, day1Nine}, {{}, day1Ten}} {
			_, err := e.availability.CreateSlot(ctx, pro, w[0], w[1])
			wantKind(t, err, KindValidation)
		}
		slots, _ := e.availability.ListOwnSlots(ctx, pro)
		if len(slots) != 0 {
			t.Fatalf("invalid slots must not be persisted, got %d", len(slots))
		}
	})

	t.Run("PatientForbidden", func(t *testing.T) {
		_, patient := e.register(t, "p@x.com", models.RolePatient, ProfileInput{})
		_, err := e.availability.CreateSlot(ctx, patient, day1Nine, day1Ten)
		wantKind(t, err, KindForbidden)
	})

	t.Run("Ordered", func(t *testing.T) {
		later := day1Ten.Add(time.Hour)
		if _, err := e.availability.CreateSlot(ctx, pro, day1Ten, later); err != nil {
			t.Fatalf("CreateSlot: %v", err)
		}
		s, err := e.availability.CreateSlot(ctx, pro, day1Nine, day1Ten)
		if err != nil {
			t.Fatalf("CreateSlot: %v", err)
		}
		if s.Booked || s.ProfileID != profile.ID {
			t.Errorf("unexpected slot %+v", s)
		}
		slots, err := e.availability.ListOwnSlots(ctx, pro)
		if err != nil {
			t.Fatalf("ListOwnSlots: %v", err)
		}
		if len(slots) != 2 || !slots[0].Start.Equal(day1Nine) {
			t.Errorf("expected two slots by start, got %+v", slots)
		}
	})
}

func TestDeleteSlot(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	profile, pro := e.approvedProfessional(t, "d@x.com", "physiotherapy", "Kochi")
	_, other := e.approvedProfessional(t, "o@x.com", "nursing", "Kochi")
	_, patient := e.register(t, "p@x.com", models.RolePatient, ProfileInput{})

	slot, err := e.availability.CreateSlot(ctx, pro, day1Nine, day1Ten)
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}

	wantKind(t, e.availability.DeleteSlot(ctx, other, slot.ID), KindForbidden)
	wantKind(t, e.availability.DeleteSlot(ctx, pro, "missing"), KindNotFound)

	if _, err := e.bookings.CreateBooking(ctx, patient, BookingInput{ProfessionalID: profile.ID, Start: day1Nine, End: day1Ten}); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	wantKind(t, e.availability.DeleteSlot(ctx, pro, slot.ID), KindConflict)

	free, _ := e.availability.CreateSlot(ctx, pro, day1Ten, day1Ten.Add(time.Hour))
	if err := e.availability.DeleteSlot(ctx, pro, free.ID); err != nil {
		t.Fatalf("DeleteSlot: %v", err)
	}
	if _, err := e.repo.SlotByID(ctx, free.ID); err == nil {
		t.Error("slot should be gone")
	}
}

func TestSearchAvailable(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	kochi, proK := e.approvedProfessional(t, "k@x.com", "physiotherapy", "Kochi")
	_, proP := e.approvedProfessional(t, "p@x.com", "nursing", "Pune")
	res, pending := e.register(t, "q@x.com", models.RoleProfessional, ProfileInput{Specialties: "physiotherapy", Location: "Kochi"})

	mustSlot := func(c Caller, start time.Time) {
		t.Helper()
		if _, err := e.availability.CreateSlot(ctx, c, start, start.Add(time.Hour)); err != nil {
			t.Fatalf("CreateSlot: %v", err)
		}
	}
	mustSlot(proK, day1Ten)
	mustSlot(proK, day1Nine)
	mustSlot(proP, day1Nine)
	// approve, publish, then reject: the slot exists but must stay hidden
	e.approval.Approve(ctx, e.admin, res.Profile.ID)
	mustSlot(pending, day1Nine)
	e.approval.Reject(ctx, e.admin, res.Profile.ID, "")

	from := day1Nine.Add(-time.Hour)
	all, err := e.availability.SearchAvailable(ctx, Window{From: &from}, "", "")
	if err != nil {
		t.Fatalf("SearchAvailable: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 professionals, got %d", len(all))
	}
	if all[0].Professional.ID > all[1].Professional.ID {
		t.Error("professionals should be ordered by id")
	}

	kochiOnly, _ := e.availability.SearchAvailable(ctx, Window{From: &from}, "", "kochi")
	if len(kochiOnly) != 1 || kochiOnly[0].Professional.ID != kochi.ID {
		t.Fatalf("expected only the approved Kochi professional, got %+v", kochiOnly)
	}
	slots := kochiOnly[0].Slots
	if len(slots) != 2 || !slots[0].Start.Equal(day1Nine) || !slots[1].Start.Equal(day1Ten) {
		t.Errorf("slots should be ordered by start, got %+v", slots)
	}

	// [09:30, 10:00) overlaps only the 09:00 slots
	a, b := day1Nine.Add(30*time.Minute), day1Ten
	partial, _ := e.availability.SearchAvailable(ctx, Window{From: &a, To: &b}, "physio", "")
	if len(partial) != 1 || len(partial[0].Slots) != 1 {
		t.Errorf("expected one overlapping slot, got %+v", partial)
	}

	// default window starts now
	e.availability.now = func() time.Time { return day1Ten.Add(2 * time.Hour) }
	none, _ := e.availability.SearchAvailable(ctx, Window{}, "", "")
	if len(none) != 0 {
		t.Errorf("past slots should not be returned by default, got %d", len(none))
	}

	_, err = e.availability.SearchAvailable(ctx, Window{From: &b, To: &a}, "", "")
	wantKind(t, err, KindValidation)
	if msg := PublicMessage(err); msg != "start must be before end" {
		t.Errorf("unexpected message %q", msg)
	}

	// end alone, already past: start was never sent, so the message must not blame it
	past := day1Nine
	_, err = e.availability.SearchAvailable(ctx, Window{To: &past}, "", "")
	wantKind(t, err, KindValidation)
	if msg := PublicMessage(err); msg != "end must be in the future when start is omitted" {
		t.Errorf("unexpected message %q", msg)
	}

	// end alone, still ahead: searches from now
	ahead := day1Ten.Add(4 * time.Hour)
	if _, err := e.availability.SearchAvailable(ctx, Window{To: &ahead}, "", ""); err != nil {
		t.Errorf("end-only window: %v", err)
	}
}

func TestListOpenSlots(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	profile, pro := e.approvedProfessional(t, "d@x.com", "physiotherapy", "Kochi")
	_, patient := e.register(t, "p@x.com", models.RolePatient, ProfileInput{})
	e.availability.CreateSlot(ctx, pro, day1Nine, day1Ten)
	e.availability.CreateSlot(ctx, pro, day1Ten, day1Ten.Add(time.Hour))
	e.bookings.CreateBooking(ctx, patient, BookingInput{ProfessionalID: profile.ID, Start: day1Nine, End: day1Ten})

	slots, err := e.availability.ListOpenSlots(ctx, profile.ID)
	if err != nil {
		t.Fatalf("ListOpenSlots: %v", err)
	}
	if len(slots) != 1 || !slots[0].Start.Equal(day1Ten) {
		t.Errorf("expected only the open slot, got %+v", slots)
	}

	_, err = e.availability.ListOpenSlots(ctx, "missing")
	wantKind(t, err, KindNotFound)
}
