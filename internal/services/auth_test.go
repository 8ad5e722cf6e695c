package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"subaacare-server/internal/models"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("PatientDefaultsRole", func(t *testing.T) {
		e := newTestEnv(t)
		res, err := e.auth.Register(ctx, RegisterInput{Name: "Pat", Email: " P@X.com ", Password: "pw123456"})
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if res.User.Role != models.RolePatient {
			t.Errorf("expected role PATIENT, got %s", res.User.Role)
		}
		if res.User.Email != "p@x.com" {
			t.Errorf("expected normalised email, got %q", res.User.Email)
		}
		if res.Profile != nil {
			t.Error("patients should not get a profile")
		}
		if res.Token == "" || res.ExpiresAt.IsZero() {
			t.Error("expected a token with an expiry")
		}
	})

	t.Run("ProfessionalStartsPending", func(t *testing.T) {
		e := newTestEnv(t)
		res, _ := e.register(t, "d@x.com", models.RoleProfessional, ProfileInput{Specialties: "physiotherapy", Location: "Kochi"})
		if res.Profile == nil {
			t.Fatal("expected a profile")
		}
		if res.Profile.Status != models.ProfilePending {
			t.Errorf("expected pending, got %s", res.Profile.Status)
		}
		if res.Profile.UserID != res.User.ID {
			t.Errorf("profile not linked to user")
		}

		list, err := e.approval.ListProfessionals(ctx, "", "")
		if err != nil {
			t.Fatalf("ListProfessionals: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("pending profile must not be listed, got %d", len(list))
		}
	})

	t.Run("ProfessionalRequiresFields", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.auth.Register(ctx, RegisterInput{Name: "D", Email: "d@x.com", Password: "pw123456", Role: "PROFESSIONAL"})
		wantKind(t, err, KindValidation)
		if _, err := e.repo.UserByEmail(ctx, "d@x.com"); err == nil {
			t.Error("no user should be created when the profile is invalid")
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		e := newTestEnv(t)
		e.register(t, "p@x.com", models.RolePatient, ProfileInput{})
		_, err := e.auth.Register(ctx, RegisterInput{Name: "Other", Email: "P@x.com", Password: "pw123456"})
		wantKind(t, err, KindConflict)
	})

	t.Run("AdminRejected", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.auth.Register(ctx, RegisterInput{Name: "A", Email: "a2@x.com", Password: "pw123456", Role: "ADMIN"})
		wantKind(t, err, KindValidation)
	})

	t.Run("BadInput", func(t *testing.T) {
		e := newTestEnv(t)
		cases := []RegisterInput{
			{Email: "x@x.com", Password: "pw123456"},
			{Name: "X", Email: "not-an-email", Password: "pw123456"},
			{Name: "X", Email: "x@x.com", Password: "short"},
			{Name: "X", Email: "x@x.com", Password: "pw123456", Role: "DOCTOR"},
		}
		for _, in := range cases {
			_, err := e.auth.Register(ctx, in)
			wantKind(t, err, KindValidation)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.register(t, "d@x.com", models.RoleProfessional, ProfileInput{Specialties: "nursing", Location: "Pune"})

	res, err := e.auth.Login(ctx, "D@X.COM", "pw123456")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Profile == nil {
		t.Error("expected the professional's profile")
	}

	_, errWrong := e.auth.Login(ctx, "d@x.com", "wrong-pass")
	_, errUnknown := e.auth.Login(ctx, "nobody@x.com", "pw123456")
	wantKind(t, errWrong, KindAuth)
	wantKind(t, errUnknown, KindAuth)
	if errWrong.Error() != errUnknown.Error() {
		t.Errorf("login errors should not reveal which part failed: %q vs %q", errWrong, errUnknown)
	}
}

func TestVerifySession(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	res, caller := e.register(t, "p@x.com", models.RolePatient, ProfileInput{})

	if caller.UserID != res.User.ID || caller.Role != models.RolePatient {
		t.Fatalf("unexpected caller %+v", caller)
	}
	if caller.TokenID == "" {
		t.Error("expected a token id")
	}

	for _, tok := range []string{"", "garbage", res.Token + "x"} {
		_, err := e.auth.VerifySession(ctx, tok)
		wantKind(t, err, KindAuth)
	}
}

type memDenylist struct {
	mu     sync.Mutex
	denied map[string]time.Time
}

func (d *memDenylist) Deny(_ context.Context, id string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denied[id] = until
	return nil
}

func (d *memDenylist) IsDenied(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.denied[id]
	return ok, nil
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	deny := &memDenylist{denied: map[string]time.Time{}}
	e := newTestEnvWith(t, deny, true)
	res, caller := e.register(t, "p@x.com", models.RolePatient, ProfileInput{})

	if err := e.auth.Logout(ctx, caller); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if until := deny.denied[caller.TokenID]; !until.Equal(caller.ExpiresAt) {
		t.Errorf("expected denial until %v, got %v", caller.ExpiresAt, until)
	}
	_, err := e.auth.VerifySession(ctx, res.Token)
	wantKind(t, err, KindAuth)
}

func TestLogoutWithoutDenylist(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	res, caller := e.register(t, "p@x.com", models.RolePatient, ProfileInput{})
	if err := e.auth.Logout(ctx, caller); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := e.auth.VerifySession(ctx, res.Token); err != nil {
		t.Errorf("without a denylist the token stays valid until expiry, got %v", err)
	}
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	_, caller := e.register(t, "d@x.com", models.RoleProfessional, ProfileInput{Specialties: "nursing", Location: "Pune"})

	acct, err := e.auth.Me(ctx, caller)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if acct.User.Email != "d@x.com" || acct.Profile == nil {
		t.Errorf("unexpected account %+v", acct)
	}
}

func TestCreateAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	user, created, err := e.auth.CreateAdmin(ctx, "Admin", "ADMIN@x.com", "another1")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if created {
		t.Error("second call should report the existing admin")
	}
	if user.ID != e.admin.UserID {
		t.Errorf("expected existing admin %s, got %s", e.admin.UserID, user.ID)
	}

	e.register(t, "p@x.com", models.RolePatient, ProfileInput{})
	_, _, err = e.auth.CreateAdmin(ctx, "P", "p@x.com", "pw123456")
	wantKind(t, err, KindConflict)
}

func TestRequireRole(t *testing.T) {
	patient := Caller{UserID: "u1", Role: models.RolePatient}
	if err := RequireRole(patient, models.RolePatient, models.RoleAdmin); err != nil {
		t.Errorf("expected allowed, got %v", err)
	}
	wantKind(t, RequireRole(patient, models.RoleProfessional), KindForbidden)
	wantKind(t, RequireRole(patient), KindForbidden)
	wantKind(t, RequireRole(Caller{}, models.RolePatient), KindAuth)
}
