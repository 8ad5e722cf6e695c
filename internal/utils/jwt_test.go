package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"subaacare-server/internal/models"
)

func testUser() *models.User {
	u := &models.User{Name: "Pat", Email: "p@x.com", Role: models.RolePatient}
	u.ID = "7a0c1b1e-0000-4000-8000-000000000001"
	return u
}

func TestGenerateAndValidate(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", 7*24*time.Hour).WithClock(func() time.Time { return now })

	token, issued, err := m.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !issued.ExpiresAt.Time.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Errorf("expected 7 day expiry, got %v", issued.ExpiresAt.Time)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != testUser().ID || claims.Role != models.RolePatient || claims.ID != issued.ID {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestValidateRejects(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", time.Hour).WithClock(func() time.Time { return now })
	token, _, err := m.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	t.Run("Expired", func(t *testing.T) {
		later := NewTokenManager("secret", time.Hour).WithClock(func() time.Time { return now.Add(2 * time.Hour) })
		if _, err := later.Validate(token); err == nil {
			t.Fatal("expected expired token to fail")
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenManager("other", time.Hour).WithClock(func() time.Time { return now })
		if _, err := other.Validate(token); err == nil {
			t.Fatal("expected signature failure")
		}
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		claims := &Claims{UserID: "u", Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("sign none: %v", err)
		}
		if _, err := m.Validate(unsigned); err == nil {
			t.Fatal("expected unsigned token to fail")
		}
	})

	t.Run("MissingClaims", func(t *testing.T) {
		claims := &Claims{Role: models.RolePatient, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := m.Validate(signed); err == nil {
			t.Fatal("expected missing user id to fail")
		}
	})

	t.Run("NoExpiry", func(t *testing.T) {
		claims := &Claims{UserID: "u", Role: models.RolePatient, RegisteredClaims: jwt.RegisteredClaims{ID: "x"}}
		signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if _, err := m.Validate(signed); err == nil {
			t.Fatal("expected token without expiry to fail")
		}
	})
}
