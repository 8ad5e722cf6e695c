package sessions

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNoopNeverDenies(t *testing.T) {
	var d Denylist = Noop{}
	if err := d.Deny(context.Background(), "abc", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Deny: %v", err)
	}
	denied, err := d.IsDenied(context.Background(), "abc")
	if err != nil || denied {
		t.Fatalf("IsDenied = %v, %v; want false, nil", denied, err)
	}
}

// Runs against a real server when TEST_REDIS_ADDR is set.
func TestRedisDenylist(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	d := NewRedisDenylist(client)
	id := uuid.NewString()

	denied, err := d.IsDenied(ctx, id)
	if err != nil || denied {
		t.Fatalf("fresh token: IsDenied = %v, %v", denied, err)
	}
	if err := d.Deny(ctx, id, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Deny: %v", err)
	}
	denied, err = d.IsDenied(ctx, id)
	if err != nil || !denied {
		t.Fatalf("denied token: IsDenied = %v, %v", denied, err)
	}

	expired := uuid.NewString()
	if err := d.Deny(ctx, expired, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Deny expired: %v", err)
	}
	if denied, _ := d.IsDenied(ctx, expired); denied {
		t.Fatal("already expired token should not be stored")
	}
}
