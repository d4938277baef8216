package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mathsense-service/internal/app"
	"mathsense-service/internal/domain"
	"mathsense-service/internal/infra/memory"
)

func TestSetDarkModePersistsAndNotifies(t *testing.T) {
	store := memory.NewUserStore(domain.User{ID: "u1", Username: "ada"})
	prefs := app.NewPreferences(store)

	changes, cancel := prefs.Subscribe()
	defer cancel()

	if err := prefs.SetDarkMode(context.Background(), "u1", true); err != nil {
		t.Fatalf("set dark mode: %v", err)
	}

	user, err := prefs.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !user.DarkMode {
		t.Fatalf("expected persisted dark mode")
	}

	select {
	case change := <-changes:
		if change.UserID != "u1" || !change.DarkMode {
			t.Fatalf("unexpected change %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for change notification")
	}
}

func TestSetDarkModeUnknownUserDoesNotNotify(t *testing.T) {
	prefs := app.NewPreferences(memory.NewUserStore())

	changes, cancel := prefs.Subscribe()
	defer cancel()

	if err := prefs.SetDarkMode(context.Background(), "ghost", true); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user-not-found error, got %v", err)
	}
	select {
	case change := <-changes:
		t.Fatalf("unexpected notification %+v", change)
	default:
	}
}
