package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"eticket/internal/booking"
	"eticket/internal/domain"
	"eticket/internal/domain/models"
)

type staticCatalog struct{}

func (staticCatalog) ListRoutes(ctx context.Context) ([]models.Route, error) {
	return []models.Route{{ID: "R1"}}, nil
}

func (staticCatalog) ListStops(ctx context.Context, routeID string) ([]models.Stop, error) {
	return []models.Stop{{Name: "A", Sequence: 1}, {Name: "B", Sequence: 2}}, nil
}

func newTestStore(now *time.Time) *Store {
	st := NewStore(10*time.Minute, func(string) booking.Deps {
		return booking.Deps{Catalog: staticCatalog{}}
	})
	st.Now = func() time.Time { return *now }
	return st
}

func TestStoreCreateAndGet(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	st := newTestStore(&now)

	sess := st.Create(domain.EntryParams{RouteID: "R1"})
	if sess.ID == "" {
		t.Fatalf("session without id")
	}
	got, err := st.Get(sess.ID)
	if err != nil || got != sess {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.Snapshot().Mode != domain.ModeFixedRoute {
		t.Fatalf("entry params not applied")
	}
	if _, err := st.Get("missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	st := newTestStore(&now)
	a := st.Create(domain.EntryParams{})
	b := st.Create(domain.EntryParams{})

	now = now.Add(8 * time.Minute)
	if _, err := st.Get(a.ID); err != nil {
		t.Fatalf("Get a: %v", err)
	}
	now = now.Add(5 * time.Minute)

	if _, err := st.Get(b.ID); !domain.IsNotFound(err) {
		t.Fatalf("idle session still served: %v", err)
	}
	if removed := st.Sweep(); removed != 1 {
		t.Fatalf("removed %d sessions", removed)
	}
	if st.Len() != 1 {
		t.Fatalf("len = %d", st.Len())
	}
	if _, err := st.Get(a.ID); err != nil {
		t.Fatalf("recently used session dropped: %v", err)
	}
}

func TestTokensRoundTrip(t *testing.T) {
	tk := Tokens{Secret: []byte("test-secret"), TTL: time.Hour}
	raw, err := tk.Sign("sess-1", time.Now())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sid, err := tk.Parse(raw)
	if err != nil || sid != "sess-1" {
		t.Fatalf("Parse = %q, %v", sid, err)
	}

	other := Tokens{Secret: []byte("other"), TTL: time.Hour}
	if _, err := other.Parse(raw); err == nil {
		t.Fatalf("token accepted with wrong secret")
	}

	expired, _ := tk.Sign("sess-1", time.Now().Add(-2*time.Hour))
	sid, err = tk.Parse(expired)
	if !errors.Is(err, ErrTokenExpired) || sid != "sess-1" {
		t.Fatalf("expired token: Parse = %q, %v", sid, err)
	}
	if _, err := other.Parse(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token with wrong secret: %v", err)
	}
}
