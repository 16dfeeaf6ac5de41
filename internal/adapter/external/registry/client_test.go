package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/domain"
)

func TestFindByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/vehicles/veh-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"veh-1","label":"fleet car 7","connector":"fast_dc","battery_capacity_kwh":75,"charge_level":0.4}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())

	vehicle, err := client.FindByID(context.Background(), "veh-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if vehicle.Label != "fleet car 7" {
		t.Errorf("label = %q, want fleet car 7", vehicle.Label)
	}
	if vehicle.Connector != domain.ConnectorFastDC {
		t.Errorf("connector = %s, want fast_dc", vehicle.Connector)
	}

	_, err = client.FindByID(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown vehicle: got %v, want ErrNotFound", err)
	}
}

func TestBreakerOpensOnRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := client.FindByID(ctx, "veh-1"); err == nil {
			t.Fatalf("request %d unexpectedly succeeded", i)
		}
	}

	// The breaker is now open; this call must fail without a round trip.
	srv.Close()
	_, err := client.FindByID(ctx, "veh-1")
	if err == nil {
		t.Fatal("expected error with breaker open")
	}
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := client.FindByID(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("request %d: got %v, want ErrNotFound", i, err)
		}
	}
}
