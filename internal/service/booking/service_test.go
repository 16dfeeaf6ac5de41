package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/adapter/storage/memory"
	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/mocks"
	"github.com/ommanoj88/sev-backend/internal/ports"
	"github.com/ommanoj88/sev-backend/internal/service/pricing"
	"github.com/ommanoj88/sev-backend/pkg/config"
)

var testNow = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

func testStation() *domain.Station {
	return &domain.Station{
		ID:          "st-1",
		Name:        "Harbor Plaza",
		PricePerKwh: 10,
		Ports: []domain.Port{
			{ID: "port-1", StationID: "st-1", Connector: domain.ConnectorFastDC, PowerKw: 60, Status: domain.PortStatusAvailable},
		},
	}
}

func testService(t *testing.T) (*Service, ports.ReservationStore, *mocks.MockNotifier) {
	t.Helper()

	station := testStation()
	catalog := &mocks.MockCatalogService{
		GetStationFunc: func(ctx context.Context, id string) (*domain.Station, error) {
			if id != station.ID {
				return nil, domain.NotFoundError("station", id)
			}
			return station, nil
		},
		GetPortFunc: func(ctx context.Context, stationID, portID string) (*domain.Port, error) {
			if stationID != station.ID {
				return nil, domain.NotFoundError("station", stationID)
			}
			for i := range station.Ports {
				if station.Ports[i].ID == portID {
					return &station.Ports[i], nil
				}
			}
			return nil, domain.NotFoundError("port", portID)
		},
	}
	registry := &mocks.MockVehicleRegistry{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Vehicle, error) {
			if id != "veh-1" {
				return nil, domain.NotFoundError("vehicle", id)
			}
			return &domain.Vehicle{ID: "veh-1", Label: "fleet car 7", Connector: domain.ConnectorFastDC}, nil
		},
	}

	store := memory.NewReservationStore(zap.NewNop())
	notifier := &mocks.MockNotifier{}
	svc := NewService(catalog, registry, store, pricing.NewEstimator(pricing.DefaultEfficiency), notifier, nil, config.DefaultBooking(), zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc, store, notifier
}

func request(start time.Time, minutes int) *ports.BookingRequest {
	return &ports.BookingRequest{
		StationID:       "st-1",
		PortID:          "port-1",
		VehicleID:       "veh-1",
		StartTime:       start,
		DurationMinutes: minutes,
	}
}

func TestBookConflictCancelRebook(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()
	start := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

	first, err := svc.Book(ctx, request(start, 60))
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if first.Status != domain.ReservationStatusPending {
		t.Errorf("status = %s, want pending", first.Status)
	}
	if first.EstimatedEnergyKwh != 54.0 {
		t.Errorf("estimated energy = %v, want 54.0", first.EstimatedEnergyKwh)
	}
	if first.EstimatedCost != 540.00 {
		t.Errorf("estimated cost = %v, want 540.00", first.EstimatedCost)
	}
	if !strings.HasPrefix(first.Code, "RES-st-1-") {
		t.Errorf("code = %q, want RES-st-1- prefix", first.Code)
	}

	// Overlapping attempt must be rejected with the blocker's id.
	_, err = svc.Book(ctx, request(start.Add(30*time.Minute), 60))
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("overlapping booking: got %v, want ConflictError", err)
	}
	if conflict.BlockingID != first.ID {
		t.Errorf("blocking id = %s, want %s", conflict.BlockingID, first.ID)
	}

	// Cancelling the holder frees the interval.
	if _, err := svc.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	second, err := svc.Book(ctx, request(start.Add(30*time.Minute), 60))
	if err != nil {
		t.Fatalf("rebooking after cancel failed: %v", err)
	}
	if second.Status != domain.ReservationStatusPending {
		t.Errorf("rebooked status = %s, want pending", second.Status)
	}
	if second.EstimatedEnergyKwh != 54.0 || second.EstimatedCost != 540.00 {
		t.Errorf("rebooked estimates = (%v, %v), want (54.0, 540.00)", second.EstimatedEnergyKwh, second.EstimatedCost)
	}
}

func TestBookValidation(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		mutate   func(*ports.BookingRequest)
		wantCode string
	}{
		{"unknown station", func(r *ports.BookingRequest) { r.StationID = "nope" }, "not_found"},
		{"unknown port", func(r *ports.BookingRequest) { r.PortID = "nope" }, "not_found"},
		{"unknown vehicle", func(r *ports.BookingRequest) { r.VehicleID = "nope" }, "not_found"},
		{"too short", func(r *ports.BookingRequest) { r.DurationMinutes = 15 }, "invalid_duration"},
		{"too long", func(r *ports.BookingRequest) { r.DurationMinutes = 210 }, "invalid_duration"},
		{"not slot aligned", func(r *ports.BookingRequest) { r.DurationMinutes = 45 }, "invalid_duration"},
		{"start in the past", func(r *ports.BookingRequest) { r.StartTime = testNow.Add(-time.Hour) }, "invalid_start"},
		{"start too far ahead", func(r *ports.BookingRequest) { r.StartTime = testNow.AddDate(0, 0, 10) }, "invalid_start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := testService(t)
			req := request(start, 60)
			tt.mutate(req)

			_, err := svc.Book(ctx, req)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if code := domain.ErrorCode(err); code != tt.wantCode {
				t.Errorf("error code = %s, want %s (err: %v)", code, tt.wantCode, err)
			}

			// A rejected attempt must leave nothing behind.
			held, err := store.ListForPort(ctx, "port-1", time.Time{})
			if err != nil {
				t.Fatalf("ListForPort failed: %v", err)
			}
			if len(held) != 0 {
				t.Errorf("rejected booking left %d reservations in the store", len(held))
			}
		})
	}
}

func TestBookConnectorMismatch(t *testing.T) {
	svc, store, _ := testService(t)
	svc.registry = &mocks.MockVehicleRegistry{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Vehicle, error) {
			return &domain.Vehicle{ID: id, Label: "slow car", Connector: domain.ConnectorSlowAC}, nil
		},
	}
	ctx := context.Background()

	_, err := svc.Book(ctx, request(time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC), 60))
	var mismatch *domain.ConnectorMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want ConnectorMismatchError", err)
	}

	held, _ := store.ListForPort(ctx, "port-1", time.Time{})
	if len(held) != 0 {
		t.Errorf("mismatched booking left %d reservations", len(held))
	}
}

func TestBookMaintenancePort(t *testing.T) {
	svc, _, _ := testService(t)
	svc.catalog = &mocks.MockCatalogService{
		GetStationFunc: func(ctx context.Context, id string) (*domain.Station, error) {
			return testStation(), nil
		},
		GetPortFunc: func(ctx context.Context, stationID, portID string) (*domain.Port, error) {
			return &domain.Port{ID: portID, StationID: stationID, Connector: domain.ConnectorFastDC, PowerKw: 60, Status: domain.PortStatusMaintenance}, nil
		},
	}

	_, err := svc.Book(context.Background(), request(time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC), 60))
	var maint *domain.MaintenancePortError
	if !errors.As(err, &maint) {
		t.Fatalf("got %v, want MaintenancePortError", err)
	}
}

func TestConfirmFiresNotification(t *testing.T) {
	svc, _, notifier := testService(t)
	ctx := context.Background()

	res, err := svc.Book(ctx, request(time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC), 60))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	confirmed, err := svc.Confirm(ctx, res.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.Status != domain.ReservationStatusConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}
	if len(notifier.Confirmed) != 1 {
		t.Fatalf("confirmed notifications = %d, want 1", len(notifier.Confirmed))
	}
	if notifier.Confirmed[0].ReservationID != res.ID {
		t.Errorf("notification reservation id = %s, want %s", notifier.Confirmed[0].ReservationID, res.ID)
	}
}

func TestConfirmNotificationFailureDoesNotFailTransition(t *testing.T) {
	svc, _, notifier := testService(t)
	notifier.ReservationConfirmedFunc = func(ctx context.Context, ev ports.ReservationEvent) error {
		return errors.New("broker unreachable")
	}
	ctx := context.Background()

	res, err := svc.Book(ctx, request(time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC), 60))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	confirmed, err := svc.Confirm(ctx, res.ID)
	if err != nil {
		t.Fatalf("confirm failed despite notification error: %v", err)
	}
	if confirmed.Status != domain.ReservationStatusConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}
}

func TestInvalidTransition(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	res, err := svc.Book(ctx, request(time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC), 60))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	// pending cannot jump straight to completed.
	_, err = svc.MarkCompleted(ctx, res.ID)
	var invalid *domain.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidTransitionError", err)
	}

	got, _ := svc.Get(ctx, res.ID)
	if got.Status != domain.ReservationStatusPending {
		t.Errorf("status after rejected transition = %s, want pending", got.Status)
	}
}

func TestToggleReminder(t *testing.T) {
	svc, _, notifier := testService(t)
	ctx := context.Background()

	res, err := svc.Book(ctx, request(time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC), 60))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	toggled, err := svc.ToggleReminder(ctx, res.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !toggled.Reminder {
		t.Error("reminder not enabled after first toggle")
	}
	toggled, err = svc.ToggleReminder(ctx, res.ID)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if toggled.Reminder {
		t.Error("reminder still enabled after second toggle")
	}
	if len(notifier.Reminders) != 2 {
		t.Errorf("reminder notifications = %d, want 2", len(notifier.Reminders))
	}
}

func TestExpirePending(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	var gotCutoff time.Time
	cancelled := make(map[string]bool)
	svc.store = &mocks.MockReservationStore{
		ListPendingOlderThanFunc: func(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
			gotCutoff = cutoff
			return []domain.Reservation{
				{ID: "res-stale-1", Status: domain.ReservationStatusPending},
				{ID: "res-stale-2", Status: domain.ReservationStatusPending},
			}, nil
		},
		SetStatusFunc: func(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
			if status != domain.ReservationStatusCancelled {
				t.Errorf("sweep transitioned %s to %s, want cancelled", id, status)
			}
			// Second one raced with a concurrent confirm.
			if id == "res-stale-2" {
				return nil, &domain.InvalidTransitionError{From: domain.ReservationStatusConfirmed, To: status}
			}
			cancelled[id] = true
			return &domain.Reservation{ID: id, Status: status}, nil
		},
	}

	count, err := svc.ExpirePending(ctx)
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expired count = %d, want 1", count)
	}
	if !cancelled["res-stale-1"] {
		t.Error("stale reservation was not cancelled")
	}

	wantCutoff := testNow.Add(-15 * time.Minute)
	if !gotCutoff.Equal(wantCutoff) {
		t.Errorf("cutoff = %s, want %s", gotCutoff, wantCutoff)
	}
}
