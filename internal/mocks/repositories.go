package mocks

import (
	"context"
	"time"

	"github.com/ommanoj88/sev-backend/internal/domain"
)

// MockStationRepository is a mock implementation of StationRepository
type MockStationRepository struct {
	SaveFunc             func(ctx context.Context, station *domain.Station) error
	FindByIDFunc         func(ctx context.Context, id string) (*domain.Station, error)
	FindAllFunc          func(ctx context.Context) ([]domain.Station, error)
	FindPortFunc         func(ctx context.Context, stationID, portID string) (*domain.Port, error)
	ListPortsFunc        func(ctx context.Context, stationID string, excludeMaintenance bool) ([]domain.Port, error)
	UpdatePortStatusFunc func(ctx context.Context, stationID, portID string, status domain.PortStatus) error
}

func (m *MockStationRepository) Save(ctx context.Context, station *domain.Station) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, station)
	}
	return nil
}

func (m *MockStationRepository) FindByID(ctx context.Context, id string) (*domain.Station, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.NotFoundError("station", id)
}

func (m *MockStationRepository) FindAll(ctx context.Context) ([]domain.Station, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockStationRepository) FindPort(ctx context.Context, stationID, portID string) (*domain.Port, error) {
	if m.FindPortFunc != nil {
		return m.FindPortFunc(ctx, stationID, portID)
	}
	return nil, domain.NotFoundError("port", portID)
}

func (m *MockStationRepository) ListPorts(ctx context.Context, stationID string, excludeMaintenance bool) ([]domain.Port, error) {
	if m.ListPortsFunc != nil {
		return m.ListPortsFunc(ctx, stationID, excludeMaintenance)
	}
	return nil, nil
}

func (m *MockStationRepository) UpdatePortStatus(ctx context.Context, stationID, portID string, status domain.PortStatus) error {
	if m.UpdatePortStatusFunc != nil {
		return m.UpdatePortStatusFunc(ctx, stationID, portID, status)
	}
	return nil
}

// MockVehicleRegistry is a mock implementation of VehicleRegistry
type MockVehicleRegistry struct {
	FindByIDFunc func(ctx context.Context, id string) (*domain.Vehicle, error)
}

func (m *MockVehicleRegistry) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.NotFoundError("vehicle", id)
}

// MockReservationStore is a mock implementation of ReservationStore
type MockReservationStore struct {
	ReserveFunc             func(ctx context.Context, res *domain.Reservation) error
	GetFunc                 func(ctx context.Context, id string) (*domain.Reservation, error)
	SetStatusFunc           func(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error)
	SetReminderFunc         func(ctx context.Context, id string, enabled bool) (*domain.Reservation, error)
	ListForPortFunc         func(ctx context.Context, portID string, onOrAfter time.Time) ([]domain.Reservation, error)
	ListForVehicleFunc      func(ctx context.Context, vehicleID string, status domain.ReservationStatus) ([]domain.Reservation, error)
	ListPendingOlderThanFunc func(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error)
}

func (m *MockReservationStore) Reserve(ctx context.Context, res *domain.Reservation) error {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, res)
	}
	return nil
}

func (m *MockReservationStore) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.NotFoundError("reservation", id)
}

func (m *MockReservationStore) SetStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, id, status)
	}
	return nil, domain.NotFoundError("reservation", id)
}

func (m *MockReservationStore) SetReminder(ctx context.Context, id string, enabled bool) (*domain.Reservation, error) {
	if m.SetReminderFunc != nil {
		return m.SetReminderFunc(ctx, id, enabled)
	}
	return nil, domain.NotFoundError("reservation", id)
}

func (m *MockReservationStore) ListForPort(ctx context.Context, portID string, onOrAfter time.Time) ([]domain.Reservation, error) {
	if m.ListForPortFunc != nil {
		return m.ListForPortFunc(ctx, portID, onOrAfter)
	}
	return nil, nil
}

func (m *MockReservationStore) ListForVehicle(ctx context.Context, vehicleID string, status domain.ReservationStatus) ([]domain.Reservation, error) {
	if m.ListForVehicleFunc != nil {
		return m.ListForVehicleFunc(ctx, vehicleID, status)
	}
	return nil, nil
}

func (m *MockReservationStore) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
	if m.ListPendingOlderThanFunc != nil {
		return m.ListPendingOlderThanFunc(ctx, cutoff)
	}
	return nil, nil
}
