package mocks

import (
	"context"
	"sync"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

// MockCatalogService is a mock implementation of CatalogService
type MockCatalogService struct {
	GetStationFunc    func(ctx context.Context, id string) (*domain.Station, error)
	ListStationsFunc  func(ctx context.Context) ([]domain.Station, error)
	GetPortFunc       func(ctx context.Context, stationID, portID string) (*domain.Port, error)
	ListPortsFunc     func(ctx context.Context, stationID string, excludeMaintenance bool) ([]domain.Port, error)
	UpsertStationFunc func(ctx context.Context, station *domain.Station) error
	SetPortStatusFunc func(ctx context.Context, stationID, portID string, status domain.PortStatus) error
}

func (m *MockCatalogService) GetStation(ctx context.Context, id string) (*domain.Station, error) {
	if m.GetStationFunc != nil {
		return m.GetStationFunc(ctx, id)
	}
	return nil, domain.NotFoundError("station", id)
}

func (m *MockCatalogService) ListStations(ctx context.Context) ([]domain.Station, error) {
	if m.ListStationsFunc != nil {
		return m.ListStationsFunc(ctx)
	}
	return nil, nil
}

func (m *MockCatalogService) GetPort(ctx context.Context, stationID, portID string) (*domain.Port, error) {
	if m.GetPortFunc != nil {
		return m.GetPortFunc(ctx, stationID, portID)
	}
	return nil, domain.NotFoundError("port", portID)
}

func (m *MockCatalogService) ListPorts(ctx context.Context, stationID string, excludeMaintenance bool) ([]domain.Port, error) {
	if m.ListPortsFunc != nil {
		return m.ListPortsFunc(ctx, stationID, excludeMaintenance)
	}
	return nil, nil
}

func (m *MockCatalogService) UpsertStation(ctx context.Context, station *domain.Station) error {
	if m.UpsertStationFunc != nil {
		return m.UpsertStationFunc(ctx, station)
	}
	return nil
}

func (m *MockCatalogService) SetPortStatus(ctx context.Context, stationID, portID string, status domain.PortStatus) error {
	if m.SetPortStatusFunc != nil {
		return m.SetPortStatusFunc(ctx, stationID, portID, status)
	}
	return nil
}

// MockNotifier records outbound notification events.
type MockNotifier struct {
	mu        sync.Mutex
	Confirmed []ports.ReservationEvent
	Reminders []ports.ReservationEvent

	ReservationConfirmedFunc func(ctx context.Context, ev ports.ReservationEvent) error
	ReminderToggledFunc      func(ctx context.Context, ev ports.ReservationEvent) error
}

func (m *MockNotifier) ReservationConfirmed(ctx context.Context, ev ports.ReservationEvent) error {
	if m.ReservationConfirmedFunc != nil {
		return m.ReservationConfirmedFunc(ctx, ev)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Confirmed = append(m.Confirmed, ev)
	return nil
}

func (m *MockNotifier) ReminderToggled(ctx context.Context, ev ports.ReservationEvent) error {
	if m.ReminderToggledFunc != nil {
		return m.ReminderToggledFunc(ctx, ev)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reminders = append(m.Reminders, ev)
	return nil
}
