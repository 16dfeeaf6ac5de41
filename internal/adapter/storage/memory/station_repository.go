package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

// StationRepository is the in-memory catalog backing. Administrative
// writes replace whole records under the write lock, so the change is
// visible on the very next read.
type StationRepository struct {
	mu       sync.RWMutex
	stations map[string]*domain.Station
}

func NewStationRepository() ports.StationRepository {
	return &StationRepository{stations: make(map[string]*domain.Station)}
}

func (r *StationRepository) Save(ctx context.Context, station *domain.Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneStation(station)
	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.stations[stored.ID] = stored
	return nil
}

func (r *StationRepository) FindByID(ctx context.Context, id string) (*domain.Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	station, ok := r.stations[id]
	if !ok {
		return nil, domain.NotFoundError("station", id)
	}
	return cloneStation(station), nil
}

func (r *StationRepository) FindAll(ctx context.Context) ([]domain.Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Station, 0, len(r.stations))
	for _, station := range r.stations {
		out = append(out, *cloneStation(station))
	}
	return out, nil
}

func (r *StationRepository) FindPort(ctx context.Context, stationID, portID string) (*domain.Port, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	station, ok := r.stations[stationID]
	if !ok {
		return nil, domain.NotFoundError("station", stationID)
	}
	for i := range station.Ports {
		if station.Ports[i].ID == portID {
			port := station.Ports[i]
			return &port, nil
		}
	}
	return nil, domain.NotFoundError("port", portID)
}

func (r *StationRepository) ListPorts(ctx context.Context, stationID string, excludeMaintenance bool) ([]domain.Port, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	station, ok := r.stations[stationID]
	if !ok {
		return nil, domain.NotFoundError("station", stationID)
	}
	out := make([]domain.Port, 0, len(station.Ports))
	for _, port := range station.Ports {
		if excludeMaintenance && port.Status == domain.PortStatusMaintenance {
			continue
		}
		out = append(out, port)
	}
	return out, nil
}

func (r *StationRepository) UpdatePortStatus(ctx context.Context, stationID, portID string, status domain.PortStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	station, ok := r.stations[stationID]
	if !ok {
		return domain.NotFoundError("station", stationID)
	}
	for i := range station.Ports {
		if station.Ports[i].ID == portID {
			station.Ports[i].Status = status
			station.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.NotFoundError("port", portID)
}

func cloneStation(s *domain.Station) *domain.Station {
	out := *s
	out.Ports = make([]domain.Port, len(s.Ports))
	copy(out.Ports, s.Ports)
	return &out
}
