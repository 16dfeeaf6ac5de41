package memory

import (
	"context"
	"sync"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

// VehicleRegistry is a local stand-in for the external fleet registry,
// used in single-binary deployments and tests.
type VehicleRegistry struct {
	mu       sync.RWMutex
	vehicles map[string]domain.Vehicle
}

func NewVehicleRegistry() *VehicleRegistry {
	return &VehicleRegistry{vehicles: make(map[string]domain.Vehicle)}
}

var _ ports.VehicleRegistry = (*VehicleRegistry)(nil)

func (r *VehicleRegistry) Put(v domain.Vehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID] = v
}

func (r *VehicleRegistry) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vehicles[id]
	if !ok {
		return nil, domain.NotFoundError("vehicle", id)
	}
	return &v, nil
}
