package availability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

// Window describes the slot grid: the station operating hours and the
// slot width. Both are deployment configuration.
type Window struct {
	OpenHour           int
	CloseHour          int
	GranularityMinutes int
}

// Service projects port occupancy onto a fixed-width slot grid. The
// grid is a display convenience: the authoritative overlap check in the
// reservation store always uses exact intervals, so a booking that does
// not align to grid boundaries is still compared against the raw
// reservation interval.
type Service struct {
	catalog  ports.CatalogService
	store    ports.ReservationStore
	registry ports.VehicleRegistry
	window   Window
	log      *zap.Logger
}

func NewService(catalog ports.CatalogService, store ports.ReservationStore, registry ports.VehicleRegistry, window Window, log *zap.Logger) *Service {
	return &Service{
		catalog:  catalog,
		store:    store,
		registry: registry,
		window:   window,
		log:      log,
	}
}

var _ ports.AvailabilityService = (*Service)(nil)

// Slots returns the slot grid for one port on one calendar day. A slot
// is unavailable when the port itself is not available or when any
// pending/confirmed/active reservation overlaps it (half-open
// comparison). Occupied slots carry the blocking reservation's id and
// vehicle label for display.
func (s *Service) Slots(ctx context.Context, stationID, portID string, date time.Time) ([]domain.TimeSlot, error) {
	port, err := s.catalog.GetPort(ctx, stationID, portID)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), s.window.OpenHour, 0, 0, 0, date.Location())
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(), s.window.CloseHour, 0, 0, 0, date.Location())
	granularity := time.Duration(s.window.GranularityMinutes) * time.Minute

	// Single consistent read; the scan never blocks concurrent reserves.
	reservations, err := s.store.ListForPort(ctx, portID, dayStart)
	if err != nil {
		return nil, err
	}

	portFree := port.Status == domain.PortStatusAvailable
	labels := make(map[string]string)

	slots := make([]domain.TimeSlot, 0, int(dayEnd.Sub(dayStart)/granularity))
	for cur := dayStart; cur.Before(dayEnd); cur = cur.Add(granularity) {
		slot := domain.TimeSlot{
			StartTime: cur,
			EndTime:   cur.Add(granularity),
			Available: portFree,
		}

		for i := range reservations {
			res := &reservations[i]
			if !res.HoldsPort() || !res.Overlaps(slot.StartTime, slot.EndTime) {
				continue
			}
			slot.Available = false
			slot.ReservationID = res.ID
			slot.VehicleLabel = s.vehicleLabel(ctx, res.VehicleID, labels)
			break
		}

		slots = append(slots, slot)
	}
	return slots, nil
}

// vehicleLabel resolves the occupying vehicle's display label, memoized
// per call. Registry failures degrade to an empty label rather than
// failing the whole grid.
func (s *Service) vehicleLabel(ctx context.Context, vehicleID string, memo map[string]string) string {
	if label, ok := memo[vehicleID]; ok {
		return label
	}
	label := ""
	if s.registry != nil {
		vehicle, err := s.registry.FindByID(ctx, vehicleID)
		if err != nil {
			s.log.Debug("vehicle label lookup failed", zap.String("vehicle_id", vehicleID), zap.Error(err))
		} else {
			label = vehicle.Label
		}
	}
	memo[vehicleID] = label
	return label
}
