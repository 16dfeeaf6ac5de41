package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

// ReservationStore keeps all reservations in process memory. Reserve is
// serialized per port: the read-overlap-check-then-write runs as one
// atomic unit under that port's mutex, so two racing calls for
// overlapping intervals resolve with exactly one winner. Calls on
// different ports proceed independently.
type ReservationStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Reservation
	byPort map[string][]string

	lockMu    sync.Mutex
	portLocks map[string]*sync.Mutex

	log *zap.Logger
}

func NewReservationStore(log *zap.Logger) ports.ReservationStore {
	return &ReservationStore{
		byID:      make(map[string]*domain.Reservation),
		byPort:    make(map[string][]string),
		portLocks: make(map[string]*sync.Mutex),
		log:       log,
	}
}

func (s *ReservationStore) portLock(portID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.portLocks[portID]
	if !ok {
		l = &sync.Mutex{}
		s.portLocks[portID] = l
	}
	return l
}

func (s *ReservationStore) Reserve(ctx context.Context, res *domain.Reservation) error {
	if res.ID == "" || res.PortID == "" {
		return fmt.Errorf("reservation id and port id are required")
	}
	if !res.EndTime.After(res.StartTime) {
		return fmt.Errorf("reservation end %s not after start %s", res.EndTime, res.StartTime)
	}

	lock := s.portLock(res.PortID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Overlap check against the invariant set, exact intervals only.
	for _, id := range s.byPort[res.PortID] {
		existing := s.byID[id]
		if !existing.HoldsPort() {
			continue
		}
		if existing.Overlaps(res.StartTime, res.EndTime) {
			return &domain.ConflictError{PortID: res.PortID, BlockingID: existing.ID}
		}
	}

	stored := *res
	if stored.Status == "" {
		stored.Status = domain.ReservationStatusPending
	}
	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.byID[stored.ID] = &stored
	s.byPort[stored.PortID] = append(s.byPort[stored.PortID], stored.ID)
	*res = stored

	s.log.Debug("reservation inserted",
		zap.String("reservation_id", stored.ID),
		zap.String("port_id", stored.PortID),
		zap.Time("start", stored.StartTime),
	)
	return nil
}

func (s *ReservationStore) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.byID[id]
	if !ok {
		return nil, domain.NotFoundError("reservation", id)
	}
	out := *res
	return &out, nil
}

func (s *ReservationStore) SetStatus(ctx context.Context, id string, next domain.ReservationStatus) (*domain.Reservation, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown reservation status %q", next)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.byID[id]
	if !ok {
		return nil, domain.NotFoundError("reservation", id)
	}
	if !res.Status.CanTransitionTo(next) {
		return nil, &domain.InvalidTransitionError{From: res.Status, To: next}
	}

	res.Status = next
	res.UpdatedAt = time.Now()

	out := *res
	return &out, nil
}

func (s *ReservationStore) SetReminder(ctx context.Context, id string, on bool) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.byID[id]
	if !ok {
		return nil, domain.NotFoundError("reservation", id)
	}

	res.Reminder = on
	res.UpdatedAt = time.Now()

	out := *res
	return &out, nil
}

func (s *ReservationStore) ListForPort(ctx context.Context, portID string, onOrAfter time.Time) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Reservation, 0)
	for _, id := range s.byPort[portID] {
		res := s.byID[id]
		if res.EndTime.After(onOrAfter) || res.EndTime.Equal(onOrAfter) {
			out = append(out, *res)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *ReservationStore) ListForVehicle(ctx context.Context, vehicleID string, status domain.ReservationStatus) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Reservation, 0)
	for _, res := range s.byID {
		if res.VehicleID != vehicleID {
			continue
		}
		if status != "" && res.Status != status {
			continue
		}
		out = append(out, *res)
	}
	sortByStart(out)
	return out, nil
}

func (s *ReservationStore) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Reservation, 0)
	for _, res := range s.byID {
		if res.Status == domain.ReservationStatusPending && res.CreatedAt.Before(cutoff) {
			out = append(out, *res)
		}
	}
	sortByStart(out)
	return out, nil
}

func sortByStart(rs []domain.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].StartTime.Before(rs[j].StartTime)
	})
}
