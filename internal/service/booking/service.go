package booking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/observability/telemetry"
	"github.com/ommanoj88/sev-backend/internal/ports"
	"github.com/ommanoj88/sev-backend/internal/service/pricing"
	"github.com/ommanoj88/sev-backend/pkg/config"
)

// EventSink receives lifecycle events for real-time fan-out (the
// dashboard websocket hub). Nil-able; delivery is best effort.
type EventSink interface {
	ReservationEvent(event string, res *domain.Reservation)
}

// Service is the reservation lifecycle manager. It validates booking
// requests, delegates the exclusivity check to the store, computes
// estimates and drives status transitions. It owns no reservation
// state itself; the store is the sole writer.
type Service struct {
	catalog   ports.CatalogService
	registry  ports.VehicleRegistry
	store     ports.ReservationStore
	estimator *pricing.Estimator
	notifier  ports.Notifier
	events    EventSink
	cfg       config.BookingConfig
	log       *zap.Logger

	// test seam; defaults to time.Now
	now func() time.Time
}

func NewService(
	catalog ports.CatalogService,
	registry ports.VehicleRegistry,
	store ports.ReservationStore,
	estimator *pricing.Estimator,
	notifier ports.Notifier,
	events EventSink,
	cfg config.BookingConfig,
	log *zap.Logger,
) *Service {
	return &Service{
		catalog:   catalog,
		registry:  registry,
		store:     store,
		estimator: estimator,
		notifier:  notifier,
		events:    events,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

var _ ports.BookingService = (*Service)(nil)

// Book runs the booking use case: validation, atomic reservation,
// estimation. Conflicts from the store surface unchanged; the caller
// decides whether to pick another slot.
func (s *Service) Book(ctx context.Context, req *ports.BookingRequest) (*domain.Reservation, error) {
	station, err := s.catalog.GetStation(ctx, req.StationID)
	if err != nil {
		telemetry.BookingRejections.WithLabelValues("not_found").Inc()
		return nil, err
	}
	port, err := s.catalog.GetPort(ctx, req.StationID, req.PortID)
	if err != nil {
		telemetry.BookingRejections.WithLabelValues("not_found").Inc()
		return nil, err
	}
	if port.Status == domain.PortStatusMaintenance {
		telemetry.BookingRejections.WithLabelValues("maintenance").Inc()
		return nil, &domain.MaintenancePortError{PortID: port.ID}
	}

	vehicle, err := s.registry.FindByID(ctx, req.VehicleID)
	if err != nil {
		telemetry.BookingRejections.WithLabelValues("not_found").Inc()
		return nil, err
	}
	if vehicle.Connector != port.Connector {
		telemetry.BookingRejections.WithLabelValues("connector_mismatch").Inc()
		return nil, &domain.ConnectorMismatchError{
			VehicleConnector: vehicle.Connector,
			PortConnector:    port.Connector,
		}
	}

	if err := s.validateDuration(req.DurationMinutes); err != nil {
		telemetry.BookingRejections.WithLabelValues("invalid_duration").Inc()
		return nil, err
	}
	if err := s.validateStart(req.StartTime); err != nil {
		telemetry.BookingRejections.WithLabelValues("invalid_start").Inc()
		return nil, err
	}

	energy, cost, err := s.estimator.Estimate(req.DurationMinutes, port.PowerKw, station.PricePerKwh)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res := &domain.Reservation{
		ID:                 uuid.New().String(),
		Code:               reservationCode(station.ID, now),
		StationID:          station.ID,
		PortID:             port.ID,
		VehicleID:          vehicle.ID,
		Status:             domain.ReservationStatusPending,
		StartTime:          req.StartTime,
		EndTime:            req.StartTime.Add(time.Duration(req.DurationMinutes) * time.Minute),
		EstimatedEnergyKwh: energy,
		EstimatedCost:      cost,
		CreatedAt:          now,
	}

	reserveStart := time.Now()
	err = s.store.Reserve(ctx, res)
	telemetry.ReserveLatency.Observe(time.Since(reserveStart).Seconds())
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			telemetry.ReservationConflicts.Inc()
		}
		return nil, err
	}

	telemetry.ReservationsCreated.Inc()
	s.emit("reservation.created", res)
	s.log.Info("reservation created",
		zap.String("reservation_id", res.ID),
		zap.String("code", res.Code),
		zap.String("port_id", res.PortID),
		zap.String("vehicle_id", res.VehicleID),
		zap.Time("start", res.StartTime),
		zap.Float64("estimated_kwh", res.EstimatedEnergyKwh),
	)
	return res, nil
}

func (s *Service) validateDuration(minutes int) error {
	if minutes < s.cfg.MinDurationMinutes || minutes > s.cfg.MaxDurationMinutes ||
		minutes%s.cfg.SlotGranularityMinutes != 0 {
		return &domain.InvalidDurationError{
			Minutes: minutes,
			Min:     s.cfg.MinDurationMinutes,
			Max:     s.cfg.MaxDurationMinutes,
			Step:    s.cfg.SlotGranularityMinutes,
		}
	}
	return nil
}

func (s *Service) validateStart(start time.Time) error {
	now := s.now()
	if start.Before(now) {
		return &domain.InvalidStartError{Start: start}
	}
	if s.cfg.MaxAdvanceBookingDays > 0 && start.After(now.AddDate(0, 0, s.cfg.MaxAdvanceBookingDays)) {
		return &domain.InvalidStartError{Start: start}
	}
	return nil
}

// reservationCode builds the human-readable code handed to drivers:
// RES-<station>-<base36 timestamp>.
func reservationCode(stationID string, at time.Time) string {
	return "RES-" + stationID + "-" + strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListForVehicle(ctx context.Context, vehicleID string, status domain.ReservationStatus) ([]domain.Reservation, error) {
	return s.store.ListForVehicle(ctx, vehicleID, status)
}

func (s *Service) ListForPort(ctx context.Context, portID string, onOrAfter time.Time) ([]domain.Reservation, error) {
	return s.store.ListForPort(ctx, portID, onOrAfter)
}

// Confirm moves a pending reservation to confirmed and fires the
// notification hook.
func (s *Service) Confirm(ctx context.Context, id string) (*domain.Reservation, error) {
	res, err := s.transition(ctx, id, domain.ReservationStatusConfirmed)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, res, func(n ports.Notifier, ev ports.ReservationEvent) error {
		return n.ReservationConfirmed(ctx, ev)
	})
	return res, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.transition(ctx, id, domain.ReservationStatusCancelled)
}

func (s *Service) MarkActive(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.transition(ctx, id, domain.ReservationStatusActive)
}

func (s *Service) MarkCompleted(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.transition(ctx, id, domain.ReservationStatusCompleted)
}

func (s *Service) MarkNoShow(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.transition(ctx, id, domain.ReservationStatusNoShow)
}

func (s *Service) transition(ctx context.Context, id string, next domain.ReservationStatus) (*domain.Reservation, error) {
	res, err := s.store.SetStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}

	telemetry.StatusTransitions.WithLabelValues(string(next)).Inc()
	s.emit("reservation."+string(next), res)
	s.log.Info("reservation transitioned",
		zap.String("reservation_id", id),
		zap.String("status", string(next)),
	)
	return res, nil
}

// ToggleReminder flips the reminder flag and fires the notification
// hook. Works in any status.
func (s *Service) ToggleReminder(ctx context.Context, id string) (*domain.Reservation, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.store.SetReminder(ctx, id, !current.Reminder)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, res, func(n ports.Notifier, ev ports.ReservationEvent) error {
		return n.ReminderToggled(ctx, ev)
	})
	s.emit("reservation.reminder", res)
	return res, nil
}

// ExpirePending cancels pending reservations created more than the
// grace period ago. Invoked by an external scheduler; the engine itself
// keeps no timers.
func (s *Service) ExpirePending(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-time.Duration(s.cfg.PendingGraceMinutes) * time.Minute)
	stale, err := s.store.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, res := range stale {
		if _, err := s.store.SetStatus(ctx, res.ID, domain.ReservationStatusCancelled); err != nil {
			// Raced with a concurrent confirm or cancel; skip it.
			s.log.Debug("expiry sweep skipped reservation",
				zap.String("reservation_id", res.ID),
				zap.Error(err),
			)
			continue
		}
		expired++
		telemetry.ExpiredPending.Inc()
	}

	if expired > 0 {
		s.log.Info("expired stale pending reservations", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *Service) notify(ctx context.Context, res *domain.Reservation, send func(ports.Notifier, ports.ReservationEvent) error) {
	if s.notifier == nil {
		return
	}
	ev := ports.ReservationEvent{
		ReservationID: res.ID,
		VehicleID:     res.VehicleID,
		StationID:     res.StationID,
		StartTime:     res.StartTime,
	}
	if err := send(s.notifier, ev); err != nil {
		s.log.Error("notification hook failed",
			zap.String("reservation_id", res.ID),
			zap.Error(err),
		)
	}
}

func (s *Service) emit(event string, res *domain.Reservation) {
	if s.events != nil {
		s.events.ReservationEvent(event, res)
	}
}
