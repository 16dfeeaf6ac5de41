package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

var holdingStatuses = []domain.ReservationStatus{
	domain.ReservationStatusPending,
	domain.ReservationStatusConfirmed,
	domain.ReservationStatusActive,
}

// ReservationStore persists reservations through GORM. Reserve runs its
// overlap check and insert inside one transaction holding a Postgres
// advisory lock keyed on the port id, which serializes racing bookings
// for the same port while leaving other ports untouched.
type ReservationStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReservationStore(db *gorm.DB, log *zap.Logger) ports.ReservationStore {
	return &ReservationStore{db: db, log: log}
}

func (s *ReservationStore) Reserve(ctx context.Context, res *domain.Reservation) error {
	if res.ID == "" || res.PortID == "" {
		return fmt.Errorf("reservation id and port id are required")
	}
	if !res.EndTime.After(res.StartTime) {
		return fmt.Errorf("reservation end %s not after start %s", res.EndTime, res.StartTime)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", res.PortID).Error; err != nil {
			return fmt.Errorf("acquire port lock: %w", err)
		}

		var blocking domain.Reservation
		err := tx.
			Where("port_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
				res.PortID, holdingStatuses, res.EndTime, res.StartTime).
			Order("start_time").
			First(&blocking).Error
		if err == nil {
			return &domain.ConflictError{PortID: res.PortID, BlockingID: blocking.ID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("overlap check: %w", err)
		}

		if res.Status == "" {
			res.Status = domain.ReservationStatusPending
		}
		now := time.Now()
		if res.CreatedAt.IsZero() {
			res.CreatedAt = now
		}
		res.UpdatedAt = now

		if err := tx.Create(res).Error; err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		return nil
	})
}

func (s *ReservationStore) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := s.db.WithContext(ctx).First(&res, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError("reservation", id)
		}
		return nil, err
	}
	return &res, nil
}

func (s *ReservationStore) SetStatus(ctx context.Context, id string, next domain.ReservationStatus) (*domain.Reservation, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown reservation status %q", next)
	}

	var updated domain.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res domain.Reservation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&res, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError("reservation", id)
			}
			return err
		}
		if !res.Status.CanTransitionTo(next) {
			return &domain.InvalidTransitionError{From: res.Status, To: next}
		}

		res.Status = next
		res.UpdatedAt = time.Now()
		if err := tx.Save(&res).Error; err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ReservationStore) SetReminder(ctx context.Context, id string, on bool) (*domain.Reservation, error) {
	var updated domain.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res domain.Reservation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&res, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError("reservation", id)
			}
			return err
		}

		res.Reminder = on
		res.UpdatedAt = time.Now()
		if err := tx.Save(&res).Error; err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ReservationStore) ListForPort(ctx context.Context, portID string, onOrAfter time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := s.db.WithContext(ctx).
		Where("port_id = ? AND end_time >= ?", portID, onOrAfter).
		Order("start_time").
		Find(&out).Error
	return out, err
}

func (s *ReservationStore) ListForVehicle(ctx context.Context, vehicleID string, status domain.ReservationStatus) ([]domain.Reservation, error) {
	q := s.db.WithContext(ctx).Where("vehicle_id = ?", vehicleID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.Reservation
	err := q.Order("start_time").Find(&out).Error
	return out, err
}

func (s *ReservationStore) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.ReservationStatusPending, cutoff).
		Order("start_time").
		Find(&out).Error
	return out, err
}
