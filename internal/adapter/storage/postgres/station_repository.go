package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

type StationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStationRepository(db *gorm.DB, log *zap.Logger) ports.StationRepository {
	return &StationRepository{db: db, log: log}
}

func (r *StationRepository) Save(ctx context.Context, station *domain.Station) error {
	now := time.Now()
	if station.CreatedAt.IsZero() {
		station.CreatedAt = now
	}
	station.UpdatedAt = now
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(station).Error
}

func (r *StationRepository) FindByID(ctx context.Context, id string) (*domain.Station, error) {
	var station domain.Station
	err := r.db.WithContext(ctx).Preload("Ports").First(&station, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError("station", id)
		}
		return nil, err
	}
	return &station, nil
}

func (r *StationRepository) FindAll(ctx context.Context) ([]domain.Station, error) {
	var stations []domain.Station
	err := r.db.WithContext(ctx).Preload("Ports").Order("id").Find(&stations).Error
	return stations, err
}

func (r *StationRepository) FindPort(ctx context.Context, stationID, portID string) (*domain.Port, error) {
	var port domain.Port
	err := r.db.WithContext(ctx).First(&port, "id = ? AND station_id = ?", portID, stationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError("port", portID)
		}
		return nil, err
	}
	return &port, nil
}

func (r *StationRepository) ListPorts(ctx context.Context, stationID string, excludeMaintenance bool) ([]domain.Port, error) {
	q := r.db.WithContext(ctx).Where("station_id = ?", stationID)
	if excludeMaintenance {
		q = q.Where("status <> ?", domain.PortStatusMaintenance)
	}
	var out []domain.Port
	err := q.Order("id").Find(&out).Error
	return out, err
}

func (r *StationRepository) UpdatePortStatus(ctx context.Context, stationID, portID string, status domain.PortStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Port{}).
		Where("id = ? AND station_id = ?", portID, stationID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError("port", portID)
	}
	return nil
}
