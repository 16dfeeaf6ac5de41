package catalog

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

const stationKeyPrefix = "catalog:station:"

// Service is the engine's read-mostly registry of stations and ports.
// Station reads go through a TTL'd cache; the administrative write path
// invalidates the cached record so the change is visible on the next
// read, never later.
type Service struct {
	repo  ports.StationRepository
	cache ports.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewService(repo ports.StationRepository, cache ports.Cache, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

var _ ports.CatalogService = (*Service)(nil)

func (s *Service) GetStation(ctx context.Context, id string) (*domain.Station, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, stationKeyPrefix+id); err == nil {
			var station domain.Station
			if err := json.Unmarshal([]byte(raw), &station); err == nil {
				return &station, nil
			}
			// corrupt entry, fall through to the repository
			s.cache.Delete(ctx, stationKeyPrefix+id)
		}
	}

	station, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(station); err == nil {
			if err := s.cache.Set(ctx, stationKeyPrefix+id, string(raw), s.ttl); err != nil {
				s.log.Warn("failed to cache station", zap.String("station_id", id), zap.Error(err))
			}
		}
	}
	return station, nil
}

func (s *Service) ListStations(ctx context.Context) ([]domain.Station, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) GetPort(ctx context.Context, stationID, portID string) (*domain.Port, error) {
	return s.repo.FindPort(ctx, stationID, portID)
}

func (s *Service) ListPorts(ctx context.Context, stationID string, excludeMaintenance bool) ([]domain.Port, error) {
	return s.repo.ListPorts(ctx, stationID, excludeMaintenance)
}

func (s *Service) UpsertStation(ctx context.Context, station *domain.Station) error {
	if err := s.repo.Save(ctx, station); err != nil {
		return err
	}
	s.invalidate(ctx, station.ID)

	s.log.Info("station upserted",
		zap.String("station_id", station.ID),
		zap.Int("ports", len(station.Ports)),
	)
	return nil
}

func (s *Service) SetPortStatus(ctx context.Context, stationID, portID string, status domain.PortStatus) error {
	if err := s.repo.UpdatePortStatus(ctx, stationID, portID, status); err != nil {
		return err
	}
	s.invalidate(ctx, stationID)

	s.log.Info("port status changed",
		zap.String("station_id", stationID),
		zap.String("port_id", portID),
		zap.String("status", string(status)),
	)
	return nil
}

func (s *Service) invalidate(ctx context.Context, stationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, stationKeyPrefix+stationID); err != nil {
		s.log.Warn("failed to invalidate station cache", zap.String("station_id", stationID), zap.Error(err))
	}
}
