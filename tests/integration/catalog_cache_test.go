package integration

import (
	"context"
	"testing"
	"time"

	"github.com/ommanoj88/sev-backend/internal/adapter/cache"
	"github.com/ommanoj88/sev-backend/internal/adapter/storage/postgres"
	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/service/catalog"
)

func TestCatalogReadThroughCache(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	env := SetupTestEnvironment(t)
	defer CleanDatabase(t, env.SQLDB)

	redisCache, err := cache.NewRedisCache(env.RedisURL, env.Logger)
	if err != nil {
		t.Fatalf("Failed to create redis cache: %v", err)
	}
	defer redisCache.Close()

	repo := postgres.NewStationRepository(env.DB, env.Logger)
	svc := catalog.NewService(repo, redisCache, 5*time.Minute, env.Logger)
	ctx := context.Background()

	station := &domain.Station{
		ID:          "st-cache-1",
		Name:        "Cache Test Plaza",
		PricePerKwh: 12.5,
		Ports: []domain.Port{
			{ID: "port-cache-1", StationID: "st-cache-1", Connector: domain.ConnectorFastDC, PowerKw: 60, Status: domain.PortStatusAvailable},
		},
	}
	if err := svc.UpsertStation(ctx, station); err != nil {
		t.Fatalf("UpsertStation failed: %v", err)
	}

	// First read populates the cache.
	got, err := svc.GetStation(ctx, "st-cache-1")
	if err != nil {
		t.Fatalf("GetStation failed: %v", err)
	}
	if got.Name != "Cache Test Plaza" {
		t.Errorf("name = %q, want Cache Test Plaza", got.Name)
	}

	cached, err := redisCache.Get(ctx, "catalog:station:st-cache-1")
	if err != nil || cached == "" {
		t.Fatalf("station not cached after read: %v", err)
	}

	// An admin write invalidates the cached record; the next read must
	// see the change.
	station.Name = "Renamed Plaza"
	if err := svc.UpsertStation(ctx, station); err != nil {
		t.Fatalf("second UpsertStation failed: %v", err)
	}

	got, err = svc.GetStation(ctx, "st-cache-1")
	if err != nil {
		t.Fatalf("GetStation after rename failed: %v", err)
	}
	if got.Name != "Renamed Plaza" {
		t.Errorf("name after rename = %q, want Renamed Plaza", got.Name)
	}
}

func TestCatalogPortStatusInvalidation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	env := SetupTestEnvironment(t)
	defer CleanDatabase(t, env.SQLDB)

	redisCache, err := cache.NewRedisCache(env.RedisURL, env.Logger)
	if err != nil {
		t.Fatalf("Failed to create redis cache: %v", err)
	}
	defer redisCache.Close()

	repo := postgres.NewStationRepository(env.DB, env.Logger)
	svc := catalog.NewService(repo, redisCache, 5*time.Minute, env.Logger)
	ctx := context.Background()

	station := &domain.Station{
		ID:          "st-cache-2",
		Name:        "Maintenance Plaza",
		PricePerKwh: 10,
		Ports: []domain.Port{
			{ID: "port-cache-2", StationID: "st-cache-2", Connector: domain.ConnectorMediumAC, PowerKw: 22, Status: domain.PortStatusAvailable},
		},
	}
	if err := svc.UpsertStation(ctx, station); err != nil {
		t.Fatalf("UpsertStation failed: %v", err)
	}
	if _, err := svc.GetStation(ctx, "st-cache-2"); err != nil {
		t.Fatalf("GetStation failed: %v", err)
	}

	if err := svc.SetPortStatus(ctx, "st-cache-2", "port-cache-2", domain.PortStatusMaintenance); err != nil {
		t.Fatalf("SetPortStatus failed: %v", err)
	}

	port, err := svc.GetPort(ctx, "st-cache-2", "port-cache-2")
	if err != nil {
		t.Fatalf("GetPort failed: %v", err)
	}
	if port.Status != domain.PortStatusMaintenance {
		t.Errorf("port status = %s, want maintenance", port.Status)
	}

	got, err := svc.GetStation(ctx, "st-cache-2")
	if err != nil {
		t.Fatalf("GetStation failed: %v", err)
	}
	if len(got.Ports) != 1 || got.Ports[0].Status != domain.PortStatusMaintenance {
		t.Errorf("cached station did not reflect port status change: %+v", got.Ports)
	}
}
