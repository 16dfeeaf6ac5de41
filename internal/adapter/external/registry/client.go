package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

// Client reads vehicle records from the external fleet registry over
// HTTP. Lookups sit on the booking hot path, so they run behind a
// circuit breaker: when the registry is down the engine fails fast
// instead of stalling every booking attempt.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "vehicle-registry",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("registry circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// An unknown vehicle is a domain answer from a healthy
		// registry, not a fault.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			_, is := err.(*notFoundErr)
			return is
		},
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		log:     log,
	}
}

var _ ports.VehicleRegistry = (*Client)(nil)

type vehicleResponse struct {
	ID                 string  `json:"id"`
	Label              string  `json:"label"`
	Connector          string  `json:"connector"`
	BatteryCapacityKwh float64 `json:"battery_capacity_kwh"`
	ChargeLevel        float64 `json:"charge_level"`
}

func (c *Client) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, id)
	})
	if err != nil {
		if _, is := err.(*notFoundErr); is {
			return nil, domain.NotFoundError("vehicle", id)
		}
		return nil, fmt.Errorf("vehicle registry: %w", err)
	}
	return result.(*domain.Vehicle), nil
}

type notFoundErr struct{ id string }

func (e *notFoundErr) Error() string { return "vehicle not found: " + e.id }

func (c *Client) fetch(ctx context.Context, id string) (*domain.Vehicle, error) {
	url := fmt.Sprintf("%s/api/v1/vehicles/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &notFoundErr{id: id}
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("registry returned %d: %s", resp.StatusCode, body)
	}

	var vr vehicleResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("decode registry response: %w", err)
	}

	return &domain.Vehicle{
		ID:                 vr.ID,
		Label:              vr.Label,
		Connector:          domain.ConnectorType(vr.Connector),
		BatteryCapacityKwh: vr.BatteryCapacityKwh,
		ChargeLevel:        vr.ChargeLevel,
	}, nil
}
