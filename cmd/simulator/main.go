// Command simulator fires concurrent booking attempts at a running
// server to exercise the reservation engine under contention. Useful
// for demonstrating that exactly one of N racing requests for the same
// slot wins.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

type bookingRequest struct {
	StationID       string    `json:"station_id"`
	PortID          string    `json:"port_id"`
	VehicleID       string    `json:"vehicle_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

type result struct {
	status int
	code   string
}

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8080", "server base url")
		token     = flag.String("token", "", "bearer token")
		stationID = flag.String("station", "st-1", "station id")
		portID    = flag.String("port", "port-1", "port id")
		vehicleID = flag.String("vehicle", "veh-1", "vehicle id")
		workers   = flag.Int("workers", 25, "concurrent booking attempts")
		duration  = flag.Int("duration", 60, "duration minutes")
		startIn   = flag.Duration("start-in", 2*time.Hour, "reservation start offset from now")
	)
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	start := time.Now().Add(*startIn).Truncate(30 * time.Minute)
	req := bookingRequest{
		StationID:       *stationID,
		PortID:          *portID,
		VehicleID:       *vehicleID,
		StartTime:       start,
		DurationMinutes: *duration,
	}
	body, _ := json.Marshal(req)

	logger.Info("firing concurrent booking attempts",
		zap.Int("workers", *workers),
		zap.Time("start", start),
		zap.String("port", *portID),
	)

	client := &http.Client{Timeout: 10 * time.Second}
	results := make([]result, *workers)

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = attempt(client, *baseURL, *token, body)
		}(i)
	}
	wg.Wait()

	created, conflicts, other := 0, 0, 0
	for _, r := range results {
		switch {
		case r.status == http.StatusCreated:
			created++
		case r.status == http.StatusConflict:
			conflicts++
		default:
			other++
			logger.Warn("unexpected result", zap.Int("status", r.status), zap.String("code", r.code))
		}
	}

	logger.Info("simulation complete",
		zap.Int("created", created),
		zap.Int("conflicts", conflicts),
		zap.Int("other", other),
	)
	if created != 1 {
		logger.Error("expected exactly one winner", zap.Int("created", created))
	}
}

func attempt(client *http.Client, baseURL, token string, body []byte) result {
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/reservations", bytes.NewReader(body))
	if err != nil {
		return result{status: -1}
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return result{status: -1, code: err.Error()}
	}
	defer resp.Body.Close()

	var parsed struct {
		Code string `json:"code"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	json.Unmarshal(raw, &parsed)

	return result{status: resp.StatusCode, code: parsed.Code}
}
