package config

import (
	"fmt"
	"time"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Vault      VaultConfig      `mapstructure:"vault"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	Booking    BookingConfig    `mapstructure:"booking"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Jobs       JobsConfig       `mapstructure:"jobs"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig selects the reservation store implementation. "memory"
// keeps everything process-local; "postgres" persists through GORM.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// QueueConfig selects the notification hook transport.
type QueueConfig struct {
	Driver string `mapstructure:"driver"` // nats | rabbitmq | none
	URL    string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

type VaultConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
}

// RegistryConfig points at the external fleet/vehicle registry.
type RegistryConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// BookingConfig holds the engine's business-rule knobs. The duration
// bounds and operating window are deployment configuration, not
// hard-coded constants.
type BookingConfig struct {
	OpenHour               int     `mapstructure:"open_hour"`
	CloseHour              int     `mapstructure:"close_hour"`
	SlotGranularityMinutes int     `mapstructure:"slot_granularity_minutes"`
	MinDurationMinutes     int     `mapstructure:"min_duration_minutes"`
	MaxDurationMinutes     int     `mapstructure:"max_duration_minutes"`
	MaxAdvanceBookingDays  int     `mapstructure:"max_advance_booking_days"`
	PendingGraceMinutes    int     `mapstructure:"pending_grace_minutes"`
	ChargingEfficiency     float64 `mapstructure:"charging_efficiency"`
}

// Validate rejects configurations the engine cannot run with.
func (c *BookingConfig) Validate() error {
	if c.SlotGranularityMinutes <= 0 {
		return fmt.Errorf("slot granularity must be positive, got %d", c.SlotGranularityMinutes)
	}
	if c.OpenHour < 0 || c.CloseHour > 24 || c.OpenHour >= c.CloseHour {
		return fmt.Errorf("invalid operating window %d:00-%d:00", c.OpenHour, c.CloseHour)
	}
	if c.MinDurationMinutes <= 0 || c.MaxDurationMinutes < c.MinDurationMinutes {
		return fmt.Errorf("invalid duration bounds [%d, %d]", c.MinDurationMinutes, c.MaxDurationMinutes)
	}
	if c.MinDurationMinutes%c.SlotGranularityMinutes != 0 {
		return fmt.Errorf("min duration %d not a multiple of granularity %d", c.MinDurationMinutes, c.SlotGranularityMinutes)
	}
	if c.ChargingEfficiency <= 0 || c.ChargingEfficiency > 1 {
		return fmt.Errorf("charging efficiency must be in (0, 1], got %f", c.ChargingEfficiency)
	}
	return nil
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CacheConfig struct {
	StationTTL time.Duration `mapstructure:"station_ttl"`
}

type JobsConfig struct {
	ExpirySweepInterval time.Duration `mapstructure:"expiry_sweep_interval"`
}

// DefaultBooking returns the engine defaults used when the config file
// leaves the booking section out.
func DefaultBooking() BookingConfig {
	return BookingConfig{
		OpenHour:               6,
		CloseHour:              22,
		SlotGranularityMinutes: 30,
		MinDurationMinutes:     30,
		MaxDurationMinutes:     180,
		MaxAdvanceBookingDays:  7,
		PendingGraceMinutes:    15,
		ChargingEfficiency:     0.9,
	}
}
