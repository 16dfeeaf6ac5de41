package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("queue.url", "QUEUE_URL", "APP_QUEUE_URL")
	viper.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	viper.BindEnv("vault.address", "VAULT_ADDR")
	viper.BindEnv("vault.token", "VAULT_TOKEN")
	viper.BindEnv("registry.base_url", "VEHICLE_REGISTRY_URL")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	booking := DefaultBooking()
	viper.SetDefault("storage.driver", "memory")
	viper.SetDefault("queue.driver", "none")
	viper.SetDefault("prometheus.path", "/metrics")
	viper.SetDefault("cache.station_ttl", "5m")
	viper.SetDefault("jobs.expiry_sweep_interval", "1m")
	viper.SetDefault("booking.open_hour", booking.OpenHour)
	viper.SetDefault("booking.close_hour", booking.CloseHour)
	viper.SetDefault("booking.slot_granularity_minutes", booking.SlotGranularityMinutes)
	viper.SetDefault("booking.min_duration_minutes", booking.MinDurationMinutes)
	viper.SetDefault("booking.max_duration_minutes", booking.MaxDurationMinutes)
	viper.SetDefault("booking.max_advance_booking_days", booking.MaxAdvanceBookingDays)
	viper.SetDefault("booking.pending_grace_minutes", booking.PendingGraceMinutes)
	viper.SetDefault("booking.charging_efficiency", booking.ChargingEfficiency)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// env vars only
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Booking.Validate(); err != nil {
		return nil, fmt.Errorf("invalid booking config: %w", err)
	}

	return &cfg, nil
}
