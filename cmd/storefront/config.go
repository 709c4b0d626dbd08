package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/app"
)

const (
	envHTTPAddr            = "SHOP_HTTP_ADDR"
	envMetricsAddr         = "SHOP_METRICS_ADDR"
	envStorageDriver       = "SHOP_STORAGE_DRIVER"
	envPostgresDSN         = "SHOP_POSTGRES_DSN"
	envPostgresAutoMigrate = "SHOP_POSTGRES_AUTO_MIGRATE"
	envRedisAddr           = "SHOP_REDIS_ADDR"
	envCacheTTL            = "SHOP_CACHE_TTL"
	envKafkaBrokers        = "SHOP_KAFKA_BROKERS"
	envKafkaTopic          = "SHOP_KAFKA_TOPIC"
	envRequestTimeout      = "SHOP_REQUEST_TIMEOUT"
	envCORSOrigins         = "SHOP_CORS_ORIGINS"
	envLogLevel            = "SHOP_LOG_LEVEL"
)

type envLookup func(key string) (string, bool)

// readConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не прерывают запуск: остаётся значение по умолчанию,
// а причина возвращается в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	warn := func(key, value string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %v", key, value, err))
	}

	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	setString(envHTTPAddr, &cfg.HTTPAddr)
	setString(envMetricsAddr, &cfg.MetricsAddr)
	setString(envPostgresDSN, &cfg.PostgresDSN)
	setString(envRedisAddr, &cfg.RedisAddr)
	setString(envKafkaBrokers, &cfg.KafkaBrokers)
	setString(envKafkaTopic, &cfg.KafkaTopic)
	setString(envCORSOrigins, &cfg.CORSOrigins)

	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		switch driver := app.StorageDriver(strings.ToLower(strings.TrimSpace(v))); driver {
		case app.StorageDriverMemory, app.StorageDriverPostgres:
			cfg.StorageDriver = driver
		default:
			warn(envStorageDriver, v, fmt.Errorf("must be %s or %s", app.StorageDriverMemory, app.StorageDriverPostgres))
		}
	}

	if v, ok := lookup(envPostgresAutoMigrate); ok && strings.TrimSpace(v) != "" {
		parsed, err := parseBool(v)
		if err != nil {
			warn(envPostgresAutoMigrate, v, err)
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}

	positive := func(d time.Duration) bool { return d > 0 }
	for _, item := range []struct {
		key string
		dst *time.Duration
	}{
		{envCacheTTL, &cfg.CacheTTL},
		{envRequestTimeout, &cfg.RequestTimeout},
	} {
		v, ok := lookup(item.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := parseDuration(v, positive, "must be > 0")
		if err != nil {
			warn(item.key, v, err)
			continue
		}
		*item.dst = parsed
	}

	if v, ok := lookup(envLogLevel); ok && strings.TrimSpace(v) != "" {
		if _, err := log.ParseLevel(strings.TrimSpace(v)); err != nil {
			warn(envLogLevel, v, err)
		} else {
			cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
		}
	}

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %w", err)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("value %s %s", value, rule)
	}
	return value, nil
}

func osLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}
