package app

import "time"

// StorageDriver выбирает реализацию хранилища каталога.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска сервиса каталога.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	// RedisAddr включает кэш товаров; пустое значение отключает его.
	RedisAddr string
	CacheTTL  time.Duration

	// KafkaBrokers задаёт брокеров через запятую; пусто значит без событий.
	KafkaBrokers string
	KafkaTopic   string

	RequestTimeout time.Duration
	// CORSOrigins перечисляет разрешённые источники через запятую.
	CORSOrigins string
	LogLevel    string
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		CacheTTL:            15 * time.Minute,
		KafkaTopic:          "shop.catalog.events",
		RequestTimeout:      30 * time.Second,
		CORSOrigins:         "*",
		LogLevel:            "info",
	}
}
