package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Logs      LogsConfig      `toml:"logs"`
	Database  DatabaseConfig  `toml:"database"`
	Storage   StorageConfig   `toml:"storage"`
	Redis     RedisConfig     `toml:"redis"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Sweeper   SweeperConfig   `toml:"sweeper"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Policy    PolicyConfig    `toml:"policy"`
	Tables    []TableConfig   `toml:"tables"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

type StorageConfig struct {
	Driver string `toml:"driver"` // "postgres" | "memory"
}

// RedisConfig пустой URL отключает Redis: блокировки в процессе, события в лог
type RedisConfig struct {
	URL               string `toml:"url"`
	LockTTLMs         int    `toml:"lock_ttl_ms"`
	EventsChannel     string `toml:"events_channel"`
	NotificationQueue string `toml:"notification_queue"`
}

// Enabled true, если задан адрес Redis
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

type SchedulerConfig struct {
	MaxWriteAttempts int `toml:"max_write_attempts"`
	RetryBackoffMs   int `toml:"retry_backoff_ms"`
	LockTimeoutMs    int `toml:"lock_timeout_ms"`
}

func (c SchedulerConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

func (c SchedulerConfig) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMs) * time.Millisecond
}

type SweeperConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
	BatchSize       int  `toml:"batch_size"`
}

func (c SweeperConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// PolicyConfig начальная политика; применяется, пока администратор не сохранил свою
type PolicyConfig struct {
	MaxHoursPerReservation       *int    `toml:"max_hours_per_reservation"`
	MaxReservationsPerUserPerDay *int    `toml:"max_reservations_per_user_per_day"`
	MinHoursInAdvance            *int    `toml:"min_hours_in_advance"`
	AllowedStartTime             *string `toml:"allowed_start_time"`
	AllowedEndTime               *string `toml:"allowed_end_time"`
	RequiresApprovalForAllDay    *bool   `toml:"requires_approval_for_all_day"`
	AllowConsecutiveReservations *bool   `toml:"allow_consecutive_reservations"`
	MinTimeBetweenReservations   *int    `toml:"min_time_between_reservations"`
}

// ToDomain накладывает заданные поля на политику по умолчанию
func (c PolicyConfig) ToDomain() (domain.ReservationPolicy, error) {
	p := domain.DefaultPolicy()
	if c.MaxHoursPerReservation != nil {
		p.MaxHoursPerReservation = *c.MaxHoursPerReservation
	}
	if c.MaxReservationsPerUserPerDay != nil {
		p.MaxReservationsPerUserPerDay = *c.MaxReservationsPerUserPerDay
	}
	if c.MinHoursInAdvance != nil {
		p.MinHoursInAdvance = *c.MinHoursInAdvance
	}
	if c.AllowedStartTime != nil {
		p.AllowedStartTime = types.TimeString(*c.AllowedStartTime)
	}
	if c.AllowedEndTime != nil {
		p.AllowedEndTime = types.TimeString(*c.AllowedEndTime)
	}
	if c.RequiresApprovalForAllDay != nil {
		p.RequiresApprovalForAllDay = *c.RequiresApprovalForAllDay
	}
	if c.AllowConsecutiveReservations != nil {
		p.AllowConsecutiveReservations = *c.AllowConsecutiveReservations
	}
	if c.MinTimeBetweenReservations != nil {
		p.MinTimeBetweenReservations = *c.MinTimeBetweenReservations
	}
	if err := p.Validate(); err != nil {
		return domain.ReservationPolicy{}, fmt.Errorf("%w: policy: %v", ErrInvalidConfig, err)
	}
	return p, nil
}

// TableConfig стол для начального заполнения каталога
type TableConfig struct {
	ID          int64  `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Capacity    int    `toml:"capacity"`
}

// DomainTables столы каталога из конфигурации
func (c *Config) DomainTables() []domain.Table {
	tables := make([]domain.Table, 0, len(c.Tables))
	for _, t := range c.Tables {
		tables = append(tables, domain.Table{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Capacity:    t.Capacity,
		})
	}
	return tables
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Logs: LogsConfig{Level: "info"},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "reservations",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Storage: StorageConfig{Driver: StorageDriverPostgres},
		Redis: RedisConfig{
			LockTTLMs:         30000,
			EventsChannel:     "reservations:status",
			NotificationQueue: "reservations:notifications",
		},
		Scheduler: SchedulerConfig{
			MaxWriteAttempts: 3,
			RetryBackoffMs:   20,
			LockTimeoutMs:    2000,
		},
		Sweeper: SweeperConfig{
			Enabled:         true,
			IntervalSeconds: 60,
			BatchSize:       500,
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "reservation_service",
		},
	}
}

// Load читает конфигурацию из TOML-файла, затем применяет переменные окружения.
// Отсутствующий файл не ошибка: остаются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrLoadEnv, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: HTTP_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.HTTPPort = port
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logs.Level = v
	}
	return nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535", ErrInvalidConfig)
	}
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Port <= 0 {
			return fmt.Errorf("%w: database.port must be positive", ErrInvalidConfig)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	if c.Scheduler.MaxWriteAttempts <= 0 {
		return fmt.Errorf("%w: scheduler.max_write_attempts must be positive", ErrInvalidConfig)
	}
	if c.Scheduler.LockTimeoutMs <= 0 {
		return fmt.Errorf("%w: scheduler.lock_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.Sweeper.IntervalSeconds <= 0 {
		return fmt.Errorf("%w: sweeper.interval_seconds must be positive", ErrInvalidConfig)
	}
	if c.Sweeper.BatchSize <= 0 {
		return fmt.Errorf("%w: sweeper.batch_size must be positive", ErrInvalidConfig)
	}
	if _, err := c.Policy.ToDomain(); err != nil {
		return err
	}
	for _, t := range c.Tables {
		if t.ID <= 0 || t.Capacity < 0 {
			return fmt.Errorf("%w: table id=%d", ErrInvalidConfig, t.ID)
		}
	}
	return nil
}
