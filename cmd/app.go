package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ReservationService/internal/config"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/lock"
	"github.com/m04kA/SMC-ReservationService/internal/infra/memory"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/migrations"
	policyRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/policy"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	tableRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/table"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/events"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

type reservationStore interface {
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
	Update(ctx context.Context, reservation *domain.Reservation, expected domain.ReservationStatus) error
	Transition(ctx context.Context, t domain.StatusTransition) error
	Delete(ctx context.Context, id int64) error
}

type policyStore interface {
	Get(ctx context.Context) (*domain.ReservationPolicy, error)
	Save(ctx context.Context, policy *domain.ReservationPolicy) error
}

type tableStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Table, error)
	List(ctx context.Context) ([]*domain.Table, error)
	Upsert(ctx context.Context, table *domain.Table) error
}

type txManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

type locker interface {
	Lock(ctx context.Context, key string) (lock.Unlock, error)
}

// app общие зависимости команд
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics

	db          *sql.DB
	stopMetrics chan struct{}
	redis       *redis.Client

	reservations reservationStore
	policies     policyStore
	tables       tableStore
	txManager    txManager
	locker       locker
	events       *events.Bus
}

// newApp собирает зависимости; migrate применяет миграции до заполнения каталога
func newApp(ctx context.Context, migrate bool) (*app, error) {
	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, stopMetrics: make(chan struct{})}

	log.Info("Configuration loaded from %s (storage=%s)", configPath, cfg.Storage.Driver)

	// Инициализируем метрики (если включены)
	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	if err := a.initStorage(ctx, migrate); err != nil {
		a.Close()
		return nil, err
	}

	if err := a.initRedis(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) initStorage(ctx context.Context, migrate bool) error {
	seedPolicy, err := a.cfg.Policy.ToDomain()
	if err != nil {
		return err
	}

	if a.cfg.Storage.Driver == config.StorageDriverMemory {
		a.reservations = memory.NewReservationRepository()
		a.policies = memory.NewPolicyStore(seedPolicy)
		a.tables = memory.NewTableCatalog(a.cfg.DomainTables()...)
		a.txManager = memory.NewTxManager()
		a.log.Warn("In-memory storage: data is lost on restart")
		return nil
	}

	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}

	if migrate {
		if _, err := migrations.Apply(ctx, db, a.log); err != nil {
			return err
		}
	}

	wrappedDB := dbmetrics.WrapWithDefault(db, a.metrics, a.stopMetrics)
	a.reservations = reservationRepo.NewRepository(wrappedDB)
	a.policies = policyRepo.NewRepository(wrappedDB)
	a.tables = tableRepo.NewRepository(wrappedDB)
	a.txManager = txmanager.NewTransactionManager(wrappedDB)

	return a.seed(ctx, seedPolicy)
}

func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	cfg := a.cfg.Database

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = db

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	a.log.Info("Successfully connected to database (host=%s, port=%d, db=%s)", cfg.Host, cfg.Port, cfg.DBName)

	return db, nil
}

// seed заполняет каталог столов из конфигурации и сохраняет начальную политику,
// если администратор ещё не сохранял свою
func (a *app) seed(ctx context.Context, seedPolicy domain.ReservationPolicy) error {
	for _, table := range a.cfg.DomainTables() {
		if err := a.tables.Upsert(ctx, &table); err != nil {
			return fmt.Errorf("seed table id=%d: %w", table.ID, err)
		}
	}

	_, err := a.policies.Get(ctx)
	if errors.Is(err, policyRepo.ErrPolicyNotFound) {
		if err := a.policies.Save(ctx, &seedPolicy); err != nil {
			return fmt.Errorf("seed policy: %w", err)
		}
		a.log.Info("Reservation policy initialized from config")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	return nil
}

func (a *app) initRedis(ctx context.Context) error {
	var (
		publisher events.Publisher
		notifier  events.Notifier
	)

	if !a.cfg.Redis.Enabled() {
		sink := events.NewLogSink(a.log)
		publisher, notifier = sink, sink
		a.locker = lock.NewKeyedMutex()
		a.events = events.NewBus(publisher, notifier, a.log)
		a.log.Info("Redis disabled: in-process table locks, events go to log")
		return nil
	}

	opts, err := redis.ParseURL(a.cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	a.redis = redis.NewClient(opts)

	if err := a.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	a.locker = lock.NewRedisLocker(a.redis, a.log,
		lock.WithTTL(time.Duration(a.cfg.Redis.LockTTLMs)*time.Millisecond),
	)
	publisher = events.NewRedisPublisher(a.redis, a.cfg.Redis.EventsChannel)
	notifier = events.NewRedisNotifier(a.redis, a.cfg.Redis.NotificationQueue)
	a.events = events.NewBus(publisher, notifier, a.log)
	a.log.Info("Redis connected: distributed table locks, events on %q", a.cfg.Redis.EventsChannel)

	return nil
}

// Close дожидается доставки событий и освобождает ресурсы
func (a *app) Close() {
	if a.events != nil {
		a.events.Wait()
	}
	close(a.stopMetrics)
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("Failed to close redis client: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error("Failed to close database: %v", err)
		}
	}
	a.log.Close()
}
