package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

const (
	DefaultInterval  = 60 * time.Second
	DefaultBatchSize = 500

	jobName = "reservation-lifecycle-sweep"
)

// Result итог одного прохода
type Result struct {
	Completed int
	Skipped   int // статус сменился между чтением и записью
	Failed    int
}

// Sweeper переводит закончившиеся активные бронирования в completed.
// Другие статусы не трогает; ошибка на одной записи не прерывает проход.
type Sweeper struct {
	reservationRepo ReservationRepository
	events          EventEmitter
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
	batchSize       int
}

// Option настройка Sweeper
type Option func(*Sweeper)

// WithBatchSize размер страницы выборки
func WithBatchSize(size int) Option {
	return func(s *Sweeper) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithTimeProvider источник текущего времени
func WithTimeProvider(tp TimeProvider) Option {
	return func(s *Sweeper) {
		s.timeProvider = tp
	}
}

// New создает Sweeper
func New(reservationRepo ReservationRepository, events EventEmitter, metrics Metrics, logger Logger, opts ...Option) *Sweeper {
	s := &Sweeper{
		reservationRepo: reservationRepo,
		events:          events,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
		batchSize:       DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweepOnce один проход. Ошибка возвращается, только если не удалось получить список.
func (s *Sweeper) SweepOnce(ctx context.Context) (Result, error) {
	var result Result
	defer func() {
		s.metrics.SweeperRun(result.Completed, result.Failed)
	}()

	now := types.FromWallClock(s.timeProvider.Now())
	lastID := int64(0)
	filter := domain.ReservationFilter{
		Statuses:   []domain.ReservationStatus{domain.StatusActive},
		EndsBefore: &now,
		AfterID:    &lastID,
		Limit:      s.batchSize,
	}

	for {
		batch, err := s.reservationRepo.List(ctx, filter)
		if err != nil {
			s.logger.Error("Sweep: failed to list finished reservations: %v", err)
			return result, fmt.Errorf("%w: %w", ErrList, err)
		}

		for _, reservation := range batch {
			lastID = reservation.ID
			switch err := s.complete(ctx, reservation, now); {
			case err == nil:
				result.Completed++
			case errors.Is(err, reservationRepo.ErrStatusConflict), errors.Is(err, reservationRepo.ErrReservationNotFound):
				result.Skipped++
			default:
				// Повторим на следующем проходе
				result.Failed++
				s.logger.Warn("Sweep: failed to complete reservation id=%d: %v", reservation.ID, err)
			}
		}

		// Неполная страница: дальше записей нет
		if len(batch) < s.batchSize {
			break
		}
	}

	if result.Completed > 0 || result.Failed > 0 {
		s.logger.Info("Sweep: completed=%d, skipped=%d, failed=%d", result.Completed, result.Skipped, result.Failed)
	}
	return result, nil
}

func (s *Sweeper) complete(ctx context.Context, reservation *domain.Reservation, now types.LocalDateTime) error {
	err := s.reservationRepo.Transition(ctx, domain.StatusTransition{
		ReservationID: reservation.ID,
		From:          domain.StatusActive,
		To:            domain.StatusCompleted,
		At:            now,
	})
	if err != nil {
		return err
	}

	s.events.Emit(ctx, domain.StatusChange{
		ReservationID: reservation.ID,
		UserID:        reservation.UserID,
		ResourceID:    reservation.ResourceID,
		From:          domain.StatusActive,
		To:            domain.StatusCompleted,
		At:            now,
	})
	return nil
}

// Runner периодический запуск Sweeper через gocron
type Runner struct {
	scheduler gocron.Scheduler
	sweeper   *Sweeper
	logger    Logger
}

// NewRunner регистрирует задачу с заданным интервалом. Первый проход выполняется сразу после Start.
// Следующий запуск не начинается, пока не закончился предыдущий.
func NewRunner(ctx context.Context, sweeper *Sweeper, interval time.Duration, logger Logger) (*Runner, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("%w: create scheduler: %w", ErrScheduler, err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := sweeper.SweepOnce(ctx); err != nil {
				logger.Error("Sweep: run failed: %v", err)
			}
		}),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("%w: register job: %w", ErrScheduler, err)
	}

	return &Runner{scheduler: scheduler, sweeper: sweeper, logger: logger}, nil
}

// Start запускает планировщик
func (r *Runner) Start() {
	r.logger.Info("Sweeper started")
	r.scheduler.Start()
}

// Stop останавливает планировщик и ждёт текущий проход
func (r *Runner) Stop() error {
	if err := r.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("%w: shutdown: %w", ErrScheduler, err)
	}
	r.logger.Info("Sweeper stopped")
	return nil
}
