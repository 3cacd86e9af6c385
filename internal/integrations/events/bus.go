package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// DefaultDeliveryTimeout ограничение на доставку одного события
const DefaultDeliveryTimeout = 5 * time.Second

// Bus рассылает события смены статуса и уведомления в фоне.
// Ошибки доставки логируются и не влияют на операции бронирования.
type Bus struct {
	publisher Publisher
	notifier  Notifier
	logger    Logger
	timeout   time.Duration
	newID     func() string
	wg        sync.WaitGroup
}

// Option настройка Bus
type Option func(*Bus)

// WithIDGenerator генератор идентификаторов событий
func WithIDGenerator(gen func() string) Option {
	return func(b *Bus) { b.newID = gen }
}

// WithDeliveryTimeout ограничение на доставку одного события
func WithDeliveryTimeout(timeout time.Duration) Option {
	return func(b *Bus) { b.timeout = timeout }
}

// NewBus создает новую шину событий. publisher и notifier могут быть nil.
func NewBus(publisher Publisher, notifier Notifier, logger Logger, opts ...Option) *Bus {
	b := &Bus{
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		timeout:   DefaultDeliveryTimeout,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Emit отправляет событие без ожидания доставки
func (b *Bus) Emit(ctx context.Context, change domain.StatusChange) {
	if change.EventID == "" {
		change.EventID = b.newID()
	}

	b.logger.Info("Events: reservation id=%d %q -> %q (event %s)",
		change.ReservationID, change.From, change.To, change.EventID)

	deliveryCtx := context.WithoutCancel(ctx)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.deliver(deliveryCtx, change)
	}()
}

// Wait ждёт завершения всех начатых доставок
func (b *Bus) Wait() {
	b.wg.Wait()
}

func (b *Bus) deliver(ctx context.Context, change domain.StatusChange) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if b.publisher != nil {
		if err := b.publisher.Publish(ctx, change); err != nil {
			b.logger.Error("Events: failed to publish event %s: %v", change.EventID, err)
		}
	}

	if b.notifier == nil {
		return
	}
	notification, ok := notificationFor(change)
	if !ok {
		return
	}
	if err := b.notifier.Notify(ctx, notification); err != nil {
		b.logger.Warn("Events: failed to notify user id=%d about reservation id=%d: %v",
			notification.UserID, notification.ReservationID, err)
	}
}
