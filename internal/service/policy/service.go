package policy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	policyRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-ReservationService/internal/service/policy/models"
)

// Service административная поверхность политики бронирования.
// Изменения видны следующей же проверке бронирования: политика не кэшируется.
type Service struct {
	policyRepo PolicyRepository
	txManager  TransactionManager
	validate   *validator.Validate
	logger     Logger
}

// NewService создает новый экземпляр сервиса политики
func NewService(policyRepo PolicyRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		policyRepo: policyRepo,
		txManager:  txManager,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
	}
}

// Get возвращает действующую политику; до первой правки это значения по умолчанию
func (s *Service) Get(ctx context.Context) (*domain.ReservationPolicy, error) {
	policy, err := s.load(ctx)
	if err != nil {
		s.logger.Error("GetPolicy: %v", err)
		return nil, err
	}
	return policy, nil
}

// Update применяет частичное изменение политики. Доступно только администратору.
func (s *Service) Update(ctx context.Context, principal domain.Principal, req *models.UpdatePolicyRequest) (*domain.ReservationPolicy, error) {
	s.logger.Info("UpdatePolicy: by user=%d", principal.UserID)

	// 1. Права
	if !principal.IsAdmin() {
		s.logger.Warn("UpdatePolicy: user=%d is not an administrator", principal.UserID)
		return nil, domain.ErrForbidden
	}

	// 2. Формат полей
	if err := s.validate.Struct(req); err != nil {
		s.logger.Warn("UpdatePolicy: validation failed: %v", err)
		return nil, domain.NewMalformedRequest("%s", describeValidation(err))
	}

	// 3. Чтение, применение патча и запись одной транзакцией
	var updated *domain.ReservationPolicy
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.load(txCtx)
		if err != nil {
			return err
		}

		next := current.Apply(req.ToDomainPatch())
		if err := next.Validate(); err != nil {
			return err
		}
		next.UpdatedBy = &principal.UserID

		if err := s.policyRepo.Save(txCtx, &next); err != nil {
			return fmt.Errorf("%w: failed to save policy: %w", ErrInternal, err)
		}
		updated = &next
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrMalformedRequest) {
			s.logger.Warn("UpdatePolicy: rejected: %v", err)
		} else {
			s.logger.Error("UpdatePolicy: failed: %v", err)
		}
		return nil, err
	}

	s.logger.Info("UpdatePolicy: policy updated by user=%d", principal.UserID)
	return updated, nil
}

func (s *Service) load(ctx context.Context) (*domain.ReservationPolicy, error) {
	policy, err := s.policyRepo.Get(ctx)
	if errors.Is(err, policyRepo.ErrPolicyNotFound) {
		defaults := domain.DefaultPolicy()
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get policy: %w", ErrInternal, err)
	}
	return policy, nil
}

// describeValidation превращает ошибки validator в короткое сообщение по полям
func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
