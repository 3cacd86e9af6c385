package tables

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	tableRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/table"
)

// Service чтение каталога столов
type Service struct {
	tableRepo TableRepository
	logger    Logger
}

// NewService создает новый экземпляр сервиса
func NewService(tableRepo TableRepository, logger Logger) *Service {
	return &Service{tableRepo: tableRepo, logger: logger}
}

// GetByID возвращает стол по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Table, error) {
	table, err := s.tableRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, tableRepo.ErrTableNotFound) {
			s.logger.Warn("GetTable: table id=%d not found", id)
			return nil, fmt.Errorf("%w: table id=%d", domain.ErrNotFound, id)
		}
		s.logger.Error("GetTable: repository error for table id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	return table, nil
}

// List возвращает все столы по возрастанию ID
func (s *Service) List(ctx context.Context) ([]*domain.Table, error) {
	tables, err := s.tableRepo.List(ctx)
	if err != nil {
		s.logger.Error("ListTables: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return tables, nil
}
