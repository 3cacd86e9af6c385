package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	tableRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/table"
)

// TableCatalog каталог столов в памяти процесса
type TableCatalog struct {
	mu     sync.RWMutex
	tables map[int64]domain.Table
}

// NewTableCatalog создает каталог из списка столов
func NewTableCatalog(tables ...domain.Table) *TableCatalog {
	catalog := &TableCatalog{tables: make(map[int64]domain.Table, len(tables))}
	for _, table := range tables {
		_ = catalog.Upsert(context.Background(), &table)
	}
	return catalog
}

func (c *TableCatalog) GetByID(_ context.Context, id int64) (*domain.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	table, ok := c.tables[id]
	if !ok {
		return nil, tableRepo.ErrTableNotFound
	}
	return &table, nil
}

func (c *TableCatalog) List(_ context.Context) ([]*domain.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*domain.Table, 0, len(c.tables))
	for _, table := range c.tables {
		table := table
		result = append(result, &table)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (c *TableCatalog) Upsert(_ context.Context, table *domain.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := *table
	if existing, ok := c.tables[table.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	c.tables[table.ID] = stored

	return nil
}
