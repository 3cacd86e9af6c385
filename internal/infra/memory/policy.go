package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// PolicyStore политика бронирования в памяти процесса
type PolicyStore struct {
	mu     sync.RWMutex
	policy domain.ReservationPolicy
}

// NewPolicyStore создает хранилище с начальной политикой
func NewPolicyStore(initial domain.ReservationPolicy) *PolicyStore {
	return &PolicyStore{policy: initial}
}

func (s *PolicyStore) Get(_ context.Context) (*domain.ReservationPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policy := s.policy
	return &policy, nil
}

func (s *PolicyStore) Save(_ context.Context, policy *domain.ReservationPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy.UpdatedAt = time.Now()
	s.policy = *policy

	return nil
}
