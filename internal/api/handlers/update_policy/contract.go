package update_policy

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/policy/models"
)

type PolicyService interface {
	Update(ctx context.Context, principal domain.Principal, req *models.UpdatePolicyRequest) (*domain.ReservationPolicy, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
