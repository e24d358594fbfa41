package services

import (
	"context"

	"github.com/SscSPs/payledger/internal/apperrors"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
)

type healthService struct {
	checker portsrepo.HealthChecker
}

// NewHealthService reports store reachability.
func NewHealthService(checker portsrepo.HealthChecker) portssvc.HealthSvc {
	return &healthService{checker: checker}
}

func (s *healthService) Check(ctx context.Context) error {
	if s.checker == nil {
		return nil
	}
	if err := s.checker.Ping(ctx); err != nil {
		return apperrors.NewUnavailableError("store unreachable", err)
	}
	return nil
}
