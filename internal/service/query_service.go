package service

import (
	"context"
	"log/slog"
	"time"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
)

const (
	defaultBestClientsLimit = 2
	// MaxBestClientsLimit bounds the best clients ranking.
	MaxBestClientsLimit = 100
)

// QueryService serves the read-only contract, job and admin views.
type QueryService struct {
	catalog domain.Catalog
	logger  *slog.Logger
}

func NewQueryService(catalog domain.Catalog, logger *slog.Logger) *QueryService {
	return &QueryService{
		catalog: catalog,
		logger:  logger,
	}
}

func (s *QueryService) GetContract(ctx context.Context, id, profileID int64) (*domain.Contract, error) {
	return s.catalog.GetContractForProfile(ctx, id, profileID)
}

func (s *QueryService) ListContracts(ctx context.Context, profileID int64) ([]*domain.Contract, error) {
	return s.catalog.ListActiveContracts(ctx, profileID)
}

func (s *QueryService) ListUnpaidJobs(ctx context.Context, profileID int64) ([]*domain.Job, error) {
	return s.catalog.ListUnpaidJobs(ctx, profileID)
}

func (s *QueryService) BestProfession(ctx context.Context, start, end time.Time) (*domain.ProfessionEarnings, error) {
	if !start.Before(end) {
		return nil, errors.ErrInvalidDateRange
	}
	return s.catalog.BestProfession(ctx, start, end)
}

// BestClients falls back to two clients when limit is not positive.
func (s *QueryService) BestClients(ctx context.Context, start, end time.Time, limit int) ([]*domain.ClientSpend, error) {
	if !start.Before(end) {
		return nil, errors.ErrInvalidDateRange
	}
	if limit <= 0 {
		limit = defaultBestClientsLimit
	}
	if limit > MaxBestClientsLimit {
		return nil, errors.ErrInvalidLimit
	}
	s.logger.Debug("Computing best clients", "start", start, "end", end, "limit", limit)
	return s.catalog.BestClients(ctx, start, end, limit)
}
