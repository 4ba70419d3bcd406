package service

import (
	"context"
	"log/slog"
	"strconv"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
)

type AccountService struct {
	ledger domain.Ledger
	logger *slog.Logger
}

func NewAccountService(ledger domain.Ledger, logger *slog.Logger) *AccountService {
	return &AccountService{
		ledger: ledger,
		logger: logger,
	}
}

func (s *AccountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	s.logger.Info("Getting account", "account_id", accountID)

	id, err := strconv.ParseInt(accountID, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.ErrInvalidAccountID
	}

	return s.ledger.GetAccount(ctx, id)
}
