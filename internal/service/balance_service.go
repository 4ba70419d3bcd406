package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
	"contractor-payments/internal/events"
)

// DepositLimitRatio caps a deposit at this share of the client's unpaid job total.
var DepositLimitRatio = decimal.RequireFromString("0.25")

type BalanceService struct {
	ledger    domain.Ledger
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewBalanceService(ledger domain.Ledger, publisher events.Publisher, logger *slog.Logger) *BalanceService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &BalanceService{
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type Deposit struct {
	AccountID int64
	Amount    decimal.Decimal
	Balance   decimal.Decimal
	Version   int64
}

// Deposit credits a client balance. The engine never retries: a lost race is
// returned as Conflict and nothing is applied.
func (s *BalanceService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*Deposit, error) {
	s.logger.Info("Processing deposit", "account_id", accountID, "amount", amount)

	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	account, err := s.ledger.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, errors.ErrAccountNotFound) {
			return nil, errors.ErrInvalidAccount
		}
		return nil, err
	}
	if account.Role != domain.RoleClient {
		return nil, errors.ErrInvalidAccount
	}

	unpaid, err := s.ledger.SumUnpaidJobPrices(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !unpaid.IsPositive() {
		return nil, errors.ErrNoUnpaidObligations
	}

	limit := unpaid.Mul(DepositLimitRatio)
	if amount.GreaterThan(limit) {
		s.logger.Warn("Deposit above limit", "account_id", accountID, "amount", amount, "limit", limit)
		return nil, errors.ErrLimitExceeded.Detailed("maximum deposit is " + limit.StringFixed(2))
	}

	newBalance := account.Balance.Add(amount)
	version, err := s.ledger.UpdateBalance(ctx, accountID, account.Version, newBalance)
	if err != nil {
		s.logger.Error("Deposit failed", "account_id", accountID, "error", err)
		return nil, asConflict(err)
	}

	s.logger.Info("Deposit completed successfully", "account_id", accountID, "balance", newBalance, "version", version)

	publishEvent(ctx, s.publisher, s.logger, events.SubjectBalanceDeposited, events.BalanceDeposited{
		EventID:   uuid.New(),
		AccountID: accountID,
		Amount:    amount,
		Balance:   newBalance,
		Version:   version,
		At:        s.now(),
	})

	return &Deposit{
		AccountID: accountID,
		Amount:    amount,
		Balance:   newBalance,
		Version:   version,
	}, nil
}

// validateAmount accepts positive amounts with at most two fractional digits
// that fit a balance. Digit counts are checked before any rescaling, which
// would otherwise expand an extreme exponent into a huge coefficient.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}
	digits := int64(amount.NumDigits())
	exp := int64(amount.Exponent())
	if digits+exp > domain.BalanceIntegerDigits {
		return errors.ErrInvalidAmount.Detailed("amount exceeds " + domain.MaxBalance.StringFixed(2))
	}
	// With more than two fractional places the coefficient would need at
	// least -2-exp trailing zeros to be a whole number of cents.
	if exp < -2 && -2-exp >= digits {
		return errors.ErrInvalidAmount.Detailed("at most two decimal places are allowed")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return errors.ErrInvalidAmount.Detailed("at most two decimal places are allowed")
	}
	return nil
}
