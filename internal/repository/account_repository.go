package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO profiles (id, first_name, last_name, profession, type, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
	`

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		query,
		account.ID,
		account.FirstName,
		account.LastName,
		account.Profession,
		string(account.Role),
		account.Balance.StringFixed(2),
		now,
		now,
	)

	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			r.logger.Warn("Duplicate account creation attempt", "account_id", account.ID)
			return errors.ErrDuplicateEntity.Detailed("account already exists")
		}
		r.logger.Error("Failed to create account", "account_id", account.ID, "error", err)
		return errors.Storage("failed to create account", err)
	}

	account.Version = 0
	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created successfully", "account_id", account.ID, "role", account.Role)
	return nil
}

func (r *accountRepository) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	query := `
		SELECT id, first_name, last_name, profession, type, balance, version, created_at, updated_at
		FROM profiles WHERE id = $1
	`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Warn("Account not found", "account_id", id)
			return nil, errors.ErrAccountNotFound
		}
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		r.logger.Error("Failed to get account", "account_id", id, "error", err)
		return nil, errors.Storage("failed to get account", err)
	}
	return account, nil
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	var role, balanceStr string

	err := row.Scan(
		&account.ID,
		&account.FirstName,
		&account.LastName,
		&account.Profession,
		&role,
		&balanceStr,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	balance, err := parseDecimal(balanceStr, "balance")
	if err != nil {
		return nil, err
	}

	account.Role = domain.Role(role)
	account.Balance = balance
	return &account, nil
}

// UpdateBalance is the concurrency guard: the row only changes when its
// version still matches what the caller read.
func (r *accountRepository) UpdateBalance(ctx context.Context, id, expectedVersion int64, newBalance decimal.Decimal) (int64, error) {
	query := `
		UPDATE profiles
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	var version int64
	err := r.db.QueryRowContext(ctx, query, newBalance.StringFixed(2), time.Now().UTC(), id, expectedVersion).Scan(&version)
	if err != nil {
		if isNoRows(err) {
			return 0, r.missOrStale(ctx, id, expectedVersion)
		}
		switch pqCode(err) {
		case pqCheckViolation:
			r.logger.Warn("Balance would go negative", "account_id", id, "new_balance", newBalance)
			return 0, errors.ErrInsufficientBalance
		case pqNumericOverflow:
			r.logger.Warn("Balance above storage ceiling", "account_id", id, "new_balance", newBalance)
			return 0, errors.ErrLimitExceeded.Detailed("balance would exceed " + domain.MaxBalance.StringFixed(2))
		}
		r.logger.Error("Failed to update account balance", "account_id", id, "error", err)
		return 0, errors.Storage("failed to update account balance", err)
	}

	r.logger.Info("Account balance updated", "account_id", id, "new_balance", newBalance, "version", version)
	return version, nil
}

func (r *accountRepository) missOrStale(ctx context.Context, id, expectedVersion int64) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return errors.Storage("failed to check account existence", err)
	}
	if !exists {
		r.logger.Warn("No account found to update", "account_id", id)
		return errors.ErrAccountNotFound
	}
	r.logger.Warn("Stale account version", "account_id", id, "expected_version", expectedVersion)
	return errors.ErrStaleVersion.Detailed("account balance changed concurrently")
}
