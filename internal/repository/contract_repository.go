package repository

import (
	"context"
	"log/slog"
	"time"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
)

const contractColumns = `id, terms, status, client_id, contractor_id, created_at, updated_at`

type contractRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewContractRepository(db SQLExecutor, logger *slog.Logger) domain.ContractRepository {
	return &contractRepository{
		db:     db,
		logger: logger,
	}
}

func (r *contractRepository) CreateContract(ctx context.Context, contract *domain.Contract) error {
	query := `
		INSERT INTO contracts (id, terms, status, client_id, contractor_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		query,
		contract.ID,
		contract.Terms,
		string(contract.Status),
		contract.ClientID,
		contract.ContractorID,
		now,
		now,
	)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			r.logger.Warn("Duplicate contract creation attempt", "contract_id", contract.ID)
			return errors.ErrDuplicateEntity.Detailed("contract already exists")
		}
		r.logger.Error("Failed to create contract", "contract_id", contract.ID, "error", err)
		return errors.Storage("failed to create contract", err)
	}

	contract.CreatedAt = now
	contract.UpdatedAt = now
	r.logger.Info("Contract created successfully", "contract_id", contract.ID)
	return nil
}

func (r *contractRepository) GetContractForProfile(ctx context.Context, id, profileID int64) (*domain.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE id = $1 AND (client_id = $2 OR contractor_id = $2)
	`

	contract, err := scanContract(r.db.QueryRowContext(ctx, query, id, profileID))
	if err != nil {
		if isNoRows(err) {
			return nil, errors.ErrContractNotFound
		}
		r.logger.Error("Failed to get contract", "contract_id", id, "error", err)
		return nil, errors.Storage("failed to get contract", err)
	}
	return contract, nil
}

func (r *contractRepository) ListActiveContracts(ctx context.Context, profileID int64) ([]*domain.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE (client_id = $1 OR contractor_id = $1) AND status <> 'terminated'
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		r.logger.Error("Failed to list contracts", "profile_id", profileID, "error", err)
		return nil, errors.Storage("failed to list contracts", err)
	}
	defer rows.Close()

	contracts := make([]*domain.Contract, 0)
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, errors.Storage("failed to scan contract", err)
		}
		contracts = append(contracts, contract)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("failed to iterate contracts", err)
	}
	return contracts, nil
}

func scanContract(row rowScanner) (*domain.Contract, error) {
	var contract domain.Contract
	var status string

	if err := row.Scan(
		&contract.ID,
		&contract.Terms,
		&status,
		&contract.ClientID,
		&contract.ContractorID,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	); err != nil {
		return nil, err
	}
	contract.Status = domain.ContractStatus(status)
	return &contract, nil
}
