package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
)

// Ensure Store implements the engine and query ports at compile time.
var (
	_ domain.Ledger  = (*Store)(nil)
	_ domain.Catalog = (*Store)(nil)
	_ domain.Seeder  = (*Store)(nil)
)

// Store provides a unified interface for all repository operations with transaction support
type Store struct {
	executor SQLExecutor
	logger   *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

func (s *Store) Account() domain.AccountRepository {
	return NewAccountRepository(s.executor, s.logger)
}

func (s *Store) Contract() domain.ContractRepository {
	return NewContractRepository(s.executor, s.logger)
}

func (s *Store) Job() domain.JobRepository {
	return NewJobRepository(s.executor, s.logger)
}

func (s *Store) Report() domain.ReportRepository {
	return NewReportRepository(s.executor, s.logger)
}

// WithTransaction executes a function within a database transaction
func (s *Store) WithTransaction(ctx context.Context, fn func(*Store) error) error {
	// Only sql.DB can begin transactions
	db, ok := s.executor.(*sql.DB)
	if !ok {
		return errors.NewAppError(errors.InternalError, "cannot begin a transaction inside a transaction")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("failed to begin transaction", err)
	}

	txStore := &Store{
		executor: &TxWrapper{Tx: tx},
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("failed to commit transaction", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return s.Account().GetAccount(ctx, id)
}

func (s *Store) GetJobWithParties(ctx context.Context, jobID int64) (*domain.JobWithParties, error) {
	return s.Job().GetJobWithParties(ctx, jobID)
}

func (s *Store) SumUnpaidJobPrices(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	return s.Job().SumUnpaidJobPrices(ctx, clientID)
}

func (s *Store) UpdateBalance(ctx context.Context, id, expectedVersion int64, newBalance decimal.Decimal) (int64, error) {
	return s.Account().UpdateBalance(ctx, id, expectedVersion, newBalance)
}

// CommitAtomic runs every write of the batch inside one transaction; the
// first failing guard rolls all of them back.
func (s *Store) CommitAtomic(ctx context.Context, batch domain.Batch) error {
	return s.WithTransaction(ctx, func(tx *Store) error {
		for _, w := range batch.Balances {
			if _, err := tx.Account().UpdateBalance(ctx, w.AccountID, w.ExpectedVersion, w.NewBalance); err != nil {
				return err
			}
		}
		if batch.JobPaid != nil {
			if err := tx.Job().MarkPaid(ctx, batch.JobPaid.JobID, batch.JobPaid.PaidAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetContractForProfile(ctx context.Context, id, profileID int64) (*domain.Contract, error) {
	return s.Contract().GetContractForProfile(ctx, id, profileID)
}

func (s *Store) ListActiveContracts(ctx context.Context, profileID int64) ([]*domain.Contract, error) {
	return s.Contract().ListActiveContracts(ctx, profileID)
}

func (s *Store) ListUnpaidJobs(ctx context.Context, profileID int64) ([]*domain.Job, error) {
	return s.Job().ListUnpaidJobs(ctx, profileID)
}

func (s *Store) BestProfession(ctx context.Context, start, end time.Time) (*domain.ProfessionEarnings, error) {
	return s.Report().BestProfession(ctx, start, end)
}

func (s *Store) BestClients(ctx context.Context, start, end time.Time, limit int) ([]*domain.ClientSpend, error) {
	return s.Report().BestClients(ctx, start, end, limit)
}

func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	return s.Account().CreateAccount(ctx, account)
}

func (s *Store) CreateContract(ctx context.Context, contract *domain.Contract) error {
	return s.Contract().CreateContract(ctx, contract)
}

func (s *Store) CreateJob(ctx context.Context, job *domain.Job) error {
	return s.Job().CreateJob(ctx, job)
}
