package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceWrite is a version-guarded balance update.
type BalanceWrite struct {
	AccountID       int64
	ExpectedVersion int64
	NewBalance      decimal.Decimal
}

// JobPaidWrite marks a job paid at the given time.
type JobPaidWrite struct {
	JobID  int64
	PaidAt time.Time
}

// Batch groups writes that must commit together or not at all.
type Batch struct {
	Balances []BalanceWrite
	JobPaid  *JobPaidWrite
}

// Ledger is the persistence port of the payment engine.
type Ledger interface {
	GetAccount(ctx context.Context, id int64) (*Account, error)
	GetJobWithParties(ctx context.Context, jobID int64) (*JobWithParties, error)
	SumUnpaidJobPrices(ctx context.Context, clientID int64) (decimal.Decimal, error)
	UpdateBalance(ctx context.Context, id, expectedVersion int64, newBalance decimal.Decimal) (int64, error)
	// CommitAtomic applies every write of the batch or none of them. A stale
	// version or an already paid job aborts the whole batch.
	CommitAtomic(ctx context.Context, batch Batch) error
}

// Seeder is implemented by stores that onboarding flows can populate.
type Seeder interface {
	CreateAccount(ctx context.Context, account *Account) error
	CreateContract(ctx context.Context, contract *Contract) error
	CreateJob(ctx context.Context, job *Job) error
}
