package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Job struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Paid        bool            `json:"paid"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	ContractID  int64           `json:"contract_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// JobWithParties is a job joined with the two accounts of its contract.
type JobWithParties struct {
	Job
	ClientID     int64
	ContractorID int64
}

type JobRepository interface {
	CreateJob(ctx context.Context, job *Job) error
	GetJobWithParties(ctx context.Context, id int64) (*JobWithParties, error)
	SumUnpaidJobPrices(ctx context.Context, clientID int64) (decimal.Decimal, error)
	// MarkPaid flips paid to true only if it is still false.
	MarkPaid(ctx context.Context, id int64, paidAt time.Time) error
	ListUnpaidJobs(ctx context.Context, profileID int64) ([]*Job, error)
}
