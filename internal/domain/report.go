package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ProfessionEarnings struct {
	Profession  string          `json:"profession"`
	TotalEarned decimal.Decimal `json:"total_earned"`
}

type ClientSpend struct {
	ID        int64           `json:"id"`
	FullName  string          `json:"full_name"`
	TotalPaid decimal.Decimal `json:"total_paid"`
}

type ReportRepository interface {
	// BestProfession returns nil when no job was paid in [start, end).
	BestProfession(ctx context.Context, start, end time.Time) (*ProfessionEarnings, error)
	BestClients(ctx context.Context, start, end time.Time, limit int) ([]*ClientSpend, error)
}

// Catalog is the read-only side used by contract, job and admin queries.
type Catalog interface {
	GetContractForProfile(ctx context.Context, id, profileID int64) (*Contract, error)
	ListActiveContracts(ctx context.Context, profileID int64) ([]*Contract, error)
	ListUnpaidJobs(ctx context.Context, profileID int64) ([]*Job, error)
	ReportRepository
}
