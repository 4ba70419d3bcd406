package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceIntegerDigits is the integer precision of a NUMERIC(12,2) balance.
const BalanceIntegerDigits = 10

// MaxBalance is the largest balance storage can hold.
var MaxBalance = decimal.RequireFromString("9999999999.99")

type Role string

const (
	RoleClient     Role = "client"
	RoleContractor Role = "contractor"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleContractor
}

// Account is a profile acting as either a client or a contractor. Version is
// bumped on every balance write and only serves the optimistic guard.
type Account struct {
	ID         int64           `json:"id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Profession string          `json:"profession"`
	Role       Role            `json:"type"`
	Balance    decimal.Decimal `json:"balance"`
	Version    int64           `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id int64) (*Account, error)
	// UpdateBalance writes newBalance only if the stored version still equals
	// expectedVersion, and returns the new version.
	UpdateBalance(ctx context.Context, id, expectedVersion int64, newBalance decimal.Decimal) (int64, error)
}
