package repository

import (
	"database/sql"
	stderrors "errors"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"contractor-payments/internal/errors"
)

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
	pqNumericOverflow = "22003"
)

func isNoRows(err error) bool {
	return stderrors.Is(err, sql.ErrNoRows)
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func parseDecimal(raw, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.NewAppErrorf(errors.InternalError, "failed to parse %s", field).WithDetails(err.Error())
	}
	return d, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}
