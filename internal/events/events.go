// Package events publishes notifications about committed payments. Events are
// emitted only after the store has committed; a failed publish never undoes
// or fails the operation that produced it.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SubjectJobPaid          = "payments.job_paid"
	SubjectBalanceDeposited = "payments.balance_deposited"
)

// Publisher delivers an event to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, event interface{}) error
}

type JobPaid struct {
	EventID      uuid.UUID       `json:"event_id"`
	JobID        int64           `json:"job_id"`
	ClientID     int64           `json:"client_id"`
	ContractorID int64           `json:"contractor_id"`
	Price        decimal.Decimal `json:"price"`
	PaidAt       time.Time       `json:"paid_at"`
}

type BalanceDeposited struct {
	EventID   uuid.UUID       `json:"event_id"`
	AccountID int64           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	At        time.Time       `json:"at"`
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
