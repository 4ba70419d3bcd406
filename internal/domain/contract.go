package domain

import (
	"context"
	"time"
)

type ContractStatus string

const (
	ContractNew        ContractStatus = "new"
	ContractInProgress ContractStatus = "in_progress"
	ContractTerminated ContractStatus = "terminated"
)

type Contract struct {
	ID           int64          `json:"id"`
	Terms        string         `json:"terms"`
	Status       ContractStatus `json:"status"`
	ClientID     int64          `json:"client_id"`
	ContractorID int64          `json:"contractor_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// HasParty reports whether the profile is the client or the contractor.
func (c *Contract) HasParty(profileID int64) bool {
	return c.ClientID == profileID || c.ContractorID == profileID
}

type ContractRepository interface {
	CreateContract(ctx context.Context, contract *Contract) error
	// GetContractForProfile returns the contract only when profileID is a party to it.
	GetContractForProfile(ctx context.Context, id, profileID int64) (*Contract, error)
	ListActiveContracts(ctx context.Context, profileID int64) ([]*Contract, error)
}
