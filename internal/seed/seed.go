// Package seed loads demo profiles, contracts and jobs through the
// onboarding interface of a store.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"contractor-payments/internal/domain"
)

// Fixtures is a self-consistent set of records. Contracts must reference
// accounts and jobs must reference contracts listed before them.
type Fixtures struct {
	Accounts  []*domain.Account
	Contracts []*domain.Contract
	Jobs      []*domain.Job
}

// Apply creates every fixture in dependency order and stops at the first failure.
func Apply(ctx context.Context, s domain.Seeder, f Fixtures, logger *slog.Logger) error {
	for _, a := range f.Accounts {
		if err := s.CreateAccount(ctx, a); err != nil {
			return fmt.Errorf("seed account %d: %w", a.ID, err)
		}
	}
	for _, c := range f.Contracts {
		if err := s.CreateContract(ctx, c); err != nil {
			return fmt.Errorf("seed contract %d: %w", c.ID, err)
		}
	}
	for _, j := range f.Jobs {
		if err := s.CreateJob(ctx, j); err != nil {
			return fmt.Errorf("seed job %d: %w", j.ID, err)
		}
	}

	logger.Info("Seed data applied",
		"accounts", len(f.Accounts),
		"contracts", len(f.Contracts),
		"jobs", len(f.Jobs),
	)
	return nil
}

// Demo returns a small marketplace: four clients, four contractors, nine
// contracts and a mix of paid and unpaid jobs.
func Demo() Fixtures {
	m := decimal.RequireFromString
	paidAt := func(s string) *time.Time {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			panic(err)
		}
		return &t
	}

	return Fixtures{
		Accounts: []*domain.Account{
			{ID: 1, FirstName: "Harry", LastName: "Potter", Profession: "Wizard", Role: domain.RoleClient, Balance: m("1150")},
			{ID: 2, FirstName: "Mr", LastName: "Robot", Profession: "Hacker", Role: domain.RoleClient, Balance: m("231.11")},
			{ID: 3, FirstName: "John", LastName: "Snow", Profession: "Knows nothing", Role: domain.RoleClient, Balance: m("451.3")},
			{ID: 4, FirstName: "Ash", LastName: "Kethcum", Profession: "Pokemon master", Role: domain.RoleClient, Balance: m("1.3")},
			{ID: 5, FirstName: "John", LastName: "Lenon", Profession: "Musician", Role: domain.RoleContractor, Balance: m("64")},
			{ID: 6, FirstName: "Linus", LastName: "Torvalds", Profession: "Programmer", Role: domain.RoleContractor, Balance: m("1214")},
			{ID: 7, FirstName: "Alan", LastName: "Turing", Profession: "Programmer", Role: domain.RoleContractor, Balance: m("22")},
			{ID: 8, FirstName: "Aragorn", LastName: "II Elessar Telcontarvalds", Profession: "Fighter", Role: domain.RoleContractor, Balance: m("314")},
		},
		Contracts: []*domain.Contract{
			{ID: 1, Terms: "bla bla bla", Status: domain.ContractTerminated, ClientID: 1, ContractorID: 5},
			{ID: 2, Terms: "bla bla bla", Status: domain.ContractInProgress, ClientID: 1, ContractorID: 6},
			{ID: 3, Terms: "bla bla bla", Status: domain.ContractInProgress, ClientID: 2, ContractorID: 6},
			{ID: 4, Terms: "bla bla bla", Status: domain.ContractInProgress, ClientID: 2, ContractorID: 7},
			{ID: 5, Terms: "bla bla bla", Status: domain.ContractNew, ClientID: 3, ContractorID: 8},
			{ID: 6, Terms: "bla bla bla", Status: domain.ContractInProgress, ClientID: 3, ContractorID: 7},
			{ID: 7, Terms: "bla bla bla", Status: domain.ContractInProgress, ClientID: 4, ContractorID: 7},
			{ID: 8, Terms: "bla bla bla", Status: domain.ContractInProgress, ClientID: 4, ContractorID: 6},
			{ID: 9, Terms: "bla bla bla", Status: domain.ContractInProgress, ClientID: 4, ContractorID: 8},
		},
		Jobs: []*domain.Job{
			{ID: 1, Description: "work", Price: m("200"), ContractID: 1},
			{ID: 2, Description: "work", Price: m("201"), ContractID: 2},
			{ID: 3, Description: "work", Price: m("202"), ContractID: 3},
			{ID: 4, Description: "work", Price: m("200"), ContractID: 4},
			{ID: 5, Description: "work", Price: m("200"), ContractID: 7},
			{ID: 6, Description: "work", Price: m("2020"), Paid: true, PaymentDate: paidAt("2020-08-15T19:11:26Z"), ContractID: 7},
			{ID: 7, Description: "work", Price: m("200"), Paid: true, PaymentDate: paidAt("2020-08-15T19:11:26Z"), ContractID: 2},
			{ID: 8, Description: "work", Price: m("200"), Paid: true, PaymentDate: paidAt("2020-08-16T19:11:26Z"), ContractID: 3},
			{ID: 9, Description: "work", Price: m("200"), Paid: true, PaymentDate: paidAt("2020-08-17T19:11:26Z"), ContractID: 1},
			{ID: 10, Description: "work", Price: m("200"), Paid: true, PaymentDate: paidAt("2020-08-17T19:11:26Z"), ContractID: 5},
			{ID: 11, Description: "work", Price: m("21"), Paid: true, PaymentDate: paidAt("2020-08-10T19:11:26Z"), ContractID: 1},
			{ID: 12, Description: "work", Price: m("21"), Paid: true, PaymentDate: paidAt("2020-08-15T19:11:26Z"), ContractID: 2},
			{ID: 13, Description: "work", Price: m("121"), Paid: true, PaymentDate: paidAt("2020-08-15T19:11:26Z"), ContractID: 3},
			{ID: 14, Description: "work", Price: m("121"), Paid: true, PaymentDate: paidAt("2020-08-14T23:11:26Z"), ContractID: 3},
		},
	}
}
