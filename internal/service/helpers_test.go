package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/repository/memory"
)

const (
	clientID     int64 = 1
	contractorID int64 = 2
	jobID        int64 = 3
	contractID   int64 = 10
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newScenario seeds client C (1000), contractor T (500) and job J (200, unpaid)
// on a contract linking them.
func newScenario(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.CreateAccount(ctx, &domain.Account{ID: clientID, FirstName: "Carla", LastName: "Client", Profession: "Owner", Role: domain.RoleClient, Balance: dec("1000")}))
	require.NoError(t, s.CreateAccount(ctx, &domain.Account{ID: contractorID, FirstName: "Theo", LastName: "Trade", Profession: "Programmer", Role: domain.RoleContractor, Balance: dec("500")}))
	require.NoError(t, s.CreateContract(ctx, &domain.Contract{ID: contractID, Terms: "terms", Status: domain.ContractInProgress, ClientID: clientID, ContractorID: contractorID}))
	require.NoError(t, s.CreateJob(ctx, &domain.Job{ID: jobID, Description: "build it", Price: dec("200"), ContractID: contractID}))
	return s
}

func addJob(t *testing.T, s *memory.Store, id int64, price string) {
	t.Helper()
	require.NoError(t, s.CreateJob(context.Background(), &domain.Job{ID: id, Description: "extra", Price: dec(price), ContractID: contractID}))
}

func balanceOf(t *testing.T, s *memory.Store, id int64) (decimal.Decimal, int64) {
	t.Helper()
	a, err := s.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return a.Balance, a.Version
}

// barrierLedger holds every reader of one account until n readers have
// observed the same version, forcing the writes that follow to race.
type barrierLedger struct {
	*memory.Store
	accountID int64
	arrived   sync.WaitGroup
}

func newBarrierLedger(s *memory.Store, accountID int64, n int) *barrierLedger {
	b := &barrierLedger{Store: s, accountID: accountID}
	b.arrived.Add(n)
	return b
}

func (b *barrierLedger) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	a, err := b.Store.GetAccount(ctx, id)
	if id == b.accountID {
		b.arrived.Done()
		b.arrived.Wait()
	}
	return a, err
}

// interferingLedger lets a competing writer bump an account's version right
// before the engine commits.
type interferingLedger struct {
	*memory.Store
	accountID int64
}

func (l *interferingLedger) CommitAtomic(ctx context.Context, batch domain.Batch) error {
	a, err := l.Store.GetAccount(ctx, l.accountID)
	if err != nil {
		return err
	}
	if _, err := l.Store.UpdateBalance(ctx, l.accountID, a.Version, a.Balance.Add(dec("1"))); err != nil {
		return err
	}
	return l.Store.CommitAtomic(ctx, batch)
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []interface{}
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, event)
	return p.err
}

var errPublish = fmt.Errorf("nats: connection closed")
