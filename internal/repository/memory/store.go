// Package memory provides a mutex-owned in-memory implementation of the
// ledger, catalog and seeder ports. Safe for concurrent access. Intended for
// unit tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
)

var (
	_ domain.Ledger  = (*Store)(nil)
	_ domain.Catalog = (*Store)(nil)
	_ domain.Seeder  = (*Store)(nil)
)

type Store struct {
	mu sync.RWMutex

	accounts  map[int64]*domain.Account
	contracts map[int64]*domain.Contract
	jobs      map[int64]*domain.Job

	now func() time.Time
}

func New() *Store {
	return &Store{
		accounts:  make(map[int64]*domain.Account),
		contracts: make(map[int64]*domain.Contract),
		jobs:      make(map[int64]*domain.Job),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ──────────────────────────────────────────────────
// Seeder
// ──────────────────────────────────────────────────

func (m *Store) CreateAccount(_ context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.ID]; ok {
		return errors.ErrDuplicateEntity.Detailed("account already exists")
	}
	now := m.now()
	account.Version = 0
	account.CreatedAt = now
	account.UpdatedAt = now
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *Store) CreateContract(_ context.Context, contract *domain.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.contracts[contract.ID]; ok {
		return errors.ErrDuplicateEntity.Detailed("contract already exists")
	}
	if _, ok := m.accounts[contract.ClientID]; !ok {
		return errors.ErrAccountNotFound.Detailed("contract client does not exist")
	}
	if _, ok := m.accounts[contract.ContractorID]; !ok {
		return errors.ErrAccountNotFound.Detailed("contract contractor does not exist")
	}
	now := m.now()
	contract.CreatedAt = now
	contract.UpdatedAt = now
	cp := *contract
	m.contracts[contract.ID] = &cp
	return nil
}

func (m *Store) CreateJob(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[job.ID]; ok {
		return errors.ErrDuplicateEntity.Detailed("job already exists")
	}
	if _, ok := m.contracts[job.ContractID]; !ok {
		return errors.ErrContractNotFound
	}
	now := m.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	m.jobs[job.ID] = copyJob(job)
	return nil
}

// ──────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────

func (m *Store) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Storage("context done", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Store) GetJobWithParties(ctx context.Context, jobID int64) (*domain.JobWithParties, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Storage("context done", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return nil, errors.ErrJobNotFound
	}
	c := m.contracts[j.ContractID]
	return &domain.JobWithParties{
		Job:          *copyJob(j),
		ClientID:     c.ClientID,
		ContractorID: c.ContractorID,
	}, nil
}

func (m *Store) SumUnpaidJobPrices(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, errors.Storage("context done", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := decimal.Zero
	for _, j := range m.jobs {
		if j.Paid {
			continue
		}
		if c := m.contracts[j.ContractID]; c.ClientID == clientID {
			total = total.Add(j.Price)
		}
	}
	return total, nil
}

func (m *Store) UpdateBalance(ctx context.Context, id, expectedVersion int64, newBalance decimal.Decimal) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.Storage("context done", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a, err := m.guard(id, expectedVersion, newBalance)
	if err != nil {
		return 0, err
	}
	m.apply(a, newBalance)
	return a.Version, nil
}

// CommitAtomic validates every write against a staged view before touching
// shared state, so a failing write leaves nothing applied.
func (m *Store) CommitAtomic(ctx context.Context, batch domain.Batch) error {
	if err := ctx.Err(); err != nil {
		return errors.Storage("context done", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := make(map[int64]int64, len(batch.Balances))
	for _, w := range batch.Balances {
		a, ok := m.accounts[w.AccountID]
		if !ok {
			return errors.ErrAccountNotFound
		}
		version, seen := staged[w.AccountID]
		if !seen {
			version = a.Version
		}
		if version != w.ExpectedVersion {
			return errors.ErrStaleVersion.Detailed("account balance changed concurrently")
		}
		if w.NewBalance.IsNegative() {
			return errors.ErrInsufficientBalance
		}
		if w.NewBalance.GreaterThan(domain.MaxBalance) {
			return errBalanceCeiling
		}
		staged[w.AccountID] = version + 1
	}
	if batch.JobPaid != nil {
		j, ok := m.jobs[batch.JobPaid.JobID]
		if !ok || j.Paid {
			return errors.ErrStaleVersion.Detailed("job payment state changed concurrently")
		}
	}

	for _, w := range batch.Balances {
		m.apply(m.accounts[w.AccountID], w.NewBalance)
	}
	if batch.JobPaid != nil {
		j := m.jobs[batch.JobPaid.JobID]
		paidAt := batch.JobPaid.PaidAt.UTC()
		j.Paid = true
		j.PaymentDate = &paidAt
		j.UpdatedAt = paidAt
	}
	return nil
}

var errBalanceCeiling = errors.ErrLimitExceeded.Detailed("balance would exceed " + domain.MaxBalance.StringFixed(2))

func (m *Store) guard(id, expectedVersion int64, newBalance decimal.Decimal) (*domain.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	if a.Version != expectedVersion {
		return nil, errors.ErrStaleVersion.Detailed("account balance changed concurrently")
	}
	if newBalance.IsNegative() {
		return nil, errors.ErrInsufficientBalance
	}
	if newBalance.GreaterThan(domain.MaxBalance) {
		return nil, errBalanceCeiling
	}
	return a, nil
}

func (m *Store) apply(a *domain.Account, newBalance decimal.Decimal) {
	a.Balance = newBalance.Round(2)
	a.Version++
	a.UpdatedAt = m.now()
}

// ──────────────────────────────────────────────────
// Catalog
// ──────────────────────────────────────────────────

func (m *Store) GetContractForProfile(_ context.Context, id, profileID int64) (*domain.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.contracts[id]
	if !ok || !c.HasParty(profileID) {
		return nil, errors.ErrContractNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *Store) ListActiveContracts(_ context.Context, profileID int64) ([]*domain.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Contract, 0)
	for _, c := range m.contracts {
		if c.HasParty(profileID) && c.Status != domain.ContractTerminated {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) ListUnpaidJobs(_ context.Context, profileID int64) ([]*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Job, 0)
	for _, j := range m.jobs {
		c := m.contracts[j.ContractID]
		if !j.Paid && c.Status == domain.ContractInProgress && c.HasParty(profileID) {
			out = append(out, copyJob(j))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (m *Store) BestProfession(_ context.Context, start, end time.Time) (*domain.ProfessionEarnings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := make(map[string]decimal.Decimal)
	for _, j := range m.paidBetween(start, end) {
		p := m.accounts[m.contracts[j.ContractID].ContractorID].Profession
		totals[p] = totals[p].Add(j.Price)
	}

	var best *domain.ProfessionEarnings
	for profession, total := range totals {
		if best == nil || total.GreaterThan(best.TotalEarned) ||
			(total.Equal(best.TotalEarned) && profession < best.Profession) {
			best = &domain.ProfessionEarnings{Profession: profession, TotalEarned: total}
		}
	}
	return best, nil
}

func (m *Store) BestClients(_ context.Context, start, end time.Time, limit int) ([]*domain.ClientSpend, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byClient := make(map[int64]*domain.ClientSpend)
	for _, j := range m.paidBetween(start, end) {
		id := m.contracts[j.ContractID].ClientID
		spend, ok := byClient[id]
		if !ok {
			spend = &domain.ClientSpend{ID: id, FullName: m.accounts[id].FullName()}
			byClient[id] = spend
		}
		spend.TotalPaid = spend.TotalPaid.Add(j.Price)
	}

	out := make([]*domain.ClientSpend, 0, len(byClient))
	for _, spend := range byClient {
		out = append(out, spend)
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].TotalPaid.Equal(out[k].TotalPaid) {
			return out[i].TotalPaid.GreaterThan(out[k].TotalPaid)
		}
		return out[i].ID < out[k].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Store) paidBetween(start, end time.Time) []*domain.Job {
	var out []*domain.Job
	for _, j := range m.jobs {
		if j.Paid && j.PaymentDate != nil && !j.PaymentDate.Before(start) && j.PaymentDate.Before(end) {
			out = append(out, j)
		}
	}
	return out
}

func copyJob(j *domain.Job) *domain.Job {
	cp := *j
	if j.PaymentDate != nil {
		t := *j.PaymentDate
		cp.PaymentDate = &t
	}
	return &cp
}
