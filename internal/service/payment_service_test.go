package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
	"contractor-payments/internal/events"
	"contractor-payments/internal/repository/memory"
)

func newPaymentService(ledger domain.Ledger, pub events.Publisher) *PaymentService {
	s := NewPaymentService(ledger, pub, discardLogger())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestPayJobScenario(t *testing.T) {
	ctx := context.Background()
	store := newScenario(t)
	pub := &recordingPublisher{}
	svc := newPaymentService(store, pub)

	payment, err := svc.PayJob(ctx, jobID, clientID)
	require.NoError(t, err)
	assert.True(t, payment.ClientBalance.Equal(dec("800")))
	assert.Equal(t, fixedNow, payment.PaidAt)

	clientBalance, clientVersion := balanceOf(t, store, clientID)
	contractorBalance, contractorVersion := balanceOf(t, store, contractorID)
	assert.True(t, clientBalance.Equal(dec("800")), "client balance %s", clientBalance)
	assert.True(t, contractorBalance.Equal(dec("700")), "contractor balance %s", contractorBalance)
	assert.Equal(t, int64(1), clientVersion)
	assert.Equal(t, int64(1), contractorVersion)

	job, err := store.GetJobWithParties(ctx, jobID)
	require.NoError(t, err)
	assert.True(t, job.Paid)
	require.NotNil(t, job.PaymentDate)
	assert.True(t, job.PaymentDate.Equal(fixedNow))

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, events.SubjectJobPaid, pub.subjects[0])
	ev := pub.events[0].(events.JobPaid)
	assert.Equal(t, jobID, ev.JobID)
	assert.True(t, ev.Price.Equal(dec("200")))

	// second attempt: at most once
	_, err = svc.PayJob(ctx, jobID, clientID)
	assert.ErrorIs(t, err, errors.ErrAlreadyPaid)

	clientBalance, _ = balanceOf(t, store, clientID)
	contractorBalance, _ = balanceOf(t, store, contractorID)
	assert.True(t, clientBalance.Equal(dec("800")))
	assert.True(t, contractorBalance.Equal(dec("700")))
}

func TestPayJobConservesMoney(t *testing.T) {
	ctx := context.Background()
	store := newScenario(t)
	addJob(t, store, 4, "123.45")
	addJob(t, store, 5, "0.01")
	svc := newPaymentService(store, nil)

	for _, id := range []int64{4, 5, jobID} {
		clientBefore, _ := balanceOf(t, store, clientID)
		contractorBefore, _ := balanceOf(t, store, contractorID)
		job, err := store.GetJobWithParties(ctx, id)
		require.NoError(t, err)

		_, err = svc.PayJob(ctx, id, clientID)
		require.NoError(t, err)

		clientAfter, _ := balanceOf(t, store, clientID)
		contractorAfter, _ := balanceOf(t, store, contractorID)
		assert.True(t, clientBefore.Sub(job.Price).Equal(clientAfter))
		assert.True(t, contractorBefore.Add(job.Price).Equal(contractorAfter))
		assert.True(t, clientAfter.Add(contractorAfter).Equal(clientBefore.Add(contractorBefore)))
	}
}

func TestPayJobRejections(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(t *testing.T, s *memory.Store)
		job    int64
		caller int64
		want   error
	}{
		{
			name:   "contractor cannot pay",
			job:    jobID,
			caller: contractorID,
			want:   errors.ErrForbidden,
		},
		{
			name:   "unknown caller",
			job:    jobID,
			caller: 404,
			want:   errors.ErrForbidden,
		},
		{
			name:   "unknown job",
			job:    999,
			caller: clientID,
			want:   errors.ErrJobNotFound,
		},
		{
			name: "job of another client",
			setup: func(t *testing.T, s *memory.Store) {
				ctx := context.Background()
				require.NoError(t, s.CreateAccount(ctx, &domain.Account{ID: 7, FirstName: "Other", LastName: "Client", Role: domain.RoleClient, Balance: dec("5000")}))
			},
			job:    jobID,
			caller: 7,
			want:   errors.ErrJobNotFound,
		},
		{
			name: "price above balance",
			setup: func(t *testing.T, s *memory.Store) {
				addJob(t, s, 8, "1000.01")
			},
			job:    8,
			caller: clientID,
			want:   errors.ErrInsufficientBalance,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newScenario(t)
			if tc.setup != nil {
				tc.setup(t, store)
			}
			svc := newPaymentService(store, nil)

			_, err := svc.PayJob(context.Background(), tc.job, tc.caller)
			assert.ErrorIs(t, err, tc.want)

			clientBalance, clientVersion := balanceOf(t, store, clientID)
			contractorBalance, contractorVersion := balanceOf(t, store, contractorID)
			assert.True(t, clientBalance.Equal(dec("1000")))
			assert.True(t, contractorBalance.Equal(dec("500")))
			assert.Zero(t, clientVersion)
			assert.Zero(t, contractorVersion)
		})
	}
}

func TestPayJobInsufficientBalanceGrid(t *testing.T) {
	cases := []struct {
		price string
		ok    bool
	}{
		{"999.99", true},
		{"1000", true},
		{"1000.01", false},
		{"25000", false},
	}

	for _, tc := range cases {
		t.Run(tc.price, func(t *testing.T) {
			store := newScenario(t)
			addJob(t, store, 20, tc.price)
			svc := newPaymentService(store, nil)

			_, err := svc.PayJob(context.Background(), 20, clientID)
			if tc.ok {
				require.NoError(t, err)
				balance, _ := balanceOf(t, store, clientID)
				assert.False(t, balance.IsNegative())
				return
			}
			assert.ErrorIs(t, err, errors.ErrInsufficientBalance)
			balance, version := balanceOf(t, store, clientID)
			assert.True(t, balance.Equal(dec("1000")))
			assert.Zero(t, version)
		})
	}
}

func TestPayJobConflictLeavesNothingApplied(t *testing.T) {
	ctx := context.Background()
	store := newScenario(t)
	svc := newPaymentService(&interferingLedger{Store: store, accountID: contractorID}, nil)

	_, err := svc.PayJob(ctx, jobID, clientID)
	require.ErrorIs(t, err, errors.ErrConflict)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.True(t, appErr.Retryable())

	clientBalance, clientVersion := balanceOf(t, store, clientID)
	assert.True(t, clientBalance.Equal(dec("1000")))
	assert.Zero(t, clientVersion)

	// only the competing writer's +1 landed on the contractor
	contractorBalance, contractorVersion := balanceOf(t, store, contractorID)
	assert.True(t, contractorBalance.Equal(dec("501")))
	assert.Equal(t, int64(1), contractorVersion)

	job, err := store.GetJobWithParties(ctx, jobID)
	require.NoError(t, err)
	assert.False(t, job.Paid)
	assert.Nil(t, job.PaymentDate)
}

func TestPayJobConcurrentPaymentsSameClient(t *testing.T) {
	ctx := context.Background()
	store := newScenario(t)
	addJob(t, store, 4, "300")
	svc := newPaymentService(newBarrierLedger(store, clientID, 2), nil)

	var g errgroup.Group
	results := make([]error, 2)
	for i, id := range []int64{jobID, 4} {
		g.Go(func() error {
			_, err := svc.PayJob(ctx, id, clientID)
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var paid []int64
	for i, err := range results {
		if err == nil {
			paid = append(paid, []int64{jobID, 4}[i])
			continue
		}
		assert.ErrorIs(t, err, errors.ErrConflict)
	}
	require.Len(t, paid, 1)

	job, err := store.GetJobWithParties(ctx, paid[0])
	require.NoError(t, err)

	clientBalance, clientVersion := balanceOf(t, store, clientID)
	contractorBalance, _ := balanceOf(t, store, contractorID)
	assert.True(t, clientBalance.Equal(dec("1000").Sub(job.Price)))
	assert.True(t, contractorBalance.Equal(dec("500").Add(job.Price)))
	assert.Equal(t, int64(1), clientVersion)
}

func TestPayJobPublishFailureDoesNotFailPayment(t *testing.T) {
	store := newScenario(t)
	svc := newPaymentService(store, &recordingPublisher{err: errPublish})

	_, err := svc.PayJob(context.Background(), jobID, clientID)
	require.NoError(t, err)

	job, err := store.GetJobWithParties(context.Background(), jobID)
	require.NoError(t, err)
	assert.True(t, job.Paid)
}
