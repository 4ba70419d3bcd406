package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
	"contractor-payments/internal/events"
)

type PaymentService struct {
	ledger    domain.Ledger
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewPaymentService(ledger domain.Ledger, publisher events.Publisher, logger *slog.Logger) *PaymentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &PaymentService{
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Payment is the receipt of a successful PayJob.
type Payment struct {
	JobID         int64
	ClientID      int64
	ContractorID  int64
	Price         decimal.Decimal
	PaidAt        time.Time
	ClientBalance decimal.Decimal
}

// PayJob moves the job price from the calling client to the contractor and
// marks the job paid, all in one atomic commit. Every business rule is checked
// before anything is written.
func (s *PaymentService) PayJob(ctx context.Context, jobID, callerID int64) (*Payment, error) {
	s.logger.Info("Processing job payment", "job_id", jobID, "caller_id", callerID)

	caller, err := s.ledger.GetAccount(ctx, callerID)
	if err != nil {
		if errors.Is(err, errors.ErrAccountNotFound) {
			return nil, errors.ErrForbidden
		}
		return nil, err
	}
	if caller.Role != domain.RoleClient {
		s.logger.Warn("Non-client attempted job payment", "job_id", jobID, "caller_id", callerID, "role", caller.Role)
		return nil, errors.ErrForbidden
	}

	job, err := s.ledger.GetJobWithParties(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != caller.ID || job.ContractorID == caller.ID {
		s.logger.Warn("Job does not belong to caller", "job_id", jobID, "caller_id", callerID)
		return nil, errors.ErrJobNotFound
	}
	if job.Paid {
		return nil, errors.ErrAlreadyPaid
	}
	if caller.Balance.LessThan(job.Price) {
		return nil, errors.ErrInsufficientBalance
	}

	contractor, err := s.ledger.GetAccount(ctx, job.ContractorID)
	if err != nil {
		return nil, err
	}

	paidAt := s.now()
	clientBalance := caller.Balance.Sub(job.Price)
	batch := domain.Batch{
		Balances: []domain.BalanceWrite{
			{AccountID: caller.ID, ExpectedVersion: caller.Version, NewBalance: clientBalance},
			{AccountID: contractor.ID, ExpectedVersion: contractor.Version, NewBalance: contractor.Balance.Add(job.Price)},
		},
		JobPaid: &domain.JobPaidWrite{JobID: job.ID, PaidAt: paidAt},
	}

	if err := s.ledger.CommitAtomic(ctx, batch); err != nil {
		s.logger.Error("Job payment failed", "job_id", jobID, "error", err)
		return nil, asConflict(err)
	}

	s.logger.Info("Job paid successfully",
		"job_id", job.ID,
		"client_id", caller.ID,
		"contractor_id", contractor.ID,
		"price", job.Price)

	publishEvent(ctx, s.publisher, s.logger, events.SubjectJobPaid, events.JobPaid{
		EventID:      uuid.New(),
		JobID:        job.ID,
		ClientID:     caller.ID,
		ContractorID: contractor.ID,
		Price:        job.Price,
		PaidAt:       paidAt,
	})

	return &Payment{
		JobID:         job.ID,
		ClientID:      caller.ID,
		ContractorID:  contractor.ID,
		Price:         job.Price,
		PaidAt:        paidAt,
		ClientBalance: clientBalance,
	}, nil
}

// asConflict reports a lost race as Conflict; other errors pass through.
func asConflict(err error) error {
	if errors.Is(err, errors.ErrStaleVersion) {
		appErr, _ := errors.As(err)
		return errors.ErrConflict.Detailed(appErr.Details)
	}
	return err
}
