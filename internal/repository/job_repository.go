package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
)

const jobColumns = `j.id, j.description, j.price, j.paid, j.payment_date, j.contract_id, j.created_at, j.updated_at`

type jobRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewJobRepository(db SQLExecutor, logger *slog.Logger) domain.JobRepository {
	return &jobRepository{
		db:     db,
		logger: logger,
	}
}

func (r *jobRepository) CreateJob(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (id, description, price, paid, payment_date, contract_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		query,
		job.ID,
		job.Description,
		job.Price.StringFixed(2),
		job.Paid,
		job.PaymentDate,
		job.ContractID,
		now,
		now,
	)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			r.logger.Warn("Duplicate job creation attempt", "job_id", job.ID)
			return errors.ErrDuplicateEntity.Detailed("job already exists")
		}
		r.logger.Error("Failed to create job", "job_id", job.ID, "error", err)
		return errors.Storage("failed to create job", err)
	}

	job.CreatedAt = now
	job.UpdatedAt = now
	r.logger.Info("Job created successfully", "job_id", job.ID, "contract_id", job.ContractID)
	return nil
}

func (r *jobRepository) GetJobWithParties(ctx context.Context, id int64) (*domain.JobWithParties, error) {
	query := `
		SELECT ` + jobColumns + `, c.client_id, c.contractor_id
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE j.id = $1
	`

	var job domain.JobWithParties
	var priceStr string
	var paymentDate sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.Description,
		&priceStr,
		&job.Paid,
		&paymentDate,
		&job.ContractID,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.ClientID,
		&job.ContractorID,
	)
	if err != nil {
		if isNoRows(err) {
			r.logger.Warn("Job not found", "job_id", id)
			return nil, errors.ErrJobNotFound
		}
		r.logger.Error("Failed to get job", "job_id", id, "error", err)
		return nil, errors.Storage("failed to get job", err)
	}

	price, err := parseDecimal(priceStr, "price")
	if err != nil {
		return nil, err
	}
	job.Price = price
	if paymentDate.Valid {
		t := paymentDate.Time
		job.PaymentDate = &t
	}
	return &job, nil
}

// SumUnpaidJobPrices covers every contract of the client, whatever its status.
func (r *jobRepository) SumUnpaidJobPrices(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(j.price), 0)
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.client_id = $1 AND j.paid = FALSE
	`

	var totalStr string
	if err := r.db.QueryRowContext(ctx, query, clientID).Scan(&totalStr); err != nil {
		r.logger.Error("Failed to sum unpaid jobs", "client_id", clientID, "error", err)
		return decimal.Zero, errors.Storage("failed to sum unpaid jobs", err)
	}
	return parseDecimal(totalStr, "unpaid total")
}

func (r *jobRepository) MarkPaid(ctx context.Context, id int64, paidAt time.Time) error {
	query := `
		UPDATE jobs
		SET paid = TRUE, payment_date = $1, updated_at = $1
		WHERE id = $2 AND paid = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, paidAt.UTC(), id)
	if err != nil {
		r.logger.Error("Failed to mark job paid", "job_id", id, "error", err)
		return errors.Storage("failed to mark job paid", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Storage("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Job already paid or missing", "job_id", id)
		return errors.ErrStaleVersion.Detailed("job payment state changed concurrently")
	}

	r.logger.Info("Job marked paid", "job_id", id, "paid_at", paidAt)
	return nil
}

func (r *jobRepository) ListUnpaidJobs(ctx context.Context, profileID int64) ([]*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE (c.client_id = $1 OR c.contractor_id = $1)
		  AND j.paid = FALSE
		  AND c.status = 'in_progress'
		ORDER BY j.id
	`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		r.logger.Error("Failed to list unpaid jobs", "profile_id", profileID, "error", err)
		return nil, errors.Storage("failed to list unpaid jobs", err)
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("failed to iterate unpaid jobs", err)
	}
	return jobs, nil
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	var priceStr string
	var paymentDate sql.NullTime

	if err := row.Scan(
		&job.ID,
		&job.Description,
		&priceStr,
		&job.Paid,
		&paymentDate,
		&job.ContractID,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, errors.Storage("failed to scan job", err)
	}

	price, err := parseDecimal(priceStr, "price")
	if err != nil {
		return nil, err
	}
	job.Price = price
	if paymentDate.Valid {
		t := paymentDate.Time
		job.PaymentDate = &t
	}
	return &job, nil
}
