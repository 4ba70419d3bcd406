package repository

import (
	"context"
	"log/slog"
	"time"

	"contractor-payments/internal/domain"
	"contractor-payments/internal/errors"
)

type reportRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewReportRepository(db SQLExecutor, logger *slog.Logger) domain.ReportRepository {
	return &reportRepository{
		db:     db,
		logger: logger,
	}
}

func (r *reportRepository) BestProfession(ctx context.Context, start, end time.Time) (*domain.ProfessionEarnings, error) {
	query := `
		SELECT p.profession, SUM(j.price) AS total_earned
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid = TRUE AND j.payment_date >= $1 AND j.payment_date < $2
		GROUP BY p.profession
		ORDER BY total_earned DESC, p.profession
		LIMIT 1
	`

	var result domain.ProfessionEarnings
	var totalStr string
	err := r.db.QueryRowContext(ctx, query, start.UTC(), end.UTC()).Scan(&result.Profession, &totalStr)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error("Failed to compute best profession", "error", err)
		return nil, errors.Storage("failed to compute best profession", err)
	}

	total, err := parseDecimal(totalStr, "total earned")
	if err != nil {
		return nil, err
	}
	result.TotalEarned = total
	return &result, nil
}

func (r *reportRepository) BestClients(ctx context.Context, start, end time.Time, limit int) ([]*domain.ClientSpend, error) {
	query := `
		SELECT p.id, p.first_name || ' ' || p.last_name AS full_name, SUM(j.price) AS total_paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid = TRUE AND j.payment_date >= $1 AND j.payment_date < $2
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY total_paid DESC, p.id
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, start.UTC(), end.UTC(), limit)
	if err != nil {
		r.logger.Error("Failed to compute best clients", "error", err)
		return nil, errors.Storage("failed to compute best clients", err)
	}
	defer rows.Close()

	clients := make([]*domain.ClientSpend, 0)
	for rows.Next() {
		var client domain.ClientSpend
		var totalStr string
		if err := rows.Scan(&client.ID, &client.FullName, &totalStr); err != nil {
			return nil, errors.Storage("failed to scan best client", err)
		}
		total, err := parseDecimal(totalStr, "total paid")
		if err != nil {
			return nil, err
		}
		client.TotalPaid = total
		clients = append(clients, &client)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("failed to iterate best clients", err)
	}
	return clients, nil
}
