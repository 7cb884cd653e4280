package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// AlertRepository handles notification inbox data access.
type AlertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

// Insert persists a single alert row.
func (r *AlertRepository) Insert(ctx context.Context, a *model.Alert) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO alerts (recipient_role, recipient_id, category, message, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		a.RecipientRole, a.RecipientID, a.Category, a.Message, a.Payload,
	).Scan(&a.ID, &a.CreatedAt)
}

// ListByRecipient returns a page of alerts, newest first, with the total count
// and the number of unread alerts for badge display.
func (r *AlertRepository) ListByRecipient(ctx context.Context, role model.RecipientRole, recipientID, page, limit int) ([]model.Alert, int, int, error) {
	var total, unread int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE read_at IS NULL)
		 FROM alerts WHERE recipient_role = $1 AND recipient_id = $2`, role, recipientID,
	).Scan(&total, &unread)
	if err != nil {
		return nil, 0, 0, err
	}

	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx,
		`SELECT id, recipient_role, recipient_id, category, message, payload, read_at, created_at
		 FROM alerts
		 WHERE recipient_role = $1 AND recipient_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		role, recipientID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	alerts := []model.Alert{}
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.RecipientRole, &a.RecipientID, &a.Category, &a.Message, &a.Payload, &a.ReadAt, &a.CreatedAt); err != nil {
			return nil, 0, 0, err
		}
		alerts = append(alerts, a)
	}
	return alerts, total, unread, rows.Err()
}

// MarkRead stamps a single alert as read for its owner.
func (r *AlertRepository) MarkRead(ctx context.Context, role model.RecipientRole, recipientID, alertID int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE alerts SET read_at = NOW()
		 WHERE id = $1 AND recipient_role = $2 AND recipient_id = $3 AND read_at IS NULL`,
		alertID, role, recipientID)
	return err
}

// MarkAllRead stamps every unread alert for the recipient.
func (r *AlertRepository) MarkAllRead(ctx context.Context, role model.RecipientRole, recipientID int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE alerts SET read_at = NOW()
		 WHERE recipient_role = $1 AND recipient_id = $2 AND read_at IS NULL`,
		role, recipientID)
	return err
}
