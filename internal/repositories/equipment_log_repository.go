package repositories

import (
	"context"
	"time"

	"filmsoc-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EquipmentLogRepository struct {
	DB *pgxpool.Pool
}

func NewEquipmentLogRepository(db *pgxpool.Pool) *EquipmentLogRepository {
	return &EquipmentLogRepository{DB: db}
}

const logSelect = `
	SELECT l.id, l.equipment_id, l.user_id, l.checkout_time,
	       l.expected_return_time, l.return_time, l.created_at,
	       e.name, u.name
	FROM equipment_logs l
	JOIN equipment e ON l.equipment_id = e.id
	JOIN users u ON l.user_id = u.id`

func (r *EquipmentLogRepository) queryLogs(ctx context.Context, query string, args ...any) ([]models.EquipmentLog, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.EquipmentLog
	for rows.Next() {
		var l models.EquipmentLog
		err := rows.Scan(
			&l.ID, &l.EquipmentID, &l.UserID, &l.CheckoutTime,
			&l.ExpectedReturnTime, &l.ReturnTime, &l.CreatedAt,
			&l.EquipmentName, &l.UserName,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// Get retrieves a single log row with names resolved
func (r *EquipmentLogRepository) Get(ctx context.Context, id string) (*models.EquipmentLog, error) {
	l := &models.EquipmentLog{}
	err := r.DB.QueryRow(ctx, logSelect+` WHERE l.id = $1`, id).Scan(
		&l.ID, &l.EquipmentID, &l.UserID, &l.CheckoutTime,
		&l.ExpectedReturnTime, &l.ReturnTime, &l.CreatedAt,
		&l.EquipmentName, &l.UserName,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListByEquipment returns the usage history for one item, newest first
func (r *EquipmentLogRepository) ListByEquipment(ctx context.Context, equipmentID string) ([]models.EquipmentLog, error) {
	return r.queryLogs(ctx,
		logSelect+` WHERE l.equipment_id = $1 ORDER BY l.checkout_time DESC`,
		equipmentID,
	)
}

// ListByUser returns a member's checkout history, newest first
func (r *EquipmentLogRepository) ListByUser(ctx context.Context, userID string) ([]models.EquipmentLog, error) {
	return r.queryLogs(ctx,
		logSelect+` WHERE l.user_id = $1 ORDER BY l.checkout_time DESC`,
		userID,
	)
}

// ListOpen returns all currently outstanding checkouts
func (r *EquipmentLogRepository) ListOpen(ctx context.Context) ([]models.EquipmentLog, error) {
	return r.queryLogs(ctx,
		logSelect+` WHERE l.return_time IS NULL ORDER BY l.checkout_time ASC`,
	)
}

// ListOverdue returns open checkouts past their expected return time
func (r *EquipmentLogRepository) ListOverdue(ctx context.Context, now time.Time) ([]models.EquipmentLog, error) {
	return r.queryLogs(ctx,
		logSelect+` WHERE l.return_time IS NULL
			AND l.expected_return_time IS NOT NULL
			AND l.expected_return_time < $1
		ORDER BY l.expected_return_time ASC`,
		now,
	)
}
