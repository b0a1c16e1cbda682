package repositories

import (
	"context"

	"filmsoc-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EquipmentRequestRepository serves the read side of the request
// workflow. All writes go through the lifecycle manager's store.
type EquipmentRequestRepository struct {
	DB *pgxpool.Pool
}

func NewEquipmentRequestRepository(db *pgxpool.Pool) *EquipmentRequestRepository {
	return &EquipmentRequestRepository{DB: db}
}

const requestSelect = `
	SELECT r.id, r.equipment_id, r.event_id, r.requester_id, r.status,
	       r.approved_by, r.notes, r.created_at, r.updated_at,
	       e.name, u.name, COALESCE(ev.title, '')
	FROM equipment_requests r
	JOIN equipment e ON r.equipment_id = e.id
	JOIN users u ON r.requester_id = u.id
	LEFT JOIN events ev ON r.event_id = ev.id`

func (r *EquipmentRequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]models.EquipmentRequest, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.EquipmentRequest
	for rows.Next() {
		var req models.EquipmentRequest
		err := rows.Scan(
			&req.ID, &req.EquipmentID, &req.EventID, &req.RequesterID,
			&req.Status, &req.ApprovedBy, &req.Notes, &req.CreatedAt,
			&req.UpdatedAt, &req.EquipmentName, &req.RequesterName, &req.EventTitle,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Get retrieves a request with names resolved
func (r *EquipmentRequestRepository) Get(ctx context.Context, id string) (*models.EquipmentRequest, error) {
	req := &models.EquipmentRequest{}
	err := r.DB.QueryRow(ctx, requestSelect+` WHERE r.id = $1`, id).Scan(
		&req.ID, &req.EquipmentID, &req.EventID, &req.RequesterID,
		&req.Status, &req.ApprovedBy, &req.Notes, &req.CreatedAt,
		&req.UpdatedAt, &req.EquipmentName, &req.RequesterName, &req.EventTitle,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListAll returns every request, newest first (admin overview)
func (r *EquipmentRequestRepository) ListAll(ctx context.Context) ([]models.EquipmentRequest, error) {
	return r.queryRequests(ctx, requestSelect+` ORDER BY r.created_at DESC`)
}

// ListByRequester returns a member's own requests
func (r *EquipmentRequestRepository) ListByRequester(ctx context.Context, requesterID string) ([]models.EquipmentRequest, error) {
	return r.queryRequests(ctx,
		requestSelect+` WHERE r.requester_id = $1 ORDER BY r.created_at DESC`,
		requesterID,
	)
}

// ListForOwner returns requests targeting equipment the member owns,
// the approval inbox for student-owned gear
func (r *EquipmentRequestRepository) ListForOwner(ctx context.Context, ownerID string) ([]models.EquipmentRequest, error) {
	return r.queryRequests(ctx,
		requestSelect+` WHERE e.owner_id = $1 ORDER BY r.created_at DESC`,
		ownerID,
	)
}

// ListPendingForEquipment returns the pending queue for one item
func (r *EquipmentRequestRepository) ListPendingForEquipment(ctx context.Context, equipmentID string) ([]models.EquipmentRequest, error) {
	return r.queryRequests(ctx,
		requestSelect+` WHERE r.equipment_id = $1 AND r.status = 'pending' ORDER BY r.created_at ASC`,
		equipmentID,
	)
}
