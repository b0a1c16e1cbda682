package repositories

import (
	"context"
	"fmt"

	"filmsoc-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EquipmentRepository struct {
	DB *pgxpool.Pool
}

func NewEquipmentRepository(db *pgxpool.Pool) *EquipmentRepository {
	return &EquipmentRepository{DB: db}
}

// Create inserts a new equipment row
func (r *EquipmentRepository) Create(ctx context.Context, e *models.Equipment) error {
	query := `
		INSERT INTO equipment (
			id, name, type, subtype, parent_id, ownership_type, owner_id,
			status, image_url, details, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.Exec(ctx, query,
		e.ID, e.Name, e.Type, e.Subtype, e.ParentID, e.OwnershipType,
		e.OwnerID, e.Status, e.ImageURL, e.Details, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// Get retrieves an equipment item with its owner name
func (r *EquipmentRepository) Get(ctx context.Context, id string) (*models.Equipment, error) {
	query := `
		SELECT e.id, e.name, e.type, e.subtype, e.parent_id, e.ownership_type,
		       e.owner_id, e.status, e.image_url, e.details, e.created_at,
		       e.updated_at, COALESCE(u.name, '')
		FROM equipment e
		LEFT JOIN users u ON e.owner_id = u.id
		WHERE e.id = $1`

	e := &models.Equipment{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Type, &e.Subtype, &e.ParentID, &e.OwnershipType,
		&e.OwnerID, &e.Status, &e.ImageURL, &e.Details, &e.CreatedAt,
		&e.UpdatedAt, &e.OwnerName,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// EquipmentFilter narrows the inventory listing
type EquipmentFilter struct {
	Type          string
	Status        string
	OwnershipType string
	OwnerID       string
}

// List returns inventory rows matching the filter, newest first
func (r *EquipmentRepository) List(ctx context.Context, f EquipmentFilter) ([]models.Equipment, error) {
	query := `
		SELECT e.id, e.name, e.type, e.subtype, e.parent_id, e.ownership_type,
		       e.owner_id, e.status, e.image_url, e.details, e.created_at,
		       e.updated_at, COALESCE(u.name, '')
		FROM equipment e
		LEFT JOIN users u ON e.owner_id = u.id
		WHERE 1=1`

	args := []any{}
	n := 0
	add := func(clause, value string) {
		n++
		query += fmt.Sprintf(" AND %s = $%d", clause, n)
		args = append(args, value)
	}
	if f.Type != "" {
		add("e.type", f.Type)
	}
	if f.Status != "" {
		add("e.status", f.Status)
	}
	if f.OwnershipType != "" {
		add("e.ownership_type", f.OwnershipType)
	}
	if f.OwnerID != "" {
		add("e.owner_id", f.OwnerID)
	}
	query += " ORDER BY e.created_at DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Equipment
	for rows.Next() {
		var e models.Equipment
		err := rows.Scan(
			&e.ID, &e.Name, &e.Type, &e.Subtype, &e.ParentID, &e.OwnershipType,
			&e.OwnerID, &e.Status, &e.ImageURL, &e.Details, &e.CreatedAt,
			&e.UpdatedAt, &e.OwnerName,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// ListChildren returns items attached to a parent (lenses on a camera)
func (r *EquipmentRepository) ListChildren(ctx context.Context, parentID string) ([]models.Equipment, error) {
	return r.listWhere(ctx, "parent_id = $1", parentID)
}

func (r *EquipmentRepository) listWhere(ctx context.Context, where string, args ...any) ([]models.Equipment, error) {
	query := `
		SELECT id, name, type, subtype, parent_id, ownership_type, owner_id,
		       status, image_url, details, created_at, updated_at
		FROM equipment
		WHERE ` + where + `
		ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Equipment
	for rows.Next() {
		var e models.Equipment
		err := rows.Scan(
			&e.ID, &e.Name, &e.Type, &e.Subtype, &e.ParentID, &e.OwnershipType,
			&e.OwnerID, &e.Status, &e.ImageURL, &e.Details, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// UpdateInfo modifies descriptive fields; status is owned by the
// lifecycle manager and never written here
func (r *EquipmentRepository) UpdateInfo(ctx context.Context, e *models.Equipment) error {
	query := `
		UPDATE equipment
		SET name = $2, subtype = $3, parent_id = $4, details = $5, updated_at = NOW()
		WHERE id = $1`

	_, err := r.DB.Exec(ctx, query, e.ID, e.Name, e.Subtype, e.ParentID, e.Details)
	return err
}

// SetImageURL stores the uploaded image location
func (r *EquipmentRepository) SetImageURL(ctx context.Context, id, url string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE equipment SET image_url = $2, updated_at = NOW() WHERE id = $1`,
		id, url,
	)
	return err
}

// Delete removes an equipment row
func (r *EquipmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	return err
}
