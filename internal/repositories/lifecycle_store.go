package repositories

import (
	"context"
	"errors"
	"time"

	"filmsoc-backend/internal/lifecycle"
	"filmsoc-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// openLogIndex is the partial unique index enforcing at most one open
// equipment_log per equipment item (see migrations).
const openLogIndex = "equipment_logs_one_open_idx"

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// LifecycleStore is the pgx implementation of lifecycle.Store. Outside a
// transaction it reads committed snapshots from the pool; inside InTx it
// is rebound to the transaction and locks the rows it reads so
// check-and-set sequences serialize.
type LifecycleStore struct {
	db      querier
	pool    *pgxpool.Pool // nil when transaction-bound
	locking bool
}

func NewLifecycleStore(pool *pgxpool.Pool) *LifecycleStore {
	return &LifecycleStore{db: pool, pool: pool}
}

func (s *LifecycleStore) InTx(ctx context.Context, fn func(tx lifecycle.Store) error) error {
	if s.pool == nil {
		// Already inside a transaction; nested calls reuse it.
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&LifecycleStore{db: tx, locking: true}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *LifecycleStore) forUpdate() string {
	if s.locking {
		return " FOR UPDATE"
	}
	return ""
}

func (s *LifecycleStore) GetEquipment(ctx context.Context, id string) (*models.Equipment, error) {
	query := `
		SELECT id, name, type, subtype, parent_id, ownership_type, owner_id,
		       status, image_url, details, created_at, updated_at
		FROM equipment
		WHERE id = $1` + s.forUpdate()

	e := &models.Equipment{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Type, &e.Subtype, &e.ParentID, &e.OwnershipType,
		&e.OwnerID, &e.Status, &e.ImageURL, &e.Details, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, mapRowErr(err)
	}
	return e, nil
}

func (s *LifecycleStore) GetMember(ctx context.Context, id string) (*models.Member, error) {
	query := `
		SELECT id, username, name, email, hostel, year, domain, is_admin,
		       totp_enabled, created_at, updated_at
		FROM users
		WHERE id = $1`

	m := &models.Member{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Username, &m.Name, &m.Email, &m.Hostel, &m.Year, &m.Domain,
		&m.IsAdmin, &m.TOTPEnabled, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, mapRowErr(err)
	}
	return m, nil
}

func (s *LifecycleStore) GetRequest(ctx context.Context, id string) (*models.EquipmentRequest, error) {
	query := `
		SELECT id, equipment_id, event_id, requester_id, status, approved_by,
		       notes, created_at, updated_at
		FROM equipment_requests
		WHERE id = $1` + s.forUpdate()

	r := &models.EquipmentRequest{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.EquipmentID, &r.EventID, &r.RequesterID, &r.Status,
		&r.ApprovedBy, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, mapRowErr(err)
	}
	return r, nil
}

func (s *LifecycleStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	query := `
		SELECT id, title, description, location, event_type, start_time,
		       end_time, created_by, is_approved, approved_by, created_at, updated_at
		FROM events
		WHERE id = $1`

	e := &models.Event{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.EventType,
		&e.StartTime, &e.EndTime, &e.CreatedBy, &e.IsApproved, &e.ApprovedBy,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, mapRowErr(err)
	}
	return e, nil
}

func (s *LifecycleStore) GetOpenLog(ctx context.Context, equipmentID string) (*models.EquipmentLog, error) {
	query := `
		SELECT id, equipment_id, user_id, checkout_time, expected_return_time,
		       return_time, created_at
		FROM equipment_logs
		WHERE equipment_id = $1 AND return_time IS NULL
		ORDER BY checkout_time DESC
		LIMIT 1` + s.forUpdate()

	l := &models.EquipmentLog{}
	err := s.db.QueryRow(ctx, query, equipmentID).Scan(
		&l.ID, &l.EquipmentID, &l.UserID, &l.CheckoutTime,
		&l.ExpectedReturnTime, &l.ReturnTime, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *LifecycleStore) InsertRequest(ctx context.Context, req *models.EquipmentRequest) error {
	query := `
		INSERT INTO equipment_requests (
			id, equipment_id, event_id, requester_id, status, approved_by,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.Exec(ctx, query,
		req.ID, req.EquipmentID, req.EventID, req.RequesterID, req.Status,
		req.ApprovedBy, req.Notes, req.CreatedAt, req.UpdatedAt,
	)
	return err
}

func (s *LifecycleStore) UpdateRequest(ctx context.Context, req *models.EquipmentRequest) error {
	query := `
		UPDATE equipment_requests
		SET status = $2, approved_by = $3, notes = $4, updated_at = $5
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query,
		req.ID, req.Status, req.ApprovedBy, req.Notes, req.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.ErrNoRows
	}
	return nil
}

func (s *LifecycleStore) InsertLog(ctx context.Context, logRow *models.EquipmentLog) error {
	query := `
		INSERT INTO equipment_logs (
			id, equipment_id, user_id, checkout_time, expected_return_time,
			return_time, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.Exec(ctx, query,
		logRow.ID, logRow.EquipmentID, logRow.UserID, logRow.CheckoutTime,
		logRow.ExpectedReturnTime, logRow.ReturnTime, logRow.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == openLogIndex {
		return lifecycle.ErrDuplicateOpenLog
	}
	return err
}

func (s *LifecycleStore) CloseLog(ctx context.Context, logID string, returnTime time.Time) error {
	query := `
		UPDATE equipment_logs
		SET return_time = $2
		WHERE id = $1 AND return_time IS NULL`

	tag, err := s.db.Exec(ctx, query, logID, returnTime)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.ErrNoRows
	}
	return nil
}

func (s *LifecycleStore) SetEquipmentStatus(ctx context.Context, equipmentID, status string) error {
	query := `
		UPDATE equipment
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, equipmentID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.ErrNoRows
	}
	return nil
}

func mapRowErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return lifecycle.ErrNoRows
	}
	return err
}
