package repositories

import (
	"context"
	"time"

	"filmsoc-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	DB *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{DB: db}
}

const eventSelect = `
	SELECT ev.id, ev.title, ev.description, ev.location, ev.event_type,
	       ev.start_time, ev.end_time, ev.created_by, ev.is_approved,
	       ev.approved_by, ev.created_at, ev.updated_at, u.name,
	       (SELECT COUNT(*) FROM event_participants p WHERE p.event_id = ev.id)
	FROM events ev
	JOIN users u ON ev.created_by = u.id`

func scanEvent(row interface{ Scan(dest ...any) error }) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.EventType,
		&e.StartTime, &e.EndTime, &e.CreatedBy, &e.IsApproved, &e.ApprovedBy,
		&e.CreatedAt, &e.UpdatedAt, &e.CreatorName, &e.ParticipantCount,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new event row
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (
			id, title, description, location, event_type, start_time,
			end_time, created_by, is_approved, approved_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.Exec(ctx, query,
		e.ID, e.Title, e.Description, e.Location, e.EventType, e.StartTime,
		e.EndTime, e.CreatedBy, e.IsApproved, e.ApprovedBy, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// Get retrieves an event with creator name and participant count
func (r *EventRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	return scanEvent(r.DB.QueryRow(ctx, eventSelect+` WHERE ev.id = $1`, id))
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// ListRange returns events overlapping [from, to) for the calendar
func (r *EventRepository) ListRange(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	return r.queryEvents(ctx,
		eventSelect+` WHERE ev.start_time < $2 AND ev.end_time >= $1 ORDER BY ev.start_time ASC`,
		from, to,
	)
}

// ListUpcoming returns approved events starting after now
func (r *EventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]models.Event, error) {
	return r.queryEvents(ctx,
		eventSelect+` WHERE ev.is_approved AND ev.start_time >= $1 ORDER BY ev.start_time ASC`,
		now,
	)
}

// ListPendingApproval returns unapproved events for the admin queue
func (r *EventRepository) ListPendingApproval(ctx context.Context) ([]models.Event, error) {
	return r.queryEvents(ctx,
		eventSelect+` WHERE NOT ev.is_approved ORDER BY ev.start_time ASC`,
	)
}

// Update modifies event fields
func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, location = $4, event_type = $5,
		    start_time = $6, end_time = $7, updated_at = NOW()
		WHERE id = $1`

	_, err := r.DB.Exec(ctx, query,
		e.ID, e.Title, e.Description, e.Location, e.EventType, e.StartTime, e.EndTime,
	)
	return err
}

// Approve marks the event approved by the given admin
func (r *EventRepository) Approve(ctx context.Context, id, approverID string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE events SET is_approved = TRUE, approved_by = $2, updated_at = NOW() WHERE id = $1`,
		id, approverID,
	)
	return err
}

// Delete removes an event and its participant rows
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}
