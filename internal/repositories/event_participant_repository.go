package repositories

import (
	"context"
	"time"

	"filmsoc-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventParticipantRepository struct {
	DB *pgxpool.Pool
}

func NewEventParticipantRepository(db *pgxpool.Pool) *EventParticipantRepository {
	return &EventParticipantRepository{DB: db}
}

// Join adds a member to an event; joining twice is a no-op
func (r *EventParticipantRepository) Join(ctx context.Context, eventID, userID string) error {
	query := `
		INSERT INTO event_participants (id, event_id, user_id, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO NOTHING`

	_, err := r.DB.Exec(ctx, query, uuid.NewString(), eventID, userID, time.Now().UTC())
	return err
}

// Leave removes a member from an event
func (r *EventParticipantRepository) Leave(ctx context.Context, eventID, userID string) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	return err
}

// ListByEvent returns participants with member names
func (r *EventParticipantRepository) ListByEvent(ctx context.Context, eventID string) ([]models.EventParticipant, error) {
	query := `
		SELECT p.id, p.event_id, p.user_id, p.joined_at, u.name
		FROM event_participants p
		JOIN users u ON p.user_id = u.id
		WHERE p.event_id = $1
		ORDER BY p.joined_at ASC`

	rows, err := r.DB.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.EventParticipant
	for rows.Next() {
		var p models.EventParticipant
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.JoinedAt, &p.UserName); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
