package lifecycle

import (
	"context"
	"time"

	"filmsoc-backend/internal/models"
)

// Store is the data-access boundary the manager writes through. The
// production implementation lives in internal/repositories and is backed
// by pgx; tests inject an in-memory fake.
//
// Contract:
//   - lookups return ErrNoRows when the id does not resolve
//   - InsertLog returns ErrDuplicateOpenLog when an open log already
//     exists for the equipment (unique partial index or equivalent)
//   - inside InTx, lookups must observe and hold row-level locks so that
//     check-and-set sequences are serializable
type Store interface {
	GetEquipment(ctx context.Context, id string) (*models.Equipment, error)
	GetMember(ctx context.Context, id string) (*models.Member, error)
	GetRequest(ctx context.Context, id string) (*models.EquipmentRequest, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	// GetOpenLog returns the open log for an equipment item, or nil when
	// none exists.
	GetOpenLog(ctx context.Context, equipmentID string) (*models.EquipmentLog, error)

	InsertRequest(ctx context.Context, req *models.EquipmentRequest) error
	UpdateRequest(ctx context.Context, req *models.EquipmentRequest) error
	InsertLog(ctx context.Context, logRow *models.EquipmentLog) error
	CloseLog(ctx context.Context, logID string, returnTime time.Time) error
	SetEquipmentStatus(ctx context.Context, equipmentID, status string) error

	// InTx runs fn against a transactional view of the store. All writes
	// issued through the view commit together or not at all.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
