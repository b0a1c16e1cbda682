package lifecycle

import (
	"context"
	"errors"
	"log"
	"time"

	"filmsoc-backend/internal/cache"
	"filmsoc-backend/internal/metrics"
	"filmsoc-backend/internal/models"

	"github.com/google/uuid"
)

// Notifier receives a post-commit signal for every applied transition.
// The websocket hub implements it; a nil notifier disables publishing.
type Notifier interface {
	Notify(update Update)
}

// Update describes one applied lifecycle transition.
type Update struct {
	Kind        string    `json:"kind"` // "equipment_status" or "request_status"
	EquipmentID string    `json:"equipment_id"`
	RequestID   string    `json:"request_id,omitempty"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

const (
	UpdateEquipmentStatus = "equipment_status"
	UpdateRequestStatus   = "request_status"
)

// Manager owns the combined state of an equipment item, its in-flight
// requests and its usage log. It is the only code path that writes
// Equipment.Status, advances EquipmentRequest.Status or opens/closes
// EquipmentLog rows; everything else reads snapshots and calls in here.
type Manager struct {
	store    Store
	notifier Notifier
	clock    func() time.Time
	newID    func() string
}

func NewManager(store Store, notifier Notifier) *Manager {
	return &Manager{
		store:    store,
		notifier: notifier,
		clock:    func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// RequestEquipment creates a pending request for an equipment item,
// optionally tied to an approved event.
func (m *Manager) RequestEquipment(ctx context.Context, equipmentID string, eventID *string, requesterID, notes string) (*models.EquipmentRequest, error) {
	if equipmentID == "" || requesterID == "" {
		return nil, validation("equipment_id and requester_id are required")
	}

	if _, err := m.store.GetEquipment(ctx, equipmentID); err != nil {
		return nil, m.wrapLookup(err, "equipment %s", equipmentID)
	}
	if _, err := m.store.GetMember(ctx, requesterID); err != nil {
		return nil, m.wrapLookup(err, "member %s", requesterID)
	}
	if eventID != nil {
		event, err := m.store.GetEvent(ctx, *eventID)
		if err != nil {
			return nil, m.wrapLookup(err, "event %s", *eventID)
		}
		if !event.IsApproved {
			return nil, validation("event %s is not approved", *eventID)
		}
	}

	now := m.clock()
	req := &models.EquipmentRequest{
		ID:          m.newID(),
		EquipmentID: equipmentID,
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      models.RequestPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if notes != "" {
		req.Notes = &notes
	}
	if err := m.store.InsertRequest(ctx, req); err != nil {
		return nil, storeError(err)
	}

	m.applied("request", req)
	return req, nil
}

// Approve moves a pending request to approved. The actor must be an admin
// or the owner of the equipment.
func (m *Manager) Approve(ctx context.Context, requestID, approverID string) (*models.EquipmentRequest, error) {
	return m.decide(ctx, requestID, approverID, models.RequestApproved)
}

// Reject moves a pending request to rejected under the same authorization
// rule as Approve.
func (m *Manager) Reject(ctx context.Context, requestID, approverID string) (*models.EquipmentRequest, error) {
	return m.decide(ctx, requestID, approverID, models.RequestRejected)
}

func (m *Manager) decide(ctx context.Context, requestID, approverID, verdict string) (*models.EquipmentRequest, error) {
	var out *models.EquipmentRequest
	err := m.inTx(ctx, func(tx Store) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return m.wrapLookup(err, "request %s", requestID)
		}
		if req.Status != models.RequestPending {
			return invalidTransition("request %s is %s, not pending", requestID, req.Status)
		}
		equipment, err := tx.GetEquipment(ctx, req.EquipmentID)
		if err != nil {
			return m.wrapLookup(err, "equipment %s", req.EquipmentID)
		}
		if err := m.requireAdminOrOwner(ctx, tx, equipment, approverID); err != nil {
			return err
		}

		req.Status = verdict
		req.ApprovedBy = &approverID
		req.UpdatedAt = m.clock()
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return storeError(err)
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.applied("request", out)
	return out, nil
}

// MarkReceived hands the equipment over: opens a log for the requester,
// flips the equipment to in_use and advances the request to received.
// Only the approver of the request may perform the handover.
func (m *Manager) MarkReceived(ctx context.Context, requestID, actorID string) (*models.EquipmentRequest, error) {
	var out *models.EquipmentRequest
	err := m.inTx(ctx, func(tx Store) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return m.wrapLookup(err, "request %s", requestID)
		}
		if req.Status != models.RequestApproved {
			return invalidTransition("request %s is %s, not approved", requestID, req.Status)
		}
		if req.ApprovedBy == nil || *req.ApprovedBy != actorID {
			return unauthorized("only the approver may mark request %s as received", requestID)
		}

		// Check-and-set: verify no open log, then insert. The store's
		// uniqueness constraint re-verifies under concurrency.
		open, err := tx.GetOpenLog(ctx, req.EquipmentID)
		if err != nil {
			return storeError(err)
		}
		if open != nil {
			return conflictingCheckout("equipment %s already checked out", req.EquipmentID)
		}

		now := m.clock()
		logRow := &models.EquipmentLog{
			ID:           m.newID(),
			EquipmentID:  req.EquipmentID,
			UserID:       req.RequesterID,
			CheckoutTime: now,
			CreatedAt:    now,
		}
		if req.EventID != nil {
			event, err := tx.GetEvent(ctx, *req.EventID)
			if err != nil {
				return m.wrapLookup(err, "event %s", *req.EventID)
			}
			end := event.EndTime
			logRow.ExpectedReturnTime = &end
		}
		if err := tx.InsertLog(ctx, logRow); err != nil {
			if errors.Is(err, ErrDuplicateOpenLog) {
				return conflictingCheckout("equipment %s already checked out", req.EquipmentID)
			}
			return storeError(err)
		}
		if err := tx.SetEquipmentStatus(ctx, req.EquipmentID, models.EquipmentInUse); err != nil {
			return storeError(err)
		}

		req.Status = models.RequestReceived
		req.UpdatedAt = now
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return storeError(err)
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.applied("request", out)
	m.notify(Update{Kind: UpdateEquipmentStatus, EquipmentID: out.EquipmentID, Status: models.EquipmentInUse, At: m.clock()})
	cache.InvalidateEquipmentCaches(ctx)
	return out, nil
}

// MarkReturned closes the checkout: the requester hands the equipment
// back, the open log is closed and the equipment becomes available.
func (m *Manager) MarkReturned(ctx context.Context, requestID, actorID string) (*models.EquipmentRequest, error) {
	var out *models.EquipmentRequest
	err := m.inTx(ctx, func(tx Store) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return m.wrapLookup(err, "request %s", requestID)
		}
		if req.Status != models.RequestReceived {
			return invalidTransition("request %s is %s, not received", requestID, req.Status)
		}
		if req.RequesterID != actorID {
			return unauthorized("only the requester may return request %s", requestID)
		}

		open, err := tx.GetOpenLog(ctx, req.EquipmentID)
		if err != nil {
			return storeError(err)
		}
		if open == nil {
			return invalidTransition("equipment %s has no open checkout", req.EquipmentID)
		}
		if open.UserID != req.RequesterID {
			return conflictingCheckout("open checkout for equipment %s belongs to another member", req.EquipmentID)
		}

		now := m.clock()
		if err := tx.CloseLog(ctx, open.ID, now); err != nil {
			return storeError(err)
		}
		if err := tx.SetEquipmentStatus(ctx, req.EquipmentID, models.EquipmentAvailable); err != nil {
			return storeError(err)
		}

		req.Status = models.RequestReturned
		req.UpdatedAt = now
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return storeError(err)
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.applied("request", out)
	m.notify(Update{Kind: UpdateEquipmentStatus, EquipmentID: out.EquipmentID, Status: models.EquipmentAvailable, At: m.clock()})
	cache.InvalidateEquipmentCaches(ctx)
	return out, nil
}

// SetStatus is the manual override path for admins and owners, bypassing
// the request workflow. Moving to in_use opens a log for assignedUserID;
// moving off in_use closes the open log; moving to maintenance
// force-closes any open log with a synthetic return time.
func (m *Manager) SetStatus(ctx context.Context, equipmentID, newStatus, actorID, assignedUserID string) (*models.Equipment, error) {
	if !models.ValidEquipmentStatus(newStatus) {
		return nil, validation("unknown equipment status %q", newStatus)
	}

	var out *models.Equipment
	err := m.inTx(ctx, func(tx Store) error {
		equipment, err := tx.GetEquipment(ctx, equipmentID)
		if err != nil {
			return m.wrapLookup(err, "equipment %s", equipmentID)
		}
		if err := m.requireAdminOrOwner(ctx, tx, equipment, actorID); err != nil {
			return err
		}
		if equipment.Status == newStatus {
			return invalidTransition("equipment %s is already %s", equipmentID, newStatus)
		}

		now := m.clock()
		switch newStatus {
		case models.EquipmentInUse:
			if assignedUserID == "" {
				return validation("assigned_user_id is required to mark equipment in_use")
			}
			if _, err := tx.GetMember(ctx, assignedUserID); err != nil {
				return m.wrapLookup(err, "member %s", assignedUserID)
			}
			open, err := tx.GetOpenLog(ctx, equipmentID)
			if err != nil {
				return storeError(err)
			}
			if open != nil {
				return conflictingCheckout("equipment %s already checked out", equipmentID)
			}
			logRow := &models.EquipmentLog{
				ID:           m.newID(),
				EquipmentID:  equipmentID,
				UserID:       assignedUserID,
				CheckoutTime: now,
				CreatedAt:    now,
			}
			if err := tx.InsertLog(ctx, logRow); err != nil {
				if errors.Is(err, ErrDuplicateOpenLog) {
					return conflictingCheckout("equipment %s already checked out", equipmentID)
				}
				return storeError(err)
			}

		case models.EquipmentAvailable, models.EquipmentMaintenance:
			open, err := tx.GetOpenLog(ctx, equipmentID)
			if err != nil {
				return storeError(err)
			}
			if open != nil {
				// Entering maintenance closes the log with a synthetic
				// return time so the open-log invariant keeps holding.
				if err := tx.CloseLog(ctx, open.ID, now); err != nil {
					return storeError(err)
				}
			}
		}

		if err := tx.SetEquipmentStatus(ctx, equipmentID, newStatus); err != nil {
			return storeError(err)
		}
		equipment.Status = newStatus
		equipment.UpdatedAt = now
		out = equipment
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.LifecycleTransitionsTotal.WithLabelValues("set_status", newStatus).Inc()
	m.notify(Update{Kind: UpdateEquipmentStatus, EquipmentID: out.ID, Status: out.Status, At: m.clock()})
	cache.InvalidateEquipmentCaches(ctx)
	return out, nil
}

// requireAdminOrOwner resolves the actor and enforces the shared
// authorization rule for approvals and manual overrides.
func (m *Manager) requireAdminOrOwner(ctx context.Context, tx Store, equipment *models.Equipment, actorID string) error {
	actor, err := tx.GetMember(ctx, actorID)
	if err != nil {
		return m.wrapLookup(err, "member %s", actorID)
	}
	if actor.IsAdmin {
		return nil
	}
	if equipment.OwnerID != nil && *equipment.OwnerID == actorID {
		return nil
	}
	return unauthorized("member %s is neither an admin nor the owner of equipment %s", actorID, equipment.ID)
}

// inTx runs fn transactionally and normalizes transaction-level failures.
func (m *Manager) inTx(ctx context.Context, fn func(tx Store) error) error {
	err := m.store.InTx(ctx, fn)
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	log.Printf("[Lifecycle] transaction failed: %v", err)
	return partialWrite(err)
}

func (m *Manager) wrapLookup(err error, format string, args ...interface{}) error {
	if errors.Is(err, ErrNoRows) {
		return notFound(format+" not found", args...)
	}
	return storeError(err)
}

func (m *Manager) applied(kind string, req *models.EquipmentRequest) {
	metrics.LifecycleTransitionsTotal.WithLabelValues(kind, req.Status).Inc()
	m.notify(Update{
		Kind:        UpdateRequestStatus,
		EquipmentID: req.EquipmentID,
		RequestID:   req.ID,
		Status:      req.Status,
		At:          req.UpdatedAt,
	})
}

func (m *Manager) notify(update Update) {
	if m.notifier != nil {
		m.notifier.Notify(update)
	}
}
