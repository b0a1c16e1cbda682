package lifecycle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"filmsoc-backend/internal/models"
)

// fakeStore is an in-memory Store. InTx runs the callback against a deep
// copy and only merges the copy back on success, so transitions apply all
// or nothing just like the pgx implementation.
type fakeStore struct {
	equipment map[string]*models.Equipment
	members   map[string]*models.Member
	requests  map[string]*models.EquipmentRequest
	events    map[string]*models.Event
	logs      map[string]*models.EquipmentLog

	failSetStatus error
	failInsertLog error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		equipment: map[string]*models.Equipment{},
		members:   map[string]*models.Member{},
		requests:  map[string]*models.EquipmentRequest{},
		events:    map[string]*models.Event{},
		logs:      map[string]*models.EquipmentLog{},
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	c.failSetStatus = s.failSetStatus
	c.failInsertLog = s.failInsertLog
	for k, v := range s.equipment {
		cp := *v
		c.equipment[k] = &cp
	}
	for k, v := range s.members {
		cp := *v
		c.members[k] = &cp
	}
	for k, v := range s.requests {
		cp := *v
		c.requests[k] = &cp
	}
	for k, v := range s.events {
		cp := *v
		c.events[k] = &cp
	}
	for k, v := range s.logs {
		cp := *v
		c.logs[k] = &cp
	}
	return c
}

func (s *fakeStore) GetEquipment(_ context.Context, id string) (*models.Equipment, error) {
	e, ok := s.equipment[id]
	if !ok {
		return nil, ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (s *fakeStore) GetMember(_ context.Context, id string) (*models.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return nil, ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (s *fakeStore) GetRequest(_ context.Context, id string) (*models.EquipmentRequest, error) {
	r, ok := s.requests[id]
	if !ok {
		return nil, ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) GetEvent(_ context.Context, id string) (*models.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (s *fakeStore) GetOpenLog(_ context.Context, equipmentID string) (*models.EquipmentLog, error) {
	for _, l := range s.logs {
		if l.EquipmentID == equipmentID && l.ReturnTime == nil {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) InsertRequest(_ context.Context, req *models.EquipmentRequest) error {
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *fakeStore) UpdateRequest(_ context.Context, req *models.EquipmentRequest) error {
	if _, ok := s.requests[req.ID]; !ok {
		return ErrNoRows
	}
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *fakeStore) InsertLog(_ context.Context, logRow *models.EquipmentLog) error {
	if s.failInsertLog != nil {
		return s.failInsertLog
	}
	for _, l := range s.logs {
		if l.EquipmentID == logRow.EquipmentID && l.ReturnTime == nil {
			return ErrDuplicateOpenLog
		}
	}
	cp := *logRow
	s.logs[logRow.ID] = &cp
	return nil
}

func (s *fakeStore) CloseLog(_ context.Context, logID string, returnTime time.Time) error {
	l, ok := s.logs[logID]
	if !ok {
		return ErrNoRows
	}
	t := returnTime
	l.ReturnTime = &t
	return nil
}

func (s *fakeStore) SetEquipmentStatus(_ context.Context, equipmentID, status string) error {
	if s.failSetStatus != nil {
		return s.failSetStatus
	}
	e, ok := s.equipment[equipmentID]
	if !ok {
		return ErrNoRows
	}
	e.Status = status
	return nil
}

func (s *fakeStore) InTx(_ context.Context, fn func(tx Store) error) error {
	c := s.clone()
	if err := fn(c); err != nil {
		return err
	}
	s.equipment = c.equipment
	s.members = c.members
	s.requests = c.requests
	s.events = c.events
	s.logs = c.logs
	return nil
}

func (s *fakeStore) openLogCount(equipmentID string) int {
	n := 0
	for _, l := range s.logs {
		if l.EquipmentID == equipmentID && l.ReturnTime == nil {
			n++
		}
	}
	return n
}

var testTime = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestManager(store *fakeStore) *Manager {
	seq := 0
	return &Manager{
		store: store,
		clock: func() time.Time { return testTime },
		newID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	}
}

// seedClub sets up M1 (non-admin owner of E1), M2 (plain member) and
// equipment E1 owned by M1.
func seedClub(store *fakeStore) {
	owner := "m1"
	store.members["m1"] = &models.Member{ID: "m1", Username: "asha", Name: "Asha"}
	store.members["m2"] = &models.Member{ID: "m2", Username: "ravi", Name: "Ravi"}
	store.members["admin"] = &models.Member{ID: "admin", Username: "root", Name: "Root", IsAdmin: true}
	store.equipment["e1"] = &models.Equipment{
		ID:            "e1",
		Name:          "Canon R6",
		Type:          models.EquipmentTypeCamera,
		OwnershipType: models.OwnershipStudent,
		OwnerID:       &owner,
		Status:        models.EquipmentAvailable,
	}
}

func codeOf(t *testing.T, err error) Code {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	return CodeOf(err)
}

func TestRequestEquipmentCreatesPending(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	req, err := m.RequestEquipment(context.Background(), "e1", nil, "m2", "for shoot")
	if err != nil {
		t.Fatalf("request equipment: %v", err)
	}
	if req.Status != models.RequestPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	if req.Notes == nil || *req.Notes != "for shoot" {
		t.Fatalf("expected notes to be stored, got %v", req.Notes)
	}
	if stored := store.requests[req.ID]; stored == nil || stored.Status != models.RequestPending {
		t.Fatal("expected request persisted as pending")
	}
}

func TestRequestEquipmentUnknownEquipment(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	_, err := m.RequestEquipment(context.Background(), "ghost", nil, "m2", "")
	if got := codeOf(t, err); got != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", got)
	}
}

func TestRequestEquipmentUnapprovedEvent(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	store.events["ev1"] = &models.Event{ID: "ev1", Title: "Night shoot", IsApproved: false}
	m := newTestManager(store)

	eventID := "ev1"
	_, err := m.RequestEquipment(context.Background(), "e1", &eventID, "m2", "")
	if got := codeOf(t, err); got != CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %s", got)
	}
}

func TestApproveByOwner(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	req, err := m.RequestEquipment(context.Background(), "e1", nil, "m2", "")
	if err != nil {
		t.Fatalf("request equipment: %v", err)
	}
	approved, err := m.Approve(context.Background(), req.ID, "m1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.RequestApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != "m1" {
		t.Fatalf("expected approved_by=m1, got %v", approved.ApprovedBy)
	}
}

func TestApproveIdempotenceRejected(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	req, _ := m.RequestEquipment(context.Background(), "e1", nil, "m2", "")
	if _, err := m.Approve(context.Background(), req.ID, "m1"); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	_, err := m.Approve(context.Background(), req.ID, "m1")
	if got := codeOf(t, err); got != CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION on second approve, got %s", got)
	}
	if stored := store.requests[req.ID]; stored.Status != models.RequestApproved {
		t.Fatalf("state changed on failed approve: %s", stored.Status)
	}
}

func TestApproveUnauthorized(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	req, _ := m.RequestEquipment(context.Background(), "e1", nil, "m2", "")
	_, err := m.Approve(context.Background(), req.ID, "m2")
	if got := codeOf(t, err); got != CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %s", got)
	}
	if stored := store.requests[req.ID]; stored.Status != models.RequestPending {
		t.Fatalf("state changed on unauthorized approve: %s", stored.Status)
	}
}

func TestRejectTerminal(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	req, _ := m.RequestEquipment(context.Background(), "e1", nil, "m2", "")
	rejected, err := m.Reject(context.Background(), req.ID, "admin")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.RequestRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if _, err := m.Approve(context.Background(), req.ID, "admin"); CodeOf(err) != CodeInvalidTransition {
		t.Fatalf("expected rejected to be terminal, got %v", err)
	}
}

func TestFullRoundTrip(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	req, err := m.RequestEquipment(context.Background(), "e1", nil, "m2", "for shoot")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := m.Approve(context.Background(), req.ID, "m1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	received, err := m.MarkReceived(context.Background(), req.ID, "m1")
	if err != nil {
		t.Fatalf("mark received: %v", err)
	}
	if received.Status != models.RequestReceived {
		t.Fatalf("expected received, got %s", received.Status)
	}
	if store.equipment["e1"].Status != models.EquipmentInUse {
		t.Fatalf("expected equipment in_use, got %s", store.equipment["e1"].Status)
	}
	if store.openLogCount("e1") != 1 {
		t.Fatalf("expected exactly one open log, got %d", store.openLogCount("e1"))
	}

	returned, err := m.MarkReturned(context.Background(), req.ID, "m2")
	if err != nil {
		t.Fatalf("mark returned: %v", err)
	}
	if returned.Status != models.RequestReturned {
		t.Fatalf("expected returned, got %s", returned.Status)
	}
	if store.equipment["e1"].Status != models.EquipmentAvailable {
		t.Fatalf("expected equipment available, got %s", store.equipment["e1"].Status)
	}
	if store.openLogCount("e1") != 0 {
		t.Fatal("expected no open logs after return")
	}

	var closed *models.EquipmentLog
	for _, l := range store.logs {
		if l.EquipmentID == "e1" {
			closed = l
		}
	}
	if closed == nil || closed.ReturnTime == nil {
		t.Fatal("expected one closed log with a return time")
	}
	if closed.ReturnTime.Before(closed.CheckoutTime) {
		t.Fatal("return time before checkout time")
	}
}

func TestMarkReceivedOnlyApprover(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	req, _ := m.RequestEquipment(context.Background(), "e1", nil, "m2", "")
	m.Approve(context.Background(), req.ID, "m1")

	_, err := m.MarkReceived(context.Background(), req.ID, "m2")
	if got := codeOf(t, err); got != CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for non-approver, got %s", got)
	}
}

func TestMarkReceivedConflict(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	first, _ := m.RequestEquipment(context.Background(), "e1", nil, "m2", "")
	second, _ := m.RequestEquipment(context.Background(), "e1", nil, "m2", "")
	m.Approve(context.Background(), first.ID, "m1")
	m.Approve(context.Background(), second.ID, "m1")

	if _, err := m.MarkReceived(context.Background(), first.ID, "m1"); err != nil {
		t.Fatalf("first mark received: %v", err)
	}
	_, err := m.MarkReceived(context.Background(), second.ID, "m1")
	if got := codeOf(t, err); got != CodeConflictingCheckout {
		t.Fatalf("expected CONFLICTING_CHECKOUT, got %s", got)
	}
	if store.openLogCount("e1") != 1 {
		t.Fatalf("expected exactly one open log, got %d", store.openLogCount("e1"))
	}
	if stored := store.requests[second.ID]; stored.Status != models.RequestApproved {
		t.Fatalf("losing request advanced to %s", stored.Status)
	}
}

func TestMarkReceivedRaceFallsBackToConstraint(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	// Simulate the race where the check passes but the uniqueness
	// constraint rejects the insert.
	store.failInsertLog = ErrDuplicateOpenLog
	m := newTestManager(store)

	req, _ := m.RequestEquipment(context.Background(), "e1", nil, "m2", "")
	m.Approve(context.Background(), req.ID, "m1")

	_, err := m.MarkReceived(context.Background(), req.ID, "m1")
	if got := codeOf(t, err); got != CodeConflictingCheckout {
		t.Fatalf("expected CONFLICTING_CHECKOUT from constraint, got %s", got)
	}
	if stored := store.requests[req.ID]; stored.Status != models.RequestApproved {
		t.Fatalf("request advanced despite failed insert: %s", stored.Status)
	}
	if store.equipment["e1"].Status != models.EquipmentAvailable {
		t.Fatalf("equipment status changed despite failed insert: %s", store.equipment["e1"].Status)
	}
}

func TestMarkReceivedEventSetsExpectedReturn(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	end := testTime.Add(6 * time.Hour)
	store.events["ev1"] = &models.Event{ID: "ev1", Title: "Campus shoot", IsApproved: true, EndTime: end}
	m := newTestManager(store)

	eventID := "ev1"
	req, err := m.RequestEquipment(context.Background(), "e1", &eventID, "m2", "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	m.Approve(context.Background(), req.ID, "m1")
	if _, err := m.MarkReceived(context.Background(), req.ID, "m1"); err != nil {
		t.Fatalf("mark received: %v", err)
	}

	var open *models.EquipmentLog
	for _, l := range store.logs {
		if l.EquipmentID == "e1" && l.ReturnTime == nil {
			open = l
		}
	}
	if open == nil {
		t.Fatal("expected an open log")
	}
	if open.ExpectedReturnTime == nil || !open.ExpectedReturnTime.Equal(end) {
		t.Fatalf("expected return time %v, got %v", end, open.ExpectedReturnTime)
	}
	if open.UserID != "m2" {
		t.Fatalf("expected log holder m2, got %s", open.UserID)
	}
}

func TestMarkReturnedOnlyRequester(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	req, _ := m.RequestEquipment(context.Background(), "e1", nil, "m2", "")
	m.Approve(context.Background(), req.ID, "m1")
	m.MarkReceived(context.Background(), req.ID, "m1")

	_, err := m.MarkReturned(context.Background(), req.ID, "m1")
	if got := codeOf(t, err); got != CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for non-requester, got %s", got)
	}
	if store.equipment["e1"].Status != models.EquipmentInUse {
		t.Fatal("equipment state changed on unauthorized return")
	}
}

func TestTransitionRollsBackOnWriteFailure(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	req, err := m.RequestEquipment(context.Background(), "e1", nil, "m2", "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := m.Approve(context.Background(), req.ID, "m1"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	store.failSetStatus = fmt.Errorf("connection reset")
	_, err = m.MarkReceived(context.Background(), req.ID, "m1")
	if err == nil {
		t.Fatal("expected mark received to fail")
	}
	// Nothing from the failed transition may be visible.
	if store.openLogCount("e1") != 0 {
		t.Fatal("log row leaked from failed transition")
	}
	if store.equipment["e1"].Status != models.EquipmentAvailable {
		t.Fatalf("equipment status leaked: %s", store.equipment["e1"].Status)
	}
	if stored := store.requests[req.ID]; stored.Status != models.RequestApproved {
		t.Fatalf("request status leaked: %s", stored.Status)
	}
}

func TestSetStatusRequiresAssignee(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	_, err := m.SetStatus(context.Background(), "e1", models.EquipmentInUse, "admin", "")
	if got := codeOf(t, err); got != CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %s", got)
	}
}

func TestSetStatusInUseOpensLog(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	eq, err := m.SetStatus(context.Background(), "e1", models.EquipmentInUse, "admin", "m2")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if eq.Status != models.EquipmentInUse {
		t.Fatalf("expected in_use, got %s", eq.Status)
	}
	if store.openLogCount("e1") != 1 {
		t.Fatalf("expected one open log, got %d", store.openLogCount("e1"))
	}
}

func TestSetStatusAvailableClosesLog(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	m.SetStatus(context.Background(), "e1", models.EquipmentInUse, "admin", "m2")
	if _, err := m.SetStatus(context.Background(), "e1", models.EquipmentAvailable, "admin", ""); err != nil {
		t.Fatalf("set available: %v", err)
	}
	if store.openLogCount("e1") != 0 {
		t.Fatal("expected open log to be closed")
	}
}

func TestSetStatusMaintenanceForceClosesLog(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	m.SetStatus(context.Background(), "e1", models.EquipmentInUse, "admin", "m2")
	eq, err := m.SetStatus(context.Background(), "e1", models.EquipmentMaintenance, "admin", "")
	if err != nil {
		t.Fatalf("set maintenance: %v", err)
	}
	if eq.Status != models.EquipmentMaintenance {
		t.Fatalf("expected maintenance, got %s", eq.Status)
	}
	if store.openLogCount("e1") != 0 {
		t.Fatal("expected open log force-closed on maintenance")
	}
}

func TestSetStatusUnauthorized(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	_, err := m.SetStatus(context.Background(), "e1", models.EquipmentMaintenance, "m2", "")
	if got := codeOf(t, err); got != CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %s", got)
	}
}

func TestSetStatusNoOp(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	_, err := m.SetStatus(context.Background(), "e1", models.EquipmentAvailable, "admin", "")
	if got := codeOf(t, err); got != CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION for no-op, got %s", got)
	}
}

func TestStatusAgreesWithOpenLogInvariant(t *testing.T) {
	store := newFakeStore()
	seedClub(store)
	m := newTestManager(store)

	check := func(step string) {
		eq := store.equipment["e1"]
		open := store.openLogCount("e1")
		if eq.Status == models.EquipmentInUse && open != 1 {
			t.Fatalf("%s: in_use with %d open logs", step, open)
		}
		if eq.Status != models.EquipmentInUse && open != 0 {
			t.Fatalf("%s: %s with %d open logs", step, eq.Status, open)
		}
	}

	req, _ := m.RequestEquipment(context.Background(), "e1", nil, "m2", "")
	check("after request")
	m.Approve(context.Background(), req.ID, "m1")
	check("after approve")
	m.MarkReceived(context.Background(), req.ID, "m1")
	check("after receive")
	m.MarkReturned(context.Background(), req.ID, "m2")
	check("after return")
	m.SetStatus(context.Background(), "e1", models.EquipmentInUse, "admin", "m2")
	check("after manual checkout")
	m.SetStatus(context.Background(), "e1", models.EquipmentMaintenance, "admin", "")
	check("after maintenance")
}
