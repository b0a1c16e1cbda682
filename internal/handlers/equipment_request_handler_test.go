package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"filmsoc-backend/internal/lifecycle"
	"filmsoc-backend/internal/middleware"
	"filmsoc-backend/internal/models"

	"github.com/gorilla/mux"
)

type fakeLifecycle struct {
	request *models.EquipmentRequest
	err     error
}

func (f *fakeLifecycle) RequestEquipment(ctx context.Context, equipmentID string, eventID *string, requesterID, notes string) (*models.EquipmentRequest, error) {
	return f.request, f.err
}
func (f *fakeLifecycle) Approve(ctx context.Context, requestID, approverID string) (*models.EquipmentRequest, error) {
	return f.request, f.err
}
func (f *fakeLifecycle) Reject(ctx context.Context, requestID, approverID string) (*models.EquipmentRequest, error) {
	return f.request, f.err
}
func (f *fakeLifecycle) MarkReceived(ctx context.Context, requestID, actorID string) (*models.EquipmentRequest, error) {
	return f.request, f.err
}
func (f *fakeLifecycle) MarkReturned(ctx context.Context, requestID, actorID string) (*models.EquipmentRequest, error) {
	return f.request, f.err
}
func (f *fakeLifecycle) SetStatus(ctx context.Context, equipmentID, newStatus, actorID, assignedUserID string) (*models.Equipment, error) {
	return nil, f.err
}

func doRequest(t *testing.T, h http.HandlerFunc, method, path, body string, vars map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, "member-1")
	ctx = context.WithValue(ctx, middleware.IsAdminKey, false)
	req = req.WithContext(ctx)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}

	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestCreateRequestReturnsCreated(t *testing.T) {
	fake := &fakeLifecycle{
		request: &models.EquipmentRequest{ID: "req-1", Status: models.RequestPending},
	}
	h := NewEquipmentRequestHandler(fake, nil)

	rec := doRequest(t, h.CreateRequest, http.MethodPost, "/api/requests",
		`{"equipment_id":"eq-1","notes":"weekend shoot"}`, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var got models.EquipmentRequest
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "req-1" || got.Status != models.RequestPending {
		t.Fatalf("response = %+v", got)
	}
}

func TestCreateRequestRejectsBadBody(t *testing.T) {
	h := NewEquipmentRequestHandler(&fakeLifecycle{}, nil)

	rec := doRequest(t, h.CreateRequest, http.MethodPost, "/api/requests", `{not json`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLifecycleErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &lifecycle.Error{Code: lifecycle.CodeNotFound, Message: "request req-9 not found"}, http.StatusNotFound},
		{"invalid transition", &lifecycle.Error{Code: lifecycle.CodeInvalidTransition, Message: "request is rejected"}, http.StatusConflict},
		{"unauthorized", &lifecycle.Error{Code: lifecycle.CodeUnauthorized, Message: "only the approver may act"}, http.StatusForbidden},
		{"conflicting checkout", &lifecycle.Error{Code: lifecycle.CodeConflictingCheckout, Message: "equipment already checked out"}, http.StatusConflict},
		{"validation", &lifecycle.Error{Code: lifecycle.CodeValidation, Message: "event is not approved"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewEquipmentRequestHandler(&fakeLifecycle{err: tc.err}, nil)

			rec := doRequest(t, h.Approve, http.MethodPost, "/api/requests/req-9/approve", "",
				map[string]string{"id": "req-9"})

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}

			var body struct {
				Code string `json:"code"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body.Code != string(lifecycle.CodeOf(tc.err)) {
				t.Fatalf("code = %q, want %q", body.Code, lifecycle.CodeOf(tc.err))
			}
		})
	}
}
