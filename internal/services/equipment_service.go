package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"filmsoc-backend/internal/cache"
	"filmsoc-backend/internal/models"
	"filmsoc-backend/internal/repositories"
	"filmsoc-backend/internal/timeutil"

	"github.com/google/uuid"
)

type EquipmentService struct {
	Repo        *repositories.EquipmentRepository
	RequestRepo *repositories.EquipmentRequestRepository
	LogRepo     *repositories.EquipmentLogRepository
}

func NewEquipmentService(
	repo *repositories.EquipmentRepository,
	requestRepo *repositories.EquipmentRequestRepository,
	logRepo *repositories.EquipmentLogRepository,
) *EquipmentService {
	return &EquipmentService{
		Repo:        repo,
		RequestRepo: requestRepo,
		LogRepo:     logRepo,
	}
}

// CreateEquipment registers a new inventory item, always starting as
// available with no open log
func (s *EquipmentService) CreateEquipment(ctx context.Context, req *models.CreateEquipmentRequest) (*models.Equipment, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if !models.ValidEquipmentType(req.Type) {
		return nil, fmt.Errorf("unknown equipment type %q", req.Type)
	}
	switch req.OwnershipType {
	case models.OwnershipHall:
		if req.OwnerID != nil {
			return nil, errors.New("hall equipment cannot have an owner")
		}
	case models.OwnershipStudent:
		if req.OwnerID == nil || *req.OwnerID == "" {
			return nil, errors.New("student-owned equipment requires owner_id")
		}
	default:
		return nil, fmt.Errorf("unknown ownership type %q", req.OwnershipType)
	}

	now := timeutil.Now()
	e := &models.Equipment{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Type:          req.Type,
		ParentID:      req.ParentID,
		OwnershipType: req.OwnershipType,
		OwnerID:       req.OwnerID,
		Status:        models.EquipmentAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Subtype != "" {
		e.Subtype = &req.Subtype
	}
	if req.Details != "" {
		e.Details = &req.Details
	}

	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}

	cache.InvalidateEquipmentCaches(ctx)
	return e, nil
}

// GetEquipment returns the detail view: the item, its open log if any,
// the pending request queue, and mounted attachments
func (s *EquipmentService) GetEquipment(ctx context.Context, id string) (*models.EquipmentDetail, error) {
	e, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.EquipmentDetail{Equipment: e}

	logs, err := s.LogRepo.ListByEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range logs {
		if logs[i].Open() {
			detail.OpenLog = &logs[i]
			break
		}
	}

	detail.PendingRequests, err = s.RequestRepo.ListPendingForEquipment(ctx, id)
	if err != nil {
		return nil, err
	}

	detail.Attachments, err = s.Repo.ListChildren(ctx, id)
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// ListEquipment returns inventory matching the filter, cached briefly
// since the landing page polls it
func (s *EquipmentService) ListEquipment(ctx context.Context, f repositories.EquipmentFilter) ([]models.Equipment, error) {
	key := fmt.Sprintf(cache.EquipmentListKeyFmt,
		f.Type+":"+f.Status+":"+f.OwnershipType+":"+f.OwnerID)

	if data, ok := cache.GetCached(ctx, key); ok {
		var items []models.Equipment
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
	}

	items, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		cache.SetCached(ctx, key, data, 1*time.Minute)
	}
	return items, nil
}

// UpdateEquipment edits descriptive fields. Status is owned by the
// lifecycle manager and never changes here.
func (s *EquipmentService) UpdateEquipment(ctx context.Context, id string, req *models.UpdateEquipmentRequest) (*models.Equipment, error) {
	e, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		e.Name = req.Name
	}
	if req.Subtype != "" {
		e.Subtype = &req.Subtype
	}
	if req.ParentID != nil {
		if *req.ParentID == "" {
			e.ParentID = nil
		} else {
			e.ParentID = req.ParentID
		}
	}
	if req.Details != "" {
		e.Details = &req.Details
	}

	if err := s.Repo.UpdateInfo(ctx, e); err != nil {
		return nil, err
	}

	cache.InvalidateEquipmentCaches(ctx)
	return e, nil
}

// DeleteEquipment removes an item; refused while a checkout is open
func (s *EquipmentService) DeleteEquipment(ctx context.Context, id string) error {
	logs, err := s.LogRepo.ListByEquipment(ctx, id)
	if err != nil {
		return err
	}
	for i := range logs {
		if logs[i].Open() {
			return errors.New("equipment has an open checkout")
		}
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateEquipmentCaches(ctx)
	return nil
}
