package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"filmsoc-backend/internal/cache"
	"filmsoc-backend/internal/models"
	"filmsoc-backend/internal/repositories"
	"filmsoc-backend/internal/timeutil"

	"github.com/google/uuid"
)

type EventService struct {
	Repo            *repositories.EventRepository
	ParticipantRepo *repositories.EventParticipantRepository
}

func NewEventService(repo *repositories.EventRepository, participantRepo *repositories.EventParticipantRepository) *EventService {
	return &EventService{
		Repo:            repo,
		ParticipantRepo: participantRepo,
	}
}

// CreateEvent registers a new event proposal. Events start unapproved;
// equipment can only be requested against them once an admin approves.
func (s *EventService) CreateEvent(ctx context.Context, creatorID string, req *models.CreateEventRequest) (*models.Event, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	if !models.ValidEventType(req.EventType) {
		return nil, errors.New("unknown event type")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return nil, errors.New("start_time and end_time are required")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, errors.New("end_time must be after start_time")
	}

	now := timeutil.Now()
	e := &models.Event{
		ID:        uuid.NewString(),
		Title:     req.Title,
		EventType: req.EventType,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != "" {
		e.Description = &req.Description
	}
	if req.Location != "" {
		e.Location = &req.Location
	}

	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}

	cache.InvalidateEventCaches(ctx)
	return e, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.Repo.Get(ctx, id)
}

// ListUpcoming returns approved events starting after now, cached
// briefly for the landing page calendar
func (s *EventService) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	if data, ok := cache.GetCached(ctx, cache.EventsUpcomingKey); ok {
		var events []models.Event
		if err := json.Unmarshal(data, &events); err == nil {
			return events, nil
		}
	}

	events, err := s.Repo.ListUpcoming(ctx, timeutil.Now())
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(events); err == nil {
		cache.SetCached(ctx, cache.EventsUpcomingKey, data, 1*time.Minute)
	}
	return events, nil
}

// ListRange returns events overlapping [from, to]
func (s *EventService) ListRange(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	return s.Repo.ListRange(ctx, from, to)
}

// ListPendingApproval returns the admin approval queue
func (s *EventService) ListPendingApproval(ctx context.Context) ([]models.Event, error) {
	return s.Repo.ListPendingApproval(ctx)
}

// UpdateEvent edits an event; only the creator or an admin may edit
func (s *EventService) UpdateEvent(ctx context.Context, id, callerID string, isAdmin bool, req *models.UpdateEventRequest) (*models.Event, error) {
	e, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.CreatedBy != callerID && !isAdmin {
		return nil, errors.New("only the creator or an admin may edit an event")
	}

	if req.Title != "" {
		e.Title = req.Title
	}
	if req.Description != "" {
		e.Description = &req.Description
	}
	if req.Location != "" {
		e.Location = &req.Location
	}
	if req.EventType != "" {
		if !models.ValidEventType(req.EventType) {
			return nil, errors.New("unknown event type")
		}
		e.EventType = req.EventType
	}
	if !req.StartTime.IsZero() {
		e.StartTime = req.StartTime.UTC()
	}
	if !req.EndTime.IsZero() {
		e.EndTime = req.EndTime.UTC()
	}
	if !e.EndTime.After(e.StartTime) {
		return nil, errors.New("end_time must be after start_time")
	}

	if err := s.Repo.Update(ctx, e); err != nil {
		return nil, err
	}

	cache.InvalidateEventCaches(ctx)
	return e, nil
}

// ApproveEvent marks an event approved by an admin
func (s *EventService) ApproveEvent(ctx context.Context, id, approverID string) error {
	if err := s.Repo.Approve(ctx, id, approverID); err != nil {
		return err
	}
	cache.InvalidateEventCaches(ctx)
	return nil
}

// DeleteEvent removes an event; only the creator or an admin
func (s *EventService) DeleteEvent(ctx context.Context, id, callerID string, isAdmin bool) error {
	e, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.CreatedBy != callerID && !isAdmin {
		return errors.New("only the creator or an admin may delete an event")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateEventCaches(ctx)
	return nil
}

// Join adds the caller to an event's participant list
func (s *EventService) Join(ctx context.Context, eventID, userID string) error {
	if _, err := s.Repo.Get(ctx, eventID); err != nil {
		return err
	}
	if err := s.ParticipantRepo.Join(ctx, eventID, userID); err != nil {
		return err
	}
	cache.InvalidateEventCaches(ctx)
	return nil
}

// Leave removes the caller from an event's participant list
func (s *EventService) Leave(ctx context.Context, eventID, userID string) error {
	if err := s.ParticipantRepo.Leave(ctx, eventID, userID); err != nil {
		return err
	}
	cache.InvalidateEventCaches(ctx)
	return nil
}

// Participants lists who has joined an event
func (s *EventService) Participants(ctx context.Context, eventID string) ([]models.EventParticipant, error) {
	return s.ParticipantRepo.ListByEvent(ctx, eventID)
}
