package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wellnesshub/internal/auth"
	"wellnesshub/internal/cache"
	apperr "wellnesshub/internal/errors"
	"wellnesshub/internal/model"
	"wellnesshub/internal/query"
	"wellnesshub/internal/repository"
)

const (
	eventCacheTTL      = 5 * time.Minute
	eventDefaultLimit  = 10
	eventAdminLimit    = 20
	eventMaxLimit      = 100
	eventShortcutLimit = 6
)

// CreateEventInput is the payload for creating an event.
type CreateEventInput struct {
	Title           string           `json:"title" validate:"required,max=200"`
	Description     string           `json:"description" validate:"required,max=5000"`
	Date            string           `json:"date" validate:"required"`
	Time            string           `json:"time" validate:"required,datetime=15:04"`
	EndTime         string           `json:"endTime" validate:"omitempty,datetime=15:04"`
	Location        string           `json:"location" validate:"required,max=200"`
	Type            string           `json:"type" validate:"required,oneof=workshop retreat class seminar webinar meetup"`
	Capacity        int              `json:"capacity" validate:"gte=0"`
	RegisteredCount int              `json:"registeredCount" validate:"gte=0"`
	Price           *decimal.Decimal `json:"price"`
	Image           string           `json:"image" validate:"omitempty,max=500"`
	RegistrationURL string           `json:"registrationUrl" validate:"omitempty,url,max=500"`
	Tags            []string         `json:"tags" validate:"omitempty,dive,max=50"`
	IsFeatured      bool             `json:"isFeatured"`
	Status          string           `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

// UpdateEventInput carries only the fields to change.
type UpdateEventInput struct {
	Title           *string          `json:"title" validate:"omitempty,max=200"`
	Description     *string          `json:"description" validate:"omitempty,max=5000"`
	Date            *string          `json:"date"`
	Time            *string          `json:"time" validate:"omitempty,datetime=15:04"`
	EndTime         *string          `json:"endTime" validate:"omitempty,datetime=15:04"`
	Location        *string          `json:"location" validate:"omitempty,max=200"`
	Type            *string          `json:"type" validate:"omitempty,oneof=workshop retreat class seminar webinar meetup"`
	Capacity        *int             `json:"capacity" validate:"omitempty,gte=0"`
	RegisteredCount *int             `json:"registeredCount" validate:"omitempty,gte=0"`
	Price           *decimal.Decimal `json:"price"`
	Image           *string          `json:"image" validate:"omitempty,max=500"`
	RegistrationURL *string          `json:"registrationUrl" validate:"omitempty,url,max=500"`
	Tags            *[]string        `json:"tags" validate:"omitempty,dive,max=50"`
	IsFeatured      *bool            `json:"isFeatured"`
	Status          *string          `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

// EventService manages the events calendar.
type EventService interface {
	List(ctx context.Context, f query.Filter) ([]model.Event, query.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Featured(ctx context.Context) ([]model.Event, error)
	Upcoming(ctx context.Context) ([]model.Event, error)
	Create(ctx context.Context, actor *auth.Principal, in CreateEventInput) (*model.Event, error)
	Update(ctx context.Context, actor *auth.Principal, id uuid.UUID, in UpdateEventInput) (*model.Event, error)
	Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID) error
}

type eventService struct {
	repo   repository.EventRepository
	cache  *cache.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewEventService creates an event service with read-through caching.
func NewEventService(repo repository.EventRepository, cache *cache.Client, logger *zap.Logger) EventService {
	return &eventService{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// EventFilter builds the listing filter. Public listings hide cancelled events and, unless a date
// filter is given, events dated before today.
func EventFilter(params url.Values, audience Audience, now time.Time) query.Filter {
	b := query.NewBuilder().
		Search(params.Get("search"), model.EventSearchFields...).
		In(model.EventColType, query.Values(params, "type")...).
		In(model.EventColStatus, query.Values(params, "status")...).
		Bool(model.EventColFeatured, params.Get("isFeatured")).
		DateBetween(model.EventColDate, params.Get("fromDate"), params.Get("toDate")).
		DateWindow(model.EventColDate, params.Get("dateRange"), now).
		SortBy(
			query.Desc(model.EventColFeatured),
			query.Asc(model.EventColDate),
			query.Asc(model.EventColTime),
		)

	if audience == AudiencePublic {
		b.NotEqual(model.EventColStatus, model.EventCancelled)
		if !b.HasDateFilter(model.EventColDate) {
			b.OnOrAfter(model.EventColDate, startOfDay(now))
		}
		b.Page(params.Get("page"), params.Get("limit"), eventDefaultLimit, eventMaxLimit)
	} else {
		b.Page(params.Get("page"), params.Get("limit"), eventAdminLimit, eventMaxLimit)
	}
	return b.Build()
}

func (s *eventService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("event:%s", id.String())
}

func (s *eventService) List(ctx context.Context, f query.Filter) ([]model.Event, query.Pagination, error) {
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return emptyIfNil(items), f.Pagination(total), nil
}

// Get retrieves an event by ID with caching.
func (s *eventService) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Event
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "event")
	}
	if payload, err := json.Marshal(e); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, eventCacheTTL)
	}
	return e, nil
}

// Featured lists featured events that are still ahead.
func (s *eventService) Featured(ctx context.Context) ([]model.Event, error) {
	f := query.NewBuilder().
		Equal(model.EventColFeatured, true).
		NotEqual(model.EventColStatus, model.EventCancelled).
		OnOrAfter(model.EventColDate, startOfDay(s.now())).
		SortBy(query.Asc(model.EventColDate), query.Asc(model.EventColTime)).
		Page("1", "", eventShortcutLimit, eventShortcutLimit).
		Build()
	items, _, err := s.repo.List(ctx, f)
	return emptyIfNil(items), err
}

// Upcoming lists the next events with status upcoming.
func (s *eventService) Upcoming(ctx context.Context) ([]model.Event, error) {
	f := query.NewBuilder().
		Equal(model.EventColStatus, model.EventUpcoming).
		OnOrAfter(model.EventColDate, startOfDay(s.now())).
		SortBy(query.Asc(model.EventColDate), query.Asc(model.EventColTime)).
		Page("1", "", eventShortcutLimit, eventShortcutLimit).
		Build()
	items, _, err := s.repo.List(ctx, f)
	return emptyIfNil(items), err
}

func (s *eventService) Create(ctx context.Context, actor *auth.Principal, in CreateEventInput) (*model.Event, error) {
	if err := auth.Authorize(actor, auth.HasPermission(auth.PermManageEvents)).Err(); err != nil {
		return nil, err
	}
	date, err := ParseEventDate(in.Date)
	if err != nil {
		return nil, err
	}

	e := &model.Event{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		Date:            date,
		Time:            in.Time,
		EndTime:         in.EndTime,
		Location:        strings.TrimSpace(in.Location),
		Type:            in.Type,
		Capacity:        in.Capacity,
		RegisteredCount: in.RegisteredCount,
		Price:           decimal.Zero,
		Image:           in.Image,
		RegistrationURL: in.RegistrationURL,
		Tags:            emptyIfNil(in.Tags),
		IsFeatured:      in.IsFeatured,
		Status:          model.EventUpcoming,
		Organizer:       actorID(actor),
		CreatedBy:       actorID(actor),
		UpdatedBy:       actorID(actor),
	}
	if in.Price != nil {
		if err := nonNegative("price", *in.Price); err != nil {
			return nil, err
		}
		e.Price = *in.Price
	}
	if in.Status != "" {
		e.Status = in.Status
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update applies only the provided fields and stamps updatedBy.
func (s *eventService) Update(ctx context.Context, actor *auth.Principal, id uuid.UUID, in UpdateEventInput) (*model.Event, error) {
	if err := auth.Authorize(actor, auth.HasPermission(auth.PermManageEvents)).Err(); err != nil {
		return nil, err
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "event")
	}

	setString(&e.Title, in.Title)
	setString(&e.Description, in.Description)
	if in.Date != nil {
		date, err := ParseEventDate(*in.Date)
		if err != nil {
			return nil, err
		}
		e.Date = date
	}
	setString(&e.Time, in.Time)
	setString(&e.EndTime, in.EndTime)
	setString(&e.Location, in.Location)
	setString(&e.Type, in.Type)
	if in.Capacity != nil {
		e.Capacity = *in.Capacity
	}
	if in.RegisteredCount != nil {
		e.RegisteredCount = *in.RegisteredCount
	}
	if in.Price != nil {
		if err := nonNegative("price", *in.Price); err != nil {
			return nil, err
		}
		e.Price = *in.Price
	}
	setString(&e.Image, in.Image)
	setString(&e.RegistrationURL, in.RegistrationURL)
	if in.Tags != nil {
		e.Tags = *in.Tags
	}
	if in.IsFeatured != nil {
		e.IsFeatured = *in.IsFeatured
	}
	setString(&e.Status, in.Status)
	e.UpdatedBy = actorID(actor)

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return e, nil
}

func (s *eventService) Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(actor, auth.HasPermission(auth.PermManageEvents)).Err(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "event")
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	s.logger.Info("event deleted", zap.String("event_id", id.String()), zap.String("actor_id", actor.ID))
	return nil
}

// ParseEventDate accepts YYYY-MM-DD or RFC3339 and keeps the calendar day.
func ParseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperr.Validation("date must be a valid date (YYYY-MM-DD or RFC3339)")
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
