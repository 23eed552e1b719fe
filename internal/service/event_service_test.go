package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wellnesshub/internal/auth"
	apperr "wellnesshub/internal/errors"
	"wellnesshub/internal/model"
	"wellnesshub/internal/query"
)

func eventManager() *auth.Principal {
	return &auth.Principal{
		ID:          uuid.NewString(),
		Role:        auth.RoleStaff,
		Status:      auth.StatusActive,
		Permissions: auth.Permissions{auth.PermManageEvents},
	}
}

func dateClause(t *testing.T, f query.Filter) query.Clause {
	t.Helper()
	for _, c := range f.Clauses {
		if c.Op == query.OpDateRange && c.Field == model.EventColDate {
			return c
		}
	}
	t.Fatalf("no date clause in %+v", f.Clauses)
	return query.Clause{}
}

func TestEventService_UpdateTouchesOnlyProvidedFields(t *testing.T) {
	id := uuid.New()
	date := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	original := &model.Event{
		ID:          id,
		Title:       "Sound Bath",
		Description: "Evening session",
		Date:        date,
		Time:        "18:30",
		Location:    "Studio 4",
		Type:        model.EventClass,
		Capacity:    20,
		Price:       decimal.NewFromInt(25),
		Tags:        []string{"relax"},
		Status:      model.EventUpcoming,
	}
	mockRepo := new(MockEventRepository)
	mockRepo.On("FindByID", mock.Anything, id).Return(original, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Event")).Return(nil)

	actor := eventManager()
	capacity := 30
	service := NewEventService(mockRepo, nil, zap.NewNop())
	updated, err := service.Update(context.Background(), actor, id, UpdateEventInput{Capacity: &capacity})

	require.NoError(t, err)
	assert.Equal(t, 30, updated.Capacity)
	assert.Equal(t, "Sound Bath", updated.Title)
	assert.Equal(t, "Evening session", updated.Description)
	assert.Equal(t, date, updated.Date)
	assert.Equal(t, "18:30", updated.Time)
	assert.Equal(t, "Studio 4", updated.Location)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, []string{"relax"}, updated.Tags)
	assert.Equal(t, model.EventUpcoming, updated.Status)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, actor.ID, updated.UpdatedBy.String())
	mockRepo.AssertExpectations(t)
}

func TestEventService_CreateRequiresPermission(t *testing.T) {
	mockRepo := new(MockEventRepository)
	service := NewEventService(mockRepo, nil, zap.NewNop())
	support := &auth.Principal{ID: uuid.NewString(), Role: auth.RoleSupport, Status: auth.StatusActive}

	_, err := service.Create(context.Background(), support, CreateEventInput{Title: "x"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEventService_CreateDefaults(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Event")).Return(nil)
	actor := eventManager()
	service := NewEventService(mockRepo, nil, zap.NewNop())

	e, err := service.Create(context.Background(), actor, CreateEventInput{
		Title:       "Forest Walk",
		Description: "Guided walk",
		Date:        "2026-11-14T09:00:00Z",
		Time:        "09:00",
		Location:    "Trailhead",
		Type:        model.EventMeetup,
	})

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC), e.Date)
	assert.Equal(t, model.EventUpcoming, e.Status)
	assert.True(t, e.Price.IsZero())
	assert.Equal(t, []string{}, e.Tags)
	require.NotNil(t, e.Organizer)
	assert.Equal(t, actor.ID, e.Organizer.String())
}

func TestParseEventDate(t *testing.T) {
	_, err := ParseEventDate("next tuesday")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	d, err := ParseEventDate("2026-12-01")
	require.NoError(t, err)
	assert.Equal(t, time.December, d.Month())
}

func TestEventFilter_DefaultDateBehaviour(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 4, 5, 0, time.UTC)
	today := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	t.Run("public listing hides past and cancelled events", func(t *testing.T) {
		f := EventFilter(url.Values{}, AudiencePublic, now)
		assert.True(t, f.Has(query.OpNotEqual, model.EventColStatus))
		c := dateClause(t, f)
		require.NotNil(t, c.From)
		assert.Equal(t, today, *c.From)
		assert.Nil(t, c.Until)
	})

	t.Run("explicit range replaces the default lower bound", func(t *testing.T) {
		f := EventFilter(url.Values{"fromDate": {"2026-01-01"}, "toDate": {"2026-01-31"}}, AudiencePublic, now)
		c := dateClause(t, f)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *c.From)
		assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), *c.Until)
		count := 0
		for _, cl := range f.Clauses {
			if cl.Op == query.OpDateRange {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("named window", func(t *testing.T) {
		f := EventFilter(url.Values{"dateRange": {"nextMonth"}}, AudiencePublic, now)
		c := dateClause(t, f)
		assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), *c.From)
		assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), *c.Until)
	})

	t.Run("admin listing is unrestricted", func(t *testing.T) {
		f := EventFilter(url.Values{}, AudienceAdmin, now)
		assert.Empty(t, f.Clauses)
		assert.Equal(t, 20, f.Window.Limit)
	})
}
