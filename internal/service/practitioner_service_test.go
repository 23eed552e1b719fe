package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"wellnesshub/internal/auth"
	"wellnesshub/internal/cache"
	apperr "wellnesshub/internal/errors"
	"wellnesshub/internal/model"
	"wellnesshub/internal/query"
)

func newTestCache(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.Wrap(client), mr
}

func practitionerManager() *auth.Principal {
	return &auth.Principal{
		ID:          uuid.NewString(),
		Role:        auth.RoleManager,
		Status:      auth.StatusActive,
		Permissions: auth.Permissions{auth.PermManagePractitioners},
	}
}

func TestPractitionerService_GetCachesAndHidesInactive(t *testing.T) {
	c, mr := newTestCache(t)
	id := uuid.New()
	mockRepo := new(MockPractitionerRepository)
	mockRepo.On("FindByID", mock.Anything, id).Return(&model.Practitioner{
		ID:     id,
		Name:   "Dana Reyes",
		Status: model.PractitionerInactive,
	}, nil).Once()
	service := NewPractitionerService(mockRepo, c, zap.NewNop())

	p, err := service.Get(context.Background(), id, AudienceAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Dana Reyes", p.Name)
	assert.True(t, mr.Exists("practitioner:"+id.String()))

	// Served from cache: the repository expectation above is Once.
	_, err = service.Get(context.Background(), id, AudiencePublic)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	mockRepo.AssertExpectations(t)
}

func TestPractitionerService_UpdateIsPartial(t *testing.T) {
	c, mr := newTestCache(t)
	id := uuid.New()
	original := &model.Practitioner{
		ID:           id,
		Name:         "Dana Reyes",
		Specialty:    "Acupuncture",
		Location:     "Portland",
		Fees:         model.FeeStructure{ConsultationFee: decimal.NewFromInt(40), SessionFee: decimal.NewFromInt(90), Currency: "USD"},
		SessionTypes: []string{model.SessionInPerson},
		Status:       model.PractitionerActive,
	}
	mockRepo := new(MockPractitionerRepository)
	mockRepo.On("FindByID", mock.Anything, id).Return(original, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Practitioner")).Return(nil)
	require.NoError(t, mr.Set("practitioner:"+id.String(), "{}"))

	actor := practitionerManager()
	fee := decimal.NewFromInt(120)
	service := NewPractitionerService(mockRepo, c, zap.NewNop())
	updated, err := service.Update(context.Background(), actor, id, UpdatePractitionerInput{
		FeeStructure: &FeeStructureInput{SessionFee: &fee},
	})

	require.NoError(t, err)
	assert.True(t, updated.Fees.SessionFee.Equal(fee))
	assert.True(t, updated.Fees.ConsultationFee.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "Acupuncture", updated.Specialty)
	assert.Equal(t, "Portland", updated.Location)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, actor.ID, updated.UpdatedBy.String())
	assert.False(t, mr.Exists("practitioner:"+id.String()))
}

func TestPractitionerService_CreateValidation(t *testing.T) {
	service := NewPractitionerService(new(MockPractitionerRepository), nil, zap.NewNop())
	negative := decimal.NewFromInt(-5)

	tests := []struct {
		name  string
		actor *auth.Principal
		input CreatePractitionerInput
		kind  apperr.Kind
	}{
		{
			name:  "anonymous caller",
			actor: nil,
			input: CreatePractitionerInput{},
			kind:  apperr.KindUnauthenticated,
		},
		{
			name:  "negative fee",
			actor: practitionerManager(),
			input: CreatePractitionerInput{
				Name: "A", Specialty: "B", Email: "a@example.com", Phone: "1", Location: "C",
				FeeStructure: &FeeStructureInput{SessionFee: &negative},
				SessionTypes: []string{model.SessionVirtual},
			},
			kind: apperr.KindValidation,
		},
		{
			name:  "unknown session type",
			actor: practitionerManager(),
			input: CreatePractitionerInput{
				Name: "A", Specialty: "B", Email: "a@example.com", Phone: "1", Location: "C",
				FeeStructure: &FeeStructureInput{},
				SessionTypes: []string{"telepathy"},
			},
			kind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), tt.actor, tt.input)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestPractitionerService_DeleteMissing(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockPractitionerRepository)
	mockRepo.On("Delete", mock.Anything, id).Return(gorm.ErrRecordNotFound)
	service := NewPractitionerService(mockRepo, nil, zap.NewNop())

	err := service.Delete(context.Background(), practitionerManager(), id)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPractitionerFilter(t *testing.T) {
	params := url.Values{
		"search":        {"yoga"},
		"specialty":     {"Yoga,Pilates"},
		"insurance":     {"Aetna"},
		"paymentOption": {"cash", "card"},
		"maxFee":        {"80"},
		"isFeatured":    {"true"},
		"status":        {"inactive"},
		"page":          {"2"},
	}

	public := PractitionerFilter(params, AudiencePublic)
	assert.True(t, public.Has(query.OpIn, model.PractitionerColSpecialty))
	assert.True(t, public.Has(query.OpContainsAny, model.PractitionerColInsurance))
	assert.True(t, public.Has(query.OpContainsAny, model.PractitionerColPaymentOptions))
	assert.True(t, public.Has(query.OpAtMost, model.PractitionerColSessionFee))
	assert.True(t, public.Has(query.OpEqual, model.PractitionerColFeatured))
	for _, c := range public.Clauses {
		if c.Field == model.PractitionerColStatus {
			assert.Equal(t, model.PractitionerActive, c.Value)
		}
	}
	assert.Equal(t, query.Window{Page: 2, Limit: 12, Skip: 12}, public.Window)
	assert.Equal(t, []query.SortKey{
		query.Desc(model.PractitionerColFeatured),
		query.Desc(model.PractitionerColRating),
		query.Asc(model.PractitionerColName),
	}, public.Sort)

	admin := PractitionerFilter(params, AudienceAdmin)
	for _, c := range admin.Clauses {
		if c.Field == model.PractitionerColStatus {
			assert.Equal(t, "inactive", c.Value)
		}
	}
	assert.Equal(t, 20, admin.Window.Limit)

	unfiltered := PractitionerFilter(url.Values{}, AudienceAdmin)
	assert.Empty(t, unfiltered.Clauses)
}
