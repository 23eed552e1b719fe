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
	practitionerCacheTTL     = 5 * time.Minute
	practitionerDefaultLimit = 12
	practitionerAdminLimit   = 20
	practitionerMaxLimit     = 100
	practitionerSessionOneOf = "in_person virtual group home_visit"
)

// FeeStructureInput is the fee block of a practitioner payload.
type FeeStructureInput struct {
	ConsultationFee *decimal.Decimal `json:"consultationFee"`
	SessionFee      *decimal.Decimal `json:"sessionFee"`
	Currency        *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	SlidingScale    *bool            `json:"slidingScale"`
}

// CreatePractitionerInput is the payload for creating a practitioner.
type CreatePractitionerInput struct {
	Name           string             `json:"name" validate:"required,max=100"`
	Specialty      string             `json:"specialty" validate:"required,max=100"`
	Bio            string             `json:"bio" validate:"omitempty,max=2000"`
	Email          string             `json:"email" validate:"required,email,max=255"`
	Phone          string             `json:"phone" validate:"required,max=30"`
	Website        string             `json:"website" validate:"omitempty,url,max=500"`
	Location       string             `json:"location" validate:"required,max=200"`
	Address        string             `json:"address" validate:"omitempty,max=300"`
	Image          string             `json:"image" validate:"omitempty,max=500"`
	FeeStructure   *FeeStructureInput `json:"feeStructure" validate:"required"`
	SessionTypes   []string           `json:"sessionTypes" validate:"required,min=1,dive,oneof=in_person virtual group home_visit"`
	Insurance      []string           `json:"insurance" validate:"omitempty,dive,max=100"`
	PaymentOptions []string           `json:"paymentOptions" validate:"omitempty,dive,max=100"`
	Languages      []string           `json:"languages" validate:"omitempty,dive,max=50"`
	Rating         *float64           `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount    *int               `json:"reviewCount" validate:"omitempty,gte=0"`
	IsFeatured     bool               `json:"isFeatured"`
	Status         string             `json:"status" validate:"omitempty,oneof=active inactive pending"`
}

// UpdatePractitionerInput carries only the fields to change.
type UpdatePractitionerInput struct {
	Name           *string            `json:"name" validate:"omitempty,max=100"`
	Specialty      *string            `json:"specialty" validate:"omitempty,max=100"`
	Bio            *string            `json:"bio" validate:"omitempty,max=2000"`
	Email          *string            `json:"email" validate:"omitempty,email,max=255"`
	Phone          *string            `json:"phone" validate:"omitempty,max=30"`
	Website        *string            `json:"website" validate:"omitempty,url,max=500"`
	Location       *string            `json:"location" validate:"omitempty,max=200"`
	Address        *string            `json:"address" validate:"omitempty,max=300"`
	Image          *string            `json:"image" validate:"omitempty,max=500"`
	FeeStructure   *FeeStructureInput `json:"feeStructure"`
	SessionTypes   *[]string          `json:"sessionTypes" validate:"omitempty,min=1,dive,oneof=in_person virtual group home_visit"`
	Insurance      *[]string          `json:"insurance" validate:"omitempty,dive,max=100"`
	PaymentOptions *[]string          `json:"paymentOptions" validate:"omitempty,dive,max=100"`
	Languages      *[]string          `json:"languages" validate:"omitempty,dive,max=50"`
	Rating         *float64           `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount    *int               `json:"reviewCount" validate:"omitempty,gte=0"`
	IsFeatured     *bool              `json:"isFeatured"`
	Status         *string            `json:"status" validate:"omitempty,oneof=active inactive pending"`
}

// PractitionerService manages the practitioner directory.
type PractitionerService interface {
	List(ctx context.Context, f query.Filter) ([]model.Practitioner, query.Pagination, error)
	Get(ctx context.Context, id uuid.UUID, audience Audience) (*model.Practitioner, error)
	Create(ctx context.Context, actor *auth.Principal, in CreatePractitionerInput) (*model.Practitioner, error)
	Update(ctx context.Context, actor *auth.Principal, id uuid.UUID, in UpdatePractitionerInput) (*model.Practitioner, error)
	Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID) error
	ToggleFeatured(ctx context.Context, actor *auth.Principal, id uuid.UUID) (*model.Practitioner, error)
}

type practitionerService struct {
	repo   repository.PractitionerRepository
	cache  *cache.Client
	logger *zap.Logger
}

// NewPractitionerService creates a practitioner service with read-through caching.
func NewPractitionerService(repo repository.PractitionerRepository, cache *cache.Client, logger *zap.Logger) PractitionerService {
	return &practitionerService{repo: repo, cache: cache, logger: logger}
}

// PractitionerFilter builds the listing filter. Public listings only show active practitioners.
func PractitionerFilter(params url.Values, audience Audience) query.Filter {
	b := query.NewBuilder().
		Search(params.Get("search"), model.PractitionerSearchFields...).
		In(model.PractitionerColSpecialty, query.Values(params, "specialty")...).
		Search(params.Get("location"), model.PractitionerColLocation).
		ContainsAny(model.PractitionerColInsurance, query.Values(params, "insurance")...).
		ContainsAny(model.PractitionerColPaymentOptions, query.Values(params, "paymentOption")...).
		ContainsAny(model.PractitionerColSessionTypes, query.Values(params, "sessionType")...).
		AtMost(model.PractitionerColSessionFee, params.Get("maxFee")).
		Bool(model.PractitionerColFeatured, params.Get("isFeatured")).
		SortBy(
			query.Desc(model.PractitionerColFeatured),
			query.Desc(model.PractitionerColRating),
			query.Asc(model.PractitionerColName),
		)

	if audience == AudiencePublic {
		b.Equal(model.PractitionerColStatus, model.PractitionerActive).
			Page(params.Get("page"), params.Get("limit"), practitionerDefaultLimit, practitionerMaxLimit)
	} else {
		b.In(model.PractitionerColStatus, query.Values(params, "status")...).
			Page(params.Get("page"), params.Get("limit"), practitionerAdminLimit, practitionerMaxLimit)
	}
	return b.Build()
}

func (s *practitionerService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("practitioner:%s", id.String())
}

func (s *practitionerService) List(ctx context.Context, f query.Filter) ([]model.Practitioner, query.Pagination, error) {
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return emptyIfNil(items), f.Pagination(total), nil
}

// Get retrieves a practitioner by ID with caching. Public callers never see inactive records.
func (s *practitionerService) Get(ctx context.Context, id uuid.UUID, audience Audience) (*model.Practitioner, error) {
	var p *model.Practitioner
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Practitioner
		if err := json.Unmarshal(data, &cached); err == nil {
			p = &cached
		}
	}

	if p == nil {
		found, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, notFoundOr(err, "practitioner")
		}
		p = found
		if payload, err := json.Marshal(p); err == nil {
			_ = s.cache.Set(ctx, s.cacheKey(id), payload, practitionerCacheTTL)
		}
	}

	if audience == AudiencePublic && p.Status != model.PractitionerActive {
		return nil, apperr.NotFound("practitioner not found")
	}
	return p, nil
}

func (s *practitionerService) Create(ctx context.Context, actor *auth.Principal, in CreatePractitionerInput) (*model.Practitioner, error) {
	if err := auth.Authorize(actor, auth.HasPermission(auth.PermManagePractitioners)).Err(); err != nil {
		return nil, err
	}
	if in.FeeStructure == nil {
		return nil, apperr.Validation("feeStructure is required")
	}

	p := &model.Practitioner{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(in.Name),
		Specialty:      strings.TrimSpace(in.Specialty),
		Bio:            in.Bio,
		Email:          normalizeEmail(in.Email),
		Phone:          in.Phone,
		Website:        in.Website,
		Location:       strings.TrimSpace(in.Location),
		Address:        in.Address,
		Image:          in.Image,
		Fees:           model.FeeStructure{Currency: "USD"},
		SessionTypes:   in.SessionTypes,
		Insurance:      emptyIfNil(in.Insurance),
		PaymentOptions: emptyIfNil(in.PaymentOptions),
		Languages:      emptyIfNil(in.Languages),
		IsFeatured:     in.IsFeatured,
		Status:         model.PractitionerActive,
		CreatedBy:      actorID(actor),
		UpdatedBy:      actorID(actor),
	}
	if err := applyFees(&p.Fees, in.FeeStructure); err != nil {
		return nil, err
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.ReviewCount != nil {
		p.ReviewCount = *in.ReviewCount
	}
	if in.Status != "" {
		p.Status = in.Status
	}
	if err := validateSessionTypes(p.SessionTypes); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, conflictOr(err, "a practitioner with these details already exists")
	}
	return p, nil
}

// Update applies only the provided fields and stamps updatedBy.
func (s *practitionerService) Update(ctx context.Context, actor *auth.Principal, id uuid.UUID, in UpdatePractitionerInput) (*model.Practitioner, error) {
	if err := auth.Authorize(actor, auth.HasPermission(auth.PermManagePractitioners)).Err(); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "practitioner")
	}

	setString(&p.Name, in.Name)
	setString(&p.Specialty, in.Specialty)
	setString(&p.Bio, in.Bio)
	if in.Email != nil {
		p.Email = normalizeEmail(*in.Email)
	}
	setString(&p.Phone, in.Phone)
	setString(&p.Website, in.Website)
	setString(&p.Location, in.Location)
	setString(&p.Address, in.Address)
	setString(&p.Image, in.Image)
	setString(&p.Status, in.Status)
	if in.FeeStructure != nil {
		if err := applyFees(&p.Fees, in.FeeStructure); err != nil {
			return nil, err
		}
	}
	if in.SessionTypes != nil {
		if err := validateSessionTypes(*in.SessionTypes); err != nil {
			return nil, err
		}
		p.SessionTypes = *in.SessionTypes
	}
	if in.Insurance != nil {
		p.Insurance = *in.Insurance
	}
	if in.PaymentOptions != nil {
		p.PaymentOptions = *in.PaymentOptions
	}
	if in.Languages != nil {
		p.Languages = *in.Languages
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.ReviewCount != nil {
		p.ReviewCount = *in.ReviewCount
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	p.UpdatedBy = actorID(actor)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, conflictOr(err, "a practitioner with these details already exists")
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return p, nil
}

func (s *practitionerService) Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(actor, auth.HasPermission(auth.PermManagePractitioners)).Err(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "practitioner")
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	s.logger.Info("practitioner deleted", zap.String("practitioner_id", id.String()), zap.String("actor_id", actor.ID))
	return nil
}

// ToggleFeatured flips the featured flag.
func (s *practitionerService) ToggleFeatured(ctx context.Context, actor *auth.Principal, id uuid.UUID) (*model.Practitioner, error) {
	if err := auth.Authorize(actor, auth.HasPermission(auth.PermManagePractitioners)).Err(); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "practitioner")
	}
	featured := !p.IsFeatured
	return s.Update(ctx, actor, id, UpdatePractitionerInput{IsFeatured: &featured})
}

func applyFees(dst *model.FeeStructure, in *FeeStructureInput) error {
	if in.ConsultationFee != nil {
		if err := nonNegative("feeStructure.consultationFee", *in.ConsultationFee); err != nil {
			return err
		}
		dst.ConsultationFee = *in.ConsultationFee
	}
	if in.SessionFee != nil {
		if err := nonNegative("feeStructure.sessionFee", *in.SessionFee); err != nil {
			return err
		}
		dst.SessionFee = *in.SessionFee
	}
	if in.Currency != nil {
		dst.Currency = strings.ToUpper(*in.Currency)
	}
	if in.SlidingScale != nil {
		dst.SlidingScale = *in.SlidingScale
	}
	return nil
}

func validateSessionTypes(types []string) error {
	if len(types) == 0 {
		return apperr.Validation("sessionTypes must contain at least one entry")
	}
	for _, t := range types {
		if !strings.Contains(" "+practitionerSessionOneOf+" ", " "+t+" ") {
			return apperr.Validation(fmt.Sprintf("sessionTypes must be one of: %s", practitionerSessionOneOf))
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
