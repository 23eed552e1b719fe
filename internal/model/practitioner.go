package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Session types a practitioner may offer.
const (
	SessionInPerson  = "in_person"
	SessionVirtual   = "virtual"
	SessionGroup     = "group"
	SessionHomeVisit = "home_visit"
)

// Practitioner statuses.
const (
	PractitionerActive   = "active"
	PractitionerInactive = "inactive"
	PractitionerPending  = "pending"
)

// Practitioner columns used by filters and sorting.
const (
	PractitionerColName           = "name"
	PractitionerColSpecialty      = "specialty"
	PractitionerColBio            = "bio"
	PractitionerColLocation       = "location"
	PractitionerColInsurance      = "insurance"
	PractitionerColPaymentOptions = "payment_options"
	PractitionerColSessionTypes   = "session_types"
	PractitionerColSessionFee     = "fee_session_fee"
	PractitionerColRating         = "rating"
	PractitionerColFeatured       = "is_featured"
	PractitionerColStatus         = "status"
)

// PractitionerSearchFields are matched by the search parameter.
var PractitionerSearchFields = []string{PractitionerColName, PractitionerColSpecialty, PractitionerColBio}

// FeeStructure describes how a practitioner charges.
type FeeStructure struct {
	ConsultationFee decimal.Decimal `json:"consultationFee" gorm:"type:decimal(10,2);not null;default:0"`
	SessionFee      decimal.Decimal `json:"sessionFee" gorm:"type:decimal(10,2);not null;default:0"`
	Currency        string          `json:"currency" gorm:"size:3;not null;default:'USD'"`
	SlidingScale    bool            `json:"slidingScale" gorm:"default:false"`
}

// Practitioner is a wellness professional listed in the directory.
type Practitioner struct {
	ID             uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Name           string       `json:"name" gorm:"size:100;not null;index"`
	Specialty      string       `json:"specialty" gorm:"size:100;not null;index"`
	Bio            string       `json:"bio,omitempty" gorm:"type:text"`
	Email          string       `json:"email" gorm:"size:255;not null"`
	Phone          string       `json:"phone" gorm:"size:30;not null"`
	Website        string       `json:"website,omitempty" gorm:"size:500"`
	Location       string       `json:"location" gorm:"size:200;not null;index"`
	Address        string       `json:"address,omitempty" gorm:"size:300"`
	Image          string       `json:"image,omitempty" gorm:"size:500"`
	Fees           FeeStructure `json:"feeStructure" gorm:"embedded;embeddedPrefix:fee_"`
	SessionTypes   []string     `json:"sessionTypes" gorm:"serializer:json;type:json"`
	Insurance      []string     `json:"insurance" gorm:"serializer:json;type:json"`
	PaymentOptions []string     `json:"paymentOptions" gorm:"serializer:json;type:json"`
	Languages      []string     `json:"languages" gorm:"serializer:json;type:json"`
	Rating         float64      `json:"rating" gorm:"default:0;index"`
	ReviewCount    int          `json:"reviewCount" gorm:"default:0"`
	IsFeatured     bool         `json:"isFeatured" gorm:"default:false;index"`
	Status         string       `json:"status" gorm:"size:20;not null;default:'active';index"`
	CreatedBy      *uuid.UUID   `json:"createdBy,omitempty" gorm:"type:char(36)"`
	UpdatedBy      *uuid.UUID   `json:"updatedBy,omitempty" gorm:"type:char(36)"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// BeforeCreate sets UUID and defaults before creating the record.
func (p *Practitioner) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PractitionerActive
	}
	if p.Fees.Currency == "" {
		p.Fees.Currency = "USD"
	}
	return nil
}
