package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Event types.
const (
	EventWorkshop = "workshop"
	EventRetreat  = "retreat"
	EventClass    = "class"
	EventSeminar  = "seminar"
	EventWebinar  = "webinar"
	EventMeetup   = "meetup"
)

// EventStatus values.
const (
	EventUpcoming  = "upcoming"
	EventOngoing   = "ongoing"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

// Event columns used by filters and sorting.
const (
	EventColTitle       = "title"
	EventColDescription = "description"
	EventColLocation    = "location"
	EventColDate        = "date"
	EventColTime        = "time"
	EventColType        = "type"
	EventColStatus      = "status"
	EventColFeatured    = "is_featured"
	EventColPrice       = "price"
)

// EventSearchFields are matched by the search parameter.
var EventSearchFields = []string{EventColTitle, EventColDescription, EventColLocation}

// Event is a scheduled wellness event.
type Event struct {
	ID              uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Title           string          `json:"title" gorm:"size:200;not null;index"`
	Description     string          `json:"description" gorm:"type:text;not null"`
	Date            time.Time       `json:"date" gorm:"type:date;not null;index"`
	Time            string          `json:"time" gorm:"size:5;not null"`
	EndTime         string          `json:"endTime,omitempty" gorm:"size:5"`
	Location        string          `json:"location" gorm:"size:200;not null"`
	Type            string          `json:"type" gorm:"size:20;not null;index"`
	Capacity        int             `json:"capacity" gorm:"default:0"`
	RegisteredCount int             `json:"registeredCount" gorm:"default:0"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	Image           string          `json:"image,omitempty" gorm:"size:500"`
	RegistrationURL string          `json:"registrationUrl,omitempty" gorm:"size:500"`
	Tags            []string        `json:"tags" gorm:"serializer:json;type:json"`
	IsFeatured      bool            `json:"isFeatured" gorm:"default:false;index"`
	Status          string          `json:"status" gorm:"size:20;not null;default:'upcoming';index"`
	Organizer       *uuid.UUID      `json:"organizer,omitempty" gorm:"type:char(36)"`
	CreatedBy       *uuid.UUID      `json:"createdBy,omitempty" gorm:"type:char(36)"`
	UpdatedBy       *uuid.UUID      `json:"updatedBy,omitempty" gorm:"type:char(36)"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// BeforeCreate sets UUID and defaults before creating the record.
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = EventUpcoming
	}
	return nil
}
