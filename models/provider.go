package models

import (
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MaxWorkImages caps the work-sample gallery of a provider.
const MaxWorkImages = 6

var ErrNoAreas = errors.New("provider must serve at least one area")

// Rating is the review aggregate of a provider.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Provider is a business profile owned by exactly one Account.
// UserID is never rendered to clients.
type Provider struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"-" gorm:"uniqueIndex:idx_providers_user_id;not null"`
	Name         string         `json:"name" gorm:"not null"`
	Email        string         `json:"email" gorm:"not null"`
	Phone        string         `json:"phone" gorm:"not null"`
	ServiceType  string         `json:"serviceType" gorm:"not null;index:idx_providers_city_areas_type,priority:3"`
	City         string         `json:"city" gorm:"not null;index:idx_providers_city_areas_type,priority:1"`
	Areas        pq.StringArray `json:"areas" gorm:"type:text[];not null;index:idx_providers_city_areas_type,priority:2"`
	Description  string         `json:"description" gorm:"type:text;not null"`
	ProfileImage *string        `json:"profileImage"`
	WorkImages   pq.StringArray `json:"workImages" gorm:"type:text[]"`
	Rating       Rating         `json:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	Verified     bool           `json:"verified" gorm:"not null"`
	IsActive     bool           `json:"isActive" gorm:"not null;index"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"index"`
}

// HasArea reports whether area is one of the served areas.
func (p *Provider) HasArea(area string) bool {
	for _, a := range p.Areas {
		if a == area {
			return true
		}
	}
	return false
}

// ProviderSummary is what a caller needs to redirect to an existing profile.
type ProviderSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	ServiceType string `json:"serviceType"`
}

func (p *Provider) Summary() ProviderSummary {
	return ProviderSummary{ID: p.ID, Name: p.Name, ServiceType: p.ServiceType}
}

// BeforeCreate enforces the non-empty areas invariant at the storage boundary.
func (p *Provider) BeforeCreate(tx *gorm.DB) error {
	if len(p.Areas) == 0 {
		return ErrNoAreas
	}
	if p.WorkImages == nil {
		p.WorkImages = pq.StringArray{}
	}
	return nil
}
