package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Country is shared reference geography, not tenant-owned.
type Country struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name   string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	ISO2   string    `json:"iso2" gorm:"type:char(2);uniqueIndex;not null"`
	Active bool      `json:"active" gorm:"default:true"`
	AuditFields

	States []State `json:"states,omitempty" gorm:"foreignKey:CountryID"`
}

func (c *Country) PrimaryKey() uuid.UUID { return c.ID }

func (c *Country) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// State is a subdivision of a country.
type State struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_state_country"`
	Code      string    `json:"code,omitempty" gorm:"type:varchar(10)"`
	CountryID uuid.UUID `json:"country_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_state_country"`
	Active    bool      `json:"active" gorm:"default:true"`
	AuditFields
}

func (s *State) PrimaryKey() uuid.UUID { return s.ID }

func (s *State) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
