package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a tenant-owned postal address referencing the shared geography
// tables.
type Address struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Line1     string    `json:"line1" gorm:"type:varchar(150);not null"`
	Line2     string    `json:"line2,omitempty" gorm:"type:varchar(150)"`
	City      string    `json:"city" gorm:"type:varchar(100);not null"`
	ZipCode   string    `json:"zip_code,omitempty" gorm:"type:varchar(20)"`
	CountryID uuid.UUID `json:"country_id" gorm:"type:uuid;not null;index"`
	StateID   uuid.UUID `json:"state_id" gorm:"type:uuid;not null;index"`
	Owned
	AuditFields
	SoftDelete

	Country Country `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	State   State   `json:"state,omitempty" gorm:"foreignKey:StateID"`
}

func (a *Address) PrimaryKey() uuid.UUID { return a.ID }

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
