// internal/models/transporter.go
package models

import (
	"github.com/google/uuid"
)

type Transporter struct {
	BaseModel
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	TradeName string    `json:"trade_name,omitempty" gorm:"size:255"`
	CNPJ      string    `json:"cnpj" gorm:"size:14;index"`
	City      string    `json:"city,omitempty" gorm:"size:100"`
	State     string    `json:"state,omitempty" gorm:"size:2"`

	// Relationships
	Owner User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}
