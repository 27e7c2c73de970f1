// internal/models/vehicle.go
package models

import (
	"github.com/google/uuid"
)

type Vehicle struct {
	BaseModel
	OwnerID     uuid.UUID   `json:"owner_id" gorm:"type:uuid;not null;index"`
	Plate       string      `json:"plate" gorm:"size:8;not null;index"`
	VehicleType VehicleType `json:"vehicle_type" gorm:"type:varchar(20);not null"`
	Renavam     string      `json:"renavam,omitempty" gorm:"size:11"`
	Brand       string      `json:"brand,omitempty" gorm:"size:100"`
	ModelName   string      `json:"model,omitempty" gorm:"size:100;column:model"`
	Year        int         `json:"year,omitempty"`
	AxleCount   int         `json:"axle_count,omitempty"`
	TareWeight  int         `json:"tare_weight,omitempty"` // kg

	// Relationships
	Owner User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}
