// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. IDs are assigned in BeforeCreate rather
// than by a database default so every supported dialect behaves the same.
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if s, sok := value.(string); sok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	UserRoleTransporter UserRole = "transporter"
	UserRoleOperational UserRole = "operational"
	UserRoleSupervisor  UserRole = "supervisor"
	UserRoleAdmin       UserRole = "admin"
)

// IsStaff reports whether the role may act on requests it does not own.
func (r UserRole) IsStaff() bool {
	return r == UserRoleOperational || r == UserRoleSupervisor || r == UserRoleAdmin
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type CombinationType string

const (
	CombinationRoadtrain9Axles CombinationType = "roadtrain_9_axles"
	CombinationBitrain9Axles   CombinationType = "bitrain_9_axles"
	CombinationBitrain7Axles   CombinationType = "bitrain_7_axles"
	CombinationBitrain6Axles   CombinationType = "bitrain_6_axles"
	CombinationFlatbed         CombinationType = "flatbed"
)

func (c CombinationType) Valid() bool {
	switch c {
	case CombinationRoadtrain9Axles, CombinationBitrain9Axles,
		CombinationBitrain7Axles, CombinationBitrain6Axles, CombinationFlatbed:
		return true
	}
	return false
}

type CargoType string

const (
	CargoTypeDry         CargoType = "dry_cargo"
	CargoTypeIndivisible CargoType = "indivisible_cargo"
	CargoTypeOversized   CargoType = "oversized_cargo"
)

type VehicleType string

const (
	VehicleTypeTractorUnit   VehicleType = "tractor_unit"
	VehicleTypeFirstTrailer  VehicleType = "first_trailer"
	VehicleTypeSecondTrailer VehicleType = "second_trailer"
	VehicleTypeDolly         VehicleType = "dolly"
	VehicleTypeFlatbed       VehicleType = "flatbed"
)

// RequestStatus is the rolled-up status of a license request. Apart from the
// automatic convergence to approved when every state approves, it holds
// whatever value staff last set explicitly.
type RequestStatus string

const (
	RequestStatusPending     RequestStatus = "pending"
	RequestStatusUnderReview RequestStatus = "under_review"
	RequestStatusApproved    RequestStatus = "approved"
	RequestStatusRejected    RequestStatus = "rejected"
	RequestStatusCanceled    RequestStatus = "canceled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusUnderReview, RequestStatusApproved,
		RequestStatusRejected, RequestStatusCanceled:
		return true
	}
	return false
}

// StateStatus is the approval status a single state assigns to a request.
type StateStatus string

const (
	StateStatusPendingRegistration    StateStatus = "pending_registration"
	StateStatusRegistrationInProgress StateStatus = "registration_in_progress"
	StateStatusUnderReview            StateStatus = "under_review"
	StateStatusPendingApproval        StateStatus = "pending_approval"
	StateStatusApproved               StateStatus = "approved"
	StateStatusRejected               StateStatus = "rejected"
)

// stateStatusOrder ranks the forward progression of the per-state machine.
// Rejected sits outside the ordering as a side exit.
var stateStatusOrder = map[StateStatus]int{
	StateStatusPendingRegistration:    1,
	StateStatusRegistrationInProgress: 2,
	StateStatusUnderReview:            3,
	StateStatusPendingApproval:        4,
	StateStatusApproved:               5,
}

func (s StateStatus) Valid() bool {
	if s == StateStatusRejected {
		return true
	}
	_, ok := stateStatusOrder[s]
	return ok
}

// Terminal reports whether the status admits no further transitions.
func (s StateStatus) Terminal() bool {
	return s == StateStatusApproved || s == StateStatusRejected
}

// CanTransitionTo reports whether moving from s to next is legal. Forward
// progress is one step at a time; rejection is reachable from any
// non-terminal status; re-applying the current status is an idempotent
// field update.
func (s StateStatus) CanTransitionTo(next StateStatus) bool {
	if !next.Valid() {
		return false
	}
	if next == s {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == StateStatusRejected {
		return true
	}
	return stateStatusOrder[next] == stateStatusOrder[s]+1
}
