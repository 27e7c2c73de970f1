// internal/models/license_request.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// StateApproval is the approval record one state keeps for a request. It is
// stored inside a keyed JSON column, never as a delimited string, so the
// per-state invariants are enforceable by the type system.
type StateApproval struct {
	Status                StateStatus `json:"status"`
	ValidUntil            *time.Time  `json:"valid_until,omitempty"`
	ExternalLicenseNumber string      `json:"external_license_number,omitempty"`
	AttachmentURL         string      `json:"attachment_url,omitempty"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// StateApprovalMap maps a two-letter state code to that state's approval
// record. Keys are always a subset of the request's requested states.
type StateApprovalMap map[string]StateApproval

func (m StateApprovalMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *StateApprovalMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
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

	return json.Unmarshal(bytes, m)
}

// AdditionalPlate covers a coupled unit not represented by one of the five
// typed vehicle slots.
type AdditionalPlate struct {
	Plate       string      `json:"plate"`
	VehicleType VehicleType `json:"vehicle_type"`
	DocumentURL string      `json:"document_url,omitempty"`
}

type AdditionalPlateList []AdditionalPlate

func (l AdditionalPlateList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *AdditionalPlateList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
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

	return json.Unmarshal(bytes, l)
}

// LicenseRequest is the AET request aggregate. Dimensions are whole
// centimeters. While IsDraft is true the request is freely editable by its
// owner; submission is one-way and freezes the identity-defining fields.
type LicenseRequest struct {
	BaseModel
	OwnerID       uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	TransporterID *uuid.UUID `json:"transporter_id" gorm:"type:uuid;index"`

	CombinationType CombinationType `json:"combination_type" gorm:"type:varchar(30);not null;index"`

	// Vehicle composition. Which slots are legal depends on the combination.
	TractorUnitID   *uuid.UUID `json:"tractor_unit_id" gorm:"type:uuid"`
	FirstTrailerID  *uuid.UUID `json:"first_trailer_id" gorm:"type:uuid"`
	SecondTrailerID *uuid.UUID `json:"second_trailer_id" gorm:"type:uuid"`
	DollyID         *uuid.UUID `json:"dolly_id" gorm:"type:uuid"`
	FlatbedID       *uuid.UUID `json:"flatbed_id" gorm:"type:uuid"`

	MainVehiclePlate string              `json:"main_vehicle_plate" gorm:"size:8;index"`
	AdditionalPlates AdditionalPlateList `json:"additional_plates,omitempty" gorm:"type:jsonb"`

	Length    int       `json:"length"` // cm
	Width     int       `json:"width"`  // cm
	Height    int       `json:"height"` // cm
	CargoType CargoType `json:"cargo_type" gorm:"type:varchar(30)"`

	RequestedStates pq.StringArray `json:"requested_states" gorm:"type:text[]"`

	// GORM omits zero-valued fields carrying a default tag from INSERTs,
	// so a column default would turn IsDraft=false into true on insert.
	// The services set the flag explicitly instead.
	IsDraft       bool          `json:"is_draft" gorm:"index"`
	RequestNumber string        `json:"request_number" gorm:"size:30;uniqueIndex"`
	Status        RequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// States holds the per-state approval breakdown. The overall Status is
	// only forced to approved when every entry here is approved; callers
	// must read this map alongside Status for partially decided requests.
	States StateApprovalMap `json:"states" gorm:"type:jsonb"`

	Comments       string     `json:"comments,omitempty" gorm:"type:text"`
	LicenseFileURL string     `json:"license_file_url,omitempty" gorm:"size:500"`
	ValidUntil     *time.Time `json:"valid_until"`

	// Version guards concurrent draft edits via conditional update.
	Version int `json:"version" gorm:"default:1"`

	// Relationships
	Owner         User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Transporter   *Transporter `json:"transporter,omitempty" gorm:"foreignKey:TransporterID"`
	TractorUnit   *Vehicle     `json:"tractor_unit,omitempty" gorm:"foreignKey:TractorUnitID"`
	FirstTrailer  *Vehicle     `json:"first_trailer,omitempty" gorm:"foreignKey:FirstTrailerID"`
	SecondTrailer *Vehicle     `json:"second_trailer,omitempty" gorm:"foreignKey:SecondTrailerID"`
	Dolly         *Vehicle     `json:"dolly,omitempty" gorm:"foreignKey:DollyID"`
	Flatbed       *Vehicle     `json:"flatbed,omitempty" gorm:"foreignKey:FlatbedID"`
}

// HasRequestedState reports whether code is one of the request's target states.
func (r *LicenseRequest) HasRequestedState(code string) bool {
	for _, s := range r.RequestedStates {
		if s == code {
			return true
		}
	}
	return false
}

// AllStatesApproved reports whether every requested state carries an
// approved record.
func (r *LicenseRequest) AllStatesApproved() bool {
	if len(r.RequestedStates) == 0 {
		return false
	}
	for _, code := range r.RequestedStates {
		approval, ok := r.States[code]
		if !ok || approval.Status != StateStatusApproved {
			return false
		}
	}
	return true
}

// EarliestStateValidUntil returns the earliest per-state expiry, or nil when
// no state carries one.
func (r *LicenseRequest) EarliestStateValidUntil() *time.Time {
	var earliest *time.Time
	for _, approval := range r.States {
		if approval.ValidUntil == nil {
			continue
		}
		if earliest == nil || approval.ValidUntil.Before(*earliest) {
			t := *approval.ValidUntil
			earliest = &t
		}
	}
	return earliest
}
