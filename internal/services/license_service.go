// internal/services/license_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/taot23/aetlicencas/internal/dimensions"
	"github.com/taot23/aetlicencas/internal/models"
	"github.com/taot23/aetlicencas/internal/utils"
)

// ErrIllegalVehicleSlot is returned when a vehicle role is assigned that the
// combination type does not allow.
var ErrIllegalVehicleSlot = errors.New("vehicle slot not allowed for this combination type")

// ErrMissingMainVehicle is returned when a request is submitted without a
// vehicle in the leading slot.
var ErrMissingMainVehicle = errors.New("a main vehicle must be assigned before submission")

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Role models.UserRole
}

// Scope limits list queries to one owner or opens them to all owners.
// Staff-facing listings pass ScopeAll; there is no magic all-users id.
type Scope struct {
	All     bool
	OwnerID uuid.UUID
}

func ScopeOwner(id uuid.UUID) Scope {
	return Scope{OwnerID: id}
}

func ScopeAll() Scope {
	return Scope{All: true}
}

func (s Scope) apply(query *gorm.DB) *gorm.DB {
	if s.All {
		return query
	}
	return query.Where("owner_id = ?", s.OwnerID)
}

type LicenseService struct {
	db *gorm.DB
}

func NewLicenseService(db *gorm.DB) *LicenseService {
	return &LicenseService{db: db}
}

// CreateDraftRequest carries the initial attributes of a draft. Everything
// except the combination type may be filled in later.
type CreateDraftRequest struct {
	CombinationType models.CombinationType      `json:"combination_type" validate:"required"`
	TransporterID   *uuid.UUID                  `json:"transporter_id,omitempty"`
	TractorUnitID   *uuid.UUID                  `json:"tractor_unit_id,omitempty"`
	FirstTrailerID  *uuid.UUID                  `json:"first_trailer_id,omitempty"`
	SecondTrailerID *uuid.UUID                  `json:"second_trailer_id,omitempty"`
	DollyID         *uuid.UUID                  `json:"dolly_id,omitempty"`
	FlatbedID       *uuid.UUID                  `json:"flatbed_id,omitempty"`
	AdditionalPlates models.AdditionalPlateList `json:"additional_plates,omitempty"`
	Length          int                         `json:"length,omitempty"`
	Width           int                         `json:"width,omitempty"`
	Height          int                         `json:"height,omitempty"`
	CargoType       models.CargoType            `json:"cargo_type,omitempty"`
	RequestedStates []string                    `json:"requested_states,omitempty" validate:"omitempty,dive,state_code"`
	Comments        string                      `json:"comments,omitempty"`
}

// UpdateDraftRequest is a partial merge payload; nil fields are left alone.
type UpdateDraftRequest struct {
	CombinationType  *models.CombinationType     `json:"combination_type,omitempty"`
	TransporterID    *uuid.UUID                  `json:"transporter_id,omitempty"`
	TractorUnitID    *uuid.UUID                  `json:"tractor_unit_id,omitempty"`
	FirstTrailerID   *uuid.UUID                  `json:"first_trailer_id,omitempty"`
	SecondTrailerID  *uuid.UUID                  `json:"second_trailer_id,omitempty"`
	DollyID          *uuid.UUID                  `json:"dolly_id,omitempty"`
	FlatbedID        *uuid.UUID                  `json:"flatbed_id,omitempty"`
	AdditionalPlates *models.AdditionalPlateList `json:"additional_plates,omitempty"`
	Length           *int                        `json:"length,omitempty"`
	Width            *int                        `json:"width,omitempty"`
	Height           *int                        `json:"height,omitempty"`
	CargoType        *models.CargoType           `json:"cargo_type,omitempty"`
	RequestedStates  []string                    `json:"requested_states,omitempty" validate:"omitempty,dive,state_code"`
	Comments         *string                     `json:"comments,omitempty"`
}

// CreateDraft builds a new draft for owner, applying lenient defaulting.
// Missing business fields are allowed; bounds are not enforced here.
func (s *LicenseService) CreateDraft(ownerID uuid.UUID, req *CreateDraftRequest) (*models.LicenseRequest, error) {
	request, err := s.buildRequest(ownerID, req)
	if err != nil {
		return nil, err
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	return request, nil
}

// CreateSubmitted builds and submits a request in one step, skipping the
// draft phase. The strict validation path is identical to Submit.
func (s *LicenseService) CreateSubmitted(ownerID uuid.UUID, req *CreateDraftRequest) (*models.LicenseRequest, error) {
	request, err := s.buildRequest(ownerID, req)
	if err != nil {
		return nil, err
	}

	if err := s.finalizeSubmission(request); err != nil {
		return nil, err
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return request, nil
}

func (s *LicenseService) buildRequest(ownerID uuid.UUID, req *CreateDraftRequest) (*models.LicenseRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !req.CombinationType.Valid() {
		return nil, fmt.Errorf("validation failed: unknown combination type %q", req.CombinationType)
	}

	var owner models.User
	if err := s.db.First(&owner, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if owner.Status != models.UserStatusActive {
		return nil, ErrForbidden
	}

	request := &models.LicenseRequest{
		OwnerID:          ownerID,
		TransporterID:    req.TransporterID,
		CombinationType:  req.CombinationType,
		TractorUnitID:    req.TractorUnitID,
		FirstTrailerID:   req.FirstTrailerID,
		SecondTrailerID:  req.SecondTrailerID,
		DollyID:          req.DollyID,
		FlatbedID:        req.FlatbedID,
		AdditionalPlates: req.AdditionalPlates,
		Length:           req.Length,
		Width:            req.Width,
		Height:           req.Height,
		CargoType:        req.CargoType,
		RequestedStates:  normalizeStates(req.RequestedStates),
		Comments:         req.Comments,
		IsDraft:          true,
		RequestNumber:    utils.GenerateDraftNumber(),
		Status:           models.RequestStatusPending,
		Version:          1,
	}

	if err := checkVehicleSlots(request); err != nil {
		return nil, err
	}

	applyDimensionDefaults(request)

	if err := s.deriveMainVehiclePlate(s.db, request); err != nil {
		return nil, err
	}

	return request, nil
}

// UpdateDraft merges req into an existing draft. Lenient defaulting is
// re-applied on every update so persisted dimensions never regress to
// undefined once defaults have been computed. A conditional update on the
// version column guards against a concurrently applied edit.
func (s *LicenseService) UpdateDraft(id uuid.UUID, actor Actor, req *UpdateDraftRequest) (*models.LicenseRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	draft, err := s.loadRequest(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(draft, actor); err != nil {
		return nil, err
	}
	if !draft.IsDraft {
		return nil, ErrNotADraft
	}

	previousVersion := draft.Version

	if req.CombinationType != nil {
		if !req.CombinationType.Valid() {
			return nil, fmt.Errorf("validation failed: unknown combination type %q", *req.CombinationType)
		}
		draft.CombinationType = *req.CombinationType
	}
	if req.TransporterID != nil {
		draft.TransporterID = req.TransporterID
	}
	if req.TractorUnitID != nil {
		draft.TractorUnitID = req.TractorUnitID
	}
	if req.FirstTrailerID != nil {
		draft.FirstTrailerID = req.FirstTrailerID
	}
	if req.SecondTrailerID != nil {
		draft.SecondTrailerID = req.SecondTrailerID
	}
	if req.DollyID != nil {
		draft.DollyID = req.DollyID
	}
	if req.FlatbedID != nil {
		draft.FlatbedID = req.FlatbedID
	}
	if req.AdditionalPlates != nil {
		draft.AdditionalPlates = *req.AdditionalPlates
	}
	if req.Length != nil {
		draft.Length = *req.Length
	}
	if req.Width != nil {
		draft.Width = *req.Width
	}
	if req.Height != nil {
		draft.Height = *req.Height
	}
	if req.CargoType != nil {
		draft.CargoType = *req.CargoType
	}
	if req.RequestedStates != nil {
		draft.RequestedStates = normalizeStates(req.RequestedStates)
	}
	if req.Comments != nil {
		draft.Comments = *req.Comments
	}

	if err := checkVehicleSlots(draft); err != nil {
		return nil, err
	}

	applyDimensionDefaults(draft)

	if err := s.deriveMainVehiclePlate(s.db, draft); err != nil {
		return nil, err
	}

	draft.Version = previousVersion + 1
	result := s.db.Model(&models.LicenseRequest{}).
		Where("id = ? AND version = ?", draft.ID, previousVersion).
		Updates(draftColumns(draft))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update draft: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrConflict
	}

	return s.loadRequest(s.db, id)
}

// Submit finalizes a draft: strict dimension validation, final request
// number, per-state seeding. The transition is irreversible.
func (s *LicenseService) Submit(id uuid.UUID, actor Actor) (*models.LicenseRequest, error) {
	draft, err := s.loadRequest(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(draft, actor); err != nil {
		return nil, err
	}
	if !draft.IsDraft {
		return nil, ErrNotADraft
	}

	previousVersion := draft.Version
	if err := s.finalizeSubmission(draft); err != nil {
		return nil, err
	}
	draft.Version = previousVersion + 1

	columns := draftColumns(draft)
	columns["is_draft"] = false
	columns["request_number"] = draft.RequestNumber
	columns["status"] = draft.Status
	columns["states"] = draft.States

	result := s.db.Model(&models.LicenseRequest{}).
		Where("id = ? AND version = ? AND is_draft = ?", draft.ID, previousVersion, true).
		Updates(columns)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to submit request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrConflict
	}

	return s.loadRequest(s.db, id)
}

// DeleteDraft removes a draft. Submitted requests are only deletable by an
// administrator.
func (s *LicenseService) DeleteDraft(id uuid.UUID, actor Actor) error {
	request, err := s.loadRequest(s.db, id)
	if err != nil {
		return err
	}
	if !request.IsDraft && actor.Role != models.UserRoleAdmin {
		return ErrNotADraft
	}
	if err := authorizeOwner(request, actor); err != nil {
		return err
	}

	if err := s.db.Delete(&models.LicenseRequest{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	return nil
}

// GetRequest returns one request with its references preloaded.
func (s *LicenseService) GetRequest(id uuid.UUID, actor Actor) (*models.LicenseRequest, error) {
	var request models.LicenseRequest
	err := s.db.Preload("Transporter").Preload("TractorUnit").Preload("FirstTrailer").
		Preload("SecondTrailer").Preload("Dolly").Preload("Flatbed").
		First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if err := authorizeOwner(&request, actor); err != nil {
		return nil, err
	}
	return &request, nil
}

// ListRequests returns submitted requests within scope.
func (s *LicenseService) ListRequests(scope Scope, params utils.PaginationParams) ([]models.LicenseRequest, int64, error) {
	query := scope.apply(s.db.Model(&models.LicenseRequest{}).Where("is_draft = ?", false)).
		Preload("Transporter")

	if params.Search != "" {
		query = query.Where("request_number ILIKE ? OR main_vehicle_plate ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "request_number", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var requests []models.LicenseRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch requests: %w", err)
	}

	return requests, total, nil
}

// ListDrafts returns drafts within scope.
func (s *LicenseService) ListDrafts(scope Scope, params utils.PaginationParams) ([]models.LicenseRequest, int64, error) {
	query := scope.apply(s.db.Model(&models.LicenseRequest{}).Where("is_draft = ?", true))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count drafts: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var drafts []models.LicenseRequest
	if err := query.Find(&drafts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch drafts: %w", err)
	}

	return drafts, total, nil
}

// AttachLicenseFile stores the overall-document reference on a request.
func (s *LicenseService) AttachLicenseFile(id uuid.UUID, actor Actor, fileURL string) (*models.LicenseRequest, error) {
	if !actor.Role.IsStaff() {
		return nil, ErrForbidden
	}

	request, err := s.loadRequest(s.db, id)
	if err != nil {
		return nil, err
	}

	request.LicenseFileURL = fileURL
	if err := s.db.Model(request).Update("license_file_url", fileURL).Error; err != nil {
		return nil, fmt.Errorf("failed to store license file reference: %w", err)
	}
	return request, nil
}

// finalizeSubmission runs the strict validation path and stamps the request
// as submitted: final number, overall pending status, per-state seeding.
func (s *LicenseService) finalizeSubmission(request *models.LicenseRequest) error {
	if len(request.RequestedStates) == 0 {
		return ErrEmptyStateSelection
	}

	attrs, err := dimensions.ValidateStrict(request.CombinationType, dimensions.Attributes{
		Length: request.Length,
		Width:  request.Width,
		Height: request.Height,
		Cargo:  request.CargoType,
	})
	if err != nil {
		return err
	}
	request.Length = attrs.Length
	request.Width = attrs.Width
	request.Height = attrs.Height
	request.CargoType = attrs.Cargo

	if err := s.deriveMainVehiclePlate(s.db, request); err != nil {
		return err
	}
	if request.MainVehiclePlate == "" {
		return ErrMissingMainVehicle
	}

	now := time.Now()
	states := make(models.StateApprovalMap, len(request.RequestedStates))
	for _, code := range request.RequestedStates {
		states[code] = models.StateApproval{
			Status:    models.StateStatusPendingRegistration,
			UpdatedAt: now,
		}
	}

	request.IsDraft = false
	request.RequestNumber = utils.GenerateRequestNumber(now)
	request.Status = models.RequestStatusPending
	request.States = states
	return nil
}

// Helpers

func (s *LicenseService) loadRequest(tx *gorm.DB, id uuid.UUID) (*models.LicenseRequest, error) {
	var request models.LicenseRequest
	if err := tx.First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &request, nil
}

func authorizeOwner(request *models.LicenseRequest, actor Actor) error {
	if request.OwnerID == actor.ID || actor.Role.IsStaff() {
		return nil
	}
	return ErrForbidden
}

// applyDimensionDefaults runs the rule engine in lenient mode: defaults are
// filled, bounds are not enforced.
func applyDimensionDefaults(request *models.LicenseRequest) {
	attrs := dimensions.ApplyDefaults(request.CombinationType, dimensions.Attributes{
		Length: request.Length,
		Width:  request.Width,
		Height: request.Height,
		Cargo:  request.CargoType,
	})
	request.Width = attrs.Width
	request.Height = attrs.Height
	request.CargoType = attrs.Cargo
}

// checkVehicleSlots enforces which vehicle roles the combination allows:
// a flatbed combination has no second trailer or dolly, and only a flatbed
// combination carries a flatbed unit.
func checkVehicleSlots(request *models.LicenseRequest) error {
	if request.CombinationType == models.CombinationFlatbed {
		if request.SecondTrailerID != nil || request.DollyID != nil {
			return ErrIllegalVehicleSlot
		}
		return nil
	}
	if request.FlatbedID != nil {
		return ErrIllegalVehicleSlot
	}
	return nil
}

// deriveMainVehiclePlate denormalizes the plate of the leading unit: the
// flatbed for flatbed combinations, the tractor unit otherwise.
func (s *LicenseService) deriveMainVehiclePlate(tx *gorm.DB, request *models.LicenseRequest) error {
	var mainVehicleID *uuid.UUID
	if request.CombinationType == models.CombinationFlatbed && request.FlatbedID != nil {
		mainVehicleID = request.FlatbedID
	} else if request.TractorUnitID != nil {
		mainVehicleID = request.TractorUnitID
	}

	if mainVehicleID == nil {
		return nil
	}

	var vehicle models.Vehicle
	if err := tx.First(&vehicle, "id = ?", *mainVehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}
	request.MainVehiclePlate = vehicle.Plate
	return nil
}

// draftColumns lists every mutable column of a draft for a conditional
// update, including the bumped version.
func draftColumns(draft *models.LicenseRequest) map[string]interface{} {
	return map[string]interface{}{
		"transporter_id":     draft.TransporterID,
		"combination_type":   draft.CombinationType,
		"tractor_unit_id":    draft.TractorUnitID,
		"first_trailer_id":   draft.FirstTrailerID,
		"second_trailer_id":  draft.SecondTrailerID,
		"dolly_id":           draft.DollyID,
		"flatbed_id":         draft.FlatbedID,
		"main_vehicle_plate": draft.MainVehiclePlate,
		"additional_plates":  draft.AdditionalPlates,
		"length":             draft.Length,
		"width":              draft.Width,
		"height":             draft.Height,
		"cargo_type":         draft.CargoType,
		"requested_states":   draft.RequestedStates,
		"comments":           draft.Comments,
		"version":            draft.Version,
	}
}

func normalizeStates(codes []string) pq.StringArray {
	seen := make(map[string]bool, len(codes))
	normalized := make(pq.StringArray, 0, len(codes))
	for _, code := range codes {
		upper := utils.NormalizeStateCode(code)
		if upper == "" || seen[upper] {
			continue
		}
		seen[upper] = true
		normalized = append(normalized, upper)
	}
	return normalized
}
