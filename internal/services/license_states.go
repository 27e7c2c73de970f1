// internal/services/license_states.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taot23/aetlicencas/internal/database"
	"github.com/taot23/aetlicencas/internal/models"
	"github.com/taot23/aetlicencas/internal/utils"
)

// lockForUpdate takes a row lock on dialects that support it. SQLite, used
// by the test suites, serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// ErrApprovalNotConverged is returned when staff try to set the overall
// status to approved while some requested state has not approved yet.
var ErrApprovalNotConverged = errors.New("overall approval requires every state to be approved")

// SetStateStatusRequest carries a single per-state transition. Nil optional
// fields leave the stored values untouched; in particular an omitted
// external license number never clears a previously assigned one.
type SetStateStatusRequest struct {
	State                 string             `json:"state" validate:"required,state_code"`
	Status                models.StateStatus `json:"status" validate:"required"`
	ValidUntil            *time.Time         `json:"valid_until,omitempty"`
	ExternalLicenseNumber *string            `json:"external_license_number,omitempty"`
	AttachmentURL         *string            `json:"attachment_url,omitempty"`
	Comments              *string            `json:"comments,omitempty"`
}

// UpdateStatusRequest sets the overall status explicitly. The rollup
// preserves this value until every state approves.
type UpdateStatusRequest struct {
	Status   models.RequestStatus `json:"status" validate:"required"`
	Comments *string              `json:"comments,omitempty"`
}

// SetStateStatus applies one per-state transition and recomputes the
// rollup, atomically. The row is locked for the duration of the transaction
// so the rollup always reads the latest persisted per-state map, including
// sibling-state updates applied concurrently by other staff.
func (s *LicenseService) SetStateStatus(id uuid.UUID, actor Actor, req *SetStateStatusRequest) (*models.LicenseRequest, error) {
	if !actor.Role.IsStaff() {
		return nil, ErrForbidden
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("validation failed: unknown state status %q", req.Status)
	}

	state := utils.NormalizeStateCode(req.State)

	var updated *models.LicenseRequest
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var request models.LicenseRequest
		err := lockForUpdate(tx).First(&request, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		// Drafts have not entered the approval pipeline.
		if request.IsDraft {
			return ErrNotFound
		}

		if !request.HasRequestedState(state) {
			return &UnknownStateError{State: state}
		}

		current, ok := request.States[state]
		if !ok {
			current = models.StateApproval{Status: models.StateStatusPendingRegistration}
		}

		if !current.Status.CanTransitionTo(req.Status) {
			return &InvalidTransitionError{State: state, From: current.Status, To: req.Status}
		}

		// A validity date must accompany approval, but a re-apply may omit
		// it when the state already carries one.
		if req.Status == models.StateStatusApproved && req.ValidUntil == nil && current.ValidUntil == nil {
			return ErrMissingValidity
		}

		approval := models.StateApproval{
			Status:                req.Status,
			ValidUntil:            current.ValidUntil,
			ExternalLicenseNumber: current.ExternalLicenseNumber,
			AttachmentURL:         current.AttachmentURL,
			UpdatedAt:             time.Now(),
		}
		if req.ValidUntil != nil {
			approval.ValidUntil = req.ValidUntil
		}
		if req.ExternalLicenseNumber != nil {
			approval.ExternalLicenseNumber = *req.ExternalLicenseNumber
		}
		if req.AttachmentURL != nil {
			// One current attachment per state; a new upload replaces it.
			approval.AttachmentURL = *req.AttachmentURL
		}

		if request.States == nil {
			request.States = make(models.StateApprovalMap, len(request.RequestedStates))
		}
		request.States[state] = approval

		if req.Comments != nil {
			request.Comments = *req.Comments
		}

		recomputeRollup(&request)

		request.Version++
		columns := map[string]interface{}{
			"states":      request.States,
			"status":      request.Status,
			"valid_until": request.ValidUntil,
			"comments":    request.Comments,
			"version":     request.Version,
		}
		if err := tx.Model(&models.LicenseRequest{}).
			Where("id = ?", request.ID).
			Updates(columns).Error; err != nil {
			return fmt.Errorf("failed to update state status: %w", err)
		}

		updated = &request
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// UpdateStatus sets the overall status explicitly. Approved cannot be set
// by hand unless every requested state has already approved; the rollup
// owns that convergence.
func (s *LicenseService) UpdateStatus(id uuid.UUID, actor Actor, req *UpdateStatusRequest) (*models.LicenseRequest, error) {
	if !actor.Role.IsStaff() {
		return nil, ErrForbidden
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("validation failed: unknown status %q", req.Status)
	}

	var updated *models.LicenseRequest
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var request models.LicenseRequest
		err := lockForUpdate(tx).First(&request, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		if request.IsDraft {
			return ErrNotFound
		}

		if req.Status == models.RequestStatusApproved && !request.AllStatesApproved() {
			return ErrApprovalNotConverged
		}

		request.Status = req.Status
		if req.Comments != nil {
			request.Comments = *req.Comments
		}

		request.Version++
		columns := map[string]interface{}{
			"status":   request.Status,
			"comments": request.Comments,
			"version":  request.Version,
		}
		if err := tx.Model(&models.LicenseRequest{}).
			Where("id = ?", request.ID).
			Updates(columns).Error; err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		updated = &request
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// recomputeRollup derives the overall status from the per-state map. Full
// convergence forces approved and derives the overall expiry from the
// earliest per-state one; anything short of that leaves the last explicitly
// set status in place. There is deliberately no "worst wins" policy for
// partially rejected requests: the per-state breakdown is the source of
// truth and is always serialized next to the overall status.
func recomputeRollup(request *models.LicenseRequest) {
	if !request.AllStatesApproved() {
		return
	}
	request.Status = models.RequestStatusApproved
	if request.ValidUntil == nil {
		request.ValidUntil = request.EarliestStateValidUntil()
	}
}
