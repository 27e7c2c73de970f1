// internal/handlers/common.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taot23/aetlicencas/internal/dimensions"
	"github.com/taot23/aetlicencas/internal/i18n"
	"github.com/taot23/aetlicencas/internal/models"
	"github.com/taot23/aetlicencas/internal/services"
	"github.com/taot23/aetlicencas/internal/utils"
)

// actorFromContext rebuilds the service-layer actor from the claims the auth
// middleware stored on the context.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return services.Actor{}, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return services.Actor{}, false
	}
	role, _ := utils.GetUserRoleFromContext(c)
	return services.Actor{ID: userID, Role: models.UserRole(role)}, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "INVALID_ID", "Invalid "+name+" parameter", nil)
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError maps service-layer failures to wire responses. Every
// sentinel and typed error the services return has a stable error code here;
// resource names the i18n key family used for not-found messages.
func handleServiceError(c *gin.Context, err error, resource string) {
	lang := utils.GetLangFromContext(c)

	var boundErr *dimensions.BoundError
	var unknownState *services.UnknownStateError
	var badTransition *services.InvalidTransitionError

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrNotADraft):
		utils.ConflictResponse(c, "NOT_A_DRAFT", err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, "CONFLICT", err.Error())
	case errors.Is(err, services.ErrApprovalNotConverged):
		utils.ConflictResponse(c, "APPROVAL_NOT_CONVERGED", err.Error())
	case errors.Is(err, services.ErrVehicleInUse):
		utils.ConflictResponse(c, "VEHICLE_IN_USE", i18n.T(lang, i18n.KeyVehicleInUse))
	case errors.Is(err, services.ErrTransporterInUse):
		utils.ConflictResponse(c, "TRANSPORTER_IN_USE", i18n.T(lang, i18n.KeyTransporterInUse))
	case errors.Is(err, services.ErrUserHasRequests):
		utils.ConflictResponse(c, "USER_HAS_REQUESTS", err.Error())
	case errors.Is(err, services.ErrMissingValidity):
		utils.BadRequestResponse(c, "MISSING_VALIDITY", err.Error(), nil)
	case errors.Is(err, services.ErrEmptyStateSelection):
		utils.BadRequestResponse(c, "EMPTY_STATE_SELECTION", err.Error(), nil)
	case errors.Is(err, services.ErrMissingMainVehicle):
		utils.BadRequestResponse(c, "MISSING_MAIN_VEHICLE", err.Error(), nil)
	case errors.Is(err, services.ErrIllegalVehicleSlot):
		utils.BadRequestResponse(c, "ILLEGAL_VEHICLE_SLOT", err.Error(), nil)
	case errors.As(err, &boundErr):
		utils.BadRequestResponse(c, "DIMENSION_OUT_OF_RANGE", boundErr.Error(), gin.H{
			"field": boundErr.Field,
			"value": boundErr.Value,
			"min":   boundErr.Min,
			"max":   boundErr.Max,
		})
	case errors.As(err, &unknownState):
		utils.BadRequestResponse(c, "UNKNOWN_STATE", unknownState.Error(), gin.H{
			"state": unknownState.State,
		})
	case errors.As(err, &badTransition):
		utils.BadRequestResponse(c, "INVALID_TRANSITION", badTransition.Error(), gin.H{
			"state": badTransition.State,
			"from":  badTransition.From,
			"to":    badTransition.To,
		})
	case strings.Contains(err.Error(), "validation failed"):
		utils.BadRequestResponse(c, "VALIDATION_ERROR", err.Error(), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
