// internal/handlers/vehicle.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/taot23/aetlicencas/internal/i18n"
	"github.com/taot23/aetlicencas/internal/services"
	"github.com/taot23/aetlicencas/internal/utils"
)

type VehicleHandler struct {
	vehicleService *services.VehicleService
	storageService *services.StorageService
}

func NewVehicleHandler(vehicleService *services.VehicleService, storageService *services.StorageService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		storageService: storageService,
	}
}

// POST /vehicles
func (h *VehicleHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	vehicle, err := h.vehicleService.Create(actor.ID, &req)
	if err != nil {
		handleServiceError(c, err, "vehicle")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyVehicleCreated),
		"vehicle": vehicle,
	})
}

// GET /vehicles
func (h *VehicleHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	vehicles, total, err := h.vehicleService.List(scopeFor(actor), params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(vehicles, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /vehicles/:id
func (h *VehicleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	vehicle, err := h.vehicleService.Get(id, actor)
	if err != nil {
		handleServiceError(c, err, "vehicle")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"vehicle": vehicle,
	})
}

// PUT /vehicles/:id
func (h *VehicleHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	vehicle, err := h.vehicleService.Update(id, actor, &req)
	if err != nil {
		handleServiceError(c, err, "vehicle")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyVehicleUpdated),
		"vehicle": vehicle,
	})
}

// DELETE /vehicles/:id
func (h *VehicleHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.vehicleService.Delete(id, actor); err != nil {
		handleServiceError(c, err, "vehicle")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyVehicleDeleted),
	})
}

// POST /vehicles/documents
func (h *VehicleHandler) UploadDocument(c *gin.Context) {
	if _, ok := actorFromContext(c); !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", "A file upload is required", nil)
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions("vehicle_documents")
	upload, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, "UPLOAD_FAILED", err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"upload": upload,
	})
}
