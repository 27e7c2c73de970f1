// internal/handlers/transporter.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taot23/aetlicencas/internal/i18n"
	"github.com/taot23/aetlicencas/internal/services"
	"github.com/taot23/aetlicencas/internal/utils"
)

type TransporterHandler struct {
	transporterService *services.TransporterService
}

func NewTransporterHandler(transporterService *services.TransporterService) *TransporterHandler {
	return &TransporterHandler{
		transporterService: transporterService,
	}
}

// POST /transporters
func (h *TransporterHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.TransporterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	transporter, err := h.transporterService.Create(actor.ID, &req)
	if err != nil {
		handleServiceError(c, err, "transporter")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyTransporterCreated),
		"transporter": transporter,
	})
}

// GET /transporters
func (h *TransporterHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	transporters, total, err := h.transporterService.List(scopeFor(actor), params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(transporters, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /transporters/:id
func (h *TransporterHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	transporter, err := h.transporterService.Get(id, actor)
	if err != nil {
		handleServiceError(c, err, "transporter")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"transporter": transporter,
	})
}

// PUT /transporters/:id
func (h *TransporterHandler) Update(c *gin.Context) {
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

	var req services.TransporterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	transporter, err := h.transporterService.Update(id, actor, &req)
	if err != nil {
		handleServiceError(c, err, "transporter")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyTransporterUpdated),
		"transporter": transporter,
	})
}

// DELETE /transporters/:id
func (h *TransporterHandler) Delete(c *gin.Context) {
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

	if err := h.transporterService.Delete(id, actor); err != nil {
		handleServiceError(c, err, "transporter")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTransporterDeleted),
	})
}

// GET /transporters/cnpj/:cnpj
//
// Prefills registration data from the Portal da Transparência.
func (h *TransporterHandler) LookupCNPJ(c *gin.Context) {
	if _, ok := actorFromContext(c); !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	cnpj := c.Param("cnpj")
	if !utils.IsValidCNPJ(cnpj) {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", "Invalid CNPJ", nil)
		return
	}

	company, err := h.transporterService.LookupCNPJ(cnpj)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadGateway, "CNPJ_LOOKUP_FAILED", err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"company": company,
	})
}
