// internal/handlers/license.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/taot23/aetlicencas/internal/i18n"
	"github.com/taot23/aetlicencas/internal/services"
	"github.com/taot23/aetlicencas/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
	storageService *services.StorageService
}

func NewLicenseHandler(licenseService *services.LicenseService, storageService *services.StorageService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
		storageService: storageService,
	}
}

// POST /requests
func (h *LicenseHandler) CreateRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.licenseService.CreateSubmitted(actor.ID, &req)
	if err != nil {
		handleServiceError(c, err, "request")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestSubmitted),
		"request": request,
	})
}

// POST /requests/drafts
func (h *LicenseHandler) CreateDraft(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	draft, err := h.licenseService.CreateDraft(actor.ID, &req)
	if err != nil {
		handleServiceError(c, err, "request")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestCreated),
		"request": draft,
	})
}

// PUT /requests/drafts/:id
func (h *LicenseHandler) UpdateDraft(c *gin.Context) {
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

	var req services.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	draft, err := h.licenseService.UpdateDraft(id, actor, &req)
	if err != nil {
		handleServiceError(c, err, "request")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestUpdated),
		"request": draft,
	})
}

// POST /requests/drafts/:id/submit
func (h *LicenseHandler) SubmitDraft(c *gin.Context) {
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

	request, err := h.licenseService.Submit(id, actor)
	if err != nil {
		handleServiceError(c, err, "request")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestSubmitted),
		"request": request,
	})
}

// GET /requests/drafts
func (h *LicenseHandler) ListDrafts(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	drafts, total, err := h.licenseService.ListDrafts(scopeFor(actor), params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(drafts, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /requests
func (h *LicenseHandler) ListRequests(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	requests, total, err := h.licenseService.ListRequests(scopeFor(actor), params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(requests, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /requests/:id
func (h *LicenseHandler) GetRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	request, err := h.licenseService.GetRequest(id, actor)
	if err != nil {
		handleServiceError(c, err, "request")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"request": request,
	})
}

// DELETE /requests/:id
func (h *LicenseHandler) DeleteRequest(c *gin.Context) {
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

	if err := h.licenseService.DeleteDraft(id, actor); err != nil {
		handleServiceError(c, err, "request")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestDeleted),
	})
}

// PUT /requests/:id/states
func (h *LicenseHandler) SetStateStatus(c *gin.Context) {
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

	var req services.SetStateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.licenseService.SetStateStatus(id, actor, &req)
	if err != nil {
		handleServiceError(c, err, "request")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestStateUpdated),
		"request": request,
	})
}

// PUT /requests/:id/status
func (h *LicenseHandler) UpdateStatus(c *gin.Context) {
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

	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.licenseService.UpdateStatus(id, actor, &req)
	if err != nil {
		handleServiceError(c, err, "request")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestStatusUpdated),
		"request": request,
	})
}

// POST /requests/:id/document
//
// Stores the consolidated AET document and records its URL on the request.
func (h *LicenseHandler) UploadLicenseDocument(c *gin.Context) {
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

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "VALIDATION_ERROR", "A file upload is required", nil)
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions("licenses")
	upload, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, "UPLOAD_FAILED", err.Error(), nil)
		return
	}

	request, err := h.licenseService.AttachLicenseFile(id, actor, upload.URL)
	if err != nil {
		handleServiceError(c, err, "request")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestDocumentStored),
		"request": request,
		"upload":  upload,
	})
}

// POST /requests/documents
//
// Stores a per-state decision document and returns its URL; staff pass it
// back as attachment_url when recording the state transition.
func (h *LicenseHandler) UploadStateDocument(c *gin.Context) {
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

	options := h.storageService.GetDefaultUploadOptions("state_decisions")
	upload, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, "UPLOAD_FAILED", err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"upload": upload,
	})
}

// scopeFor widens list queries for staff; transporters only ever see their
// own records.
func scopeFor(actor services.Actor) services.Scope {
	if actor.Role.IsStaff() {
		return services.ScopeAll()
	}
	return services.ScopeOwner(actor.ID)
}
