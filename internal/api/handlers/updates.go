package handlers

import (
	"net/http"

	"github.com/Larkoefua/caseTrackerApi/internal/api/middleware"
	"github.com/Larkoefua/caseTrackerApi/internal/db/models"
	"github.com/Larkoefua/caseTrackerApi/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UpdateHandler struct {
	updateService *services.UpdateService
	logger        *zap.Logger
}

func NewUpdateHandler(updateService *services.UpdateService, logger *zap.Logger) *UpdateHandler {
	return &UpdateHandler{
		updateService: updateService,
		logger:        logger.With(zap.String("handler", "update")),
	}
}

type createUpdateRequest struct {
	CaseID     string            `json:"caseId"`
	Message    string            `json:"message"`
	UpdateType models.UpdateType `json:"updateType"`
}

func (h *UpdateHandler) Create(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	var req createUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Case ID and message are required")
		return
	}
	if req.CaseID == "" {
		req.CaseID = c.Param("id")
	}

	upd, err := h.updateService.Record(c.Request.Context(), requester, services.RecordUpdateInput{
		CaseID:  req.CaseID,
		Message: req.Message,
		Type:    req.UpdateType,
	})
	if err != nil {
		h.logger.Error("create update failed", zap.Error(err))
		respondError(c, err, "Error creating update")
		return
	}

	respondData(c, http.StatusCreated, upd)
}

func (h *UpdateHandler) ListForCase(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	caseID := c.Param("caseId")
	if caseID == "" {
		caseID = c.Param("id")
	}

	updates, err := h.updateService.ListForCase(c.Request.Context(), requester, caseID)
	if err != nil {
		respondError(c, err, "Error fetching updates")
		return
	}

	respondList(c, len(updates), updates)
}

func (h *UpdateHandler) Delete(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	if err := h.updateService.Delete(c.Request.Context(), requester, c.Param("id")); err != nil {
		h.logger.Error("delete update failed", zap.Error(err))
		respondError(c, err, "Error deleting update")
		return
	}

	respondMessage(c, "Update deleted successfully")
}
