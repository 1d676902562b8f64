package handlers

import (
	"net/http"

	"github.com/Larkoefua/caseTrackerApi/internal/api/middleware"
	"github.com/Larkoefua/caseTrackerApi/internal/db/models"
	"github.com/Larkoefua/caseTrackerApi/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CaseHandler struct {
	caseService *services.CaseService
	logger      *zap.Logger
}

func NewCaseHandler(caseService *services.CaseService, logger *zap.Logger) *CaseHandler {
	return &CaseHandler{
		caseService: caseService,
		logger:      logger.With(zap.String("handler", "case")),
	}
}

type createCaseRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	CourtInfo   *models.CourtInfo `json:"courtInfo"`
}

func (h *CaseHandler) Create(c *gin.Context) {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		respondBadRequest(c, "Authentication required")
		return
	}

	var req createCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Title and description are required")
		return
	}

	caseItem, err := h.caseService.Create(c.Request.Context(), requester, services.CreateCaseInput{
		Title:       req.Title,
		Description: req.Description,
		CourtInfo:   req.CourtInfo,
	})
	if err != nil {
		h.logger.Error("create case failed", zap.Error(err))
		respondError(c, err, "Error creating case")
		return
	}

	respondData(c, http.StatusCreated, caseItem)
}

func (h *CaseHandler) List(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	cases, err := h.caseService.List(c.Request.Context(), requester)
	if err != nil {
		h.logger.Error("list cases failed", zap.Error(err))
		respondError(c, err, "Error fetching cases")
		return
	}

	respondList(c, len(cases), cases)
}

func (h *CaseHandler) Get(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	caseItem, err := h.caseService.Get(c.Request.Context(), requester, c.Param("id"))
	if err != nil {
		respondError(c, err, "Error fetching case")
		return
	}

	respondData(c, http.StatusOK, caseItem)
}

type updateStatusRequest struct {
	Status models.CaseStatus `json:"status"`
}

func (h *CaseHandler) UpdateStatus(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Status is required")
		return
	}

	caseItem, err := h.caseService.UpdateStatus(c.Request.Context(), requester, c.Param("id"), req.Status)
	if err != nil {
		h.logger.Error("update case status failed", zap.Error(err))
		respondError(c, err, "Error updating case status")
		return
	}

	respondData(c, http.StatusOK, caseItem)
}

type updateCaseRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	CourtInfo   *models.CourtInfo `json:"courtInfo"`
}

func (h *CaseHandler) UpdateDetails(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	var req updateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	caseItem, err := h.caseService.UpdateDetails(c.Request.Context(), requester, c.Param("id"), services.CaseDetailsPatch{
		Title:       req.Title,
		Description: req.Description,
		CourtInfo:   req.CourtInfo,
	})
	if err != nil {
		h.logger.Error("update case failed", zap.Error(err))
		respondError(c, err, "Error updating case")
		return
	}

	respondData(c, http.StatusOK, caseItem)
}
