package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Larkoefua/caseTrackerApi/internal/api/middleware"
	"github.com/Larkoefua/caseTrackerApi/internal/config"
	"github.com/Larkoefua/caseTrackerApi/internal/services"
	"github.com/Larkoefua/caseTrackerApi/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DocumentHandler is the ingestion boundary for attachments: it validates
// the file (extension allow-list, size cap) and classifies image vs raw
// before the engine ever sees the stream.
type DocumentHandler struct {
	documentService *services.DocumentService
	upload          config.UploadConfig
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *services.DocumentService, upload config.UploadConfig, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		upload:          upload,
		logger:          logger.With(zap.String("handler", "document")),
	}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "No file uploaded")
		return
	}

	caseID := c.Param("id")
	if caseID == "" {
		caseID = c.PostForm("caseId")
	}
	title := c.PostForm("title")
	documentType := c.PostForm("documentType")
	if caseID == "" || title == "" || documentType == "" {
		respondBadRequest(c, "Missing required fields")
		return
	}

	ext := utils.FileExtension(fileHeader.Filename)
	if !utils.ExtensionAllowed(ext, h.upload.AllowedExtensions) {
		respondBadRequest(c, fmt.Sprintf("Invalid file type. Allowed extensions are: %s", strings.Join(h.upload.AllowedExtensions, ", ")))
		return
	}
	if h.upload.MaxFileBytes > 0 && fileHeader.Size > h.upload.MaxFileBytes {
		respondBadRequest(c, "File exceeds the maximum upload size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		respondError(c, err, "Error uploading document")
		return
	}
	defer file.Close()

	kind := "raw"
	if utils.IsImageExtension(ext) {
		kind = "image"
	}

	doc, err := h.documentService.Attach(c.Request.Context(), requester, services.AttachInput{
		CaseID:       caseID,
		Title:        title,
		DocumentType: documentType,
		File:         file,
		Extension:    ext,
		ResourceKind: kind,
		Size:         fileHeader.Size,
	})
	if err != nil {
		h.logger.Error("attach document failed", zap.Error(err))
		respondError(c, err, "Error uploading document")
		return
	}

	respondData(c, http.StatusCreated, doc)
}

func (h *DocumentHandler) ListForCase(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	caseID := c.Param("caseId")
	if caseID == "" {
		caseID = c.Param("id")
	}

	docs, err := h.documentService.ListForCase(c.Request.Context(), requester, caseID)
	if err != nil {
		respondError(c, err, "Error fetching documents")
		return
	}

	respondList(c, len(docs), docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	doc, err := h.documentService.Get(c.Request.Context(), requester, c.Param("id"))
	if err != nil {
		respondError(c, err, "Error fetching document")
		return
	}

	respondData(c, http.StatusOK, doc)
}

type updateDocumentRequest struct {
	Title        string `json:"title"`
	DocumentType string `json:"documentType"`
}

func (h *DocumentHandler) Update(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	doc, err := h.documentService.Update(c.Request.Context(), requester, c.Param("id"), services.DocumentPatch{
		Title:        req.Title,
		DocumentType: req.DocumentType,
	})
	if err != nil {
		h.logger.Error("update document failed", zap.Error(err))
		respondError(c, err, "Error updating document")
		return
	}

	respondData(c, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	requester, _ := middleware.RequesterFrom(c)

	if err := h.documentService.Remove(c.Request.Context(), requester, c.Param("id")); err != nil {
		h.logger.Error("delete document failed", zap.Error(err))
		respondError(c, err, "Error deleting document")
		return
	}

	respondMessage(c, "Document removed successfully")
}
