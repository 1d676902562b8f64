package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Larkoefua/caseTrackerApi/internal/config"
	"github.com/Larkoefua/caseTrackerApi/internal/db/models"
	"github.com/Larkoefua/caseTrackerApi/internal/services"
	"github.com/Larkoefua/caseTrackerApi/internal/storage"
	"github.com/Larkoefua/caseTrackerApi/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type apiHarness struct {
	router *Router
	db     *gorm.DB
	owner  models.User
	other  models.User
	admin  models.User
}

func newAPIHarness(t *testing.T) *apiHarness {
	return newAPIHarnessUpload(t, config.UploadConfig{
		AllowedExtensions: []string{"jpg", "jpeg", "png", "pdf", "doc", "docx"},
		MaxFileBytes:      5 * 1024 * 1024,
	})
}

func newAPIHarnessUpload(t *testing.T, upload config.UploadConfig) *apiHarness {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Case{},
		&models.CaseSequence{},
		&models.Document{},
		&models.Update{},
		&models.OrphanedBlob{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	seed := func(role models.UserRole) models.User {
		u := models.User{
			ID:           uuid.NewString(),
			Name:         "Test User",
			Email:        uuid.NewString() + "@example.com",
			PasswordHash: "hash",
			Role:         role,
		}
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
		return u
	}

	cfg := &config.Configuration{Upload: upload}

	logger := zap.NewNop()
	collector := metrics.NewCollector()
	store := storage.NewMemoryStore("https://files.test")

	caseService := services.NewCaseService(db, logger, collector)
	documentService := services.NewDocumentService(db, store, "case-tracker", logger, collector)
	updateService := services.NewUpdateService(db, logger)

	router := NewRouter(cfg, logger, collector, caseService, documentService, updateService, db)
	router.SetupRoutes()

	return &apiHarness{
		router: router,
		db:     db,
		owner:  seed(models.RoleUser),
		other:  seed(models.RoleUser),
		admin:  seed(models.RoleAdmin),
	}
}

func (h *apiHarness) do(t *testing.T, userID, method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}

	rec := httptest.NewRecorder()
	h.router.Engine().ServeHTTP(rec, req)
	return rec
}

func (h *apiHarness) doMultipart(t *testing.T, userID, target string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write file content: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-User-Id", userID)

	rec := httptest.NewRecorder()
	h.router.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return envelope
}

func (h *apiHarness) createCase(t *testing.T, userID string) string {
	rec := h.do(t, userID, http.MethodPost, "/api/cases", map[string]string{
		"title":       "Estate settlement",
		"description": "Probate filing for the Mensah estate",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create case status = %d body = %s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	return data["id"].(string)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	h := newAPIHarness(t)

	rec := h.do(t, "", http.MethodGet, "/api/cases", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != false || envelope["message"] != "Authentication required" {
		t.Fatalf("envelope = %v", envelope)
	}

	rec = h.do(t, uuid.NewString(), http.MethodGet, "/api/cases", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user status = %d", rec.Code)
	}
}

func TestCreateCaseEndpoint(t *testing.T) {
	h := newAPIHarness(t)

	rec := h.do(t, h.owner.ID, http.MethodPost, "/api/cases", map[string]string{
		"title":       "Estate settlement",
		"description": "Probate filing",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != true {
		t.Fatalf("envelope = %v", envelope)
	}
	data := envelope["data"].(map[string]any)
	caseNumber, _ := data["caseNumber"].(string)
	if !strings.HasPrefix(caseNumber, "CASE-") || !strings.HasSuffix(caseNumber, "-00001") {
		t.Fatalf("caseNumber = %q", caseNumber)
	}
	if data["status"] != "pending" {
		t.Fatalf("status = %v", data["status"])
	}

	rec = h.do(t, h.owner.ID, http.MethodPost, "/api/cases", map[string]string{"title": "only title"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("validation status = %d", rec.Code)
	}
	envelope = decodeEnvelope(t, rec)
	if envelope["message"] != "Title and description are required" {
		t.Fatalf("message = %v", envelope["message"])
	}
}

func TestGetCaseForbiddenForStranger(t *testing.T) {
	h := newAPIHarness(t)
	caseID := h.createCase(t, h.owner.ID)

	rec := h.do(t, h.other.ID, http.MethodGet, "/api/cases/"+caseID, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["message"] != "Not authorized to view this case" {
		t.Fatalf("message = %v", envelope["message"])
	}

	rec = h.do(t, h.admin.ID, http.MethodGet, "/api/cases/"+caseID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d", rec.Code)
	}
}

func TestListCasesEnvelopeHasCount(t *testing.T) {
	h := newAPIHarness(t)
	h.createCase(t, h.owner.ID)
	h.createCase(t, h.other.ID)

	rec := h.do(t, h.owner.ID, http.MethodGet, "/api/cases", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["count"] != float64(1) {
		t.Fatalf("owner count = %v", envelope["count"])
	}

	rec = h.do(t, h.admin.ID, http.MethodGet, "/api/cases", nil)
	envelope = decodeEnvelope(t, rec)
	if envelope["count"] != float64(2) {
		t.Fatalf("admin count = %v", envelope["count"])
	}
}

func TestStatusUpdateEndpoint(t *testing.T) {
	h := newAPIHarness(t)
	caseID := h.createCase(t, h.owner.ID)

	rec := h.do(t, h.owner.ID, http.MethodPut, "/api/cases/"+caseID+"/status", map[string]string{"status": "in-progress"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["status"] != "in-progress" {
		t.Fatalf("case status = %v", data["status"])
	}

	rec = h.do(t, h.owner.ID, http.MethodPut, "/api/cases/"+caseID+"/status", map[string]string{"status": "archived"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status code = %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["message"] != "Invalid case status" {
		t.Fatalf("message = %v", envelope["message"])
	}
}

func TestNestedUpdateRoutes(t *testing.T) {
	h := newAPIHarness(t)
	caseID := h.createCase(t, h.owner.ID)

	rec := h.do(t, h.owner.ID, http.MethodPost, "/api/cases/"+caseID+"/updates", map[string]string{
		"message": "Client provided missing paperwork",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["updateType"] != "general" {
		t.Fatalf("updateType = %v", data["updateType"])
	}
	if data["isAutomatic"] != false {
		t.Fatalf("isAutomatic = %v", data["isAutomatic"])
	}

	rec = h.do(t, h.owner.ID, http.MethodPost, "/api/cases/"+caseID+"/updates", map[string]string{"message": "hi"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short message status = %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["message"] != "Message must be at least 3 characters long" {
		t.Fatalf("message = %v", envelope["message"])
	}

	// Filing plus the manual entry.
	rec = h.do(t, h.owner.ID, http.MethodGet, "/api/cases/"+caseID+"/updates", nil)
	envelope = decodeEnvelope(t, rec)
	if envelope["count"] != float64(2) {
		t.Fatalf("count = %v", envelope["count"])
	}

	// Same trail through the flat route.
	rec = h.do(t, h.owner.ID, http.MethodGet, "/api/updates/case/"+caseID, nil)
	envelope = decodeEnvelope(t, rec)
	if envelope["count"] != float64(2) {
		t.Fatalf("flat route count = %v", envelope["count"])
	}
}

func TestDocumentUploadEndpoint(t *testing.T) {
	h := newAPIHarness(t)
	caseID := h.createCase(t, h.owner.ID)

	rec := h.doMultipart(t, h.owner.ID, "/api/cases/"+caseID+"/documents",
		map[string]string{"title": "Signed contract", "documentType": "contract"},
		"contract.pdf", []byte("%PDF-1.4 fake"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["caseId"] != caseID {
		t.Fatalf("caseId = %v", data["caseId"])
	}
	fileURL, _ := data["fileUrl"].(string)
	if !strings.HasPrefix(fileURL, "https://files.test/") {
		t.Fatalf("fileUrl = %q", fileURL)
	}
	blobID, _ := data["blobId"].(string)
	if !strings.Contains(blobID, "/raw/") {
		t.Fatalf("pdf not classified raw: blobId = %q", blobID)
	}

	// Flat route with the case id as a form field; png lands in the image
	// namespace.
	rec = h.doMultipart(t, h.owner.ID, "/api/documents",
		map[string]string{"caseId": caseID, "title": "Site photo", "documentType": "evidence"},
		"photo.png", []byte{0x89, 'P', 'N', 'G'})
	if rec.Code != http.StatusCreated {
		t.Fatalf("flat route status = %d body = %s", rec.Code, rec.Body.String())
	}
	data = decodeEnvelope(t, rec)["data"].(map[string]any)
	blobID, _ = data["blobId"].(string)
	if !strings.Contains(blobID, "/image/") {
		t.Fatalf("png not classified image: blobId = %q", blobID)
	}

	rec = h.do(t, h.owner.ID, http.MethodGet, "/api/cases/"+caseID+"/documents", nil)
	envelope := decodeEnvelope(t, rec)
	if envelope["count"] != float64(2) {
		t.Fatalf("document count = %v", envelope["count"])
	}
}

func TestDocumentUploadRejectsDisallowedExtension(t *testing.T) {
	h := newAPIHarness(t)
	caseID := h.createCase(t, h.owner.ID)

	rec := h.doMultipart(t, h.owner.ID, "/api/cases/"+caseID+"/documents",
		map[string]string{"title": "Payload", "documentType": "other"},
		"payload.exe", []byte("MZ"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["message"] != "Invalid file type. Allowed extensions are: jpg, jpeg, png, pdf, doc, docx" {
		t.Fatalf("message = %v", envelope["message"])
	}

	rec = h.doMultipart(t, h.owner.ID, "/api/cases/"+caseID+"/documents",
		map[string]string{"title": "No type"},
		"doc.pdf", []byte("%PDF"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing field status = %d", rec.Code)
	}
	envelope = decodeEnvelope(t, rec)
	if envelope["message"] != "Missing required fields" {
		t.Fatalf("message = %v", envelope["message"])
	}

	rec = h.do(t, h.owner.ID, http.MethodGet, "/api/cases/"+caseID+"/documents", nil)
	envelope = decodeEnvelope(t, rec)
	if envelope["count"] != float64(0) {
		t.Fatalf("rejected upload created a document, count = %v", envelope["count"])
	}
}

func TestDocumentUploadRejectsOversizedFile(t *testing.T) {
	h := newAPIHarnessUpload(t, config.UploadConfig{
		AllowedExtensions: []string{"pdf"},
		MaxFileBytes:      16,
	})
	caseID := h.createCase(t, h.owner.ID)

	rec := h.doMultipart(t, h.owner.ID, "/api/cases/"+caseID+"/documents",
		map[string]string{"title": "Big file", "documentType": "contract"},
		"big.pdf", bytes.Repeat([]byte("a"), 32))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["message"] != "File exceeds the maximum upload size" {
		t.Fatalf("message = %v", envelope["message"])
	}
}

func TestHealthEndpointOpen(t *testing.T) {
	h := newAPIHarness(t)
	rec := h.do(t, "", http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
