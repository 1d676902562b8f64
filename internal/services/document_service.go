package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Larkoefua/caseTrackerApi/internal/db/models"
	"github.com/Larkoefua/caseTrackerApi/internal/storage"
	"github.com/Larkoefua/caseTrackerApi/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService binds externally stored files to cases. It coordinates the
// metadata store with the blob store: the blob is written first and its
// secure URL is in hand before any row exists, so a document row never
// carries a provisional URL. Removal deletes metadata first; a blob left
// behind by a failed delete is recorded for the reconciliation sweep.
type DocumentService struct {
	db        *gorm.DB
	blobs     storage.BlobStore
	namespace string
	logger    *zap.Logger
	metrics   *metrics.Collector
}

func NewDocumentService(db *gorm.DB, blobs storage.BlobStore, namespace string, logger *zap.Logger, collector *metrics.Collector) *DocumentService {
	return &DocumentService{
		db:        db,
		blobs:     blobs,
		namespace: namespace,
		logger:    logger.With(zap.String("service", "document_service")),
		metrics:   collector,
	}
}

type AttachInput struct {
	CaseID       string
	Title        string
	DocumentType string
	File         io.Reader
	Extension    string
	// ResourceKind partitions the blob namespace, "image" or "raw". The
	// ingestion boundary classifies; the engine trusts the declaration.
	ResourceKind string
	Size         int64
}

// Attach stores the file and creates the document record. The metadata row
// and its "New document uploaded" trail entry commit together; if that
// transaction fails the fresh blob is deleted again.
func (s *DocumentService) Attach(ctx context.Context, requester Requester, input AttachInput) (*models.Document, error) {
	start := time.Now()

	if input.CaseID == "" || strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.DocumentType) == "" {
		return nil, ValidationError{Message: "Missing required fields"}
	}
	if input.File == nil {
		return nil, ValidationError{Message: "No file uploaded"}
	}

	db := s.db.WithContext(ctx)
	caseItem, err := guardCase(db, requester, input.CaseID, "Not authorized to upload to this case")
	if err != nil {
		return nil, err
	}

	kind := input.ResourceKind
	if kind == "" {
		kind = "raw"
	}
	res, err := s.blobs.Put(ctx, input.File, path.Join(s.namespace, kind), input.Extension)
	if err != nil {
		return nil, StoreError{Op: "store blob", Err: err}
	}

	fileURL := res.URL
	if fileURL == "" {
		fileURL, err = s.blobs.ResolveSecureURL(ctx, res.ID)
		if err != nil {
			s.discardBlob(ctx, res.ID)
			return nil, StoreError{Op: "resolve blob url", Err: err}
		}
	}

	doc := &models.Document{
		ID:           uuid.New().String(),
		CaseID:       caseItem.ID,
		Title:        strings.TrimSpace(input.Title),
		DocumentType: strings.TrimSpace(input.DocumentType),
		FileURL:      fileURL,
		BlobID:       res.ID,
		UploadedBy:   requester.ID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return StoreError{Op: "create document", Err: err}
		}
		return recordAutomatic(tx, caseItem.ID, fmt.Sprintf("New document uploaded: %s", doc.Title), models.UpdateTypeDocument, requester.ID)
	})
	if err != nil {
		s.discardBlob(ctx, res.ID)
		return nil, err
	}

	s.metrics.IncrementCounter("documents_attached", nil)
	s.metrics.ObserveSize("document_size", float64(input.Size))
	s.metrics.ObserveLatency("document_attach", time.Since(start))
	s.logger.Info("document attached",
		zap.String("document_id", doc.ID),
		zap.String("case_id", doc.CaseID),
		zap.String("blob_id", doc.BlobID))
	return doc, nil
}

// ListForCase returns a case's documents, newest first.
func (s *DocumentService) ListForCase(ctx context.Context, requester Requester, caseID string) ([]models.Document, error) {
	db := s.db.WithContext(ctx)
	if _, err := guardCase(db, requester, caseID, "Not authorized to view documents for this case"); err != nil {
		return nil, err
	}

	var docs []models.Document
	if err := db.Where("case_id = ?", caseID).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, StoreError{Op: "list documents", Err: err}
	}
	return docs, nil
}

// Get loads one document, authorizing through its parent case since a
// document carries no ownership of its own.
func (s *DocumentService) Get(ctx context.Context, requester Requester, id string) (*models.Document, error) {
	db := s.db.WithContext(ctx)
	doc, err := s.findDocument(db, id)
	if err != nil {
		return nil, err
	}
	if _, err := guardCase(db, requester, doc.CaseID, "Not authorized to view this document"); err != nil {
		return nil, err
	}
	return doc, nil
}

type DocumentPatch struct {
	Title        string
	DocumentType string
}

// Update changes title and documentType only. The stored bytes are
// immutable after upload. Metadata edits are deliberately silent: the trail
// records lifecycle events (filing, status, upload, delete), and a title fix
// is not case history.
func (s *DocumentService) Update(ctx context.Context, requester Requester, id string, patch DocumentPatch) (*models.Document, error) {
	db := s.db.WithContext(ctx)
	doc, err := s.findDocument(db, id)
	if err != nil {
		return nil, err
	}
	if _, err := guardCase(db, requester, doc.CaseID, "Not authorized to update this document"); err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(patch.Title); title != "" {
		doc.Title = title
	}
	if documentType := strings.TrimSpace(patch.DocumentType); documentType != "" {
		doc.DocumentType = documentType
	}
	if err := db.Save(doc).Error; err != nil {
		return nil, StoreError{Op: "update document", Err: err}
	}

	s.logger.Info("document updated", zap.String("document_id", doc.ID))
	return doc, nil
}

// Remove deletes the metadata row and its trail entry first, then the blob.
// A failed blob delete leaves an orphaned blob, never a visible document
// pointing at missing bytes; the orphan is recorded for ReconcileBlobs. When
// even that record cannot be written the remove reports a store failure, so
// a blob that no sweep will ever find does not leak silently.
func (s *DocumentService) Remove(ctx context.Context, requester Requester, id string) error {
	db := s.db.WithContext(ctx)
	doc, err := s.findDocument(db, id)
	if err != nil {
		return err
	}
	if _, err := guardCase(db, requester, doc.CaseID, "Not authorized to delete this document"); err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(doc).Error; err != nil {
			return StoreError{Op: "delete document", Err: err}
		}
		return recordAutomatic(tx, doc.CaseID, fmt.Sprintf("Document deleted: %s", doc.Title), models.UpdateTypeDocument, requester.ID)
	})
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, doc.BlobID); err != nil {
		s.logger.Warn("blob delete failed, recording orphan",
			zap.String("blob_id", doc.BlobID),
			zap.String("document_id", doc.ID),
			zap.Error(err))
		if rerr := db.Create(&models.OrphanedBlob{BlobID: doc.BlobID, DocumentID: doc.ID}).Error; rerr != nil {
			s.logger.Error("failed to record orphaned blob", zap.String("blob_id", doc.BlobID), zap.Error(rerr))
			return StoreError{Op: "record orphaned blob", Err: rerr}
		}
	}

	s.metrics.IncrementCounter("documents_removed", nil)
	s.logger.Info("document removed",
		zap.String("document_id", doc.ID),
		zap.String("case_id", doc.CaseID))
	return nil
}

// ReconcileBlobs retries deletion of blobs left behind by failed removes.
// It returns how many orphans were cleared.
func (s *DocumentService) ReconcileBlobs(ctx context.Context) (int, error) {
	db := s.db.WithContext(ctx)

	var orphans []models.OrphanedBlob
	if err := db.Find(&orphans).Error; err != nil {
		return 0, StoreError{Op: "list orphaned blobs", Err: err}
	}

	cleared := 0
	for _, orphan := range orphans {
		if err := s.blobs.Delete(ctx, orphan.BlobID); err != nil {
			s.logger.Warn("orphaned blob still undeletable",
				zap.String("blob_id", orphan.BlobID),
				zap.Error(err))
			continue
		}
		if err := db.Delete(&orphan).Error; err != nil {
			return cleared, StoreError{Op: "clear orphaned blob", Err: err}
		}
		cleared++
	}

	if cleared > 0 {
		s.logger.Info("reconciled orphaned blobs", zap.Int("cleared", cleared))
	}
	return cleared, nil
}

func (s *DocumentService) findDocument(db *gorm.DB, id string) (*models.Document, error) {
	var doc models.Document
	if err := db.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Resource: "Document"}
		}
		return nil, StoreError{Op: "load document", Err: err}
	}
	return &doc, nil
}

// discardBlob best-effort deletes a blob written by an attach that did not
// complete. Failure only leaves unreferenced garbage, never visible state.
func (s *DocumentService) discardBlob(ctx context.Context, blobID string) {
	if err := s.blobs.Delete(ctx, blobID); err != nil {
		s.logger.Warn("could not discard blob after failed attach",
			zap.String("blob_id", blobID),
			zap.Error(err))
	}
}
