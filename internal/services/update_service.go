package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/Larkoefua/caseTrackerApi/internal/db/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minUpdateMessageLen = 3

// UpdateService is the audit trail: append and list lifecycle events for a
// case. Entries are never edited; deletion is a hard removal.
type UpdateService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUpdateService(db *gorm.DB, logger *zap.Logger) *UpdateService {
	return &UpdateService{
		db:     db,
		logger: logger.With(zap.String("service", "update_service")),
	}
}

type RecordUpdateInput struct {
	CaseID  string
	Message string
	Type    models.UpdateType
}

// Record appends a user-authored entry to a case's trail.
func (s *UpdateService) Record(ctx context.Context, requester Requester, input RecordUpdateInput) (*models.Update, error) {
	if input.CaseID == "" || strings.TrimSpace(input.Message) == "" {
		return nil, ValidationError{Message: "Case ID and message are required"}
	}

	db := s.db.WithContext(ctx)
	if _, err := guardCase(db, requester, input.CaseID, "Not authorized to create updates for this case"); err != nil {
		return nil, err
	}

	upd, err := buildUpdate(input.CaseID, input.Message, input.Type, requester.ID, false)
	if err != nil {
		return nil, err
	}
	if err := db.Create(upd).Error; err != nil {
		return nil, StoreError{Op: "record update", Err: err}
	}

	s.logger.Info("update recorded",
		zap.String("update_id", upd.ID),
		zap.String("case_id", upd.CaseID),
		zap.String("type", string(upd.UpdateType)))
	return upd, nil
}

// ListForCase returns a case's entries, newest first.
func (s *UpdateService) ListForCase(ctx context.Context, requester Requester, caseID string) ([]models.Update, error) {
	db := s.db.WithContext(ctx)
	if _, err := guardCase(db, requester, caseID, "Not authorized to view updates for this case"); err != nil {
		return nil, err
	}

	var updates []models.Update
	if err := db.Where("case_id = ?", caseID).
		Order("created_at DESC").
		Find(&updates).Error; err != nil {
		return nil, StoreError{Op: "list updates", Err: err}
	}
	return updates, nil
}

// Delete hard-removes an entry. Authorization runs against the parent
// case's owner, not the entry's author: the case owner or an admin may
// delete an entry someone else wrote. That boundary is deliberate.
func (s *UpdateService) Delete(ctx context.Context, requester Requester, id string) error {
	db := s.db.WithContext(ctx)

	var upd models.Update
	if err := db.First(&upd, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError{Resource: "Update"}
		}
		return StoreError{Op: "load update", Err: err}
	}

	if _, err := guardCase(db, requester, upd.CaseID, "Not authorized to delete this update"); err != nil {
		return err
	}

	if err := db.Delete(&upd).Error; err != nil {
		return StoreError{Op: "delete update", Err: err}
	}

	s.logger.Info("update deleted",
		zap.String("update_id", upd.ID),
		zap.String("case_id", upd.CaseID),
		zap.String("deleted_by", requester.ID))
	return nil
}

// buildUpdate validates and assembles an entry without persisting it.
func buildUpdate(caseID, message string, updateType models.UpdateType, authorID string, automatic bool) (*models.Update, error) {
	message = strings.TrimSpace(message)
	// Characters, not bytes: a two-character accented message is still short.
	if utf8.RuneCountInString(message) < minUpdateMessageLen {
		return nil, ValidationError{Message: "Message must be at least 3 characters long"}
	}
	if updateType == "" {
		updateType = models.UpdateTypeGeneral
	}
	if !updateType.Valid() {
		return nil, ValidationError{Message: "Invalid update type"}
	}
	return &models.Update{
		ID:          uuid.New().String(),
		CaseID:      caseID,
		Message:     message,
		UpdateType:  updateType,
		CreatedBy:   authorID,
		IsAutomatic: automatic,
	}, nil
}

// recordAutomatic appends a system-emitted entry within the caller's
// transaction, so a mutation and its trail entry commit or fail together.
func recordAutomatic(tx *gorm.DB, caseID, message string, updateType models.UpdateType, authorID string) error {
	upd, err := buildUpdate(caseID, message, updateType, authorID, true)
	if err != nil {
		return err
	}
	if err := tx.Create(upd).Error; err != nil {
		return StoreError{Op: "record update", Err: err}
	}
	return nil
}
