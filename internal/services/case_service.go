package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Larkoefua/caseTrackerApi/internal/db/models"
	"github.com/Larkoefua/caseTrackerApi/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CaseService is the case registry: filing, retrieval and mutation of cases,
// with a trail entry for every mutation. Status is deliberately free-form --
// no transition graph is enforced, so a completed or rejected case can move
// back to pending.
type CaseService struct {
	db      *gorm.DB
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewCaseService(db *gorm.DB, logger *zap.Logger, collector *metrics.Collector) *CaseService {
	return &CaseService{
		db:      db,
		logger:  logger.With(zap.String("service", "case_service")),
		metrics: collector,
	}
}

type CreateCaseInput struct {
	Title       string
	Description string
	CourtInfo   *models.CourtInfo
}

// Create files a new case. Number allocation, the case row and the
// originating "Case filing initiated" entry commit in one transaction: a
// case without its initial trail entry can never be observed.
func (s *CaseService) Create(ctx context.Context, requester Requester, input CreateCaseInput) (*models.Case, error) {
	start := time.Now()

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, ValidationError{Message: "Title and description are required"}
	}

	newCase := &models.Case{
		ID:          uuid.New().String(),
		OwnerID:     requester.ID,
		Title:       title,
		Description: description,
		Status:      models.StatusPending,
	}
	if input.CourtInfo != nil {
		newCase.CourtInfo = *input.CourtInfo
	}

	year := time.Now().Year()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextCaseSequence(tx, year)
		if err != nil {
			return err
		}
		newCase.CaseNumber = fmt.Sprintf("CASE-%d-%05d", year, seq)

		if err := tx.Create(newCase).Error; err != nil {
			if isUniqueViolation(err) {
				return DuplicateError{Message: "Case number already allocated"}
			}
			return StoreError{Op: "create case", Err: err}
		}

		return recordAutomatic(tx, newCase.ID, "Case filing initiated", models.UpdateTypeStatus, requester.ID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCounter("cases_created", nil)
	s.metrics.ObserveLatency("case_create", time.Since(start))
	s.logger.Info("case created",
		zap.String("case_id", newCase.ID),
		zap.String("case_number", newCase.CaseNumber),
		zap.String("owner_id", newCase.OwnerID))
	return newCase, nil
}

// List returns every case for admins and only owned cases otherwise,
// newest first.
func (s *CaseService) List(ctx context.Context, requester Requester) ([]models.Case, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if !requester.IsAdmin() {
		query = query.Where("owner_id = ?", requester.ID)
	}

	var cases []models.Case
	if err := query.Find(&cases).Error; err != nil {
		return nil, StoreError{Op: "list cases", Err: err}
	}
	return cases, nil
}

func (s *CaseService) Get(ctx context.Context, requester Requester, id string) (*models.Case, error) {
	return guardCase(s.db.WithContext(ctx), requester, id, "Not authorized to view this case")
}

// UpdateStatus moves a case to any valid status and records the change.
func (s *CaseService) UpdateStatus(ctx context.Context, requester Requester, id string, status models.CaseStatus) (*models.Case, error) {
	if !status.Valid() {
		return nil, ValidationError{Message: "Invalid case status"}
	}

	db := s.db.WithContext(ctx)
	caseItem, err := guardCase(db, requester, id, "Not authorized to update this case")
	if err != nil {
		return nil, err
	}

	caseItem.Status = status
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(caseItem).Update("status", status).Error; err != nil {
			return StoreError{Op: "update case status", Err: err}
		}
		return recordAutomatic(tx, caseItem.ID, fmt.Sprintf("Case status updated to %s", status), models.UpdateTypeStatus, requester.ID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCounter("case_status_changes", map[string]string{"status": string(status)})
	s.logger.Info("case status updated",
		zap.String("case_id", caseItem.ID),
		zap.String("status", string(status)))
	return caseItem, nil
}

type CaseDetailsPatch struct {
	Title       string
	Description string
	CourtInfo   *models.CourtInfo
}

// UpdateDetails replaces only the fields present and non-empty in the patch
// and records one "Case details updated" entry.
func (s *CaseService) UpdateDetails(ctx context.Context, requester Requester, id string, patch CaseDetailsPatch) (*models.Case, error) {
	db := s.db.WithContext(ctx)
	caseItem, err := guardCase(db, requester, id, "Not authorized to update this case")
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(patch.Title); title != "" {
		caseItem.Title = title
	}
	if description := strings.TrimSpace(patch.Description); description != "" {
		caseItem.Description = description
	}
	if patch.CourtInfo != nil {
		caseItem.CourtInfo = *patch.CourtInfo
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(caseItem).Error; err != nil {
			return StoreError{Op: "update case details", Err: err}
		}
		return recordAutomatic(tx, caseItem.ID, "Case details updated", models.UpdateTypeGeneral, requester.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("case details updated", zap.String("case_id", caseItem.ID))
	return caseItem, nil
}

// nextCaseSequence bumps the per-year counter and reads the new value inside
// the caller's transaction. The upsert locks the counter row, so concurrent
// creations for the same year serialize and never see the same value.
func nextCaseSequence(tx *gorm.DB, year int) (int64, error) {
	seq := models.CaseSequence{Year: year, Value: 1}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": gorm.Expr("case_sequences.value + 1")}),
	}).Create(&seq).Error; err != nil {
		return 0, StoreError{Op: "allocate case number", Err: err}
	}
	if err := tx.Take(&seq, "year = ?", year).Error; err != nil {
		return 0, StoreError{Op: "allocate case number", Err: err}
	}
	return seq.Value, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
