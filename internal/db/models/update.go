package models

import "time"

type UpdateType string

const (
	UpdateTypeStatus   UpdateType = "status"
	UpdateTypeDocument UpdateType = "document"
	UpdateTypeCourt    UpdateType = "court"
	UpdateTypeGeneral  UpdateType = "general"
)

func (t UpdateType) Valid() bool {
	switch t {
	case UpdateTypeStatus, UpdateTypeDocument, UpdateTypeCourt, UpdateTypeGeneral:
		return true
	}
	return false
}

// Update is one append-only audit trail entry for a case. Entries emitted by
// mutating operations carry IsAutomatic=true; user-authored notes do not.
type Update struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	CaseID      string     `gorm:"index:idx_updates_case_created;not null" json:"caseId"`
	Message     string     `gorm:"not null" json:"message"`
	UpdateType  UpdateType `gorm:"not null;default:'general'" json:"updateType"`
	CreatedBy   string     `gorm:"index;not null" json:"createdBy"`
	IsAutomatic bool       `gorm:"not null;default:false" json:"isAutomatic"`
	CreatedAt   time.Time  `gorm:"index:idx_updates_case_created" json:"createdAt"`
}
