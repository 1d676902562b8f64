package models

import "time"

type CaseStatus string

const (
	StatusPending    CaseStatus = "pending"
	StatusInProgress CaseStatus = "in-progress"
	StatusCompleted  CaseStatus = "completed"
	StatusRejected   CaseStatus = "rejected"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// CourtInfo is optional court scheduling detail attached to a case.
type CourtInfo struct {
	CourtName   string     `json:"courtName,omitempty"`
	Judge       string     `json:"judge,omitempty"`
	HearingDate *time.Time `json:"hearingDate,omitempty"`
}

type Case struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	CaseNumber  string     `gorm:"uniqueIndex;not null" json:"caseNumber"`
	OwnerID     string     `gorm:"index;not null" json:"ownerId"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"not null" json:"description"`
	Status      CaseStatus `gorm:"index;not null;default:'pending'" json:"status"`
	CourtInfo   CourtInfo  `gorm:"embedded;embeddedPrefix:court_" json:"courtInfo"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CaseSequence is the per-year counter behind case numbering. It is only
// ever touched with an upsert inside the case creation transaction, which
// is what makes concurrent creations collision-free.
type CaseSequence struct {
	Year  int   `gorm:"primaryKey"`
	Value int64 `gorm:"not null"`
}
