package models

import "time"

// Document references a file held by the external blob store. BlobID is the
// opaque handle the store understands; FileURL is the secure retrieval URL
// resolved at upload time. The bytes themselves never live in this table.
type Document struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	CaseID       string    `gorm:"index;not null" json:"caseId"`
	Title        string    `gorm:"not null" json:"title"`
	DocumentType string    `gorm:"not null" json:"documentType"`
	FileURL      string    `gorm:"not null" json:"fileUrl"`
	BlobID       string    `gorm:"uniqueIndex;not null" json:"blobId"`
	UploadedBy   string    `gorm:"not null" json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// OrphanedBlob records a blob whose delete failed after its metadata row was
// already removed. The reconciliation sweep drains this table.
type OrphanedBlob struct {
	ID         uint      `gorm:"primaryKey"`
	BlobID     string    `gorm:"index;not null"`
	DocumentID string    `gorm:"not null"`
	RecordedAt time.Time `gorm:"autoCreateTime"`
}
