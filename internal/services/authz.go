package services

import (
	"errors"

	"github.com/Larkoefua/caseTrackerApi/internal/db/models"
	"gorm.io/gorm"
)

// Requester is the trusted identity the upstream provider attaches to every
// call. The engine never verifies credentials itself.
type Requester struct {
	ID   string
	Role models.UserRole
}

func (r Requester) IsAdmin() bool { return r.Role == models.RoleAdmin }

// Authorize allows admins and the resource owner; everyone else is denied
// with the operation-specific message. Documents and updates carry no
// ownership of their own, so callers pass the parent case's owner.
func Authorize(requester Requester, ownerID, denyMessage string) error {
	if requester.IsAdmin() || requester.ID == ownerID {
		return nil
	}
	return AuthorizationError{Message: denyMessage}
}

// guardCase loads a case and authorizes the requester against its owner in
// one step. Every document and update operation resolves its authority
// through here.
func guardCase(db *gorm.DB, requester Requester, caseID, denyMessage string) (*models.Case, error) {
	caseItem, err := findCase(db, caseID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(requester, caseItem.OwnerID, denyMessage); err != nil {
		return nil, err
	}
	return caseItem, nil
}

func findCase(db *gorm.DB, caseID string) (*models.Case, error) {
	var caseItem models.Case
	if err := db.First(&caseItem, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Resource: "Case"}
		}
		return nil, StoreError{Op: "load case", Err: err}
	}
	return &caseItem, nil
}
