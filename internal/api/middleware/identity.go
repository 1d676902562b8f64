package middleware

import (
	"net/http"

	"github.com/Larkoefua/caseTrackerApi/internal/db/models"
	"github.com/Larkoefua/caseTrackerApi/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const requesterKey = "requester"

// IdentityMiddleware resolves the trusted requester on every /api call.
// Credential verification happens upstream; the gateway injects the
// authenticated user id and this middleware only confirms the account
// exists and loads its authoritative role.
type IdentityMiddleware struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewIdentityMiddleware(db *gorm.DB, logger *zap.Logger) *IdentityMiddleware {
	return &IdentityMiddleware{
		db:     db,
		logger: logger.With(zap.String("middleware", "identity")),
	}
}

func (im *IdentityMiddleware) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		var user models.User
		if err := im.db.First(&user, "id = ?", userID).Error; err != nil {
			im.logger.Warn("unknown requester", zap.String("user_id", userID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		c.Set(requesterKey, services.Requester{ID: user.ID, Role: user.Role})
		c.Next()
	}
}

// RequesterFrom returns the identity stored by RequireIdentity.
func RequesterFrom(c *gin.Context) (services.Requester, bool) {
	v, ok := c.Get(requesterKey)
	if !ok {
		return services.Requester{}, false
	}
	requester, ok := v.(services.Requester)
	return requester, ok
}
