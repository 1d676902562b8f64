package handlers

import (
	"errors"
	"net/http"

	"github.com/Larkoefua/caseTrackerApi/internal/services"
	"github.com/gin-gonic/gin"
)

// respondData writes the success envelope.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondList is respondData plus the item count list endpoints expose.
func respondList(c *gin.Context, count int, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count, "data": data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// respondError maps a service error kind to its status. Typed user-facing
// errors carry their own message; anything else (store failures, bugs) gets
// the handler's fallback so internals never leak.
func respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, services.ValidationError{}):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.NotFoundError{}):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.AuthorizationError{}):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, services.DuplicateError{}):
		status = http.StatusConflict
		message = err.Error()
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}
