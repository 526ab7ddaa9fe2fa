package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorJSON writes the structured error body used across the API.
func errorJSON(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

// internalError passes the underlying message through. Acceptable for an
// internal tool; a hardening pass should replace it with an opaque message.
func internalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}
