// Package handlers exposes the portfolio service over HTTP with gin.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-tracker/apperr"
)

// writeError maps the internal error taxonomy onto transport status codes.
// Quote availability never reaches this path; it degrades to absent data
// before the boundary.
func writeError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": apperr.KindValidation})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": apperr.KindNotFound})
	case apperr.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "kind": apperr.KindUnauthorized})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
