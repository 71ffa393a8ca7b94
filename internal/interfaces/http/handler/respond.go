package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	orderapp "storefront/internal/application/order"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/validation"
)

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{"success": true, "data": data, "message": message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}

// respondError maps domain and application errors onto the response
// envelope: validation maps become 422, missing resources 404, ownership
// failures 403, everything else a generic 500.
func respondError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "errors": verrs})
	case errors.Is(err, repository.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "product not found"})
	case errors.Is(err, repository.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "order not found"})
	case errors.Is(err, orderapp.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "you do not have permission to access this order"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}
}
