package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/swim-planner-api/internal/middleware"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
)

// requesterID returns the authenticated user id or ErrUnauthorized.
func requesterID(c *gin.Context) (string, error) {
	claims := middleware.Claims(c)
	if id := claims.RequesterID(); id != "" {
		return id, nil
	}
	return "", appErrors.ErrUnauthorized
}
