package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/cmd/archiva/types"
	"github.com/RhmnKpc/archiva/internal/database"
	"github.com/RhmnKpc/archiva/internal/index"
	"github.com/RhmnKpc/archiva/internal/repository"
	"github.com/RhmnKpc/archiva/internal/storage"
)

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrRepositoryNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, database.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrReadOnlyRepository):
		return http.StatusConflict
	case errors.Is(err, index.ErrSearchBackend):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("request failed")
	}
	c.JSON(status, types.ErrorResponse{Error: http.StatusText(status), Details: err.Error()})
}
