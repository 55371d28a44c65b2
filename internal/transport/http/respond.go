package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/dmikhailov/estore/internal/domain"
)

// envelope — единый формат ответа API.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: true, Message: message})
}

func respondError(c *gin.Context, logger *log.Entry, err error) {
	status, message := mapError(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
		message = "internal server error"
	}
	c.JSON(status, envelope{Success: false, Message: message})
}

// mapError переводит доменные ошибки в HTTP-статусы. Ошибки клиента
// отдаются с исходным текстом, внутренние детали наружу не уходят.
func mapError(err error) (int, string) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, validation.Error()
	}

	var unavailable *domain.ProductUnavailableError
	if errors.As(err, &unavailable) {
		return http.StatusBadRequest, unavailable.Error()
	}

	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return http.StatusBadRequest, insufficient.Error()
	}

	switch {
	case errors.Is(err, domain.ErrStatusUnknown),
		errors.Is(err, domain.ErrLineQtyInvalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, err.Error()
	}

	return http.StatusInternalServerError, ""
}
