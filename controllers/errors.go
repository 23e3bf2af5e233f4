package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/storefront-app/services"
	"github.com/yeremiapane/storefront-app/utils"
)

// statusForKind -> mapping kategori error service ke HTTP status
func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindSignatureInvalid:
		return http.StatusUnauthorized
	case services.KindOutOfServiceArea, services.KindBelowMinimumOrder:
		return http.StatusUnprocessableEntity
	case services.KindIllegalTransition, services.KindAnomalyDetected:
		return http.StatusConflict
	case services.KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError -> error service dikirim dengan kind, code, dan details
func respondServiceError(c *gin.Context, err error) {
	svcErr := services.AsError(err)
	if svcErr == nil {
		utils.ErrorLogger.Printf("Unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	status := statusForKind(svcErr.Kind)
	if status >= http.StatusInternalServerError {
		utils.ErrorLogger.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	message := svcErr.Message
	if message == "" {
		message = svcErr.Error()
	}
	utils.RespondErrorBody(c, status, message, utils.ErrorBody{
		Kind:    string(svcErr.Kind),
		Code:    svcErr.Code,
		Details: svcErr.Details,
	})
}

// staffIDFromContext -> user_id yang diset AuthMiddleware
func staffIDFromContext(c *gin.Context) *uint {
	v, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return nil
	}
	return &id
}
