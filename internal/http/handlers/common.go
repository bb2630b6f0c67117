package handlers

import (
	"errors"
	"net/http"
	"strings"

	"railticket/internal/domain"
	"railticket/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// RespondError sends standard error payload with request_id included.
// Keeps backward compatibility by always providing "message".
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"success":    false,
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present, parsable and passes struct validation.
func BindJSONOrError[T any](c *gin.Context, v *validator.Validate, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, domain.CodeInvalidJSON, "body kosong", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeInvalidJSON, "payload tidak valid", err.Error())
		return false
	}
	if v == nil {
		return true
	}
	if err := v.Struct(dst); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidation, "data tidak lengkap", fieldErrors(err))
		return false
	}
	return true
}

func fieldErrors(err error) []gin.H {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []gin.H{{"error": err.Error()}}
	}
	out := make([]gin.H, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, gin.H{
			"field": jsonPath(fe.Namespace()),
			"rule":  fe.Tag(),
		})
	}
	return out
}

// jsonPath turns "bookingRequest.passengers[0].name" into "passengers[0].name".
func jsonPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
