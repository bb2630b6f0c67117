package handlers

import (
	"net/http"

	"railticket/internal/domain"
	"railticket/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

var codeStatus = map[string]int{
	domain.CodeInvalidJSON:          http.StatusBadRequest,
	domain.CodeValidation:           http.StatusBadRequest,
	domain.CodeMissingRecipient:     http.StatusBadRequest,
	domain.CodeUnauthorized:         http.StatusUnauthorized,
	domain.CodeForbidden:            http.StatusForbidden,
	domain.CodeBookingNotFound:      http.StatusNotFound,
	domain.CodeTicketIssueFailed:    http.StatusInternalServerError,
	domain.CodeDocumentRenderFailed: http.StatusInternalServerError,
	domain.CodeEmailSendFailed:      http.StatusBadGateway,
	domain.CodeStorageExhausted:     http.StatusServiceUnavailable,
	domain.CodeInternal:             http.StatusInternalServerError,
}

var codeMessage = map[string]string{
	domain.CodeBookingNotFound:      "booking tidak ditemukan",
	domain.CodeMissingRecipient:     "alamat email tujuan tidak tersedia",
	domain.CodeTicketIssueFailed:    "tiket gagal dibuat",
	domain.CodeDocumentRenderFailed: "dokumen tiket gagal dibuat",
	domain.CodeEmailSendFailed:      "email tiket gagal dikirim",
	domain.CodeStorageExhausted:     "booking tidak dapat disimpan",
}

// RespondDomainError maps domain errors to HTTP responses. Taxonomy codes win over error types.
func RespondDomainError(c *gin.Context, err error) {
	if code := domain.CodeOf(err); code != "" {
		status, ok := codeStatus[code]
		if !ok {
			status = http.StatusInternalServerError
		}
		msg := codeMessage[code]
		if msg == "" {
			msg = err.Error()
		}
		var details any
		if status != http.StatusInternalServerError {
			details = err.Error()
		}
		respondError(c, status, code, msg, details)
		return
	}

	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, domain.CodeValidation, err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, domain.CodeInternal, "terjadi kesalahan", nil)
	}
}
