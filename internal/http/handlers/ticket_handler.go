package handlers

import (
	"net/http"
	"strings"

	"railticket/internal/domain"
	"railticket/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// SendTicketEmail renders the ticket of a stored booking and emails it.
func (h Handlers) SendTicketEmail(c *gin.Context) {
	reqID := middleware.GetRequestID(c)
	var req sendTicketRequest
	if !BindJSONOrError(c, h.Validate, &req) {
		return
	}
	key := req.key()
	if key == "" {
		respondError(c, http.StatusBadRequest, domain.CodeValidation, "bookingId wajib diisi", nil)
		return
	}

	res, err := h.Tickets.SendTicket(c.Request.Context(), reqID, key, req.SendToEmail)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "tiket berhasil dikirim ke " + res.EmailTo,
		"bookingId":      res.BookingID,
		"bookingCode":    res.BookingCode,
		"ticketNumber":   res.TicketNumber,
		"emailTo":        res.EmailTo,
		"emailMessageId": res.EmailMessageID,
		"documentLayout": res.DocumentLayout,
		"timestamp":      res.Timestamp,
		"request_id":     reqID,
	})
}

// DownloadTicketPDF returns the travel document inline.
func (h Handlers) DownloadTicketPDF(c *gin.Context) {
	key := strings.TrimSpace(c.Param("id"))
	if key == "" {
		respondError(c, http.StatusBadRequest, domain.CodeValidation, "id booking tidak valid", nil)
		return
	}
	doc, err := h.Tickets.RenderTicket(c.Request.Context(), middleware.GetRequestID(c), key)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+doc.Filename+`"`)
	c.Header("X-Document-Layout", doc.Layout)
	c.Data(http.StatusOK, "application/pdf", doc.Bytes)
}
