package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"railticket/internal/domain"
	"railticket/internal/domain/models"
	"railticket/internal/logger"
	"railticket/internal/mail"
	"railticket/internal/metrics"
	"railticket/internal/utils"
)

// DeliveryRecorder folds a send attempt into the ticket row.
type DeliveryRecorder interface {
	MarkDelivery(ctx context.Context, ticketNumber string, status domain.DeliveryStatus, rec models.DeliveryRecord) error
}

// NotificationService emails the e-ticket and records the outcome on the ticket.
// It never retries; a send_failed ticket is retried by calling Send again.
type NotificationService struct {
	Mailer  mail.Mailer
	Tickets DeliveryRecorder
	Log     logger.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Send delivers doc to `to` and returns the delivery record. A transport failure is returned
// as an email_send_failed error after the failure has been recorded.
func (s NotificationService) Send(ctx context.Context, requestID, to, subject string, t models.Ticket, doc Document) (models.DeliveryRecord, error) {
	log := logger.OrNop(s.Log)
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	rec := models.DeliveryRecord{To: to, At: now()}
	msgID, err := s.deliver(ctx, to, subject, t, doc)
	if err != nil {
		rec.Error = err.Error()
	} else {
		rec.Success = true
		rec.MessageID = msgID
	}

	next := domain.DeliverySendFailed
	if rec.Success {
		next = domain.DeliverySent
	}
	status := next
	if !t.DeliveryStatus.CanTransition(next) {
		// a failed resend keeps an already delivered ticket as sent
		status = t.DeliveryStatus
	}

	if s.Tickets != nil && t.TicketNumber != "" {
		if markErr := s.Tickets.MarkDelivery(ctx, t.TicketNumber, status, rec); markErr != nil {
			utils.LogWarn(log, requestID, "notification", "mark_delivery", "gagal menyimpan status pengiriman",
				"ticket_number", t.TicketNumber, "error", markErr)
		}
	}

	if !rec.Success {
		s.Metrics.ObserveEmail(string(domain.DeliverySendFailed))
		utils.LogWarn(log, requestID, "notification", "send", "email gagal dikirim", "to", to, "error", err)
		return rec, domain.WithCode(domain.CodeEmailSendFailed, err)
	}
	s.Metrics.ObserveEmail(string(domain.DeliverySent))
	utils.LogEvent(log, requestID, "notification", "send", "email terkirim", "to", to, "message_id", rec.MessageID)
	return rec, nil
}

func (s NotificationService) deliver(ctx context.Context, to, subject string, t models.Ticket, doc Document) (string, error) {
	if s.Mailer == nil {
		return "", mail.ErrMailerDisabled
	}
	if len(doc.Bytes) == 0 {
		return "", errors.New("dokumen kosong")
	}
	text, html, err := mail.RenderTicket(mail.TicketSummary{
		TicketNumber:  t.TicketNumber,
		BookingCode:   t.BookingCode,
		PassengerName: t.PassengerName,
		TrainName:     t.TrainName,
		Origin:        t.Origin,
		Destination:   t.Destination,
		DepartureDate: utils.DateOnly(t.DepartureDate),
		DepartureTime: utils.TimeHM(t.DepartureTime),
		ArrivalTime:   utils.TimeHM(t.ArrivalTime),
		Seat:          t.Seat,
		Status:        string(t.Status),
		Total:         utils.FormatRupiah(t.TotalAmount),
	})
	if err != nil {
		return "", fmt.Errorf("template email: %w", err)
	}
	return s.Mailer.Send(ctx, mail.Message{
		To:      to,
		Subject: subject,
		Text:    text,
		HTML:    html,
		Attachments: []mail.Attachment{
			{Filename: doc.Filename, ContentType: "application/pdf", Data: doc.Bytes},
		},
	})
}
