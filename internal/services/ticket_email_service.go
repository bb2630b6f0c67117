package services

import (
	"context"
	"strings"
	"time"

	intdb "railticket/internal/db"
	"railticket/internal/domain"
	"railticket/internal/domain/models"
	"railticket/internal/logger"
	"railticket/internal/repositories"
	"railticket/internal/utils"
)

type BookingFinder interface {
	Find(ctx context.Context, key string) (intdb.Record, string, error)
}

type PassengerLister interface {
	ListByBooking(ctx context.Context, bookingID, bookingCode string) ([]models.Passenger, error)
}

// TicketStore is the ticket side of the email flow.
type TicketStore interface {
	TicketIssuer
	DeliveryRecorder
}

// TicketEmailService handles the second request of the workflow: render the stored booking
// and email it, issuing the ticket first if the creation request could not.
type TicketEmailService struct {
	Bookings   BookingFinder
	Passengers PassengerLister
	Tickets    TicketStore
	Docs       DocsService
	Notifier   NotificationService
	IDs        *utils.IDGenerator
	Log        logger.Logger
	Now        func() time.Time
}

// EmailResult is returned to the caller on success.
type EmailResult struct {
	BookingID      string    `json:"bookingId"`
	BookingCode    string    `json:"bookingCode"`
	TicketNumber   string    `json:"ticketNumber"`
	EmailTo        string    `json:"emailTo"`
	EmailMessageID string    `json:"emailMessageId"`
	DocumentLayout string    `json:"documentLayout"`
	Timestamp      time.Time `json:"timestamp"`
}

// SendTicket renders and emails the ticket of bookingKey (internal id, booking code or order id).
// sendTo overrides the stored contact email when non-empty.
func (s TicketEmailService) SendTicket(ctx context.Context, requestID, bookingKey, sendTo string) (EmailResult, error) {
	log := logger.OrNop(s.Log)

	data, err := s.LoadDocumentData(ctx, requestID, bookingKey)
	if err != nil {
		return EmailResult{}, err
	}
	b := data.Booking

	to := strings.TrimSpace(sendTo)
	if to != "" {
		to, _ = utils.NormalizeEmail(to)
	} else {
		to, _ = utils.NormalizeEmail(b.ContactEmail)
	}
	if to == "" || !strings.Contains(to, "@") {
		return EmailResult{}, domain.WithCode(domain.CodeMissingRecipient,
			domain.ValidationError{Field: "sendToEmail", Msg: "alamat email tujuan tidak tersedia"})
	}

	ticket, err := s.ensureTicket(ctx, requestID, data)
	if err != nil {
		return EmailResult{}, err
	}
	data.Ticket = &ticket

	doc, err := s.Docs.Render(requestID, data)
	if err != nil {
		return EmailResult{}, err
	}

	rec, err := s.Notifier.Send(ctx, requestID, to, "E-Ticket Kereta "+b.BookingCode, ticket, doc)
	if err != nil {
		return EmailResult{}, err
	}

	utils.LogEvent(log, requestID, "ticket_email", "send", "e-ticket dikirim",
		"booking_code", b.BookingCode, "to", to, "layout", doc.Layout)
	return EmailResult{
		BookingID:      b.ID,
		BookingCode:    b.BookingCode,
		TicketNumber:   ticket.TicketNumber,
		EmailTo:        to,
		EmailMessageID: rec.MessageID,
		DocumentLayout: doc.Layout,
		Timestamp:      rec.At,
	}, nil
}

// RenderTicket returns the e-ticket PDF of bookingKey without sending it.
func (s TicketEmailService) RenderTicket(ctx context.Context, requestID, bookingKey string) (Document, error) {
	data, err := s.LoadDocumentData(ctx, requestID, bookingKey)
	if err != nil {
		return Document{}, err
	}
	if s.Tickets != nil {
		if t, err := s.Tickets.GetByBookingCode(ctx, data.Booking.BookingCode); err == nil {
			data.Ticket = &t
		}
	}
	return s.Docs.Render(requestID, data)
}

// LoadDocumentData fetches the booking snapshot and, best-effort, its passengers.
func (s TicketEmailService) LoadDocumentData(ctx context.Context, requestID, bookingKey string) (DocumentData, error) {
	bookingKey = strings.TrimSpace(bookingKey)
	if bookingKey == "" {
		return DocumentData{}, domain.ValidationError{Field: "bookingId", Msg: "wajib diisi"}
	}
	if s.Bookings == nil {
		return DocumentData{}, domain.WithCode(domain.CodeBookingNotFound, domain.NotFoundError{Resource: "booking"})
	}
	rec, target, err := s.Bookings.Find(ctx, bookingKey)
	if err != nil {
		if domain.IsNotFound(err) {
			return DocumentData{}, domain.WithCode(domain.CodeBookingNotFound, err)
		}
		return DocumentData{}, err
	}
	b := repositories.BookingFromRecord(rec)
	utils.LogEvent(logger.OrNop(s.Log), requestID, "ticket_email", "load", "booking ditemukan",
		"booking_code", b.BookingCode, "target", target)

	data := DocumentData{Booking: b}
	if s.Passengers != nil {
		ps, err := s.Passengers.ListByBooking(ctx, b.ID, b.BookingCode)
		if err != nil {
			utils.LogWarn(logger.OrNop(s.Log), requestID, "ticket_email", "passengers", "daftar penumpang tidak tersedia", "error", err)
		} else {
			data.Passengers = ps
		}
	}
	return data, nil
}

func (s TicketEmailService) ensureTicket(ctx context.Context, requestID string, data DocumentData) (models.Ticket, error) {
	b := data.Booking
	if s.Tickets == nil {
		return ticketFromBooking(b, data.Passengers, ""), nil
	}
	t, err := s.Tickets.GetByBookingCode(ctx, b.BookingCode)
	if err == nil {
		return t, nil
	}
	if !domain.IsNotFound(err) {
		return models.Ticket{}, domain.WithCode(domain.CodeTicketIssueFailed, err)
	}

	ids := s.IDs
	if ids == nil {
		ids = utils.NewIDGenerator()
	}
	t = ticketFromBooking(b, data.Passengers, ids.New(utils.PrefixTicket))
	if err := s.Tickets.Issue(ctx, t); err != nil {
		return models.Ticket{}, domain.WithCode(domain.CodeTicketIssueFailed, err)
	}
	utils.LogEvent(logger.OrNop(s.Log), requestID, "ticket_email", "issue", "tiket dibuat saat pengiriman",
		"ticket_number", t.TicketNumber)
	return t, nil
}
