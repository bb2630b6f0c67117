package services

import (
	"context"
	"testing"
	"time"

	"railticket/internal/domain"
	"railticket/internal/domain/models"
	"railticket/internal/repositories"

	"github.com/stretchr/testify/require"
)

func newEmailService(t *testing.T) (TicketEmailService, *captureAdapter, *fakeTickets, *fakeMailer) {
	t.Helper()
	adapter := &captureAdapter{name: "bookings"}
	booking := models.Booking{
		ID:            "u-1",
		BookingCode:   "BK-1",
		OrderID:       "ORD-1",
		ContactName:   "Budi",
		ContactEmail:  "budi@example.com",
		TrainName:     "Argo Bromo",
		Origin:        "Gambir",
		Destination:   "Surabaya Pasar Turi",
		DepartureDate: "2025-05-01",
		DepartureTime: "08:00",
		TotalAmount:   165000,
		Status:        domain.BookingPendingPayment,
	}
	adapter.stored = append(adapter.stored, repositories.BookingToRecord(booking))

	tickets := &fakeTickets{}
	mailer := &fakeMailer{}
	fixed := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	svc := TicketEmailService{
		Bookings:   repositories.BookingStore{Adapters: []repositories.StorageAdapter{adapter}},
		Passengers: &fakePassengers{list: []models.Passenger{{FullName: "Budi", Seat: "1A"}}},
		Tickets:    tickets,
		Docs:       DocsService{},
		Notifier:   NotificationService{Mailer: mailer, Tickets: tickets, Now: func() time.Time { return fixed }},
	}
	return svc, adapter, tickets, mailer
}

func TestSendTicketUsesOverrideRecipient(t *testing.T) {
	svc, _, tickets, mailer := newEmailService(t)

	res, err := svc.SendTicket(context.Background(), "req-c", "u-1", "other%40example.org")
	require.NoError(t, err)
	require.Equal(t, "other@example.org", res.EmailTo)
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "other@example.org", mailer.sent[0].To)
	require.Equal(t, "msg-other@example.org", res.EmailMessageID)
	require.Len(t, mailer.sent[0].Attachments, 1)

	require.Len(t, tickets.issued, 1, "missing ticket is issued before sending")
	require.Len(t, tickets.deliveries, 1)
	require.Equal(t, domain.DeliverySent, tickets.deliveries[0].status)
	require.Equal(t, tickets.issued[0].TicketNumber, tickets.deliveries[0].number)
}

func TestSendTicketDefaultsToContactEmail(t *testing.T) {
	svc, _, tickets, mailer := newEmailService(t)
	tickets.tickets = map[string]models.Ticket{"BK-1": {TicketNumber: "TKT-1", BookingCode: "BK-1", DeliveryStatus: domain.DeliveryNotSent}}

	res, err := svc.SendTicket(context.Background(), "", "BK-1", "")
	require.NoError(t, err)
	require.Equal(t, "budi@example.com", mailer.sent[0].To)
	require.Equal(t, "TKT-1", res.TicketNumber)
	require.Empty(t, tickets.issued)
}

func TestSendTicketBookingNotFound(t *testing.T) {
	svc, _, _, _ := newEmailService(t)

	_, err := svc.SendTicket(context.Background(), "", "BK-404", "")
	require.Equal(t, domain.CodeBookingNotFound, domain.CodeOf(err))
}

func TestSendTicketMissingRecipient(t *testing.T) {
	svc, adapter, _, _ := newEmailService(t)
	delete(adapter.stored[0], "customer_email")

	_, err := svc.SendTicket(context.Background(), "", "u-1", "")
	require.Equal(t, domain.CodeMissingRecipient, domain.CodeOf(err))
}

func TestSendTicketTransportFailure(t *testing.T) {
	svc, _, tickets, mailer := newEmailService(t)
	mailer.err = errTransport

	_, err := svc.SendTicket(context.Background(), "", "u-1", "")
	require.Equal(t, domain.CodeEmailSendFailed, domain.CodeOf(err))
	require.ErrorIs(t, err, errTransport)
	require.Len(t, tickets.deliveries, 1)
	require.Equal(t, domain.DeliverySendFailed, tickets.deliveries[0].status)
	require.Contains(t, tickets.deliveries[0].rec.Error, "smtp transport down")
}

func TestFailedResendKeepsSentStatus(t *testing.T) {
	tickets := &fakeTickets{}
	n := NotificationService{Mailer: &fakeMailer{err: errTransport}, Tickets: tickets}
	ticket := models.Ticket{TicketNumber: "TKT-1", DeliveryStatus: domain.DeliverySent}

	_, err := n.Send(context.Background(), "", "budi@example.com", "E-Ticket", ticket, Document{Bytes: []byte("%PDF"), Filename: "t.pdf"})
	require.Error(t, err)
	require.Equal(t, domain.DeliverySent, tickets.deliveries[0].status)
}

func TestRenderTicketDocument(t *testing.T) {
	svc, _, _, _ := newEmailService(t)

	doc, err := svc.RenderTicket(context.Background(), "", "ORD-1")
	require.NoError(t, err)
	require.Equal(t, LayoutRich, doc.Layout)
	require.NotEmpty(t, doc.Bytes)
}
