package services

import (
	"context"
	"errors"
	"sync"

	intdb "railticket/internal/db"
	"railticket/internal/domain"
	"railticket/internal/domain/models"
	"railticket/internal/mail"
	"railticket/internal/repositories"
)

type captureAdapter struct {
	name   string
	fail   error
	mu     sync.Mutex
	stored []intdb.Record
}

func (a *captureAdapter) Name() string { return a.name }

func (a *captureAdapter) Probe(ctx context.Context) error { return nil }

func (a *captureAdapter) TryInsert(ctx context.Context, rec intdb.Record) repositories.AttemptResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		return repositories.AttemptResult{Target: a.name, Err: a.fail}
	}
	// a known booking code keeps the id it was first stored under
	for _, prev := range a.stored {
		if prev.String("booking_code") == rec.String("booking_code") {
			a.stored = append(a.stored, rec)
			return repositories.AttemptResult{Target: a.name, Success: true, Method: domain.MethodDirect, StoredID: prev.String("id")}
		}
	}
	a.stored = append(a.stored, rec)
	return repositories.AttemptResult{Target: a.name, Success: true, Method: domain.MethodDirect, StoredID: rec.String("id")}
}

func (a *captureAdapter) Fetch(ctx context.Context, key string) (intdb.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, rec := range a.stored {
		if rec.String("id") == key || rec.String("booking_code") == key || rec.String("order_id") == key {
			return rec, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "booking"}
}

type fakePassengers struct {
	result repositories.PassengerStoreResult
	list   []models.Passenger
	got    []models.Passenger
}

func (f *fakePassengers) StorePassengers(ctx context.Context, ps []models.Passenger) repositories.PassengerStoreResult {
	f.got = ps
	res := f.result
	res.Passengers = ps
	return res
}

func (f *fakePassengers) ListByBooking(ctx context.Context, bookingID, bookingCode string) ([]models.Passenger, error) {
	return f.list, nil
}

type deliveryCall struct {
	number string
	status domain.DeliveryStatus
	rec    models.DeliveryRecord
}

type fakeTickets struct {
	issueErr   error
	tickets    map[string]models.Ticket
	issued     []models.Ticket
	deliveries []deliveryCall
}

func (f *fakeTickets) Issue(ctx context.Context, t models.Ticket) error {
	if f.issueErr != nil {
		return f.issueErr
	}
	f.issued = append(f.issued, t)
	if f.tickets == nil {
		f.tickets = map[string]models.Ticket{}
	}
	f.tickets[t.BookingCode] = t
	return nil
}

func (f *fakeTickets) GetByBookingCode(ctx context.Context, code string) (models.Ticket, error) {
	if t, ok := f.tickets[code]; ok {
		return t, nil
	}
	return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
}

func (f *fakeTickets) MarkDelivery(ctx context.Context, number string, status domain.DeliveryStatus, rec models.DeliveryRecord) error {
	f.deliveries = append(f.deliveries, deliveryCall{number: number, status: status, rec: rec})
	return nil
}

type fakeMailer struct {
	err  error
	sent []mail.Message
}

func (m *fakeMailer) Send(ctx context.Context, msg mail.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "msg-" + msg.To, nil
}

var errTransport = errors.New("smtp transport down")
