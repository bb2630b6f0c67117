package services

import (
	"context"
	"errors"
	"testing"

	"railticket/internal/domain"
	"railticket/internal/domain/models"
	"railticket/internal/repositories"
	"railticket/internal/utils"

	"github.com/stretchr/testify/require"
)

func newBookingService(adapters ...repositories.StorageAdapter) (BookingService, *fakePassengers, *fakeTickets) {
	ids := utils.NewIDGenerator()
	passengers := &fakePassengers{result: repositories.PassengerStoreResult{Success: true, SavedCount: 1}}
	tickets := &fakeTickets{}
	return BookingService{
		Bookings:   repositories.BookingStore{Adapters: adapters, IDs: ids},
		Passengers: passengers,
		Tickets:    tickets,
		IDs:        ids,
		Fare:       utils.FareDefaults{BaseFarePerPassenger: 150000, AdminFee: 5000, InsuranceFee: 10000},
	}, passengers, tickets
}

func onePassenger() models.BookingSubmission {
	return models.BookingSubmission{
		ContactName:   "Budi",
		ContactEmail:  "budi@example.com",
		TrainName:     "Argo Bromo",
		Origin:        "Gambir",
		Destination:   "Surabaya Pasar Turi",
		DepartureDate: "2025-05-01",
		DepartureTime: "08:00",
		Passengers:    []models.PassengerInput{{Name: "Budi", Seat: "1a"}},
	}
}

func TestCreateBookingDefaultFare(t *testing.T) {
	primary := &captureAdapter{name: "bookings"}
	svc, _, tickets := newBookingService(primary)

	out, err := svc.CreateBooking(context.Background(), "req-a", onePassenger())
	require.NoError(t, err)
	require.True(t, out.Success)
	require.Equal(t, int64(150000+5000+10000), out.Booking.TotalAmount)
	require.Equal(t, int64(165000), out.Booking.Fare.Total)
	require.Equal(t, "bookings", out.UsedTable)
	require.Equal(t, domain.MethodDirect, out.InsertionMethod)

	for _, id := range []string{out.Identifiers.BookingCode, out.Identifiers.OrderID, out.Identifiers.TicketNumber} {
		require.Regexp(t, utils.GeneratedIDPattern, id)
	}
	require.True(t, out.TicketCreated)
	require.Len(t, tickets.issued, 1)
	require.Equal(t, out.Identifiers.TicketNumber, tickets.issued[0].TicketNumber)
	require.Equal(t, domain.TicketPending, tickets.issued[0].Status)
	require.Equal(t, "1A", tickets.issued[0].Seat)
}

func TestCreateBookingDecodesDoubleEncodedEmail(t *testing.T) {
	primary := &captureAdapter{name: "bookings"}
	svc, passengers, _ := newBookingService(primary)

	sub := onePassenger()
	sub.ContactEmail = "name%2540domain.com"
	sub.Passengers[0].Email = "name%40domain.com"

	out, err := svc.CreateBooking(context.Background(), "req-b", sub)
	require.NoError(t, err)
	require.True(t, out.Success)
	require.Len(t, primary.stored, 1)
	require.Equal(t, "name@domain.com", primary.stored[0]["customer_email"])
	require.Equal(t, "name@domain.com", passengers.got[0].Email)
}

func TestCreateBookingKeepsCallerCodes(t *testing.T) {
	primary := &captureAdapter{name: "bookings"}
	svc, _, _ := newBookingService(primary)

	sub := onePassenger()
	sub.BookingCode = "KAI-0001"
	sub.OrderID = "pay-777"

	out, err := svc.CreateBooking(context.Background(), "", sub)
	require.NoError(t, err)
	require.Equal(t, "KAI-0001", out.Identifiers.BookingCode)
	require.Equal(t, "pay-777", out.Identifiers.OrderID)
	require.Equal(t, "KAI-0001", primary.stored[0]["booking_code"])
}

func TestCreateBookingResubmissionReusesIdentifiers(t *testing.T) {
	primary := &captureAdapter{name: "bookings"}
	svc, passengers, tickets := newBookingService(primary)

	sub := onePassenger()
	sub.BookingCode = "KAI-0002"
	sub.Passengers = append(sub.Passengers, models.PassengerInput{Name: "Ani", Seat: "1b"})

	first, err := svc.CreateBooking(context.Background(), "req-r1", sub)
	require.NoError(t, err)
	firstPassengers := passengers.got

	second, err := svc.CreateBooking(context.Background(), "req-r2", sub)
	require.NoError(t, err)

	require.Equal(t, first.Identifiers.BookingID, second.Identifiers.BookingID)
	require.Equal(t, first.Identifiers.TicketNumber, second.Identifiers.TicketNumber)
	require.Len(t, passengers.got, 2)
	for i := range firstPassengers {
		require.Equal(t, firstPassengers[i].ID, passengers.got[i].ID)
		require.Equal(t, first.Identifiers.BookingID, passengers.got[i].BookingID)
	}
	require.Len(t, tickets.tickets, 1)
	require.Len(t, tickets.issued, 2)
	require.Equal(t, tickets.issued[0].TicketNumber, tickets.issued[1].TicketNumber)
}

func TestCreateBookingPassengerFailureKeepsBooking(t *testing.T) {
	primary := &captureAdapter{name: "bookings"}
	svc, passengers, _ := newBookingService(primary)
	passengers.result = repositories.PassengerStoreResult{Success: false, SavedCount: 0}

	out, err := svc.CreateBooking(context.Background(), "req-p", onePassenger())
	require.NoError(t, err)
	require.True(t, out.Success)
	require.True(t, out.SavedToDatabase)
	require.False(t, out.PassengersSaved)
	require.Equal(t, 0, out.PassengersSavedCount)
	require.True(t, out.TicketCreated)
}

func TestCreateBookingTicketFailureKeepsBooking(t *testing.T) {
	primary := &captureAdapter{name: "bookings"}
	svc, _, tickets := newBookingService(primary)
	tickets.issueErr = errors.New("tickets table locked")

	out, err := svc.CreateBooking(context.Background(), "req-t", onePassenger())
	require.NoError(t, err)
	require.True(t, out.Success)
	require.False(t, out.TicketCreated)
	require.Equal(t, domain.CodeTicketIssueFailed, domain.CodeOf(out.TicketError))
}

func TestCreateBookingFallsBackToSecondTarget(t *testing.T) {
	broken := &captureAdapter{name: "bookings", fail: errors.New("Unknown column")}
	alt := &captureAdapter{name: "booking_requests"}
	svc, _, _ := newBookingService(broken, alt)

	out, err := svc.CreateBooking(context.Background(), "req-f", onePassenger())
	require.NoError(t, err)
	require.True(t, out.Success)
	require.Equal(t, "booking_requests", out.UsedTable)
	require.Len(t, out.Attempts, 2)
}

func TestCreateBookingStorageExhausted(t *testing.T) {
	svc, passengers, tickets := newBookingService(
		&captureAdapter{name: "bookings", fail: errors.New("down")},
		&captureAdapter{name: "booking_requests", fail: errors.New("down too")},
	)

	out, err := svc.CreateBooking(context.Background(), "req-x", onePassenger())
	require.NoError(t, err)
	require.False(t, out.Success)
	require.False(t, out.SavedToDatabase)
	require.Equal(t, domain.CodeStorageExhausted, domain.CodeOf(out.DatabaseError))
	require.Regexp(t, utils.GeneratedIDPattern, out.Identifiers.BookingCode)
	require.Nil(t, passengers.got)
	require.Empty(t, tickets.issued)
}

func TestCreateBookingRequiresPassengers(t *testing.T) {
	svc, _, _ := newBookingService(&captureAdapter{name: "bookings"})
	sub := onePassenger()
	sub.Passengers = nil

	_, err := svc.CreateBooking(context.Background(), "", sub)
	require.True(t, domain.IsValidation(err))
}

func TestCreateBookingTransitAndClaimedTotal(t *testing.T) {
	primary := &captureAdapter{name: "bookings"}
	svc, _, _ := newBookingService(primary)

	base := int64(200000)
	claimed := int64(1)
	sub := onePassenger()
	sub.Fare.BaseFare = &base
	sub.ClaimedTotal = &claimed
	sub.Transit = &models.Transit{Station: "Cirebon", Discount: 20000, AdditionalCharge: 3000}

	out, err := svc.CreateBooking(context.Background(), "", sub)
	require.NoError(t, err)
	require.Equal(t, int64(20000), out.Booking.Fare.TransitDiscount)
	require.Equal(t, int64(3000), out.Booking.Fare.TransitAdditional)
	require.Equal(t, int64(200000+3000-20000+5000+10000), out.Booking.TotalAmount)
	require.True(t, out.TotalMismatch)
}

func TestCreateBookingFillsPassengerName(t *testing.T) {
	primary := &captureAdapter{name: "bookings"}
	svc, passengers, _ := newBookingService(primary)
	sub := onePassenger()
	sub.Passengers = []models.PassengerInput{{Seat: "2B"}}

	_, err := svc.CreateBooking(context.Background(), "", sub)
	require.NoError(t, err)
	require.Equal(t, "Budi", passengers.got[0].FullName)
	require.Equal(t, "SEG-"+primary.stored[0].String("booking_code")+"-2B", passengers.got[0].SegmentID)
}
