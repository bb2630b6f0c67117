package services

import (
	"context"
	"strings"
	"time"

	intdb "railticket/internal/db"
	"railticket/internal/domain"
	"railticket/internal/domain/models"
	"railticket/internal/logger"
	"railticket/internal/metrics"
	"railticket/internal/repositories"
	"railticket/internal/utils"
)

// BookingWriter stores the booking record across the candidate targets.
type BookingWriter interface {
	Store(ctx context.Context, requestID string, rec intdb.Record) repositories.StoreResult
}

type PassengerWriter interface {
	StorePassengers(ctx context.Context, passengers []models.Passenger) repositories.PassengerStoreResult
}

type TicketIssuer interface {
	Issue(ctx context.Context, t models.Ticket) error
	GetByBookingCode(ctx context.Context, bookingCode string) (models.Ticket, error)
}

// BookingService runs the booking ingestion pipeline:
// normalize -> compose fare -> generate ids -> store booking -> store passengers -> issue ticket.
type BookingService struct {
	Bookings   BookingWriter
	Passengers PassengerWriter
	Tickets    TicketIssuer
	IDs        *utils.IDGenerator
	Fare       utils.FareDefaults
	Log        logger.Logger
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// BookingOutcome describes how far the pipeline got. Only input errors are returned as errors;
// everything after validation is reported here.
type BookingOutcome struct {
	Success         bool
	Booking         models.Booking
	Identifiers     models.Identifiers
	Passengers      []models.Passenger
	SavedToDatabase bool
	UsedTable       string
	InsertionMethod string
	Attempts        []repositories.AttemptResult
	DatabaseError   error

	PassengersSaved      bool
	PassengersSavedCount int
	PassengerError       error

	TicketCreated bool
	TicketError   error

	ClaimedTotal  *int64
	TotalMismatch bool
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateBooking validates and persists one submission.
func (s BookingService) CreateBooking(ctx context.Context, requestID string, sub models.BookingSubmission) (BookingOutcome, error) {
	start := time.Now()
	defer func() { s.Metrics.ObservePipeline(time.Since(start).Seconds()) }()
	log := logger.OrNop(s.Log)

	if len(sub.Passengers) == 0 {
		return BookingOutcome{}, domain.ValidationError{Field: "passengers", Msg: "minimal satu penumpang"}
	}
	sub = s.normalizeContact(requestID, sub)
	applyTransitFare(&sub)

	fare := utils.ComposeFare(sub.Fare, len(sub.Passengers), s.Fare)
	if fare.NeedsReview {
		utils.LogWarn(log, requestID, "booking", "fare", "fare perlu review", "total", fare.Total)
	}
	out := BookingOutcome{ClaimedTotal: sub.ClaimedTotal}
	if sub.ClaimedTotal != nil && *sub.ClaimedTotal != fare.Total {
		out.TotalMismatch = true
		utils.LogWarn(log, requestID, "booking", "fare", "total dari client berbeda",
			"claimed", *sub.ClaimedTotal, "composed", fare.Total)
	}

	ids := s.ids().Generate(sub.BookingCode, sub.OrderID, sub.TicketNumber)
	out.Identifiers = ids

	now := s.now()
	booking := models.Booking{
		ID:             ids.BookingID,
		BookingCode:    ids.BookingCode,
		OrderID:        ids.OrderID,
		ContactName:    sub.ContactName,
		ContactEmail:   sub.ContactEmail,
		ContactPhone:   sub.ContactPhone,
		TrainName:      sub.TrainName,
		TrainClass:     sub.TrainClass,
		Origin:         sub.Origin,
		Destination:    sub.Destination,
		DepartureDate:  sub.DepartureDate,
		DepartureTime:  sub.DepartureTime,
		ArrivalTime:    sub.ArrivalTime,
		PassengerCount: len(sub.Passengers),
		TotalAmount:    fare.Total,
		Fare:           fare,
		Status:         domain.BookingPendingPayment,
		PaymentStatus:  domain.PaymentPending,
		PaymentMethod:  sub.PaymentMethod,
		Segments:       sub.Segments,
		Transit:        sub.Transit,
		SelectedSeats:  selectedSeats(sub),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	stored := s.Bookings.Store(ctx, requestID, repositories.BookingToRecord(booking))
	out.Attempts = stored.Attempts
	if !stored.Success {
		out.Booking = booking
		out.Passengers = repositories.BuildPassengers(booking.ID, booking.BookingCode, sub.Passengers)
		out.DatabaseError = stored.Err
		utils.LogWarn(log, requestID, "booking", "store", "semua target penyimpanan gagal", "error", stored.Err)
		return out, nil
	}
	if stored.StoredID != "" {
		booking.ID = stored.StoredID
		out.Identifiers.BookingID = stored.StoredID
	}
	out.Booking = booking
	out.SavedToDatabase = true
	out.UsedTable = stored.TargetUsed
	out.InsertionMethod = stored.Method

	passengers := repositories.BuildPassengers(booking.ID, booking.BookingCode, sub.Passengers)
	out.Passengers = passengers
	if s.Passengers != nil {
		pres := s.Passengers.StorePassengers(ctx, passengers)
		out.PassengersSaved = pres.Success
		out.PassengersSavedCount = pres.SavedCount
		out.PassengerError = pres.Err
		if pres.Success {
			s.Metrics.AddPassengers(pres.SavedCount)
			utils.LogEvent(log, requestID, "booking", "passengers", "penumpang tersimpan", "count", pres.SavedCount)
		} else {
			utils.LogWarn(log, requestID, "booking", "passengers", "penumpang tidak tersimpan", "error", pres.Err)
		}
	}

	if s.Tickets != nil {
		ticketNumber := ids.TicketNumber
		// a resubmitted booking keeps the ticket it was issued the first time
		if strings.TrimSpace(sub.TicketNumber) == "" {
			if existing, err := s.Tickets.GetByBookingCode(ctx, booking.BookingCode); err == nil && existing.TicketNumber != "" {
				ticketNumber = existing.TicketNumber
				out.Identifiers.TicketNumber = ticketNumber
			}
		}
		ticket := ticketFromBooking(booking, passengers, ticketNumber)
		if err := s.Tickets.Issue(ctx, ticket); err != nil {
			out.TicketError = domain.WithCode(domain.CodeTicketIssueFailed, err)
			utils.LogWarn(log, requestID, "booking", "ticket", "tiket gagal dibuat", "error", err)
		} else {
			out.TicketCreated = true
			s.Metrics.ObserveTicket()
			utils.LogEvent(log, requestID, "booking", "ticket", "tiket dibuat", "ticket_number", ticket.TicketNumber)
		}
	}

	out.Success = true
	utils.LogEvent(log, requestID, "booking", "create", "booking selesai",
		"booking_code", booking.BookingCode, "target", out.UsedTable, "method", out.InsertionMethod)
	return out, nil
}

func (s BookingService) ids() *utils.IDGenerator {
	if s.IDs != nil {
		return s.IDs
	}
	return utils.NewIDGenerator()
}

func (s BookingService) normalizeContact(requestID string, sub models.BookingSubmission) models.BookingSubmission {
	log := logger.OrNop(s.Log)
	email, format := utils.NormalizeEmail(sub.ContactEmail)
	if format == utils.EmailUnknown {
		utils.LogWarn(log, requestID, "booking", "normalize", "format email tidak dikenal", "email", sub.ContactEmail)
	}
	sub.ContactEmail = email
	sub.ContactName = utils.NormalizeSpace(sub.ContactName)
	sub.ContactPhone = utils.NormalizePhone(sub.ContactPhone)

	passengers := make([]models.PassengerInput, len(sub.Passengers))
	copy(passengers, sub.Passengers)
	for i := range passengers {
		e, f := utils.NormalizeEmail(passengers[i].Email)
		if f == utils.EmailUnknown {
			utils.LogWarn(log, requestID, "booking", "normalize", "format email penumpang tidak dikenal", "index", i)
		}
		passengers[i].Email = e
		if strings.TrimSpace(passengers[i].Name) == "" {
			passengers[i].Name = sub.ContactName
		}
	}
	sub.Passengers = passengers
	return sub
}

// applyTransitFare fills the transit terms from the transit descriptor when the client sent none.
func applyTransitFare(sub *models.BookingSubmission) {
	if sub.Transit == nil {
		return
	}
	if sub.Fare.TransitDiscount == nil && sub.Transit.Discount != 0 {
		v := sub.Transit.Discount
		sub.Fare.TransitDiscount = &v
	}
	if sub.Fare.TransitAdditional == nil && sub.Transit.AdditionalCharge != 0 {
		v := sub.Transit.AdditionalCharge
		sub.Fare.TransitAdditional = &v
	}
}

func selectedSeats(sub models.BookingSubmission) []string {
	if len(sub.SelectedSeats) > 0 {
		out := make([]string, 0, len(sub.SelectedSeats))
		for _, seat := range sub.SelectedSeats {
			if seat = strings.ToUpper(strings.TrimSpace(seat)); seat != "" {
				out = append(out, seat)
			}
		}
		return out
	}
	var out []string
	for _, p := range sub.Passengers {
		if seat := strings.ToUpper(strings.TrimSpace(p.Seat)); seat != "" {
			out = append(out, seat)
		}
	}
	return out
}

func ticketFromBooking(b models.Booking, passengers []models.Passenger, ticketNumber string) models.Ticket {
	t := models.Ticket{
		TicketNumber:   ticketNumber,
		BookingID:      b.ID,
		BookingCode:    b.BookingCode,
		PassengerName:  b.ContactName,
		PassengerEmail: b.ContactEmail,
		TrainName:      b.TrainName,
		Origin:         b.Origin,
		Destination:    b.Destination,
		DepartureDate:  b.DepartureDate,
		DepartureTime:  b.DepartureTime,
		ArrivalTime:    b.ArrivalTime,
		Seat:           strings.Join(b.SelectedSeats, ", "),
		TotalAmount:    b.TotalAmount,
		Status:         domain.TicketPending,
		DeliveryStatus: domain.DeliveryNotSent,
	}
	if len(passengers) > 0 {
		t.PassengerName = utils.FirstNonEmpty(t.PassengerName, passengers[0].FullName)
		t.PassengerEmail = utils.FirstNonEmpty(t.PassengerEmail, passengers[0].Email)
	}
	return t
}
