package handlers

import (
	"net/http"
	"time"

	"railticket/internal/domain"
	"railticket/internal/domain/models"
	"railticket/internal/http/middleware"
	"railticket/internal/services"
	"railticket/internal/utils"

	"github.com/gin-gonic/gin"
)

// CreateBooking stores a booking submission. When every storage target fails the response is
// still 200 with success=false and fallbackData, so the client can keep the booking locally.
func (h Handlers) CreateBooking(c *gin.Context) {
	reqID := middleware.GetRequestID(c)
	var req bookingRequest
	if !BindJSONOrError(c, h.Validate, &req) {
		return
	}

	out, err := h.Bookings.CreateBooking(c.Request.Context(), reqID, req.submission())
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	data := bookingData(out)
	if !out.SavedToDatabase {
		c.JSON(http.StatusOK, gin.H{
			"success":      false,
			"code":         domain.CodeStorageExhausted,
			"message":      "booking belum tersimpan di server, simpan data ini di perangkat",
			"data":         data,
			"fallbackData": fallbackData(out),
			"request_id":   reqID,
		})
		return
	}

	msg := "booking berhasil dibuat"
	if !out.PassengersSaved || !out.TicketCreated {
		msg = "booking tersimpan sebagian"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"message":    msg,
		"request_id": reqID,
	})
}

func bookingData(out services.BookingOutcome) gin.H {
	b := out.Booking
	fare := b.Fare
	data := gin.H{
		"bookingId":               out.Identifiers.BookingID,
		"bookingCode":             out.Identifiers.BookingCode,
		"orderId":                 out.Identifiers.OrderID,
		"ticketNumber":            out.Identifiers.TicketNumber,
		"status":                  b.Status,
		"paymentStatus":           b.PaymentStatus,
		"passengers":              passengerView(out.Passengers),
		"passengerCount":          len(out.Passengers),
		"selectedSeats":           b.SelectedSeats,
		"savedToDatabase":         out.SavedToDatabase,
		"passengersSaved":         out.PassengersSaved,
		"passengersSavedCount":    out.PassengersSavedCount,
		"ticketCreated":           out.TicketCreated,
		"usedTable":               out.UsedTable,
		"insertionMethod":         out.InsertionMethod,
		"attempts":                attemptView(out),
		"totalAmount":             b.TotalAmount,
		"totalAmountFormatted":    utils.FormatRupiah(b.TotalAmount),
		"baseFare":                fare.BaseFare,
		"seatPremium":             fare.SeatPremium,
		"transitDiscount":         fare.TransitDiscount,
		"transitAdditionalCharge": fare.TransitAdditional,
		"promoDiscount":           fare.PromoDiscount,
		"adminFee":                fare.AdminFee,
		"insuranceFee":            fare.InsuranceFee,
		"paymentFee":              fare.PaymentFee,
		"fareBreakdown":           fare,
		"totalMismatch":           out.TotalMismatch,
		"hasDatabaseError":        out.DatabaseError != nil,
		"databaseError":           errString(out.DatabaseError),
		"createdAt":               b.CreatedAt.Format(time.RFC3339),
	}
	if out.ClaimedTotal != nil {
		data["claimedTotal"] = *out.ClaimedTotal
	}
	if out.PassengerError != nil {
		data["passengerError"] = out.PassengerError.Error()
	}
	if out.TicketError != nil {
		data["ticketError"] = out.TicketError.Error()
	}
	return data
}

func fallbackData(out services.BookingOutcome) gin.H {
	return gin.H{
		"bookingId":     out.Identifiers.BookingID,
		"bookingCode":   out.Identifiers.BookingCode,
		"orderId":       out.Identifiers.OrderID,
		"ticketNumber":  out.Identifiers.TicketNumber,
		"booking":       out.Booking,
		"passengers":    passengerView(out.Passengers),
		"totalAmount":   out.Booking.TotalAmount,
		"fareBreakdown": out.Booking.Fare,
		"generatedAt":   out.Booking.CreatedAt.Format(time.RFC3339),
	}
}

func passengerView(ps []models.Passenger) []gin.H {
	out := make([]gin.H, 0, len(ps))
	for _, p := range ps {
		row := gin.H{
			"id":        p.ID,
			"name":      p.FullName,
			"email":     p.Email,
			"phone":     p.Phone,
			"seat":      p.Seat,
			"segmentId": p.SegmentID,
		}
		if p.Transit != nil {
			row["transit"] = p.Transit
		}
		out = append(out, row)
	}
	return out
}

func attemptView(out services.BookingOutcome) []gin.H {
	rows := make([]gin.H, 0, len(out.Attempts))
	for _, a := range out.Attempts {
		row := gin.H{"target": a.Target, "success": a.Success, "skipped": a.Skipped}
		if a.Method != "" {
			row["method"] = a.Method
		}
		if a.Err != nil {
			row["error"] = a.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// BookingHealth reports storage reachability per target and the email normalizer self-test.
func (h Handlers) BookingHealth(c *gin.Context) {
	targets := h.Storage.Health(c.Request.Context())
	reachable := false
	for _, t := range targets {
		if t.Reachable {
			reachable = true
			break
		}
	}
	selfOK, cases := utils.EmailSelfTest()

	status := http.StatusOK
	if !reachable {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"success": reachable && selfOK,
		"storage": gin.H{
			"reachable": reachable,
			"targets":   targets,
		},
		"emailNormalization": gin.H{
			"ok":    selfOK,
			"cases": cases,
		},
		"timestamp":  time.Now().Format(time.RFC3339),
		"request_id": middleware.GetRequestID(c),
	})
}
