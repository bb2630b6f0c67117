package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"railticket/internal/domain/models"
	"railticket/internal/utils"

	"github.com/go-playground/validator/v10"
)

// NewValidator reports field errors under their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Amount accepts 150000, "150000", "Rp 150.000" or null, up to utils.MaxAmount either way.
type Amount struct {
	Value int64
	Set   bool
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		*a = Amount{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*a = Amount{}
			return nil
		}
		v, err := utils.ParseRupiahToInt(s)
		if err != nil || v > utils.MaxAmount || v < -utils.MaxAmount {
			return fmt.Errorf("nominal tidak valid: %q", s)
		}
		*a = Amount{Value: v, Set: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil || math.Abs(f) > float64(utils.MaxAmount) {
		return fmt.Errorf("nominal tidak valid: %s", raw)
	}
	*a = Amount{Value: int64(math.Round(f)), Set: true}
	return nil
}

func (a *Amount) ptr() *int64 {
	if a == nil || !a.Set {
		return nil
	}
	v := a.Value
	return &v
}

// looseString accepts a JSON string or number (ids arrive both ways).
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id tidak valid: %s", raw)
	}
	*s = looseString(n.String())
	return nil
}

// seatList accepts ["1A","1B"] or "1A, 1B".
type seatList []string

func (l *seatList) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = utils.SplitSeatList(s)
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return fmt.Errorf("selectedSeats tidak valid")
	}
	*l = arr
	return nil
}

// FareTerms are the optional fare inputs of a booking request.
type FareTerms struct {
	BaseFare          *Amount `json:"baseFare"`
	SeatPremium       *Amount `json:"seatPremium"`
	TransitDiscount   *Amount `json:"transitDiscount"`
	TransitAdditional *Amount `json:"transitAdditionalCharge"`
	PromoDiscount     *Amount `json:"promoDiscount"`
	AdminFee          *Amount `json:"adminFee"`
	InsuranceFee      *Amount `json:"insuranceFee"`
	PaymentFee        *Amount `json:"paymentFee"`
}

type transitRequest struct {
	Station          string  `json:"station"`
	Arrival          string  `json:"arrival"`
	Departure        string  `json:"departure"`
	Discount         *Amount `json:"discount"`
	AdditionalCharge *Amount `json:"additionalCharge"`
}

func (t *transitRequest) model() *models.Transit {
	if t == nil {
		return nil
	}
	out := &models.Transit{
		Station:   strings.TrimSpace(t.Station),
		Arrival:   strings.TrimSpace(t.Arrival),
		Departure: strings.TrimSpace(t.Departure),
	}
	if p := t.Discount.ptr(); p != nil {
		out.Discount = *p
	}
	if p := t.AdditionalCharge.ptr(); p != nil {
		out.AdditionalCharge = *p
	}
	if *out == (models.Transit{}) {
		return nil
	}
	return out
}

type passengerRequest struct {
	ID         looseString     `json:"id"`
	Name       string          `json:"name"`
	FullName   string          `json:"fullName"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Seat       string          `json:"seat"`
	SeatNumber string          `json:"seatNumber"`
	Transit    *transitRequest `json:"transit"`
}

// bookingRequest is the booking creation body. Contact fields are also accepted under the
// customer* names, and fare terms either top-level or inside fareBreakdown.
type bookingRequest struct {
	BookingCode  string      `json:"bookingCode"`
	OrderID      looseString `json:"orderId"`
	TicketNumber string      `json:"ticketNumber"`

	ContactName   string `json:"contactName"`
	ContactEmail  string `json:"contactEmail"`
	ContactPhone  string `json:"contactPhone"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`

	TrainName     string `json:"trainName"`
	TrainClass    string `json:"trainClass"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`

	Passengers    []passengerRequest `json:"passengers" validate:"required,min=1,dive"`
	SelectedSeats seatList           `json:"selectedSeats"`
	Segments      []models.Segment   `json:"segments"`
	Transit       *transitRequest    `json:"transit"`

	FareTerms
	FareBreakdown *FareTerms `json:"fareBreakdown"`
	TotalAmount   *Amount    `json:"totalAmount"`
	PaymentMethod string     `json:"paymentMethod"`
}

func (r bookingRequest) submission() models.BookingSubmission {
	nested := FareTerms{}
	if r.FareBreakdown != nil {
		nested = *r.FareBreakdown
	}
	pick := func(top, inner *Amount) *int64 {
		if p := top.ptr(); p != nil {
			return p
		}
		return inner.ptr()
	}

	sub := models.BookingSubmission{
		BookingCode:   strings.TrimSpace(r.BookingCode),
		OrderID:       string(r.OrderID),
		TicketNumber:  strings.TrimSpace(r.TicketNumber),
		ContactName:   utils.FirstNonEmpty(r.ContactName, r.CustomerName),
		ContactEmail:  utils.FirstNonEmpty(r.ContactEmail, r.CustomerEmail),
		ContactPhone:  utils.FirstNonEmpty(r.ContactPhone, r.CustomerPhone),
		TrainName:     strings.TrimSpace(r.TrainName),
		TrainClass:    strings.TrimSpace(r.TrainClass),
		Origin:        strings.TrimSpace(r.Origin),
		Destination:   strings.TrimSpace(r.Destination),
		DepartureDate: strings.TrimSpace(r.DepartureDate),
		DepartureTime: strings.TrimSpace(r.DepartureTime),
		ArrivalTime:   strings.TrimSpace(r.ArrivalTime),
		SelectedSeats: []string(r.SelectedSeats),
		Segments:      r.Segments,
		Transit:       r.Transit.model(),
		Fare: models.FareInput{
			BaseFare:          pick(r.BaseFare, nested.BaseFare),
			SeatPremium:       pick(r.SeatPremium, nested.SeatPremium),
			TransitDiscount:   pick(r.TransitDiscount, nested.TransitDiscount),
			TransitAdditional: pick(r.TransitAdditional, nested.TransitAdditional),
			PromoDiscount:     pick(r.PromoDiscount, nested.PromoDiscount),
			AdminFee:          pick(r.AdminFee, nested.AdminFee),
			InsuranceFee:      pick(r.InsuranceFee, nested.InsuranceFee),
			PaymentFee:        pick(r.PaymentFee, nested.PaymentFee),
		},
		ClaimedTotal:  r.TotalAmount.ptr(),
		PaymentMethod: strings.TrimSpace(r.PaymentMethod),
	}

	sub.Passengers = make([]models.PassengerInput, 0, len(r.Passengers))
	for _, p := range r.Passengers {
		sub.Passengers = append(sub.Passengers, models.PassengerInput{
			ID:      string(p.ID),
			Name:    utils.FirstNonEmpty(p.Name, p.FullName),
			Email:   p.Email,
			Phone:   p.Phone,
			Seat:    utils.FirstNonEmpty(p.Seat, p.SeatNumber),
			Transit: p.Transit.model(),
		})
	}
	return sub
}

type sendTicketRequest struct {
	BookingID   looseString `json:"bookingId"`
	BookingCode string      `json:"bookingCode"`
	SendToEmail string      `json:"sendToEmail"`
}

func (r sendTicketRequest) key() string {
	return utils.FirstNonEmpty(string(r.BookingID), r.BookingCode)
}
