package models

import (
	"time"

	"railticket/internal/domain"
)

// Transit describes an intermediate stop where some passengers leave the train.
type Transit struct {
	Station          string `json:"station,omitempty"`
	Arrival          string `json:"arrival,omitempty"`
	Departure        string `json:"departure,omitempty"`
	Discount         int64  `json:"discount,omitempty"`
	AdditionalCharge int64  `json:"additionalCharge,omitempty"`
}

// Segment is one leg of a multi-leg journey.
type Segment struct {
	ID            string `json:"id,omitempty"`
	TrainName     string `json:"trainName,omitempty"`
	Origin        string `json:"origin,omitempty"`
	Destination   string `json:"destination,omitempty"`
	DepartureDate string `json:"departureDate,omitempty"`
	DepartureTime string `json:"departureTime,omitempty"`
	ArrivalTime   string `json:"arrivalTime,omitempty"`
}

// PassengerInput is one passenger as submitted by the client.
type PassengerInput struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Email   string   `json:"email,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Seat    string   `json:"seat,omitempty"`
	Transit *Transit `json:"transit,omitempty"`
}

// BookingSubmission is the normalized input of the booking pipeline.
type BookingSubmission struct {
	BookingCode  string
	OrderID      string
	TicketNumber string

	ContactName  string
	ContactEmail string
	ContactPhone string

	TrainName     string
	TrainClass    string
	Origin        string
	Destination   string
	DepartureDate string
	DepartureTime string
	ArrivalTime   string

	Passengers    []PassengerInput
	SelectedSeats []string
	Segments      []Segment
	Transit       *Transit

	Fare          FareInput
	ClaimedTotal  *int64
	PaymentMethod string
}

// Booking is the stored reservation snapshot.
type Booking struct {
	ID          string `json:"id"`
	BookingCode string `json:"bookingCode"`
	OrderID     string `json:"orderId"`

	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`

	TrainName     string `json:"trainName"`
	TrainClass    string `json:"trainClass"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`

	PassengerCount int                  `json:"passengerCount"`
	TotalAmount    int64                `json:"totalAmount"`
	Fare           FareBreakdown        `json:"fareBreakdown"`
	Status         domain.BookingStatus `json:"status"`
	PaymentStatus  domain.PaymentStatus `json:"paymentStatus"`
	PaymentMethod  string               `json:"paymentMethod"`

	Segments      []Segment `json:"segments,omitempty"`
	Transit       *Transit  `json:"transit,omitempty"`
	SelectedSeats []string  `json:"selectedSeats,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identifiers is the output of the identifier generator.
type Identifiers struct {
	BookingID    string `json:"bookingId"`
	BookingCode  string `json:"bookingCode"`
	OrderID      string `json:"orderId"`
	TicketNumber string `json:"ticketNumber"`
}
