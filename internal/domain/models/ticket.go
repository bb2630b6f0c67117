package models

import (
	"time"

	"railticket/internal/domain"
)

// Ticket is issued once the booking is stored and carries the email delivery metadata.
type Ticket struct {
	TicketNumber   string `json:"ticketNumber"`
	BookingID      string `json:"bookingId"`
	BookingCode    string `json:"bookingCode"`
	PassengerName  string `json:"passengerName"`
	PassengerEmail string `json:"passengerEmail"`

	TrainName     string `json:"trainName"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	Seat          string `json:"seat"`
	TotalAmount   int64  `json:"totalAmount"`

	Status         domain.TicketStatus   `json:"status"`
	DeliveryStatus domain.DeliveryStatus `json:"deliveryStatus"`
	EmailSent      bool                  `json:"emailSent"`
	EmailSentAt    *time.Time            `json:"emailSentAt,omitempty"`
	EmailMessageID string                `json:"emailMessageId,omitempty"`
	EmailTo        string                `json:"emailTo,omitempty"`
	EmailError     string                `json:"emailError,omitempty"`
}

// DeliveryRecord is the outcome of one send attempt; it is folded into the ticket, never stored alone.
type DeliveryRecord struct {
	Success   bool
	MessageID string
	Error     string
	To        string
	At        time.Time
}
