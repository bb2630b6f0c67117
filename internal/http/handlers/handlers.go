package handlers

import (
	"context"

	"railticket/internal/domain/models"
	"railticket/internal/logger"
	"railticket/internal/repositories"
	"railticket/internal/services"

	"github.com/go-playground/validator/v10"
)

type BookingCreator interface {
	CreateBooking(ctx context.Context, requestID string, sub models.BookingSubmission) (services.BookingOutcome, error)
}

type StorageHealth interface {
	Health(ctx context.Context) []repositories.TargetHealth
}

type TicketMailer interface {
	SendTicket(ctx context.Context, requestID, bookingKey, sendTo string) (services.EmailResult, error)
	RenderTicket(ctx context.Context, requestID, bookingKey string) (services.Document, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers holds the services the HTTP layer calls into.
type Handlers struct {
	Bookings BookingCreator
	Storage  StorageHealth
	Tickets  TicketMailer
	DB       Pinger
	Validate *validator.Validate
	Log      logger.Logger
}
