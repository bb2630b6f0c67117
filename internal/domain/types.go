package domain

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPendingPayment BookingStatus = "pending_payment"
	BookingConfirmed      BookingStatus = "confirmed"
	BookingCancelled      BookingStatus = "cancelled"
	BookingCompleted      BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type TicketStatus string

const (
	TicketPending TicketStatus = "pending"
	TicketActive  TicketStatus = "active"
	TicketExpired TicketStatus = "expired"
)

// DeliveryStatus tracks the ticket email: not_sent -> sent | send_failed.
// send_failed may go to sent on a later manual resend.
type DeliveryStatus string

const (
	DeliveryNotSent    DeliveryStatus = "not_sent"
	DeliverySent       DeliveryStatus = "sent"
	DeliverySendFailed DeliveryStatus = "send_failed"
)

// CanTransition reports whether a delivery attempt may move from s to next.
func (s DeliveryStatus) CanTransition(next DeliveryStatus) bool {
	switch s {
	case "", DeliveryNotSent, DeliverySendFailed:
		return next == DeliverySent || next == DeliverySendFailed
	case DeliverySent:
		// resend after a successful delivery only refreshes the metadata
		return next == DeliverySent
	}
	return false
}

// Storage insertion methods reported back to callers.
const (
	MethodDirect  = "direct"
	MethodMinimal = "minimal"
)
