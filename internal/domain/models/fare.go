package models

// FareInput holds the raw fare terms; nil means the client did not send the term.
type FareInput struct {
	BaseFare          *int64
	SeatPremium       *int64
	TransitDiscount   *int64
	TransitAdditional *int64
	PromoDiscount     *int64
	AdminFee          *int64
	InsuranceFee      *int64
	PaymentFee        *int64
}

// FareBreakdown is embedded in Booking.
// Total = base + premium + transitAdditional - transitDiscount - promo + admin + insurance + paymentFee, never below 0.
type FareBreakdown struct {
	BaseFare          int64 `json:"baseFare"`
	SeatPremium       int64 `json:"seatPremium"`
	TransitDiscount   int64 `json:"transitDiscount"`
	TransitAdditional int64 `json:"transitAdditionalCharge"`
	PromoDiscount     int64 `json:"promoDiscount"`
	AdminFee          int64 `json:"adminFee"`
	InsuranceFee      int64 `json:"insuranceFee"`
	PaymentFee        int64 `json:"paymentFee"`
	Total             int64 `json:"total"`
	NeedsReview       bool  `json:"needsReview,omitempty"`
}
