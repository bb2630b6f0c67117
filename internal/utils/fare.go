package utils

import "railticket/internal/domain/models"

// FareDefaults are used for terms the client did not send.
type FareDefaults struct {
	BaseFarePerPassenger int64
	AdminFee             int64
	InsuranceFee         int64
}

// ComposeFare builds the fare breakdown. Absent terms take their default (0 when there is none),
// negative terms count as 0, and a negative total is clamped to 0. Both cases set NeedsReview.
func ComposeFare(in models.FareInput, passengerCount int, d FareDefaults) models.FareBreakdown {
	if passengerCount < 1 {
		passengerCount = 1
	}
	review := false
	term := func(v *int64, def int64) int64 {
		if v == nil {
			return def
		}
		if *v < 0 {
			review = true
			return 0
		}
		if *v > MaxAmount {
			review = true
			return MaxAmount
		}
		return *v
	}
	defaultBase := d.BaseFarePerPassenger * int64(passengerCount)
	if d.BaseFarePerPassenger > MaxAmount/int64(passengerCount) {
		defaultBase = MaxAmount
	}

	out := models.FareBreakdown{
		BaseFare:          term(in.BaseFare, defaultBase),
		SeatPremium:       term(in.SeatPremium, 0),
		TransitDiscount:   term(in.TransitDiscount, 0),
		TransitAdditional: term(in.TransitAdditional, 0),
		PromoDiscount:     term(in.PromoDiscount, 0),
		AdminFee:          term(in.AdminFee, d.AdminFee),
		InsuranceFee:      term(in.InsuranceFee, d.InsuranceFee),
		PaymentFee:        term(in.PaymentFee, 0),
	}
	total := out.BaseFare + out.SeatPremium + out.TransitAdditional - out.TransitDiscount -
		out.PromoDiscount + out.AdminFee + out.InsuranceFee + out.PaymentFee
	switch {
	case total < 0:
		total = 0
		review = true
	case total > MaxAmount:
		total = MaxAmount
		review = true
	}
	out.Total = total
	out.NeedsReview = review
	return out
}
