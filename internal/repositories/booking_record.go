package repositories

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	intdb "railticket/internal/db"
	"railticket/internal/domain"
	"railticket/internal/domain/models"
)

// BookingToRecord flattens a booking into canonical column names.
func BookingToRecord(b models.Booking) intdb.Record {
	rec := intdb.Record{
		"id":              b.ID,
		"booking_code":    b.BookingCode,
		"order_id":        b.OrderID,
		"customer_name":   b.ContactName,
		"customer_email":  b.ContactEmail,
		"customer_phone":  b.ContactPhone,
		"train_name":      b.TrainName,
		"train_class":     b.TrainClass,
		"origin":          b.Origin,
		"destination":     b.Destination,
		"departure_date":  b.DepartureDate,
		"departure_time":  b.DepartureTime,
		"arrival_time":    b.ArrivalTime,
		"passenger_count": b.PassengerCount,
		"total_amount":    b.TotalAmount,
		"fare_breakdown":  b.Fare,
		"status":          string(b.Status),
		"payment_status":  string(b.PaymentStatus),
		"payment_method":  b.PaymentMethod,
	}
	if len(b.Segments) > 0 {
		rec["segments"] = b.Segments
	}
	if b.Transit != nil {
		rec["transit"] = b.Transit
	}
	if len(b.SelectedSeats) > 0 {
		rec["selected_seats"] = b.SelectedSeats
	}
	if !b.CreatedAt.IsZero() {
		rec["created_at"] = b.CreatedAt
	}
	if !b.UpdatedAt.IsZero() {
		rec["updated_at"] = b.UpdatedAt
	}
	for k, v := range rec {
		if s, ok := v.(string); ok && s == "" {
			delete(rec, k)
		}
	}
	return rec
}

// BookingFromRecord reads a row from any target back into a booking, accepting aliased column names.
func BookingFromRecord(rec intdb.Record) models.Booking {
	get := func(field string) any {
		if v, ok := rec[field]; ok && v != nil {
			return v
		}
		for _, syn := range intdb.BookingAliases[field] {
			if v, ok := rec[syn]; ok && v != nil {
				return v
			}
		}
		return nil
	}
	str := func(field string) string { return asString(get(field)) }

	b := models.Booking{
		ID:             str("id"),
		BookingCode:    str("booking_code"),
		OrderID:        str("order_id"),
		ContactName:    str("customer_name"),
		ContactEmail:   str("customer_email"),
		ContactPhone:   str("customer_phone"),
		TrainName:      str("train_name"),
		TrainClass:     str("train_class"),
		Origin:         str("origin"),
		Destination:    str("destination"),
		DepartureDate:  str("departure_date"),
		DepartureTime:  str("departure_time"),
		ArrivalTime:    str("arrival_time"),
		PassengerCount: int(asInt64(get("passenger_count"))),
		TotalAmount:    asInt64(get("total_amount")),
		Status:         domain.BookingStatus(str("status")),
		PaymentStatus:  domain.PaymentStatus(str("payment_status")),
		PaymentMethod:  str("payment_method"),
		CreatedAt:      asTime(get("created_at")),
		UpdatedAt:      asTime(get("updated_at")),
	}
	decodeJSONField(get("fare_breakdown"), &b.Fare)
	decodeJSONField(get("segments"), &b.Segments)
	if v := get("transit"); v != nil {
		var tr models.Transit
		if decodeJSONField(v, &tr) && tr != (models.Transit{}) {
			b.Transit = &tr
		}
	}
	if v := get("selected_seats"); v != nil {
		if !decodeJSONField(v, &b.SelectedSeats) {
			if s := asString(v); s != "" {
				b.SelectedSeats = strings.Split(s, ",")
			}
		}
	}
	if b.TotalAmount == 0 && b.Fare.Total > 0 {
		b.TotalAmount = b.Fare.Total
	}
	return b
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case time.Time:
		return t.Format(time.RFC3339)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float64:
		return int64(math.Round(t))
	case float32:
		return int64(math.Round(float64(t)))
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return int64(math.Round(f))
	case string, []byte:
		s := asString(t)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(math.Round(f))
		}
	}
	return 0
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case interface{ Time() time.Time }:
		return t.Time()
	case string, []byte:
		s := asString(t)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts
			}
		}
	}
	return time.Time{}
}

// decodeJSONField fills dst from JSON text or an already-decoded document value.
func decodeJSONField(v any, dst any) bool {
	var raw []byte
	switch t := v.(type) {
	case nil:
		return false
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return false
		}
		raw = b
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
