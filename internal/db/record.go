package db

import (
	"sort"
	"strings"
)

// Record is a booking row in canonical snake_case keys before it is shaped for a target.
type Record map[string]any

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value at key as a trimmed string ("" when absent or not a string).
func (r Record) String(key string) string {
	if r == nil {
		return ""
	}
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	}
	return ""
}

// Keys returns sorted keys so generated statements are deterministic.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Aliases maps a canonical field to the other names the same field goes by in older tables.
type Aliases map[string][]string

// BookingAliases covers the column names seen across booking tables.
var BookingAliases = Aliases{
	"id":              {"uuid", "booking_uuid"},
	"booking_code":    {"bookingCode", "code", "kode_booking"},
	"order_id":        {"orderId", "order_code"},
	"customer_name":   {"customerName", "contact_name", "passenger_name", "name"},
	"customer_email":  {"customerEmail", "contact_email", "email"},
	"customer_phone":  {"customerPhone", "contact_phone", "phone"},
	"train_name":      {"trainName", "train"},
	"train_class":     {"trainClass", "class"},
	"origin":          {"route_from", "from_station", "departure_station"},
	"destination":     {"route_to", "to_station", "arrival_station"},
	"departure_date":  {"departureDate", "trip_date", "travel_date"},
	"departure_time":  {"departureTime", "trip_time"},
	"arrival_time":    {"arrivalTime"},
	"passenger_count": {"passengerCount", "total_passengers", "pax"},
	"total_amount":    {"totalAmount", "total", "total_price"},
	"fare_breakdown":  {"fareBreakdown"},
	"selected_seats":  {"selectedSeats", "seats"},
	"payment_method":  {"paymentMethod"},
	"payment_status":  {"paymentStatus"},
	"created_at":      {"createdAt"},
	"updated_at":      {"updatedAt"},
}

// PassengerAliases covers passenger tables.
var PassengerAliases = Aliases{
	"id":                {"uuid", "passenger_uuid"},
	"booking_id":        {"bookingId", "booking_uuid"},
	"booking_code":      {"bookingCode", "code"},
	"full_name":         {"fullName", "passenger_name", "name"},
	"email":             {"passenger_email", "contact_email"},
	"phone":             {"passenger_phone", "phone_number"},
	"seat":              {"seat_number", "selected_seat", "seat_code"},
	"segment_id":        {"segmentId"},
	"transit_station":   {"transitStation"},
	"transit_arrival":   {"transitArrival"},
	"transit_departure": {"transitDeparture"},
	"created_at":        {"createdAt"},
}

// MinimalBookingFields is the subset every booking table is expected to accept.
var MinimalBookingFields = []string{"id", "booking_code", "order_id", "customer_name", "total_amount", "status", "created_at"}

// RequiredBookingFields must be present on every stored booking.
var RequiredBookingFields = []string{"id", "booking_code", "order_id", "created_at", "updated_at"}

// ProtectedBookingFields are written on insert only. A repeated submission of the same booking
// code must not move a confirmed booking back to pending or rewrite what was charged.
var ProtectedBookingFields = []string{
	"id", "booking_code", "order_id", "created_at",
	"status", "payment_status", "total_amount", "fare_breakdown",
}

// ProtectedColumns maps every column holding a protected field, under the spelling schema uses.
// The canonical names are always included so an unknown schema is covered too.
func ProtectedColumns(schema Schema, aliases Aliases) map[string]bool {
	out := make(map[string]bool, len(ProtectedBookingFields))
	for _, f := range ProtectedBookingFields {
		out[f] = true
		if col, ok := resolveColumn(f, schema, aliases); ok {
			out[col] = true
		}
	}
	return out
}

// Project shapes rec for schema. A field whose canonical name is missing is tried under its
// aliases in order; fields with no matching column are dropped and returned.
// An unknown schema passes the record through unchanged.
func Project(rec Record, schema Schema, aliases Aliases) (Record, []string) {
	if !schema.Known() {
		return rec.Clone(), nil
	}
	out := Record{}
	var dropped []string
	for _, key := range rec.Keys() {
		col, ok := resolveColumn(key, schema, aliases)
		if !ok {
			dropped = append(dropped, key)
			continue
		}
		if _, taken := out[col]; taken {
			continue
		}
		out[col] = rec[key]
	}
	return out, dropped
}

// Subset keeps only the given canonical fields of rec.
func Subset(rec Record, fields []string) Record {
	out := Record{}
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}

// ColumnFor returns the column name schema uses for a canonical field.
func ColumnFor(field string, schema Schema, aliases Aliases) (string, bool) {
	return resolveColumn(field, schema, aliases)
}

func resolveColumn(key string, schema Schema, aliases Aliases) (string, bool) {
	if col, ok := columnCase(schema, key); ok {
		return col, true
	}
	for _, syn := range aliases[key] {
		if col, ok := columnCase(schema, syn); ok {
			return col, true
		}
	}
	return "", false
}

// columnCase returns the column exactly as the table spells it.
func columnCase(schema Schema, name string) (string, bool) {
	if !schema.Known() {
		return name, true
	}
	for _, c := range schema.Columns {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}
