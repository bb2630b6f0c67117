package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	intdb "railticket/internal/db"
	"railticket/internal/domain/models"
	"railticket/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

var minimalPassengerFields = []string{"id", "booking_id", "full_name"}

// passengerNamespace scopes the name-based passenger ids.
var passengerNamespace = uuid.MustParse("6f1d2c3a-8b7e-4c1d-9a2f-5e4b3c2d1a0f")

// PassengerID is stable for a booking code and list position, so a resubmitted booking
// updates its passenger rows instead of adding new ones.
func PassengerID(bookingCode string, index int) string {
	return uuid.NewSHA1(passengerNamespace, []byte(bookingCode+"#"+strconv.Itoa(index))).String()
}

// PassengerRepository persists the passenger list of a booking into an adaptively probed table.
type PassengerRepository struct {
	DB    intdb.Queryer
	Table string
}

// PassengerStoreResult: a missing table is Success=false, SavedCount=0 with no Err.
type PassengerStoreResult struct {
	Success    bool
	SavedCount int
	Passengers []models.Passenger
	Err        error
}

func (r PassengerRepository) table() string {
	if strings.TrimSpace(r.Table) != "" {
		return r.Table
	}
	return "passengers"
}

// BuildPassengers normalizes emails, assigns ids and derives the seat segment id.
func BuildPassengers(bookingID, bookingCode string, in []models.PassengerInput) []models.Passenger {
	out := make([]models.Passenger, 0, len(in))
	for i, p := range in {
		email, _ := utils.NormalizeEmail(p.Email)
		seat := strings.ToUpper(strings.TrimSpace(p.Seat))
		ps := models.Passenger{
			ID:          strings.TrimSpace(p.ID),
			BookingID:   bookingID,
			BookingCode: bookingCode,
			FullName:    utils.NormalizeSpace(p.Name),
			Email:       email,
			Phone:       utils.NormalizePhone(p.Phone),
			Seat:        seat,
			Transit:     p.Transit,
		}
		if ps.ID == "" {
			ps.ID = PassengerID(bookingCode, i)
		}
		if seat != "" {
			ps.SegmentID = fmt.Sprintf("SEG-%s-%s", bookingCode, seat)
		}
		out = append(out, ps)
	}
	return out
}

func passengerRecord(p models.Passenger, now time.Time) intdb.Record {
	rec := intdb.Record{
		"id":           p.ID,
		"booking_id":   p.BookingID,
		"booking_code": intdb.NullIfEmpty(p.BookingCode),
		"full_name":    p.FullName,
		"email":        intdb.NullIfEmpty(p.Email),
		"phone":        intdb.NullIfEmpty(p.Phone),
		"seat":         intdb.NullIfEmpty(p.Seat),
		"segment_id":   intdb.NullIfEmpty(p.SegmentID),
		"created_at":   now,
	}
	if p.Transit != nil {
		rec["transit_station"] = intdb.NullIfEmpty(p.Transit.Station)
		rec["transit_arrival"] = intdb.NullIfEmpty(p.Transit.Arrival)
		rec["transit_departure"] = intdb.NullIfEmpty(p.Transit.Departure)
	}
	return rec
}

// StorePassengers inserts the whole list in one statement.
// It never touches the booking row; callers treat a failure here as partial durability.
func (r PassengerRepository) StorePassengers(ctx context.Context, passengers []models.Passenger) PassengerStoreResult {
	res := PassengerStoreResult{Passengers: passengers}
	if len(passengers) == 0 {
		res.Success = true
		return res
	}
	if r.DB == nil {
		res.Err = errors.New("database belum terhubung")
		return res
	}

	schema, err := intdb.ProbeColumns(ctx, r.DB, r.table())
	if err != nil {
		if intdb.IsMissingTable(err) {
			return res
		}
		res.Err = err
		return res
	}

	now := time.Now()
	recs := make([]intdb.Record, 0, len(passengers))
	for _, p := range passengers {
		recs = append(recs, passengerRecord(p, now))
	}

	n, err := r.insertBatch(ctx, schema, recs)
	if err != nil && (intdb.IsUnknownColumn(err) || intdb.IsShapeMismatch(err)) {
		minimal := make([]intdb.Record, 0, len(recs))
		for _, rec := range recs {
			minimal = append(minimal, intdb.Subset(rec, minimalPassengerFields))
		}
		var retryErr error
		n, retryErr = r.insertBatch(ctx, schema, minimal)
		if retryErr != nil {
			err = multierr.Combine(err, retryErr)
		} else {
			err = nil
		}
	}
	if err != nil {
		res.Err = err
		return res
	}
	res.Success = true
	res.SavedCount = n
	return res
}

func (r PassengerRepository) insertBatch(ctx context.Context, schema intdb.Schema, recs []intdb.Record) (int, error) {
	table, err := intdb.Ident(r.table())
	if err != nil {
		return 0, err
	}

	rows := make([]intdb.Record, 0, len(recs))
	for _, rec := range recs {
		row, _ := intdb.Project(rec, schema, intdb.PassengerAliases)
		if idCol, ok := intdb.ColumnFor("id", schema, intdb.PassengerAliases); ok && schema.IsIntegerColumn(idCol) {
			if _, err := strconv.ParseInt(row.String(idCol), 10, 64); err != nil {
				delete(row, idCol)
			}
		}
		rows = append(rows, row)
	}
	union := intdb.Record{}
	for _, row := range rows {
		for k := range row {
			union[k] = nil
		}
	}
	cols := union.Keys()
	if len(cols) == 0 {
		return 0, fmt.Errorf("tidak ada kolom passenger yang cocok di %s", r.table())
	}

	quoted := make([]string, 0, len(cols))
	updates := []string{}
	for _, c := range cols {
		q, err := intdb.Ident(c)
		if err != nil {
			return 0, err
		}
		quoted = append(quoted, q)
		if c != "id" && c != "created_at" {
			updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", q, q))
		}
	}

	groups := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*len(cols))
	for _, row := range rows {
		groups = append(groups, "("+intdb.Placeholders(len(cols))+")")
		for _, c := range cols {
			args = append(args, intdb.SQLValue(row[c]))
		}
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(quoted, ", "), strings.Join(groups, ", "))
	if len(updates) > 0 {
		stmt += " ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
	}
	if _, err := r.DB.ExecContext(ctx, stmt, args...); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ListByBooking returns the stored passengers of a booking, matched by id or code.
func (r PassengerRepository) ListByBooking(ctx context.Context, bookingID, bookingCode string) ([]models.Passenger, error) {
	if r.DB == nil {
		return nil, errors.New("database belum terhubung")
	}
	schema, err := intdb.ProbeColumns(ctx, r.DB, r.table())
	if err != nil {
		return nil, err
	}
	table, err := intdb.Ident(r.table())
	if err != nil {
		return nil, err
	}

	conds := []string{}
	args := []any{}
	keys := []struct{ field, val string }{{"booking_id", bookingID}, {"booking_code", bookingCode}}
	for _, k := range keys {
		field, val := k.field, k.val
		col, ok := intdb.ColumnFor(field, schema, intdb.PassengerAliases)
		if !ok || strings.TrimSpace(val) == "" {
			continue
		}
		q, _ := intdb.Ident(col)
		conds = append(conds, q+" = ?")
		args = append(args, val)
	}
	if len(conds) == 0 {
		return nil, nil
	}

	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s WHERE %s", table, strings.Join(conds, " OR ")), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	out := make([]models.Passenger, 0, len(recs))
	for _, rec := range recs {
		out = append(out, passengerFromRecord(rec))
	}
	return out, nil
}

func passengerFromRecord(rec intdb.Record) models.Passenger {
	get := func(field string) string {
		if v, ok := rec[field]; ok && v != nil {
			return asString(v)
		}
		for _, syn := range intdb.PassengerAliases[field] {
			if v, ok := rec[syn]; ok && v != nil {
				return asString(v)
			}
		}
		return ""
	}
	p := models.Passenger{
		ID:          get("id"),
		BookingID:   get("booking_id"),
		BookingCode: get("booking_code"),
		FullName:    get("full_name"),
		Email:       get("email"),
		Phone:       get("phone"),
		Seat:        get("seat"),
		SegmentID:   get("segment_id"),
	}
	if st := get("transit_station"); st != "" {
		p.Transit = &models.Transit{Station: st, Arrival: get("transit_arrival"), Departure: get("transit_departure")}
	}
	return p
}
