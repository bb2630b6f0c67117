package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "railticket/internal/db"
	"railticket/internal/domain"
	"railticket/internal/domain/models"
)

// TicketRepository owns the tickets table. Ticket numbers are unique; issuing the same number twice updates the row.
type TicketRepository struct {
	DB    intdb.Queryer
	Table string
}

func (r TicketRepository) table() string {
	if strings.TrimSpace(r.Table) != "" {
		return r.Table
	}
	return "tickets"
}

const ticketDDL = `
CREATE TABLE IF NOT EXISTS %s (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	ticket_number VARCHAR(64) NOT NULL,
	booking_id VARCHAR(64) NOT NULL DEFAULT '',
	booking_code VARCHAR(64) NOT NULL,
	passenger_name VARCHAR(255) NOT NULL DEFAULT '',
	passenger_email VARCHAR(255) NOT NULL DEFAULT '',
	train_name VARCHAR(120) NOT NULL DEFAULT '',
	origin VARCHAR(120) NOT NULL DEFAULT '',
	destination VARCHAR(120) NOT NULL DEFAULT '',
	departure_date VARCHAR(20) NOT NULL DEFAULT '',
	departure_time VARCHAR(10) NOT NULL DEFAULT '',
	arrival_time VARCHAR(10) NOT NULL DEFAULT '',
	seat VARCHAR(255) NOT NULL DEFAULT '',
	total_amount BIGINT NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	delivery_status VARCHAR(20) NOT NULL DEFAULT 'not_sent',
	email_sent TINYINT(1) NOT NULL DEFAULT 0,
	email_sent_at DATETIME NULL,
	email_message_id VARCHAR(255) NULL,
	email_to VARCHAR(255) NULL,
	email_error TEXT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_ticket_number (ticket_number),
	KEY idx_ticket_booking_code (booking_code)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`

// EnsureTable creates the tickets table when it is absent.
func (r TicketRepository) EnsureTable(ctx context.Context) error {
	if r.DB == nil {
		return errors.New("database belum terhubung")
	}
	if intdb.HasTable(ctx, r.DB, r.table()) {
		return nil
	}
	table, err := intdb.Ident(r.table())
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, fmt.Sprintf(ticketDDL, table))
	return err
}

// Issue writes the ticket with status pending. Re-issuing refreshes the snapshot and leaves
// status, amount and delivery metadata alone.
func (r TicketRepository) Issue(ctx context.Context, t models.Ticket) error {
	if strings.TrimSpace(t.TicketNumber) == "" {
		return domain.ValidationError{Field: "ticketNumber", Msg: "wajib diisi"}
	}
	if err := r.EnsureTable(ctx); err != nil {
		return err
	}
	table, err := intdb.Ident(r.table())
	if err != nil {
		return err
	}
	status := t.Status
	if status == "" {
		status = domain.TicketPending
	}

	stmt := fmt.Sprintf(`INSERT INTO %s
		(ticket_number, booking_id, booking_code, passenger_name, passenger_email, train_name, origin, destination,
		 departure_date, departure_time, arrival_time, seat, total_amount, status, delivery_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		 booking_id=VALUES(booking_id), passenger_name=VALUES(passenger_name), passenger_email=VALUES(passenger_email),
		 train_name=VALUES(train_name), origin=VALUES(origin), destination=VALUES(destination),
		 departure_date=VALUES(departure_date), departure_time=VALUES(departure_time), arrival_time=VALUES(arrival_time),
		 seat=VALUES(seat)`, table)

	_, err = r.DB.ExecContext(ctx, stmt,
		strings.TrimSpace(t.TicketNumber),
		t.BookingID,
		t.BookingCode,
		t.PassengerName,
		t.PassengerEmail,
		t.TrainName,
		t.Origin,
		t.Destination,
		t.DepartureDate,
		t.DepartureTime,
		t.ArrivalTime,
		t.Seat,
		t.TotalAmount,
		string(status),
		string(domain.DeliveryNotSent),
	)
	return err
}

const ticketColumns = `ticket_number, COALESCE(booking_id,''), booking_code, COALESCE(passenger_name,''),
	COALESCE(passenger_email,''), COALESCE(train_name,''), COALESCE(origin,''), COALESCE(destination,''),
	COALESCE(departure_date,''), COALESCE(departure_time,''), COALESCE(arrival_time,''), COALESCE(seat,''),
	COALESCE(total_amount,0), COALESCE(status,'pending'), COALESCE(delivery_status,'not_sent'),
	COALESCE(email_sent,0), email_sent_at, COALESCE(email_message_id,''), COALESCE(email_to,''), COALESCE(email_error,'')`

// GetByBookingCode returns the most recent ticket of a booking.
func (r TicketRepository) GetByBookingCode(ctx context.Context, bookingCode string) (models.Ticket, error) {
	return r.getOne(ctx, "booking_code = ? ORDER BY id DESC", bookingCode)
}

func (r TicketRepository) GetByNumber(ctx context.Context, ticketNumber string) (models.Ticket, error) {
	return r.getOne(ctx, "ticket_number = ?", ticketNumber)
}

func (r TicketRepository) getOne(ctx context.Context, where string, arg string) (models.Ticket, error) {
	if r.DB == nil {
		return models.Ticket{}, errors.New("database belum terhubung")
	}
	table, err := intdb.Ident(r.table())
	if err != nil {
		return models.Ticket{}, err
	}

	var (
		t      models.Ticket
		status string
		deliv  string
		sent   bool
		sentAt sql.NullTime
	)
	err = r.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT 1", ticketColumns, table, where), arg).Scan(
		&t.TicketNumber,
		&t.BookingID,
		&t.BookingCode,
		&t.PassengerName,
		&t.PassengerEmail,
		&t.TrainName,
		&t.Origin,
		&t.Destination,
		&t.DepartureDate,
		&t.DepartureTime,
		&t.ArrivalTime,
		&t.Seat,
		&t.TotalAmount,
		&status,
		&deliv,
		&sent,
		&sentAt,
		&t.EmailMessageID,
		&t.EmailTo,
		&t.EmailError,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || intdb.IsMissingTable(err) {
			return models.Ticket{}, domain.NotFoundError{Resource: "ticket", Err: err}
		}
		return models.Ticket{}, err
	}
	t.Status = domain.TicketStatus(status)
	t.DeliveryStatus = domain.DeliveryStatus(deliv)
	t.EmailSent = sent
	if sentAt.Valid {
		ts := sentAt.Time
		t.EmailSentAt = &ts
	}
	return t, nil
}

// MarkDelivery folds one send attempt into the ticket row.
func (r TicketRepository) MarkDelivery(ctx context.Context, ticketNumber string, status domain.DeliveryStatus, rec models.DeliveryRecord) error {
	if r.DB == nil {
		return errors.New("database belum terhubung")
	}
	table, err := intdb.Ident(r.table())
	if err != nil {
		return err
	}

	if rec.Success {
		at := rec.At
		if at.IsZero() {
			at = time.Now()
		}
		_, err = r.DB.ExecContext(ctx, fmt.Sprintf(`UPDATE %s
			SET delivery_status = ?, email_sent = 1, email_sent_at = ?, email_message_id = ?, email_to = ?, email_error = NULL
			WHERE ticket_number = ?`, table),
			string(status), at, rec.MessageID, rec.To, ticketNumber)
	} else {
		_, err = r.DB.ExecContext(ctx, fmt.Sprintf(`UPDATE %s
			SET delivery_status = ?, email_to = ?, email_error = ?
			WHERE ticket_number = ?`, table),
			string(status), rec.To, rec.Error, ticketNumber)
	}
	return err
}
