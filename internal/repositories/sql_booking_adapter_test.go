package repositories

import (
	"context"
	"strings"
	"testing"
	"time"

	intdb "railticket/internal/db"
	"railticket/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func sampleRecord() intdb.Record {
	return intdb.Record{
		"id":             "7f0c1f7e-1111-4a4a-9d9d-000000000001",
		"booking_code":   "BK-1700000000000-ABC123",
		"order_id":       "ORD-1700000000001-DEF456",
		"customer_name":  "Budi",
		"customer_email": "budi@example.com",
		"total_amount":   int64(165000),
		"status":         "pending_payment",
		"fare_breakdown": map[string]int64{"total": 165000},
		"created_at":     time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		"updated_at":     time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func newMock(t *testing.T) (SQLTableAdapter, sqlmock.Sqlmock, func()) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	return SQLTableAdapter{DB: conn, Table: "bookings"}, mock, func() { conn.Close() }
}

func TestSQLAdapterDirectInsert(t *testing.T) {
	a, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT \\* FROM `bookings` LIMIT 0").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_code", "order_id", "customer_name", "customer_email", "total_amount", "status", "fare_breakdown", "created_at", "updated_at"}))
	mock.ExpectExec("INSERT INTO `bookings` \\(`booking_code`, `created_at`, `customer_email`, `customer_name`, `fare_breakdown`, `id`, `order_id`, `status`, `total_amount`, `updated_at`\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := a.TryInsert(context.Background(), sampleRecord())
	if !res.Success || res.Method != domain.MethodDirect {
		t.Fatalf("expected direct success, got %+v", res)
	}
	if res.StoredID != "7f0c1f7e-1111-4a4a-9d9d-000000000001" {
		t.Fatalf("unexpected stored id %q", res.StoredID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLAdapterAliasedColumns(t *testing.T) {
	a, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT \\* FROM `bookings` LIMIT 0").
		WillReturnRows(sqlmock.NewRows([]string{"id", "bookingCode", "orderId", "contact_email", "total"}))
	mock.ExpectExec("INSERT INTO `bookings` \\(`bookingCode`, `contact_email`, `id`, `orderId`, `total`\\)").
		WithArgs("BK-1700000000000-ABC123", "budi@example.com", sqlmock.AnyArg(), "ORD-1700000000001-DEF456", int64(165000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := a.TryInsert(context.Background(), sampleRecord())
	if !res.Success || res.Method != domain.MethodDirect {
		t.Fatalf("expected direct success, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLAdapterSkipsWhenProbeFails(t *testing.T) {
	a, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT \\* FROM `bookings` LIMIT 0").
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'travel_app.bookings' doesn't exist"})

	res := a.TryInsert(context.Background(), sampleRecord())
	if res.Success || !res.Skipped || res.Err == nil {
		t.Fatalf("expected skipped attempt, got %+v", res)
	}
}

func TestSQLAdapterMinimalRetryOnUnknownColumn(t *testing.T) {
	a, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT \\* FROM `bookings` LIMIT 0").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_code", "order_id", "customer_name", "customer_email", "total_amount", "status", "created_at"}))
	mock.ExpectExec("INSERT INTO `bookings`").
		WillReturnError(&mysql.MySQLError{Number: 1054, Message: "Unknown column 'customer_email' in 'field list'"})
	mock.ExpectExec("INSERT INTO `bookings` \\(`booking_code`, `created_at`, `customer_name`, `id`, `order_id`, `status`, `total_amount`\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := a.TryInsert(context.Background(), sampleRecord())
	if !res.Success || res.Method != domain.MethodMinimal {
		t.Fatalf("expected minimal success, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLAdapterNoRetryOnOtherErrors(t *testing.T) {
	a, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT \\* FROM `bookings` LIMIT 0").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_code"}))
	mock.ExpectExec("INSERT INTO `bookings`").
		WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})

	res := a.TryInsert(context.Background(), sampleRecord())
	if res.Success || res.Skipped || res.Err == nil {
		t.Fatalf("expected plain failure, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLAdapterConflictReturnsExistingID(t *testing.T) {
	a, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT \\* FROM `bookings` LIMIT 0").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_code", "order_id", "customer_name", "total_amount"}))
	mock.ExpectExec("INSERT INTO `bookings` .* ON DUPLICATE KEY UPDATE `customer_name` = VALUES\\(`customer_name`\\)$").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("SELECT `id` FROM `bookings` WHERE `booking_code` = \\? LIMIT 1").
		WithArgs("BK-1700000000000-ABC123").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("first-id"))

	res := a.TryInsert(context.Background(), sampleRecord())
	if !res.Success || res.StoredID != "first-id" {
		t.Fatalf("expected existing id on conflict, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLAdapterResubmissionKeepsStatusAndFare(t *testing.T) {
	var stmt string
	matcher := sqlmock.QueryMatcherFunc(func(expected, actual string) error {
		if strings.HasPrefix(actual, "INSERT") {
			stmt = actual
		}
		return sqlmock.QueryMatcherRegexp.Match(expected, actual)
	})
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()
	a := SQLTableAdapter{DB: conn, Table: "bookings"}

	mock.ExpectQuery("SELECT \\* FROM `bookings` LIMIT 0").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_code", "order_id", "customer_name", "customer_email",
			"total_amount", "status", "payment_status", "fare_breakdown", "created_at", "updated_at"}))
	mock.ExpectExec("INSERT INTO `bookings`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("SELECT `id` FROM `bookings` WHERE `booking_code` = \\? LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("first-id"))

	rec := sampleRecord()
	rec["payment_status"] = "unpaid"
	res := a.TryInsert(context.Background(), rec)
	if !res.Success || res.StoredID != "first-id" {
		t.Fatalf("expected existing id, got %+v", res)
	}

	_, update, found := strings.Cut(stmt, "ON DUPLICATE KEY UPDATE")
	if !found {
		t.Fatalf("expected an upsert statement, got %q", stmt)
	}
	for _, col := range []string{"status", "payment_status", "total_amount", "fare_breakdown", "created_at", "id"} {
		if strings.Contains(update, "`"+col+"` = VALUES(`"+col+"`)") {
			t.Fatalf("%s must not be overwritten on conflict: %s", col, update)
		}
	}
	want := "`customer_email` = VALUES(`customer_email`), `customer_name` = VALUES(`customer_name`), `updated_at` = VALUES(`updated_at`)"
	if strings.TrimSpace(update) != want {
		t.Fatalf("unexpected update clause %q", update)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLAdapterAutoIncrementID(t *testing.T) {
	a, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT \\* FROM `bookings` LIMIT 0").
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			sqlmock.NewColumn("id").OfType("BIGINT", int64(0)),
			sqlmock.NewColumn("uuid").OfType("VARCHAR", ""),
			sqlmock.NewColumn("booking_code").OfType("VARCHAR", ""),
		))
	mock.ExpectExec("INSERT INTO `bookings` \\(`booking_code`, `uuid`\\) VALUES \\(\\?, \\?\\) ON DUPLICATE KEY UPDATE `id` = LAST_INSERT_ID\\(`id`\\)").
		WithArgs("BK-1700000000000-ABC123", "7f0c1f7e-1111-4a4a-9d9d-000000000001").
		WillReturnResult(sqlmock.NewResult(42, 1))

	res := a.TryInsert(context.Background(), sampleRecord())
	if !res.Success || res.StoredID != "42" {
		t.Fatalf("expected auto-increment id, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLAdapterFetch(t *testing.T) {
	a, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT \\* FROM `bookings` LIMIT 0").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_code", "order_id", "customer_email"}))
	mock.ExpectQuery("SELECT \\* FROM `bookings` WHERE `id` = \\? OR `booking_code` = \\? OR `order_id` = \\? LIMIT 1").
		WithArgs("BK-1", "BK-1", "BK-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_code", "order_id", "customer_email"}).
			AddRow([]byte("u-1"), []byte("BK-1"), []byte("ORD-1"), []byte("budi@example.com")))

	rec, err := a.Fetch(context.Background(), "BK-1")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	b := BookingFromRecord(rec)
	if b.ID != "u-1" || b.ContactEmail != "budi@example.com" {
		t.Fatalf("unexpected booking %+v", b)
	}
}

func TestSQLAdapterFetchNotFound(t *testing.T) {
	a, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT \\* FROM `bookings` LIMIT 0").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_code"}))
	mock.ExpectQuery("SELECT \\* FROM `bookings` WHERE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_code"}))

	if _, err := a.Fetch(context.Background(), "BK-404"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
