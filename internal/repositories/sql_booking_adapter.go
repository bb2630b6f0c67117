package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	intdb "railticket/internal/db"
	"railticket/internal/domain"

	"go.uber.org/multierr"
)

// SQLTableAdapter stores bookings in one MySQL table whose exact columns are discovered per attempt.
type SQLTableAdapter struct {
	DB      intdb.Queryer
	Table   string
	Aliases intdb.Aliases
}

func (a SQLTableAdapter) Name() string {
	return a.Table
}

func (a SQLTableAdapter) aliases() intdb.Aliases {
	if a.Aliases != nil {
		return a.Aliases
	}
	return intdb.BookingAliases
}

func (a SQLTableAdapter) Probe(ctx context.Context) error {
	if a.DB == nil {
		return errors.New("database belum terhubung")
	}
	_, err := intdb.ProbeColumns(ctx, a.DB, a.Table)
	return err
}

func (a SQLTableAdapter) TryInsert(ctx context.Context, rec intdb.Record) AttemptResult {
	res := AttemptResult{Target: a.Name()}
	if a.DB == nil {
		res.Skipped = true
		res.Err = errors.New("database belum terhubung")
		return res
	}

	schema, err := intdb.ProbeColumns(ctx, a.DB, a.Table)
	if err != nil {
		res.Skipped = true
		res.Err = fmt.Errorf("probe %s: %w", a.Table, err)
		return res
	}

	row, _ := intdb.Project(rec, schema, a.aliases())
	id, err := a.upsert(ctx, schema, row)
	if err == nil {
		res.Success, res.Method, res.StoredID = true, domain.MethodDirect, id
		return res
	}
	if !intdb.IsUnknownColumn(err) && !intdb.IsShapeMismatch(err) {
		res.Err = err
		return res
	}

	minimal, _ := intdb.Project(intdb.Subset(rec, intdb.MinimalBookingFields), schema, a.aliases())
	id, retryErr := a.upsert(ctx, schema, minimal)
	if retryErr == nil {
		res.Success, res.Method, res.StoredID = true, domain.MethodMinimal, id
		return res
	}
	res.Err = multierr.Combine(err, retryErr)
	return res
}

// upsert inserts row; a duplicate booking code updates only the unprotected columns of the existing row.
func (a SQLTableAdapter) upsert(ctx context.Context, schema intdb.Schema, row intdb.Record) (string, error) {
	row = row.Clone()
	table, err := intdb.Ident(a.Table)
	if err != nil {
		return "", err
	}

	idCol, hasIDCol := intdb.ColumnFor("id", schema, a.aliases())
	codeCol, _ := intdb.ColumnFor("booking_code", schema, a.aliases())

	// integer primary keys are auto-increment; the uuid cannot go there
	autoIncrement := false
	if hasIDCol && schema.IsIntegerColumn(idCol) {
		if _, err := strconv.ParseInt(fmt.Sprint(row[idCol]), 10, 64); err != nil {
			internalID := row[idCol]
			delete(row, idCol)
			autoIncrement = true
			for _, syn := range a.aliases()["id"] {
				if _, set := row[syn]; !set && internalID != nil && schema.Has(syn) {
					row[syn] = internalID
					break
				}
			}
		}
	}

	if len(row) == 0 {
		return "", fmt.Errorf("tidak ada kolom yang cocok di %s", a.Table)
	}

	immutable := intdb.ProtectedColumns(schema, a.aliases())

	cols := row.Keys()
	quoted := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	updates := []string{}
	if autoIncrement {
		q, _ := intdb.Ident(idCol)
		updates = append(updates, fmt.Sprintf("%s = LAST_INSERT_ID(%s)", q, q))
	}
	for _, c := range cols {
		q, err := intdb.Ident(c)
		if err != nil {
			return "", err
		}
		quoted = append(quoted, q)
		args = append(args, intdb.SQLValue(row[c]))
		if !immutable[c] {
			updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", q, q))
		}
	}
	if len(updates) == 0 {
		noop := codeCol
		if _, ok := row[noop]; !ok || noop == "" {
			noop = cols[0]
		}
		q, _ := intdb.Ident(noop)
		updates = append(updates, fmt.Sprintf("%s = %s", q, q))
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		table, strings.Join(quoted, ", "), intdb.Placeholders(len(cols)), strings.Join(updates, ", "))

	result, err := a.DB.ExecContext(ctx, stmt, args...)
	if err != nil {
		return "", err
	}

	if autoIncrement {
		if lastID, err := result.LastInsertId(); err == nil && lastID > 0 {
			return strconv.FormatInt(lastID, 10), nil
		}
	}

	suppliedID := ""
	if hasIDCol {
		suppliedID = row.String(idCol)
	}
	// 1 = fresh insert; 2 (or 0 with identical values) = existing row was kept
	if affected, err := result.RowsAffected(); err == nil && affected == 1 && suppliedID != "" {
		return suppliedID, nil
	}
	if hasIDCol && codeCol != "" {
		if existing, err := a.lookupID(ctx, idCol, codeCol, row[codeCol]); err == nil && existing != "" {
			return existing, nil
		}
	}
	if suppliedID != "" {
		return suppliedID, nil
	}
	return row.String(codeCol), nil
}

func (a SQLTableAdapter) lookupID(ctx context.Context, idCol, codeCol string, code any) (string, error) {
	table, err := intdb.Ident(a.Table)
	if err != nil {
		return "", err
	}
	qID, _ := intdb.Ident(idCol)
	qCode, _ := intdb.Ident(codeCol)
	var id sql.NullString
	err = a.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1", qID, table, qCode), code).Scan(&id)
	if err != nil {
		return "", err
	}
	return id.String, nil
}

func (a SQLTableAdapter) Fetch(ctx context.Context, key string) (intdb.Record, error) {
	key = strings.TrimSpace(key)
	if a.DB == nil || key == "" {
		return nil, domain.NotFoundError{Resource: "booking"}
	}
	schema, err := intdb.ProbeColumns(ctx, a.DB, a.Table)
	if err != nil {
		return nil, err
	}
	table, err := intdb.Ident(a.Table)
	if err != nil {
		return nil, err
	}

	conds := []string{}
	args := []any{}
	_, numErr := strconv.ParseInt(key, 10, 64)
	for _, f := range []string{"id", "booking_code", "order_id"} {
		col, ok := intdb.ColumnFor(f, schema, a.aliases())
		if !ok {
			continue
		}
		if schema.IsIntegerColumn(col) && numErr != nil {
			continue
		}
		q, _ := intdb.Ident(col)
		conds = append(conds, q+" = ?")
		args = append(args, key)
	}
	if len(conds) == 0 {
		return nil, domain.NotFoundError{Resource: "booking"}
	}

	rows, err := a.DB.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT 1", table, strings.Join(conds, " OR ")), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, domain.NotFoundError{Resource: "booking"}
	}
	return recs[0], nil
}

// scanRecords reads arbitrary rows into records; []byte values become strings.
func scanRecords(rows *sql.Rows) ([]intdb.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []intdb.Record{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := intdb.Record{}
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
