package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "railticket/internal/db"
	"railticket/internal/domain"

	"github.com/supabase-community/postgrest-go"
	"go.uber.org/multierr"
)

// RestClient is the part of *supabase.Client the adapter uses.
type RestClient interface {
	From(table string) *postgrest.QueryBuilder
}

// SupabaseTableAdapter stores bookings in a table of the hosted backend through PostgREST.
type SupabaseTableAdapter struct {
	Client  RestClient
	Table   string
	Aliases intdb.Aliases
}

func (a SupabaseTableAdapter) Name() string {
	return "supabase:" + a.Table
}

func (a SupabaseTableAdapter) aliases() intdb.Aliases {
	if a.Aliases != nil {
		return a.Aliases
	}
	return intdb.BookingAliases
}

func (a SupabaseTableAdapter) Probe(ctx context.Context) error {
	_, err := a.probe(ctx)
	return err
}

// probe reads at most one row. Its keys are the column set; an empty table leaves the schema unknown.
func (a SupabaseTableAdapter) probe(ctx context.Context) (intdb.Schema, error) {
	if a.Client == nil {
		return intdb.Schema{}, errors.New("supabase client belum dikonfigurasi")
	}
	if err := ctx.Err(); err != nil {
		return intdb.Schema{}, err
	}
	body, _, err := a.Client.From(a.Table).Select("*", "", false).Limit(1, "").Execute()
	if err != nil {
		return intdb.Schema{}, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return intdb.Schema{}, fmt.Errorf("probe %s: %w", a.Table, err)
	}
	if len(rows) == 0 {
		return intdb.Schema{}, nil
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	return intdb.NewSchema(a.Table, cols, nil), nil
}

func (a SupabaseTableAdapter) TryInsert(ctx context.Context, rec intdb.Record) AttemptResult {
	res := AttemptResult{Target: a.Name()}
	schema, err := a.probe(ctx)
	if err != nil {
		res.Skipped = true
		res.Err = fmt.Errorf("probe %s: %w", a.Table, err)
		return res
	}

	row, _ := intdb.Project(rec, schema, a.aliases())
	id, err := a.upsert(schema, row)
	if err == nil {
		res.Success, res.Method, res.StoredID = true, domain.MethodDirect, id
		return res
	}
	if !isRestUnknownColumn(err) && !isRestShapeMismatch(err) {
		res.Err = err
		return res
	}

	minimal, _ := intdb.Project(intdb.Subset(rec, intdb.MinimalBookingFields), schema, a.aliases())
	id, retryErr := a.upsert(schema, minimal)
	if retryErr == nil {
		res.Success, res.Method, res.StoredID = true, domain.MethodMinimal, id
		return res
	}
	res.Err = multierr.Combine(err, retryErr)
	return res
}

// upsert inserts row unless a booking with the same code exists; an existing booking only has its
// unprotected columns patched. PostgREST's merge upsert would overwrite every column sent.
func (a SupabaseTableAdapter) upsert(schema intdb.Schema, row intdb.Record) (string, error) {
	idCol, _ := intdb.ColumnFor("id", schema, a.aliases())
	codeCol, hasCode := intdb.ColumnFor("booking_code", schema, a.aliases())
	code := ""
	if hasCode {
		code = row.String(codeCol)
	}

	if code != "" {
		existing, err := a.existing(codeCol, code)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return a.refresh(schema, row, existing, idCol, codeCol, code)
		}
	}

	body, _, err := a.Client.From(a.Table).Insert(restPayload(row), false, "", "representation", "").Execute()
	// 23505: a concurrent submission stored the same code first
	if restCode(err) == "23505" && code != "" {
		if existing, lookupErr := a.existing(codeCol, code); lookupErr == nil && existing != nil {
			return a.refresh(schema, row, existing, idCol, codeCol, code)
		}
	}
	if err != nil {
		return "", err
	}

	var rows []map[string]any
	if json.Unmarshal(body, &rows) == nil && len(rows) > 0 {
		if id := asString(rows[0][idCol]); id != "" {
			return id, nil
		}
	}
	if id := row.String(idCol); id != "" {
		return id, nil
	}
	return code, nil
}

// existing returns the stored row for code, or nil.
func (a SupabaseTableAdapter) existing(codeCol, code string) (map[string]any, error) {
	body, _, err := a.Client.From(a.Table).Select("*", "", false).Eq(codeCol, code).Limit(1, "").Execute()
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", a.Table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (a SupabaseTableAdapter) refresh(schema intdb.Schema, row intdb.Record, existing map[string]any, idCol, codeCol, code string) (string, error) {
	protected := intdb.ProtectedColumns(schema, a.aliases())
	changes := intdb.Record{}
	for k, v := range row {
		if !protected[k] {
			changes[k] = v
		}
	}
	if len(changes) > 0 {
		if _, _, err := a.Client.From(a.Table).Update(restPayload(changes), "representation", "").Eq(codeCol, code).Execute(); err != nil {
			return "", err
		}
	}
	if id := asString(existing[idCol]); id != "" {
		return id, nil
	}
	if id := row.String(idCol); id != "" {
		return id, nil
	}
	return code, nil
}

func (a SupabaseTableAdapter) Fetch(ctx context.Context, key string) (intdb.Record, error) {
	key = strings.TrimSpace(key)
	if a.Client == nil || key == "" {
		return nil, domain.NotFoundError{Resource: "booking"}
	}
	schema, err := a.probe(ctx)
	if err != nil {
		return nil, err
	}
	var errs error
	for _, f := range []string{"id", "booking_code", "order_id"} {
		col, ok := intdb.ColumnFor(f, schema, a.aliases())
		if !ok {
			continue
		}
		body, _, err := a.Client.From(a.Table).Select("*", "", false).Eq(col, key).Limit(1, "").Execute()
		if err != nil {
			// a uuid id column rejects booking codes with 22P02; keep looking under the other keys
			errs = multierr.Append(errs, err)
			continue
		}
		var rows []map[string]any
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			return intdb.Record(rows[0]), nil
		}
	}
	return nil, domain.NotFoundError{Resource: "booking", Err: errs}
}

// restPayload makes the row JSON-friendly for PostgREST.
func restPayload(row intdb.Record) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if t, ok := v.(time.Time); ok {
			out[k] = t.UTC().Format(time.RFC3339Nano)
			continue
		}
		out[k] = v
	}
	return out
}

// restCode extracts the code from postgrest-go's "(CODE) message" errors.
func restCode(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "(") {
		return ""
	}
	end := strings.Index(msg, ")")
	if end < 0 {
		return ""
	}
	return msg[1:end]
}

func isRestUnknownColumn(err error) bool {
	switch restCode(err) {
	case "PGRST204", "42703":
		return true
	}
	return false
}

func isRestShapeMismatch(err error) bool {
	switch restCode(err) {
	case "22P02", "22007", "22008", "22003":
		return true
	}
	return false
}
