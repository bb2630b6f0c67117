package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	intdb "railticket/internal/db"
	"railticket/internal/domain"
	"railticket/internal/logger"
	"railticket/internal/metrics"
	"railticket/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// AttemptResult is the outcome of one adapter's insert attempt.
type AttemptResult struct {
	Target   string `json:"target"`
	Success  bool   `json:"success"`
	Skipped  bool   `json:"skipped,omitempty"`
	Method   string `json:"method,omitempty"`
	StoredID string `json:"storedId,omitempty"`
	Err      error  `json:"-"`
}

// StorageAdapter is one candidate storage target. Each adapter owns its own schema probe and aliasing.
type StorageAdapter interface {
	Name() string
	// Probe checks the target is reachable without writing anything.
	Probe(ctx context.Context) error
	// TryInsert stores rec, falling back to the minimal field subset on unknown-column errors.
	TryInsert(ctx context.Context, rec intdb.Record) AttemptResult
	// Fetch looks a booking up by internal id, booking code or order id.
	Fetch(ctx context.Context, key string) (intdb.Record, error)
}

// StoreResult reports which target and method stored the booking.
type StoreResult struct {
	Success    bool
	StoredID   string
	TargetUsed string
	Method     string
	Attempts   []AttemptResult
	Err        error
}

// ErrNoTargets is returned when no adapter is configured at all.
var ErrNoTargets = errors.New("no storage targets configured")

// BookingStore walks the candidate adapters in priority order.
// The adapter list is read-only after construction and safe for concurrent requests.
type BookingStore struct {
	Adapters []StorageAdapter
	IDs      *utils.IDGenerator
	Log      logger.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Store writes rec to the first adapter that accepts it.
func (s BookingStore) Store(ctx context.Context, requestID string, rec intdb.Record) StoreResult {
	rec = s.ensureRequired(rec)

	var out StoreResult
	var errs error
	for _, a := range s.Adapters {
		res := a.TryInsert(ctx, rec)
		res.Target = a.Name()
		out.Attempts = append(out.Attempts, res)

		switch {
		case res.Success:
			s.Metrics.ObserveAttempt(a.Name(), "stored")
			s.Metrics.ObserveStored(a.Name(), res.Method)
			utils.LogEvent(s.Log, requestID, "storage", "store", "booking tersimpan",
				"target", a.Name(), "method", res.Method, "booking_code", rec.String("booking_code"))
			out.Success = true
			out.StoredID = res.StoredID
			out.TargetUsed = a.Name()
			out.Method = res.Method
			return out
		case res.Skipped:
			s.Metrics.ObserveAttempt(a.Name(), "skipped")
			utils.LogWarn(s.Log, requestID, "storage", "probe", "target dilewati", "target", a.Name(), "error", res.Err)
		default:
			s.Metrics.ObserveAttempt(a.Name(), "failed")
			utils.LogWarn(s.Log, requestID, "storage", "insert", "insert gagal", "target", a.Name(), "error", res.Err)
		}
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", a.Name(), res.Err))
	}

	if errs == nil {
		errs = ErrNoTargets
	}
	s.Metrics.ObserveStorageFailed()
	out.Err = domain.WithCode(domain.CodeStorageExhausted, errs)
	return out
}

// Find returns the first record any adapter has for key, with the adapter's name.
func (s BookingStore) Find(ctx context.Context, key string) (intdb.Record, string, error) {
	var errs error
	for _, a := range s.Adapters {
		rec, err := a.Fetch(ctx, key)
		if err == nil && rec != nil {
			return rec, a.Name(), nil
		}
		if err != nil && !domain.IsNotFound(err) {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", a.Name(), err))
		}
	}
	return nil, "", domain.NotFoundError{Resource: "booking", Err: errs}
}

// TargetHealth is one row of the storage reachability report.
type TargetHealth struct {
	Target    string `json:"target"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

// Health probes every adapter without writing.
func (s BookingStore) Health(ctx context.Context) []TargetHealth {
	out := make([]TargetHealth, 0, len(s.Adapters))
	for _, a := range s.Adapters {
		h := TargetHealth{Target: a.Name(), Reachable: true}
		if err := a.Probe(ctx); err != nil {
			h.Reachable = false
			h.Error = err.Error()
		}
		out = append(out, h)
	}
	return out
}

// ensureRequired synthesizes id, code, order id and timestamps when the caller left them out.
func (s BookingStore) ensureRequired(rec intdb.Record) intdb.Record {
	rec = rec.Clone()
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ids := s.IDs
	if ids == nil {
		ids = utils.NewIDGenerator()
	}
	if rec.String("id") == "" {
		rec["id"] = uuid.NewString()
	}
	if rec.String("booking_code") == "" {
		rec["booking_code"] = ids.New(utils.PrefixBooking)
	}
	if rec.String("order_id") == "" {
		rec["order_id"] = ids.New(utils.PrefixOrder)
	}
	ts := now()
	if _, ok := rec["created_at"]; !ok {
		rec["created_at"] = ts
	}
	if _, ok := rec["updated_at"]; !ok {
		rec["updated_at"] = ts
	}
	return rec
}
