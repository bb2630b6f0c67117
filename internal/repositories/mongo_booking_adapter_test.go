package repositories

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"railticket/internal/domain"
)

func TestMongoAdapterUnconfigured(t *testing.T) {
	a := MongoAdapter{}
	if a.Name() != "mongodb" {
		t.Fatalf("unexpected name %q", a.Name())
	}
	res := a.TryInsert(context.Background(), sampleRecord())
	if res.Success || !res.Skipped {
		t.Fatalf("unconfigured collection must be skipped, got %+v", res)
	}
	if _, err := a.Fetch(context.Background(), "BK-1"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMongoValue(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if mongoValue(ts) != ts {
		t.Fatalf("time values must be kept native")
	}
	if got := mongoValue([]string{"1A", "1B"}); got != `["1A","1B"]` {
		t.Fatalf("composite values must be stored as JSON text, got %v", got)
	}
}

func TestMongoUpdateKeepsStatusAndFareOnInsertOnly(t *testing.T) {
	rec := sampleRecord()
	rec["payment_status"] = "paid"
	update := mongoUpdate(rec)

	onInsert := update["$setOnInsert"].(bson.M)
	set := update["$set"].(bson.M)
	for _, k := range []string{"id", "booking_code", "status", "payment_status", "total_amount", "fare_breakdown"} {
		if _, ok := onInsert[k]; !ok {
			t.Fatalf("%s must only be written on insert", k)
		}
		if _, ok := set[k]; ok {
			t.Fatalf("%s must not be overwritten on a repeated submission", k)
		}
	}
	if _, ok := set["customer_name"]; !ok {
		t.Fatalf("contact fields should still be refreshed, got %v", set)
	}
}
