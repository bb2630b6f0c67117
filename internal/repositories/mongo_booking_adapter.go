package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	intdb "railticket/internal/db"
	"railticket/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/multierr"
)

// document validation rejected the write (collection has a $jsonSchema validator)
const mongoDocumentValidationFailure = 121

// MongoAdapter is the last-resort target: a schemaless collection keyed by booking code.
type MongoAdapter struct {
	Collection *mongo.Collection
}

func (a MongoAdapter) Name() string {
	if a.Collection == nil {
		return "mongodb"
	}
	return "mongodb:" + a.Collection.Name()
}

func (a MongoAdapter) Probe(ctx context.Context) error {
	if a.Collection == nil {
		return errors.New("mongodb belum dikonfigurasi")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return a.Collection.Database().Client().Ping(pingCtx, nil)
}

func (a MongoAdapter) TryInsert(ctx context.Context, rec intdb.Record) AttemptResult {
	res := AttemptResult{Target: a.Name()}
	if err := a.Probe(ctx); err != nil {
		res.Skipped = true
		res.Err = err
		return res
	}

	id, err := a.upsert(ctx, rec)
	if err == nil {
		res.Success, res.Method, res.StoredID = true, domain.MethodDirect, id
		return res
	}
	var se mongo.ServerError
	if !errors.As(err, &se) || !se.HasErrorCode(mongoDocumentValidationFailure) {
		res.Err = err
		return res
	}

	id, retryErr := a.upsert(ctx, intdb.Subset(rec, intdb.MinimalBookingFields))
	if retryErr == nil {
		res.Success, res.Method, res.StoredID = true, domain.MethodMinimal, id
		return res
	}
	res.Err = multierr.Combine(err, retryErr)
	return res
}

func (a MongoAdapter) upsert(ctx context.Context, rec intdb.Record) (string, error) {
	code := rec.String("booking_code")
	update := mongoUpdate(rec)

	filter := bson.M{"booking_code": code}
	result, err := a.Collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return "", err
	}
	if result.UpsertedCount > 0 {
		return rec.String("id"), nil
	}

	// existing document: its id was set on the first insert and never changes
	var existing bson.M
	if err := a.Collection.FindOne(ctx, filter).Decode(&existing); err == nil {
		if id := asString(existing["id"]); id != "" {
			return id, nil
		}
	}
	return rec.String("id"), nil
}

// mongoUpdate splits rec into fields written only when the document is created and fields
// refreshed on every submission.
func mongoUpdate(rec intdb.Record) bson.M {
	set := bson.M{}
	setOnInsert := bson.M{}
	protected := intdb.ProtectedColumns(intdb.Schema{}, nil)
	for k, v := range rec {
		if protected[k] {
			setOnInsert[k] = mongoValue(v)
			continue
		}
		set[k] = mongoValue(v)
	}
	update := bson.M{"$setOnInsert": setOnInsert}
	if len(set) > 0 {
		update["$set"] = set
	}
	return update
}

func (a MongoAdapter) Fetch(ctx context.Context, key string) (intdb.Record, error) {
	key = strings.TrimSpace(key)
	if a.Collection == nil || key == "" {
		return nil, domain.NotFoundError{Resource: "booking"}
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"id": key},
		bson.M{"booking_code": key},
		bson.M{"order_id": key},
	}}
	var doc bson.M
	if err := a.Collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return nil, err
	}
	delete(doc, "_id")
	return intdb.Record(doc), nil
}

// mongoValue stores composite values as JSON text, same as the SQL targets, so reads decode one way.
func mongoValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t
	}
	return intdb.SQLValue(v)
}
