package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intconfig "railticket/internal/config"
	h "railticket/internal/http/handlers"
	"railticket/internal/logger"
	"railticket/internal/mail"
	"railticket/internal/metrics"
	"railticket/internal/repositories"
	"railticket/internal/services"
	"railticket/internal/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Container holds all application dependencies.
type Container struct {
	Logger   logger.Logger
	DB       *sql.DB
	Supabase *supabase.Client
	Mongo    *mongo.Client
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Store       repositories.BookingStore
	Passengers  repositories.PassengerRepository
	Tickets     repositories.TicketRepository
	Bookings    services.BookingService
	TicketEmail services.TicketEmailService
	Handlers    h.Handlers
}

// New wires the service. Optional backends (Supabase, MongoDB, Gmail) that fail to initialise are
// logged and left out; the MySQL pool is required.
func New(ctx context.Context, env intconfig.Env, db *sql.DB, log logger.Logger) (*Container, error) {
	log = logger.OrNop(log)
	if db == nil {
		return nil, fmt.Errorf("database belum terhubung")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(env.MetricsNamespace, reg)

	c := &Container{Logger: log, DB: db, Registry: reg, Metrics: m}

	if env.SupabaseEnabled() {
		client, err := supabase.NewClient(env.SupabaseURL, env.SupabaseKey, nil)
		if err != nil {
			log.Warn("supabase client tidak bisa dibuat, target dilewati", "error", err)
		} else {
			c.Supabase = client
		}
	}

	var coll *mongo.Collection
	if env.MongoEnabled() {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(env.MongoURI))
		cancel()
		if err != nil {
			log.Warn("mongodb tidak bisa dihubungkan, target dilewati", "error", err)
		} else {
			c.Mongo = client
			coll = client.Database(env.MongoDatabase).Collection(env.MongoCollection)
		}
	}

	var rest repositories.RestClient
	if c.Supabase != nil {
		rest = c.Supabase
	}
	ids := utils.NewIDGenerator()
	c.Store = repositories.BookingStore{
		Adapters: StorageAdapters(env, db, rest, coll),
		IDs:      ids,
		Log:      log,
		Metrics:  m,
	}
	c.Passengers = repositories.PassengerRepository{DB: db, Table: env.PassengerTable}
	c.Tickets = repositories.TicketRepository{DB: db, Table: env.TicketTable}
	if err := c.Tickets.EnsureTable(ctx); err != nil {
		log.Warn("tabel tiket belum bisa disiapkan", "table", env.TicketTable, "error", err)
	}

	mailer, err := newMailer(ctx, env, log)
	if err != nil {
		log.Warn("gmail tidak bisa disiapkan, email tiket dinonaktifkan", "error", err)
		mailer = mail.DisabledMailer{}
	}

	c.Bookings = services.BookingService{
		Bookings:   c.Store,
		Passengers: c.Passengers,
		Tickets:    c.Tickets,
		IDs:        ids,
		Fare: utils.FareDefaults{
			BaseFarePerPassenger: env.DefaultBaseFare,
			AdminFee:             env.DefaultAdminFee,
			InsuranceFee:         env.DefaultInsuranceFee,
		},
		Log:     log,
		Metrics: m,
	}
	c.TicketEmail = services.TicketEmailService{
		Bookings:   c.Store,
		Passengers: c.Passengers,
		Tickets:    c.Tickets,
		Docs:       services.DocsService{Log: log, Metrics: m},
		Notifier:   services.NotificationService{Mailer: mailer, Tickets: c.Tickets, Log: log, Metrics: m},
		IDs:        ids,
		Log:        log,
	}
	c.Handlers = h.Handlers{
		Bookings: c.Bookings,
		Storage:  c.Store,
		Tickets:  c.TicketEmail,
		DB:       db,
		Validate: h.NewValidator(),
		Log:      log,
	}
	return c, nil
}

// StorageAdapters returns the candidate targets in priority order: the MySQL tables, then the
// Supabase tables, then the MongoDB collection.
func StorageAdapters(env intconfig.Env, db *sql.DB, rest repositories.RestClient, coll *mongo.Collection) []repositories.StorageAdapter {
	out := []repositories.StorageAdapter{}
	for _, t := range env.BookingTables {
		out = append(out, repositories.SQLTableAdapter{DB: db, Table: t})
	}
	if rest != nil {
		for _, t := range env.SupabaseTables {
			out = append(out, repositories.SupabaseTableAdapter{Client: rest, Table: t})
		}
	}
	if coll != nil {
		out = append(out, repositories.MongoAdapter{Collection: coll})
	}
	return out
}

func newMailer(ctx context.Context, env intconfig.Env, log logger.Logger) (mail.Mailer, error) {
	if !env.GmailEnabled() {
		log.Warn("GMAIL_* belum diisi, email tiket dinonaktifkan")
		return mail.DisabledMailer{}, nil
	}
	ts := mail.NewTokenSource(ctx, env.GmailClientID, env.GmailClientSecret, env.GmailRefreshToken)
	return mail.NewGmailMailer(ctx, ts, env.MailFrom, log)
}

// Close releases the backends opened by New.
func (c *Container) Close(ctx context.Context) {
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			c.Logger.Warn("mongodb disconnect gagal", "error", err)
		}
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}
