package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Env struct {
	AppAddr string `envconfig:"APP_ADDR" default:":8080"`
	GinMode string `envconfig:"GIN_MODE"`

	DatabaseDSN    string   `envconfig:"DATABASE_DSN" default:"root:@tcp(127.0.0.1:3306)/travel_app?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"`
	BookingTables  []string `envconfig:"BOOKING_TABLES" default:"bookings,booking_requests,train_bookings"`
	PassengerTable string   `envconfig:"PASSENGER_TABLE" default:"passengers"`
	TicketTable    string   `envconfig:"TICKET_TABLE" default:"tickets"`

	SupabaseURL    string   `envconfig:"SUPABASE_URL"`
	SupabaseKey    string   `envconfig:"SUPABASE_KEY"`
	SupabaseTables []string `envconfig:"SUPABASE_TABLES" default:"bookings"`

	MongoURI        string `envconfig:"MONGODB_URI"`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"railticket"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"bookings_fallback"`

	GmailClientID     string `envconfig:"GMAIL_CLIENT_ID"`
	GmailClientSecret string `envconfig:"GMAIL_CLIENT_SECRET"`
	GmailRefreshToken string `envconfig:"GMAIL_REFRESH_TOKEN"`
	MailFrom          string `envconfig:"MAIL_FROM" default:"tiket@railticket.local"`

	SessionJWTSecret   string   `envconfig:"SESSION_JWT_SECRET"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"`
	MetricsNamespace   string   `envconfig:"METRICS_NAMESPACE" default:"railticket"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"info"`

	DefaultBaseFare     int64 `envconfig:"DEFAULT_BASE_FARE" default:"150000"`
	DefaultAdminFee     int64 `envconfig:"DEFAULT_ADMIN_FEE" default:"5000"`
	DefaultInsuranceFee int64 `envconfig:"DEFAULT_INSURANCE_FEE" default:"10000"`
}

// LoadEnv membaca .env (jika ada) lalu environment proses.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, err
	}
	env.BookingTables = cleanList(env.BookingTables)
	env.SupabaseTables = cleanList(env.SupabaseTables)
	env.CORSAllowedOrigins = cleanList(env.CORSAllowedOrigins)
	return env, nil
}

func (e Env) SupabaseEnabled() bool {
	return strings.TrimSpace(e.SupabaseURL) != "" && strings.TrimSpace(e.SupabaseKey) != ""
}

func (e Env) MongoEnabled() bool {
	return strings.TrimSpace(e.MongoURI) != ""
}

func (e Env) GmailEnabled() bool {
	return e.GmailClientID != "" && e.GmailClientSecret != "" && e.GmailRefreshToken != ""
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
