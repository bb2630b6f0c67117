package config

import "testing"

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("BOOKING_TABLES", " bookings , ,train_bookings")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_KEY", "")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv error: %v", err)
	}
	if len(env.BookingTables) != 2 || env.BookingTables[0] != "bookings" || env.BookingTables[1] != "train_bookings" {
		t.Fatalf("unexpected booking tables: %#v", env.BookingTables)
	}
	if env.DefaultAdminFee != 5000 || env.DefaultInsuranceFee != 10000 {
		t.Fatalf("unexpected fee defaults: admin=%d insurance=%d", env.DefaultAdminFee, env.DefaultInsuranceFee)
	}
	if env.SupabaseEnabled() {
		t.Fatalf("supabase should be disabled without url/key")
	}
}
