package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadAPIFromEnvPortOverridesAddr(t *testing.T) {
	t.Setenv("PITCHSIDE_API_ADDR", ":9000")
	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "sqlite://pitch.db")
	t.Setenv("PITCHSIDE_GM_TOKEN_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("addr = %q, want :7070", cfg.Addr)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("cors origins = %v", cfg.CORSOrigins)
	}
}

func TestLoadAPIFromEnvRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PITCHSIDE_GM_TOKEN_HASH", "x")
	if _, err := LoadAPIFromEnv(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("PITCHSIDE_WORKER_CONCURRENCY", "0")
	cfg, err := LoadWorkerFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Schedule != "0 */1 * * * *" {
		t.Fatalf("schedule = %q", cfg.Schedule)
	}
	if cfg.Concurrency != 1 {
		t.Fatalf("concurrency = %d, want it clamped to 1", cfg.Concurrency)
	}
}

func TestLoadCLIFromEnvTrimsSlash(t *testing.T) {
	t.Setenv("PITCH_API_BASE_URL", "https://pitch.example.com/")
	cfg, err := LoadCLIFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://pitch.example.com" {
		t.Fatalf("base url = %q", cfg.APIBaseURL)
	}
}

func TestLoadCLIFromEnvRejectsNonHTTP(t *testing.T) {
	for _, raw := range []string{"ftp://pitch.example.com", "localhost:8080", "http://"} {
		t.Setenv("PITCH_API_BASE_URL", raw)
		if _, err := LoadCLIFromEnv(); err == nil || !strings.Contains(err.Error(), "PITCH_API_BASE_URL") {
			t.Fatalf("%s: expected base url error, got %v", raw, err)
		}
	}
}

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		raw, kind, target string
		wantErr           bool
	}{
		{raw: "postgres://u:p@localhost/pitch", kind: StorePostgres, target: "postgres://u:p@localhost/pitch"},
		{raw: "sqlite:///var/lib/pitch.db", kind: StoreSQLite, target: "/var/lib/pitch.db"},
		{raw: "memory://", kind: StoreMemory},
		{raw: "sqlite://", wantErr: true},
		{raw: "mysql://x", wantErr: true},
	}
	for _, tt := range tests {
		kind, target, err := ParseDatabaseURL(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tt.raw)
			}
			continue
		}
		if err != nil || kind != tt.kind || target != tt.target {
			t.Fatalf("%s: got (%q, %q, %v)", tt.raw, kind, target, err)
		}
	}
}

func TestLoadTuningOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := "sim:\n  home_advantage: 5\n  attendance:\n    capacity: 30000\necon:\n  revenue:\n    tax_rate: 0.3\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	tuning, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("load tuning: %v", err)
	}
	def := DefaultTuning()
	if tuning.Sim.HomeAdvantage != 5 || tuning.Sim.Attendance.Capacity != 30000 {
		t.Fatalf("overrides not applied: %+v", tuning.Sim)
	}
	if tuning.Sim.K != def.Sim.K || tuning.Econ.Fanbase.Population != def.Econ.Fanbase.Population {
		t.Fatalf("untouched keys lost their defaults")
	}
	if tuning.Econ.Revenue.TaxRate != 0.3 {
		t.Fatalf("tax rate = %v", tuning.Econ.Revenue.TaxRate)
	}
	if p := tuning.Params(); p.Sim.HomeAdvantage != 5 {
		t.Fatalf("params lost the override")
	}
}

func TestLoadTuningRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := "sim:\n  weather:\n    - weather: sunny\n      probability: 0.5\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadTuning(path); err == nil {
		t.Fatalf("expected weather probabilities that do not sum to 1 to be rejected")
	}
}

func TestLoadTuningEmptyPathUsesDefaults(t *testing.T) {
	tuning, err := LoadTuning("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tuning.Sim.HomeAdvantage != DefaultTuning().Sim.HomeAdvantage {
		t.Fatalf("defaults not used")
	}
}
