package application

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("INGEST_CONFIG", "")
	t.Setenv("PURPLEAIR_KEY", "test-key")
	t.Setenv("PURPLEAIR_GROUP_ID", "1234")
	t.Setenv("PURPLEAIR_FIELDS", "sensor_index, latitude, longitude, pm2.5_60minute")
	t.Setenv("STATION_BBOX", "-114.1,53.3,-113.2,53.7")
	t.Setenv("INGEST_HOURLY_AT_MINUTE", "12")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PurpleAir.APIKey != "test-key" || cfg.PurpleAir.GroupID != "1234" {
		t.Fatalf("purpleair config = %+v", cfg.PurpleAir)
	}
	if len(cfg.PurpleAir.Fields) != 4 || cfg.PurpleAir.Fields[3] != "pm2.5_60minute" {
		t.Fatalf("fields = %v", cfg.PurpleAir.Fields)
	}
	if cfg.Stations.BBox != "-114.1,53.3,-113.2,53.7" {
		t.Fatalf("bbox = %q", cfg.Stations.BBox)
	}
	if cfg.Schedule.HourlyAtMinute != 12 {
		t.Fatalf("hourly minute = %d", cfg.Schedule.HourlyAtMinute)
	}
}

func TestLoadConfigYamlOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.yaml")
	content := `
purpleair:
  api_key: yaml-key
  group_id: "99"
  fields: [sensor_index, latitude, longitude, pm2.5_60minute]
stations:
  bbox: "-114,53,-113,54"
schedule:
  hourly_at_minute: 30
email:
  endpoint: https://mail.example.com/send
  sender: DoNotReply@example.net
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	t.Setenv("INGEST_CONFIG", path)
	t.Setenv("PURPLEAIR_KEY", "env-key")
	t.Setenv("PURPLEAIR_GROUP_ID", "1234")
	t.Setenv("STATION_BBOX", "env-bbox")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PurpleAir.APIKey != "yaml-key" {
		t.Fatalf("api key = %q, yaml must win", cfg.PurpleAir.APIKey)
	}
	if cfg.Schedule.HourlyAtMinute != 30 {
		t.Fatalf("hourly minute = %d", cfg.Schedule.HourlyAtMinute)
	}
	if cfg.Email.Endpoint != "https://mail.example.com/send" {
		t.Fatalf("email endpoint = %q", cfg.Email.Endpoint)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		PurpleAir: PurpleAirConfig{APIKey: "k", GroupID: "g", Fields: []string{"sensor_index"}},
		Stations:  StationsConfig{BBox: "-114,53,-113,54"},
		Schedule:  ScheduleConfig{HourlyAtMinute: 5},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	invalid := valid
	invalid.PurpleAir.APIKey = ""
	if err := invalid.Validate(); err == nil {
		t.Fatal("expected error for missing api key")
	}

	invalid = valid
	invalid.Stations.BBox = ""
	if err := invalid.Validate(); err == nil {
		t.Fatal("expected error for missing bbox")
	}

	invalid = valid
	invalid.Schedule.HourlyAtMinute = 60
	if err := invalid.Validate(); err == nil {
		t.Fatal("expected error for out-of-range minute")
	}
}
