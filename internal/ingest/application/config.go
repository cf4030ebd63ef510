package application

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PurpleAirConfig configures the microsensor feed.
type PurpleAirConfig struct {
	BaseURL string   `yaml:"base_url"`
	APIKey  string   `yaml:"api_key"`
	GroupID string   `yaml:"group_id"`
	Fields  []string `yaml:"fields"`
}

// StationsConfig configures the government station feed.
type StationsConfig struct {
	BaseURL string `yaml:"base_url"`
	BBox    string `yaml:"bbox"`
}

// ScheduleConfig configures when ticks fire: once per hour at a fixed
// minute offset.
type ScheduleConfig struct {
	HourlyAtMinute int `yaml:"hourly_at_minute"`
}

// EmailConfig configures the outbound notification provider.
type EmailConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	Sender    string `yaml:"sender"`
}

// Config defines ingestion configuration.
type Config struct {
	PurpleAir PurpleAirConfig `yaml:"purpleair"`
	Stations  StationsConfig  `yaml:"stations"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Email     EmailConfig     `yaml:"email"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		PurpleAir: PurpleAirConfig{
			APIKey:  os.Getenv("PURPLEAIR_KEY"),
			GroupID: os.Getenv("PURPLEAIR_GROUP_ID"),
			Fields:  splitCSV(getenvDefault("PURPLEAIR_FIELDS", "sensor_index,latitude,longitude,pm2.5_60minute")),
		},
		Stations: StationsConfig{
			BBox: os.Getenv("STATION_BBOX"),
		},
		Schedule: ScheduleConfig{
			HourlyAtMinute: getenvIntDefault("INGEST_HOURLY_AT_MINUTE", 5),
		},
		Email: EmailConfig{
			Endpoint:  os.Getenv("EMAIL_ENDPOINT"),
			AccessKey: os.Getenv("EMAIL_ACCESS_KEY"),
			Sender:    os.Getenv("EMAIL_SENDER"),
		},
	}

	if path := os.Getenv("INGEST_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that required fields are present.
func (c Config) Validate() error {
	if c.PurpleAir.APIKey == "" {
		return errors.New("ingest config: purpleair api key required")
	}
	if c.PurpleAir.GroupID == "" {
		return errors.New("ingest config: purpleair group id required")
	}
	if len(c.PurpleAir.Fields) == 0 {
		return errors.New("ingest config: purpleair field list required")
	}
	if c.Stations.BBox == "" {
		return errors.New("ingest config: station bounding box required")
	}
	if c.Schedule.HourlyAtMinute < 0 || c.Schedule.HourlyAtMinute > 59 {
		return fmt.Errorf("ingest config: hourly_at_minute %d out of range [0,59]", c.Schedule.HourlyAtMinute)
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
