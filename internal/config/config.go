package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
)

// Config is loaded from defaults, then an optional YAML file, then the
// environment. Later sources win.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	PGDSN         string `yaml:"pg_dsn"`
	RunMigrations bool   `yaml:"migrate"`

	BotToken       string  `yaml:"bot_token"`
	WebhookURL     string  `yaml:"webhook_url"`
	DriversChatID  int64   `yaml:"drivers_chat_id"`
	StudentsChatID int64   `yaml:"students_chat_id"`
	AllowedChatIDs []int64 `yaml:"allowed_chat_ids"`

	Timetable      []string      `yaml:"timetable"`
	GracePeriod    time.Duration `yaml:"grace_period"`
	SweepPolicy    string        `yaml:"sweep_policy"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	DigestInterval time.Duration `yaml:"digest_interval"`
	Timezone       string        `yaml:"timezone"`
	WorkdayStart   string        `yaml:"workday_start"`
	WorkdayEnd     string        `yaml:"workday_end"`
	Weekends       bool          `yaml:"weekends"`
	ResetAt        string        `yaml:"reset_at"`

	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	NameCacheTTL  time.Duration `yaml:"name_cache_ttl"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	LogLevel string `yaml:"log_level"`
}

var DefaultTimetable = []string{"07:15", "09:15", "11:15", "13:15", "15:15", "17:15", "19:15"}

func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		ShutdownTimeout: 15 * time.Second,
		Timetable:       append([]string(nil), DefaultTimetable...),
		GracePeriod:     40 * time.Minute,
		SweepPolicy:     string(domain.SweepDeparted),
		SweepInterval:   5 * time.Minute,
		DigestInterval:  15 * time.Minute,
		Timezone:        "UTC",
		WorkdayStart:    "06:00",
		WorkdayEnd:      "21:00",
		ResetAt:         "00:00",
		NameCacheTTL:    6 * time.Hour,
		KafkaTopic:      "shuttle-ride-events",
		LogLevel:        "info",
	}
}

// Load reads path (skipped when empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	var errs []error
	setStringFromEnv(&cfg.HTTPAddr, "HTTP_ADDR")
	setDurationFromEnv(&cfg.ShutdownTimeout, "HTTP_SHUTDOWN_TIMEOUT", &errs)
	setStringFromEnv(&cfg.PGDSN, "PG_DSN")
	if v := os.Getenv("MIGRATE"); v != "" {
		cfg.RunMigrations = strings.EqualFold(v, "true")
	}
	setStringFromEnv(&cfg.BotToken, "BOT_TOKEN")
	setStringFromEnv(&cfg.WebhookURL, "WEBHOOK_URL")
	setInt64FromEnv(&cfg.DriversChatID, "DRIVERS_CHAT_ID", &errs)
	setInt64FromEnv(&cfg.StudentsChatID, "STUDENTS_CHAT_ID", &errs)
	if v := os.Getenv("ALLOWED_CHAT_IDS"); v != "" {
		cfg.AllowedChatIDs = nil
		for _, s := range splitAndTrim(v) {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid ALLOWED_CHAT_IDS: %w", err))
				continue
			}
			cfg.AllowedChatIDs = append(cfg.AllowedChatIDs, id)
		}
	}
	if v := os.Getenv("TIMETABLE"); v != "" {
		cfg.Timetable = splitAndTrim(v)
	}
	setDurationFromEnv(&cfg.GracePeriod, "GRACE_PERIOD", &errs)
	setStringFromEnv(&cfg.SweepPolicy, "SWEEP_POLICY")
	setDurationFromEnv(&cfg.SweepInterval, "SWEEP_INTERVAL", &errs)
	setDurationFromEnv(&cfg.DigestInterval, "DIGEST_INTERVAL", &errs)
	setStringFromEnv(&cfg.Timezone, "TIMEZONE")
	setStringFromEnv(&cfg.WorkdayStart, "WORKDAY_START")
	setStringFromEnv(&cfg.WorkdayEnd, "WORKDAY_END")
	setStringFromEnv(&cfg.ResetAt, "RESET_AT")
	setStringFromEnv(&cfg.RedisAddr, "REDIS_ADDR")
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	setDurationFromEnv(&cfg.NameCacheTTL, "NAME_CACHE_TTL", &errs)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = splitAndTrim(v)
	}
	setStringFromEnv(&cfg.KafkaTopic, "KAFKA_TOPIC")
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	errs = append(errs, cfg.validate()...)
	return cfg, errors.Join(errs...)
}

func (c Config) validate() []error {
	var errs []error
	if _, err := c.ParsedTimetable(); err != nil {
		errs = append(errs, fmt.Errorf("timetable: %w", err))
	}
	if c.GracePeriod <= 0 {
		errs = append(errs, errors.New("GRACE_PERIOD must be > 0"))
	}
	if _, err := domain.ParseSweepPolicy(c.SweepPolicy); err != nil {
		errs = append(errs, err)
	}
	if c.SweepInterval <= 0 || c.DigestInterval <= 0 {
		errs = append(errs, errors.New("SWEEP_INTERVAL and DIGEST_INTERVAL must be > 0"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE: %w", err))
	}
	if _, err := c.Hours(); err != nil {
		errs = append(errs, err)
	}
	if _, err := domain.ParseTimeOfDay(c.ResetAt); err != nil {
		errs = append(errs, fmt.Errorf("RESET_AT: %w", err))
	}
	return errs
}

func (c Config) ParsedTimetable() (domain.Timetable, error) {
	return domain.ParseTimetable(c.Timetable)
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) Hours() (domain.ServiceHours, error) {
	start, err := domain.ParseTimeOfDay(c.WorkdayStart)
	if err != nil {
		return domain.ServiceHours{}, fmt.Errorf("WORKDAY_START: %w", err)
	}
	end, err := domain.ParseTimeOfDay(c.WorkdayEnd)
	if err != nil {
		return domain.ServiceHours{}, fmt.Errorf("WORKDAY_END: %w", err)
	}
	if end <= start {
		return domain.ServiceHours{}, errors.New("WORKDAY_END must be after WORKDAY_START")
	}
	return domain.ServiceHours{Start: start, End: end, Weekends: c.Weekends, Location: c.Location()}, nil
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setInt64FromEnv(target *int64, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = i
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
