package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	tt, err := cfg.ParsedTimetable()
	if err != nil {
		t.Fatal(err)
	}
	if len(tt.Slots()) != len(DefaultTimetable) {
		t.Errorf("timetable = %v", tt.Slots())
	}
	if cfg.GracePeriod != 40*time.Minute || cfg.SweepPolicy != string(domain.SweepDeparted) {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	h, err := cfg.Hours()
	if err != nil || h.Start != domain.NewTimeOfDay(6, 0, 0) || h.End != domain.NewTimeOfDay(21, 0, 0) {
		t.Errorf("hours = %+v, %v", h, err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shuttle.yaml")
	yaml := "timetable: [\"08:00\", \"10:00\"]\ngrace_period: 30m\nkafka_topic: from-file\ndrivers_chat_id: -100\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KAFKA_TOPIC", "from-env")
	t.Setenv("ALLOWED_CHAT_IDS", "-1, -2")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GracePeriod != 30*time.Minute || cfg.DriversChatID != -100 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.KafkaTopic != "from-env" {
		t.Errorf("env must win over file, got %q", cfg.KafkaTopic)
	}
	if len(cfg.AllowedChatIDs) != 2 || cfg.AllowedChatIDs[1] != -2 {
		t.Errorf("allowed chats = %v", cfg.AllowedChatIDs)
	}
	if len(cfg.KafkaBrokers) != 2 {
		t.Errorf("brokers = %v", cfg.KafkaBrokers)
	}
	tt, _ := cfg.ParsedTimetable()
	if tt.Slots()[0] != domain.NewTimeOfDay(8, 0, 0) {
		t.Errorf("timetable = %v", tt.Slots())
	}
}

func TestLoadCollectsErrors(t *testing.T) {
	tests := map[string]string{
		"TIMETABLE":       "09:00,08:00",
		"GRACE_PERIOD":    "soon",
		"SWEEP_POLICY":    "all",
		"TIMEZONE":        "Mars/Olympus",
		"WORKDAY_END":     "05:00",
		"DRIVERS_CHAT_ID": "drivers",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(""); err == nil {
				t.Errorf("%s=%q accepted", key, value)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
