package app

import (
	"testing"
	"time"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected MetricsAddr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.StorageDriver != StorageDriverMemory {
		t.Errorf("expected StorageDriver %s, got %s", StorageDriverMemory, cfg.StorageDriver)
	}
	if !cfg.PostgresAutoMigrate {
		t.Error("expected PostgresAutoMigrate to be true")
	}
	if cfg.RedisAddr != "" {
		t.Errorf("expected cache to be disabled by default, got addr %q", cfg.RedisAddr)
	}
	if cfg.CacheTTL != 15*time.Minute {
		t.Errorf("expected CacheTTL 15m, got %s", cfg.CacheTTL)
	}
	if cfg.KafkaBrokers != "" {
		t.Errorf("expected kafka to be disabled by default, got %q", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "shop.catalog.events" {
		t.Errorf("unexpected KafkaTopic %q", cfg.KafkaTopic)
	}
	if cfg.RequestTimeout <= 0 {
		t.Error("expected RequestTimeout to be > 0")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel info, got %s", cfg.LogLevel)
	}
}

func TestConfig_IsComparable(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	if a != b {
		t.Fatal("default configs must be equal")
	}

	b.StorageDriver = StorageDriverPostgres
	if a == b {
		t.Fatal("configs with different drivers must differ")
	}
}

func TestSplitList(t *testing.T) {
	testCases := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: nil},
		{raw: " , ", want: nil},
		{raw: "a:9092", want: []string{"a:9092"}},
		{raw: "a:9092, b:9092,,c:9092 ", want: []string{"a:9092", "b:9092", "c:9092"}},
	}

	for _, tc := range testCases {
		got := splitList(tc.raw)
		if len(got) != len(tc.want) {
			t.Fatalf("splitList(%q) = %v, want %v", tc.raw, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("splitList(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		}
	}
}
