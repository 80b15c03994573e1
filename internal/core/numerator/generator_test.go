package numerator

import (
	"testing"
	"time"
)

func TestBuildKey(t *testing.T) {
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		reset string
		want  string
	}{
		{"year", "GRN_2026"},
		{"month", "GRN_2026_03"},
		{"never", "GRN"},
		{"", "GRN_2026"},
	}
	for _, tt := range tests {
		cfg := Config{Prefix: "GRN", ResetPeriod: tt.reset}
		if got := BuildKey(cfg, period); got != tt.want {
			t.Errorf("reset %q: expected %s, got %s", tt.reset, tt.want, got)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	got := FormatNumber(DefaultConfig("GRN"), period, 42)
	if got != "GRN-2026-00042" {
		t.Errorf("expected GRN-2026-00042, got %s", got)
	}

	got = FormatNumber(Config{Prefix: "SEQ", PadWidth: 3}, period, 7)
	if got != "SEQ-007" {
		t.Errorf("expected SEQ-007, got %s", got)
	}

	// Zero pad width falls back to 5.
	got = FormatNumber(Config{Prefix: "SEQ", IncludeYear: true}, period, 7)
	if got != "SEQ-2026-00007" {
		t.Errorf("expected SEQ-2026-00007, got %s", got)
	}
}
