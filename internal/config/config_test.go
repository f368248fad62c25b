package config

import (
	"testing"
)

func clearCoachEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STOCKFISH_PATH", "COACH_PRESET", "COACH_PRESETS_FILE",
		"COACH_TOP_MOVES", "COACH_MOVE_BUDGET_SEC", "COACH_PV_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadRequiresEnginePath(t *testing.T) {
	clearCoachEnv(t)
	if _, err := Load(); err == nil {
		t.Fatalf("Load accepted an empty STOCKFISH_PATH")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearCoachEnv(t)
	t.Setenv("STOCKFISH_PATH", "/opt/engines/stockfish")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StockfishPath != "/opt/engines/stockfish" {
		t.Fatalf("path = %q", cfg.StockfishPath)
	}
	if cfg.AnalysisPreset != "standard" {
		t.Fatalf("preset = %q, want standard", cfg.AnalysisPreset)
	}
	if cfg.TopMoves != 3 || cfg.MoveBudgetSec != 8 || cfg.PVLimit != 5 {
		t.Fatalf("defaults = %d/%d/%d, want 3/8/5", cfg.TopMoves, cfg.MoveBudgetSec, cfg.PVLimit)
	}
}

func TestLoadReadsEnvironmentKeys(t *testing.T) {
	clearCoachEnv(t)
	t.Setenv("STOCKFISH_PATH", "/opt/engines/stockfish")
	t.Setenv("COACH_PRESET", "deep")
	t.Setenv("COACH_TOP_MOVES", "5")
	t.Setenv("COACH_MOVE_BUDGET_SEC", "12")
	t.Setenv("COACH_PV_LIMIT", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AnalysisPreset != "deep" {
		t.Fatalf("preset = %q, want deep", cfg.AnalysisPreset)
	}
	if cfg.TopMoves != 5 || cfg.MoveBudgetSec != 12 || cfg.PVLimit != 7 {
		t.Fatalf("overrides = %d/%d/%d, want 5/12/7", cfg.TopMoves, cfg.MoveBudgetSec, cfg.PVLimit)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	clearCoachEnv(t)
	t.Setenv("STOCKFISH_PATH", "/opt/engines/stockfish")
	t.Setenv("COACH_TOP_MOVES", "many")
	t.Setenv("COACH_MOVE_BUDGET_SEC", "-2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TopMoves != 3 || cfg.MoveBudgetSec != 8 {
		t.Fatalf("values = %d/%d, want defaults 3/8", cfg.TopMoves, cfg.MoveBudgetSec)
	}
}
