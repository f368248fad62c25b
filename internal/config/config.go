package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	StockfishPath string

	AnalysisPreset string
	PresetsFile    string

	TopMoves      int
	MoveBudgetSec int
	PVLimit       int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		AnalysisPreset: "standard",
		TopMoves:       3,
		MoveBudgetSec:  8,
		PVLimit:        5,
	}

	cfg.StockfishPath = strings.TrimSpace(os.Getenv("STOCKFISH_PATH"))
	cfg.PresetsFile = strings.TrimSpace(os.Getenv("COACH_PRESETS_FILE"))

	if v := strings.TrimSpace(os.Getenv("COACH_PRESET")); v != "" {
		cfg.AnalysisPreset = v
	}
	if v := strings.TrimSpace(os.Getenv("COACH_TOP_MOVES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopMoves = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("COACH_MOVE_BUDGET_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MoveBudgetSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("COACH_PV_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PVLimit = n
		}
	}

	if cfg.StockfishPath == "" {
		return nil, errors.New("STOCKFISH_PATH is required")
	}

	return cfg, nil
}
