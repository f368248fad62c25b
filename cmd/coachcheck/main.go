// coachcheck is a deployment diagnostic: it verifies that the configured
// analysis engine launches and answers, runs one bounded position analysis,
// and prints the resulting facts as JSON.
//
//	STOCKFISH_PATH=/usr/bin/stockfish coachcheck [FEN]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	appcfg "github.com/park285/chess-coach-core/internal/config"
	"github.com/park285/chess-coach-core/internal/coach"
	"github.com/park285/chess-coach-core/internal/engine"
	"github.com/park285/chess-coach-core/internal/obslog"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	presets := engine.NewPresetTable()
	if cfg.PresetsFile != "" {
		if err := presets.LoadFile(cfg.PresetsFile); err != nil {
			log.Fatalf("preset file error: %v", err)
		}
	}
	preset, err := presets.Get(cfg.AnalysisPreset)
	if err != nil {
		log.Fatalf("preset error: %v", err)
	}

	client, err := engine.NewClient(engine.Config{
		BinaryPath: cfg.StockfishPath,
		Preset:     preset,
		Logger:     obslog.L(),
	})
	if err != nil {
		log.Fatalf("engine client error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Start(ctx); err != nil {
		log.Fatalf("engine start error: %v", err)
	}
	defer client.Stop()

	svc := coach.NewService(client, coach.Config{
		TopMoves: cfg.TopMoves,
		Budget:   time.Duration(cfg.MoveBudgetSec) * time.Second,
		PVLimit:  cfg.PVLimit,
	}, obslog.L())

	if len(os.Args) > 1 {
		if err := svc.LoadPosition(os.Args[1]); err != nil {
			log.Fatalf("position error: %v", err)
		}
	}

	facts, err := svc.AnalyzePosition(ctx)
	if err != nil {
		log.Fatalf("analysis error: %v", err)
	}

	out, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		log.Fatalf("encode error: %v", err)
	}
	fmt.Println(string(out))
}
