package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewClientRequiresBinary(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("empty path error = %v, want ErrEngineUnavailable", err)
	}
	missing := filepath.Join(t.TempDir(), "no-such-engine")
	if _, err := NewClient(Config{BinaryPath: missing}); !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("missing binary error = %v, want ErrEngineUnavailable", err)
	}
}

func TestNewClientDefaultsPreset(t *testing.T) {
	bin := writeStubBinary(t)
	client, err := NewClient(Config{BinaryPath: bin})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.preset.Name != DefaultPreset().Name {
		t.Fatalf("preset = %q, want default %q", client.preset.Name, DefaultPreset().Name)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	bin := writeStubBinary(t)
	client, err := NewClient(Config{BinaryPath: bin})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx := context.Background()
	if _, err := client.Analyze(ctx, "startpos", 0, time.Second); !errors.Is(err, ErrProtocol) {
		t.Fatalf("topN 0 error = %v, want ErrProtocol", err)
	}
	if _, err := client.Analyze(ctx, "startpos", 3, 0); !errors.Is(err, ErrProtocol) {
		t.Fatalf("zero budget error = %v, want ErrProtocol", err)
	}
	// Not started yet.
	if _, err := client.Analyze(ctx, "startpos", 3, time.Second); !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("unstarted error = %v, want ErrEngineUnavailable", err)
	}
}

func TestStopBeforeStartIsNoop(t *testing.T) {
	bin := writeStubBinary(t)
	client, err := NewClient(Config{BinaryPath: bin})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := client.Stop(); err != nil {
		t.Fatalf("Stop before Start: %v", err)
	}
	if err := client.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

// writeStubBinary creates a file that satisfies the existence check. Tests that
// need real protocol traffic live in the uci package against scripted pipes.
func writeStubBinary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine-stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write stub binary: %v", err)
	}
	return path
}
