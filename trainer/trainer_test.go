package trainer

import (
	"os"
	"path/filepath"
	"testing"

	"snake-dqn/config"
)

// smokeConfig shrinks everything so a full training run stays fast.
func smokeConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Game.Width = 8
	cfg.Game.Height = 8
	cfg.Game.Seed = 11
	cfg.Agent.HiddenSize = 8
	cfg.Agent.BatchSize = 8
	cfg.Agent.ReplayCapacity = 256
	cfg.Train.Episodes = 3
	cfg.Train.LogEvery = 100
	cfg.Train.CheckpointEvery = 0
	cfg.Train.CheckpointDir = filepath.Join(t.TempDir(), "models")
	cfg.Train.PlotDir = filepath.Join(t.TempDir(), "plots")
	return cfg
}

func TestTrainSmoke(t *testing.T) {
	if testing.Short() {
		t.Skip("training smoke test")
	}
	cfg := smokeConfig(t)

	history, err := Train(cfg, nil)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if history.Episodes() != cfg.Train.Episodes {
		t.Fatalf("completed %d episodes, want %d", history.Episodes(), cfg.Train.Episodes)
	}
	if len(history.EpisodeLengths()) != cfg.Train.Episodes {
		t.Fatalf("recorded %d episode lengths, want %d", len(history.EpisodeLengths()), cfg.Train.Episodes)
	}

	// Epsilon history must be non-increasing.
	eps := history.Epsilons()
	for i := 1; i < len(eps); i++ {
		if eps[i] > eps[i-1] {
			t.Fatalf("epsilon increased between episodes: %v -> %v", eps[i-1], eps[i])
		}
	}

	if _, err := os.Stat(filepath.Join(cfg.Train.CheckpointDir, "final_model.gob")); err != nil {
		t.Fatalf("final model missing: %v", err)
	}
}

func TestEvaluateRequiresCheckpoint(t *testing.T) {
	cfg := smokeConfig(t)
	if _, err := Evaluate(cfg, 1, filepath.Join(t.TempDir(), "missing.gob"), nil); err == nil {
		t.Fatal("expected error for a missing checkpoint")
	}
}

func TestEvaluateRunsFromCheckpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("training smoke test")
	}
	cfg := smokeConfig(t)
	cfg.Train.Episodes = 1
	if _, err := Train(cfg, nil); err != nil {
		t.Fatalf("Train: %v", err)
	}

	scores, err := Evaluate(cfg, 2, filepath.Join(cfg.Train.CheckpointDir, "final_model.gob"), nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("collected %d scores, want 2", len(scores))
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]int{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Fatalf("mean = %v, want 5", mean)
	}
	if std != 2 {
		t.Fatalf("std = %v, want 2", std)
	}
	if m, s := meanStd(nil); m != 0 || s != 0 {
		t.Fatalf("empty meanStd = (%v, %v), want (0, 0)", m, s)
	}
}
