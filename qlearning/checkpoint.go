package qlearning

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"gorgonia.org/tensor"
)

func init() {
	gob.Register(&tensor.Dense{})
	gob.Register(map[string]*tensor.Dense{})
}

// Checkpoint bundles everything needed to resume training as one unit. The
// Adam moment estimates live inside gorgonia's solver and cannot be
// extracted, so the solver is rebuilt from its hyperparameters on load; the
// step counters carry the schedule across restarts.
type Checkpoint struct {
	Online  map[string]*tensor.Dense
	Target  map[string]*tensor.Dense
	Epsilon float64

	StepCount  int
	LearnCount int

	Scores []int
	Losses []float64
}

// Save writes a checkpoint atomically: the gob is staged to a temp file in
// the same directory and renamed over the destination.
func (a *Agent) Save(path string, scores []int, losses []float64) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to stage checkpoint: %w", err)
	}
	defer os.Remove(tmp.Name())

	ck := Checkpoint{
		Online:     a.online.Weights(),
		Target:     a.target.Weights(),
		Epsilon:    a.Epsilon,
		StepCount:  a.StepCount,
		LearnCount: a.LearnCount,
		Scores:     scores,
		Losses:     losses,
	}

	if err := gob.NewEncoder(tmp).Encode(ck); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}
	return nil
}

// Load restores the agent from a checkpoint file. A missing file is not an
// error: it returns (nil, false, nil) and the caller decides whether to
// proceed fresh or abort. Absent fields load forward-compatibly: epsilon
// falls back to the exploration floor and the histories to empty.
func (a *Agent) Load(path string) (*Checkpoint, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer f.Close()

	var ck Checkpoint
	if err := gob.NewDecoder(f).Decode(&ck); err != nil {
		return nil, false, fmt.Errorf("failed to decode checkpoint: %w", err)
	}

	restoreWeights(a.online, ck.Online)
	if len(ck.Target) > 0 {
		restoreWeights(a.target, ck.Target)
	} else {
		a.target.CopyFrom(a.online)
	}

	if ck.Epsilon > 0 {
		a.Epsilon = ck.Epsilon
	} else {
		a.Epsilon = a.MinEpsilon
	}
	a.StepCount = ck.StepCount
	a.LearnCount = ck.LearnCount

	if ck.Scores == nil {
		ck.Scores = []int{}
	}
	if ck.Losses == nil {
		ck.Losses = []float64{}
	}
	return &ck, true, nil
}

func restoreWeights(net *DQN, saved map[string]*tensor.Dense) {
	for name, w := range saved {
		if dst, ok := net.weights[name]; ok {
			tensor.Copy(dst, w)
		}
	}
}
