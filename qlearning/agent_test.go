package qlearning

import (
	"path/filepath"
	"testing"

	"snake-dqn/config"
)

// testAgentConfig keeps the network small so tests stay fast.
func testAgentConfig() config.AgentConfig {
	cfg := config.Default().Agent
	cfg.HiddenSize = 8
	cfg.BatchSize = 4
	cfg.ReplayCapacity = 64
	return cfg
}

func TestDoubleDQNTargetsTerminal(t *testing.T) {
	rewards := []float64{-100, -50, 3.5}
	dones := []bool{true, true, true}
	nextOnline := make([]float64, len(rewards)*OutputSize)
	nextTarget := make([]float64, len(rewards)*OutputSize)
	for i := range nextTarget {
		nextTarget[i] = 1000 // must not leak into terminal targets
	}

	targets := doubleDQNTargets(rewards, dones, nextOnline, nextTarget, 0.99)
	for i, r := range rewards {
		if targets[i] != r {
			t.Fatalf("terminal target[%d] = %v, want reward %v", i, targets[i], r)
		}
	}
}

func TestDoubleDQNTargetsBootstrap(t *testing.T) {
	rewards := []float64{1}
	dones := []bool{false}
	// Online network prefers action 2; its value under the target network
	// is what must be bootstrapped, not the target network's own maximum.
	nextOnline := []float64{0.1, 0.2, 0.9}
	nextTarget := []float64{7, 9, 5}

	targets := doubleDQNTargets(rewards, dones, nextOnline, nextTarget, 0.5)
	want := 1 + 0.5*5.0
	if targets[0] != want {
		t.Fatalf("bootstrap target = %v, want %v", targets[0], want)
	}
}

func TestDoubleDQNTargetTieBreak(t *testing.T) {
	nextOnline := []float64{0.3, 0.3, 0.3}
	nextTarget := []float64{2, 4, 6}
	targets := doubleDQNTargets([]float64{0}, []bool{false}, nextOnline, nextTarget, 1.0)
	if targets[0] != 2 {
		t.Fatalf("tie broken to %v, want first-index value 2", targets[0])
	}
}

func TestSoftUpdateFullCopy(t *testing.T) {
	a := NewAgent(testAgentConfig())

	// Desynchronize the two networks first.
	for _, name := range paramNames {
		data := a.online.weights[name].Data().([]float64)
		for i := range data {
			data[i] += 0.5
		}
	}

	a.softUpdate(1.0)
	for _, name := range paramNames {
		online := a.online.weights[name].Data().([]float64)
		target := a.target.weights[name].Data().([]float64)
		for i := range online {
			if target[i] != online[i] {
				t.Fatalf("tau=1.0: %s[%d] = %v, want %v", name, i, target[i], online[i])
			}
		}
	}
}

func TestSoftUpdateNoop(t *testing.T) {
	a := NewAgent(testAgentConfig())

	before := make(map[string][]float64)
	for _, name := range paramNames {
		data := a.target.weights[name].Data().([]float64)
		snapshot := make([]float64, len(data))
		copy(snapshot, data)
		before[name] = snapshot

		online := a.online.weights[name].Data().([]float64)
		for i := range online {
			online[i] += 0.5
		}
	}

	a.softUpdate(0.0)
	for _, name := range paramNames {
		target := a.target.weights[name].Data().([]float64)
		for i := range target {
			if target[i] != before[name][i] {
				t.Fatalf("tau=0.0: %s[%d] changed from %v to %v", name, i, before[name][i], target[i])
			}
		}
	}
}

func TestLearnRequiresFullBatch(t *testing.T) {
	a := NewAgent(testAgentConfig())
	a.Remember(make([]float64, InputSize), 0, 1, make([]float64, InputSize), false)

	if _, learned, err := a.Learn(); err != nil || learned {
		t.Fatalf("Learn on an underfilled buffer returned (learned=%v, err=%v), want no-op", learned, err)
	}
	if a.Epsilon != testAgentConfig().Epsilon {
		t.Fatalf("epsilon decayed without a learning step: %v", a.Epsilon)
	}
}

func TestLearnDecaysEpsilonMonotonically(t *testing.T) {
	cfg := testAgentConfig()
	a := NewAgent(cfg)

	for i := 0; i < cfg.BatchSize*2; i++ {
		state := make([]float64, InputSize)
		state[i%InputSize] = 1
		a.Remember(state, i%OutputSize, float64(i), make([]float64, InputSize), i%5 == 0)
	}

	prev := a.Epsilon
	for i := 0; i < 5; i++ {
		a.StepCount++
		loss, learned, err := a.Learn()
		if err != nil {
			t.Fatalf("Learn: %v", err)
		}
		if !learned {
			t.Fatal("Learn skipped despite a full buffer")
		}
		if loss < 0 {
			t.Fatalf("negative MSE loss %v", loss)
		}
		if a.Epsilon > prev {
			t.Fatalf("epsilon increased from %v to %v", prev, a.Epsilon)
		}
		if a.Epsilon < a.MinEpsilon {
			t.Fatalf("epsilon %v fell below the floor %v", a.Epsilon, a.MinEpsilon)
		}
		prev = a.Epsilon
	}
	if a.LearnCount != 5 {
		t.Fatalf("LearnCount = %d, want 5", a.LearnCount)
	}
}

func TestSelectActionCountsSteps(t *testing.T) {
	a := NewAgent(testAgentConfig())
	state := make([]float64, InputSize)
	for i := 0; i < 10; i++ {
		action := a.SelectAction(state)
		if action < 0 || action >= OutputSize {
			t.Fatalf("action %d out of range", action)
		}
	}
	if a.StepCount != 10 {
		t.Fatalf("StepCount = %d after 10 selections, want 10", a.StepCount)
	}
}

func TestGreedyActionIsArgmax(t *testing.T) {
	if got := argmax([]float64{0.5, 2.0, 1.0}); got != 1 {
		t.Fatalf("argmax = %d, want 1", got)
	}
	// First-occurring index wins ties.
	if got := argmax([]float64{3.0, 3.0, 3.0}); got != 0 {
		t.Fatalf("tied argmax = %d, want 0", got)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")

	src := NewAgent(testAgentConfig())
	src.Epsilon = 0.42
	src.StepCount = 1234
	src.LearnCount = 99

	scores := []int{1, 2, 5}
	losses := []float64{0.7, 0.3}
	if err := src.Save(path, scores, losses); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst := NewAgent(testAgentConfig())
	ck, ok, err := dst.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("Load reported a missing checkpoint for an existing file")
	}

	if dst.Epsilon != 0.42 {
		t.Fatalf("restored epsilon = %v, want 0.42", dst.Epsilon)
	}
	if dst.StepCount != 1234 || dst.LearnCount != 99 {
		t.Fatalf("restored counters = (%d, %d), want (1234, 99)", dst.StepCount, dst.LearnCount)
	}
	if len(ck.Scores) != len(scores) || ck.Scores[2] != 5 {
		t.Fatalf("restored scores = %v, want %v", ck.Scores, scores)
	}
	if len(ck.Losses) != len(losses) {
		t.Fatalf("restored losses = %v, want %v", ck.Losses, losses)
	}

	for _, name := range paramNames {
		want := src.online.weights[name].Data().([]float64)
		got := dst.online.weights[name].Data().([]float64)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("online %s[%d] = %v, want %v", name, i, got[i], want[i])
			}
		}
	}
}

func TestLoadMissingCheckpoint(t *testing.T) {
	a := NewAgent(testAgentConfig())
	ck, ok, err := a.Load(filepath.Join(t.TempDir(), "nope.gob"))
	if err != nil {
		t.Fatalf("missing checkpoint should not be an error, got %v", err)
	}
	if ok || ck != nil {
		t.Fatal("missing checkpoint reported as loaded")
	}
}
