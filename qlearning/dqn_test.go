package qlearning

import (
	"math"
	"testing"
)

func TestPredictShape(t *testing.T) {
	n := NewDQN(8, 0.001)

	out, err := n.Predict(make([]float64, InputSize), 1)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(out) != OutputSize {
		t.Fatalf("single-state prediction has %d values, want %d", len(out), OutputSize)
	}

	out, err = n.Predict(make([]float64, 5*InputSize), 5)
	if err != nil {
		t.Fatalf("batch Predict: %v", err)
	}
	if len(out) != 5*OutputSize {
		t.Fatalf("batch prediction has %d values, want %d", len(out), 5*OutputSize)
	}
}

func TestPredictRejectsMalformedInput(t *testing.T) {
	n := NewDQN(8, 0.001)
	if _, err := n.Predict(make([]float64, InputSize-1), 1); err == nil {
		t.Fatal("expected error for a truncated state vector")
	}
}

func TestPredictIsDeterministic(t *testing.T) {
	// Dropout must be inactive outside training passes.
	n := NewDQN(8, 0.001)
	state := make([]float64, InputSize)
	for i := range state {
		state[i] = float64(i) / InputSize
	}

	a, err := n.Predict(state, 1)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	b, err := n.Predict(state, 1)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("inference output %d changed between passes: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestTrainBatchUpdatesWeights(t *testing.T) {
	n := NewDQN(8, 0.01)

	before := make([]float64, len(n.weights["w1"].Data().([]float64)))
	copy(before, n.weights["w1"].Data().([]float64))

	states := make([]float64, 4*InputSize)
	for i := range states {
		states[i] = float64(i%InputSize) / InputSize
	}
	actions := []int{0, 1, 2, 0}
	targets := []float64{10, -5, 3, 1}

	loss, err := n.TrainBatch(states, actions, targets, 4)
	if err != nil {
		t.Fatalf("TrainBatch: %v", err)
	}
	if math.IsNaN(loss) || math.IsInf(loss, 0) || loss < 0 {
		t.Fatalf("loss = %v, want a finite non-negative value", loss)
	}

	after := n.weights["w1"].Data().([]float64)
	changed := false
	for i := range after {
		if after[i] != before[i] {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatal("optimization step left the first-layer weights untouched")
	}
}

func TestCopyFrom(t *testing.T) {
	a := NewDQN(8, 0.001)
	b := NewDQN(8, 0.001)
	b.CopyFrom(a)

	for _, name := range paramNames {
		src := a.weights[name].Data().([]float64)
		dst := b.weights[name].Data().([]float64)
		for i := range src {
			if src[i] != dst[i] {
				t.Fatalf("%s[%d] = %v after copy, want %v", name, i, dst[i], src[i])
			}
		}
	}
}
