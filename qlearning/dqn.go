package qlearning

import (
	"fmt"
	"math"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

const (
	// InputSize matches the environment's observation vector.
	InputSize = 24
	// OutputSize is one value estimate per relative action.
	OutputSize = 3

	DropoutRate  = 0.2
	GradientClip = 1.0
)

// paramNames fixes the parameter order for graph construction, the solver
// cache and checkpoints.
var paramNames = []string{"w1", "b1", "w2", "b2", "w3", "b3", "w4", "b4"}

// DQN è la rete neurale: 24 -> hidden -> hidden -> hidden/2 -> 3 with ReLU
// nonlinearities and dropout after the first two hidden stages.
//
// Parameters live in plain tensors; every forward or training pass builds a
// fresh expression graph whose nodes share those tensors as backing values,
// so updates made by the solver persist across passes.
type DQN struct {
	hidden  int
	weights map[string]*tensor.Dense
	solver  gorgonia.Solver
}

// NewDQN crea una nuova rete DQN with Glorot-uniform weights and zero biases.
func NewDQN(hidden int, learningRate float64) *DQN {
	dims := layerDims(hidden)
	weights := make(map[string]*tensor.Dense, len(paramNames))
	for i, d := range dims {
		weights[fmt.Sprintf("w%d", i+1)] = glorotMatrix(d[0], d[1])
		weights[fmt.Sprintf("b%d", i+1)] = tensor.New(
			tensor.WithShape(1, d[1]),
			tensor.WithBacking(make([]float64, d[1])))
	}

	return &DQN{
		hidden:  hidden,
		weights: weights,
		solver:  gorgonia.NewAdamSolver(gorgonia.WithLearnRate(learningRate)),
	}
}

func layerDims(hidden int) [4][2]int {
	return [4][2]int{
		{InputSize, hidden},
		{hidden, hidden},
		{hidden, hidden / 2},
		{hidden / 2, OutputSize},
	}
}

// glorotMatrix allocates a rows x cols tensor initialized the way gorgonia
// initializes learnable matrices.
func glorotMatrix(rows, cols int) *tensor.Dense {
	g := gorgonia.NewGraph()
	n := gorgonia.NewMatrix(g,
		tensor.Float64,
		gorgonia.WithShape(rows, cols),
		gorgonia.WithInit(gorgonia.GlorotU(1.0)))
	return n.Value().(*tensor.Dense)
}

// paramNodes binds the parameter tensors into graph g, in fixed order.
func (n *DQN) paramNodes(g *gorgonia.ExprGraph) (gorgonia.Nodes, map[string]*gorgonia.Node) {
	ordered := make(gorgonia.Nodes, 0, len(paramNames))
	byName := make(map[string]*gorgonia.Node, len(paramNames))
	for _, name := range paramNames {
		node := gorgonia.NodeFromAny(g, n.weights[name], gorgonia.WithName(name))
		ordered = append(ordered, node)
		byName[name] = node
	}
	return ordered, byName
}

// buildForward wires the feed-forward stack on top of the input node. With
// train set, the dropout layers are active; inference passes skip them.
func buildForward(input *gorgonia.Node, params map[string]*gorgonia.Node, train bool) (*gorgonia.Node, error) {
	x := input
	for layer := 1; layer <= 4; layer++ {
		w := params[fmt.Sprintf("w%d", layer)]
		b := params[fmt.Sprintf("b%d", layer)]

		xw, err := gorgonia.Mul(x, w)
		if err != nil {
			return nil, fmt.Errorf("layer %d matmul: %w", layer, err)
		}
		h, err := gorgonia.BroadcastAdd(xw, b, nil, []byte{0})
		if err != nil {
			return nil, fmt.Errorf("layer %d bias: %w", layer, err)
		}

		if layer < 4 {
			if h, err = gorgonia.Rectify(h); err != nil {
				return nil, fmt.Errorf("layer %d relu: %w", layer, err)
			}
		}
		if train && layer <= 2 {
			if h, err = gorgonia.Dropout(h, DropoutRate); err != nil {
				return nil, fmt.Errorf("layer %d dropout: %w", layer, err)
			}
		}
		x = h
	}
	return x, nil
}

// Predict esegue un forward pass in inference mode and returns the action
// values for a batch of states, flattened row-major.
func (n *DQN) Predict(states []float64, batchSize int) ([]float64, error) {
	if len(states) != batchSize*InputSize {
		return nil, fmt.Errorf("predict: %d inputs do not form %d states", len(states), batchSize)
	}

	g := gorgonia.NewGraph()
	_, params := n.paramNodes(g)

	backing := make([]float64, len(states))
	copy(backing, states)
	input := gorgonia.NodeFromAny(g,
		tensor.New(tensor.WithBacking(backing), tensor.WithShape(batchSize, InputSize)),
		gorgonia.WithName("states"))

	pred, err := buildForward(input, params, false)
	if err != nil {
		return nil, err
	}

	vm := gorgonia.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return nil, fmt.Errorf("forward pass error: %w", err)
	}

	out := make([]float64, batchSize*OutputSize)
	copy(out, pred.Value().Data().([]float64))
	return out, nil
}

// TrainBatch runs one optimization step: a training-mode forward pass, mean
// squared error between the taken-action estimates and the provided targets,
// backprop with global gradient-norm clipping, and an Adam update. It
// returns the batch loss.
func (n *DQN) TrainBatch(states []float64, actions []int, targets []float64, batchSize int) (float64, error) {
	g := gorgonia.NewGraph()
	ordered, params := n.paramNodes(g)

	backing := make([]float64, len(states))
	copy(backing, states)
	input := gorgonia.NodeFromAny(g,
		tensor.New(tensor.WithBacking(backing), tensor.WithShape(batchSize, InputSize)),
		gorgonia.WithName("states"))

	pred, err := buildForward(input, params, true)
	if err != nil {
		return 0, err
	}

	// Select the Q-value of the taken action per row via a one-hot mask.
	maskData := make([]float64, batchSize*OutputSize)
	for i, a := range actions {
		maskData[i*OutputSize+a] = 1
	}
	mask := gorgonia.NodeFromAny(g,
		tensor.New(tensor.WithBacking(maskData), tensor.WithShape(batchSize, OutputSize)),
		gorgonia.WithName("actionMask"))

	targetData := make([]float64, len(targets))
	copy(targetData, targets)
	target := gorgonia.NodeFromAny(g,
		tensor.New(tensor.WithBacking(targetData), tensor.WithShape(batchSize)),
		gorgonia.WithName("targets"))

	masked, err := gorgonia.HadamardProd(pred, mask)
	if err != nil {
		return 0, fmt.Errorf("action mask: %w", err)
	}
	qTaken, err := gorgonia.Sum(masked, 1)
	if err != nil {
		return 0, fmt.Errorf("action gather: %w", err)
	}

	diff, err := gorgonia.Sub(qTaken, target)
	if err != nil {
		return 0, fmt.Errorf("td error: %w", err)
	}
	sq, err := gorgonia.Square(diff)
	if err != nil {
		return 0, fmt.Errorf("squared error: %w", err)
	}
	loss, err := gorgonia.Mean(sq)
	if err != nil {
		return 0, fmt.Errorf("mse: %w", err)
	}

	if _, err := gorgonia.Grad(loss, ordered...); err != nil {
		return 0, fmt.Errorf("grad: %w", err)
	}

	vm := gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(ordered...))
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return 0, fmt.Errorf("backprop: %w", err)
	}

	if err := clipGradNorm(ordered, GradientClip); err != nil {
		return 0, err
	}
	if err := n.solver.Step(gorgonia.NodesToValueGrads(ordered)); err != nil {
		return 0, fmt.Errorf("solver step: %w", err)
	}

	return loss.Value().Data().(float64), nil
}

// clipGradNorm rescales all gradients in place so their global L2 norm does
// not exceed maxNorm.
func clipGradNorm(params gorgonia.Nodes, maxNorm float64) error {
	var sumSq float64
	grads := make([][]float64, 0, len(params))
	for _, p := range params {
		grad, err := p.Grad()
		if err != nil {
			return fmt.Errorf("missing gradient for %s: %w", p.Name(), err)
		}
		data := grad.Data().([]float64)
		grads = append(grads, data)
		for _, v := range data {
			sumSq += v * v
		}
	}

	norm := math.Sqrt(sumSq)
	if norm <= maxNorm {
		return nil
	}
	scale := maxNorm / norm
	for _, data := range grads {
		for i := range data {
			data[i] *= scale
		}
	}
	return nil
}

// CopyFrom overwrites this network's parameters with src's.
func (n *DQN) CopyFrom(src *DQN) {
	for _, name := range paramNames {
		tensor.Copy(n.weights[name], src.weights[name])
	}
}

// Weights exposes the parameter tensors keyed by name, for checkpointing.
func (n *DQN) Weights() map[string]*tensor.Dense {
	return n.weights
}
