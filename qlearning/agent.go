package qlearning

import (
	"fmt"
	"math/rand"

	"snake-dqn/config"
)

// Agent rappresenta l'agente Double-DQN: an online network trained on
// replayed batches and a target network that trails it through soft updates.
type Agent struct {
	online *DQN
	target *DQN
	replay *ReplayBuffer

	Gamma        float64
	Epsilon      float64
	MinEpsilon   float64
	EpsilonDecay float64
	Tau          float64
	BatchSize    int
	UpdateEvery  int
	SyncEvery    int

	// StepCount counts action selections; LearnCount counts optimization
	// steps actually taken.
	StepCount  int
	LearnCount int
}

// NewAgent crea un nuovo agente DQN with the target network initialized to
// an exact copy of the online network.
func NewAgent(cfg config.AgentConfig) *Agent {
	online := NewDQN(cfg.HiddenSize, cfg.LearningRate)
	target := NewDQN(cfg.HiddenSize, cfg.LearningRate)
	target.CopyFrom(online)

	return &Agent{
		online:       online,
		target:       target,
		replay:       NewReplayBuffer(cfg.ReplayCapacity),
		Gamma:        cfg.Gamma,
		Epsilon:      cfg.Epsilon,
		MinEpsilon:   cfg.EpsilonMin,
		EpsilonDecay: cfg.EpsilonDecay,
		Tau:          cfg.Tau,
		BatchSize:    cfg.BatchSize,
		UpdateEvery:  cfg.UpdateEvery,
		SyncEvery:    cfg.SyncEvery,
	}
}

// SelectAction seleziona un'azione usando la policy epsilon-greedy: a random
// action with probability epsilon, otherwise the argmax of the online
// network's inference-mode estimates, ties broken by the first index.
func (a *Agent) SelectAction(state []float64) int {
	a.StepCount++

	if rand.Float64() < a.Epsilon {
		return rand.Intn(OutputSize)
	}

	qValues, err := a.online.Predict(state, 1)
	if err != nil {
		// Degrade to exploration rather than abort an episode.
		return rand.Intn(OutputSize)
	}
	return argmax(qValues)
}

// Remember stores a transition in the replay buffer.
func (a *Agent) Remember(state []float64, action int, reward float64, nextState []float64, done bool) {
	a.replay.Add(Transition{
		State:     state,
		Action:    action,
		Reward:    reward,
		NextState: nextState,
		Done:      done,
	})
}

// ReplayLen returns the number of buffered transitions.
func (a *Agent) ReplayLen() int {
	return a.replay.Len()
}

// Learn samples a batch and runs one Double-DQN optimization step. It is a
// no-op until the buffer holds a full batch. The boolean reports whether a
// step was taken.
func (a *Agent) Learn() (float64, bool, error) {
	if a.replay.Len() < a.BatchSize {
		return 0, false, nil
	}

	batch := a.replay.Sample(a.BatchSize)

	states := make([]float64, 0, len(batch)*InputSize)
	nextStates := make([]float64, 0, len(batch)*InputSize)
	actions := make([]int, 0, len(batch))
	rewards := make([]float64, 0, len(batch))
	dones := make([]bool, 0, len(batch))
	for _, t := range batch {
		states = append(states, t.State...)
		nextStates = append(nextStates, t.NextState...)
		actions = append(actions, t.Action)
		rewards = append(rewards, t.Reward)
		dones = append(dones, t.Done)
	}

	// Double DQN: the online network picks the next action, the target
	// network evaluates it.
	nextOnline, err := a.online.Predict(nextStates, len(batch))
	if err != nil {
		return 0, false, fmt.Errorf("next-state online pass: %w", err)
	}
	nextTarget, err := a.target.Predict(nextStates, len(batch))
	if err != nil {
		return 0, false, fmt.Errorf("next-state target pass: %w", err)
	}

	targets := doubleDQNTargets(rewards, dones, nextOnline, nextTarget, a.Gamma)

	loss, err := a.online.TrainBatch(states, actions, targets, len(batch))
	if err != nil {
		return 0, false, fmt.Errorf("train batch: %w", err)
	}
	a.LearnCount++

	if a.StepCount%a.SyncEvery == 0 {
		a.softUpdate(a.Tau)
	}

	if a.Epsilon > a.MinEpsilon {
		a.Epsilon *= a.EpsilonDecay
		if a.Epsilon < a.MinEpsilon {
			a.Epsilon = a.MinEpsilon
		}
	}

	return loss, true, nil
}

// doubleDQNTargets computes one target value per transition:
// reward + gamma * targetQ(nextState, argmax onlineQ(nextState)), with the
// bootstrap term dropped on terminal transitions.
func doubleDQNTargets(rewards []float64, dones []bool, nextOnline, nextTarget []float64, gamma float64) []float64 {
	targets := make([]float64, len(rewards))
	for i := range rewards {
		if dones[i] {
			targets[i] = rewards[i]
			continue
		}
		best := argmax(nextOnline[i*OutputSize : (i+1)*OutputSize])
		targets[i] = rewards[i] + gamma*nextTarget[i*OutputSize+best]
	}
	return targets
}

// softUpdate esegue un soft update dei pesi:
// target <- tau*online + (1-tau)*target, elementwise per parameter tensor.
func (a *Agent) softUpdate(tau float64) {
	for _, name := range paramNames {
		targetData := a.target.weights[name].Data().([]float64)
		onlineData := a.online.weights[name].Data().([]float64)
		for i := range targetData {
			targetData[i] = tau*onlineData[i] + (1-tau)*targetData[i]
		}
	}
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
