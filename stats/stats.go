// Package stats collects training histories and turns them into logs and
// progress charts. All series are append-only; consumers get copies.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// rollingWindow is the episode count behind the moving-average score.
const rollingWindow = 100

// Training accumulates per-episode and per-update series.
type Training struct {
	scores         []int
	avgScores      []float64
	losses         []float64
	epsilons       []float64
	episodeLengths []int
	bestAvg        float64
	started        time.Time
}

// NewTraining creates an empty history set.
func NewTraining() *Training {
	return &Training{
		bestAvg: -1 << 30,
		started: time.Now(),
	}
}

// AddEpisode records the outcome of one episode and returns the updated
// rolling-average score.
func (t *Training) AddEpisode(score, steps int, epsilon float64) float64 {
	t.scores = append(t.scores, score)
	t.episodeLengths = append(t.episodeLengths, steps)
	t.epsilons = append(t.epsilons, epsilon)

	window := len(t.scores)
	if window > rollingWindow {
		window = rollingWindow
	}
	sum := 0
	for _, s := range t.scores[len(t.scores)-window:] {
		sum += s
	}
	avg := float64(sum) / float64(window)
	t.avgScores = append(t.avgScores, avg)
	if avg > t.bestAvg {
		t.bestAvg = avg
	}
	return avg
}

// AddLoss records the loss of one optimization step.
func (t *Training) AddLoss(loss float64) {
	t.losses = append(t.losses, loss)
}

// SeedScores preloads the score history, e.g. when resuming from a
// checkpoint, rebuilding the rolling averages as it goes.
func (t *Training) SeedScores(scores []int, losses []float64) {
	for _, s := range scores {
		t.AddEpisode(s, 0, 0)
	}
	// Drop the placeholder series the replay of AddEpisode produced.
	t.episodeLengths = t.episodeLengths[:0]
	t.epsilons = t.epsilons[:0]
	t.losses = append(t.losses, losses...)
}

// Episodes returns the number of recorded episodes.
func (t *Training) Episodes() int { return len(t.scores) }

// BestAvg returns the best rolling-average score seen so far.
func (t *Training) BestAvg() float64 { return t.bestAvg }

// RecentLossAvg averages the most recent n losses, or everything if fewer
// were recorded. It returns 0 before the first optimization step.
func (t *Training) RecentLossAvg(n int) float64 {
	if len(t.losses) == 0 {
		return 0
	}
	if n > len(t.losses) {
		n = len(t.losses)
	}
	sum := 0.0
	for _, l := range t.losses[len(t.losses)-n:] {
		sum += l
	}
	return sum / float64(n)
}

// Scores returns a copy of the per-episode scores.
func (t *Training) Scores() []int { return append([]int(nil), t.scores...) }

// AvgScores returns a copy of the rolling-average series.
func (t *Training) AvgScores() []float64 { return append([]float64(nil), t.avgScores...) }

// Losses returns a copy of the per-update losses.
func (t *Training) Losses() []float64 { return append([]float64(nil), t.losses...) }

// Epsilons returns a copy of the per-episode exploration rates.
func (t *Training) Epsilons() []float64 { return append([]float64(nil), t.epsilons...) }

// EpisodeLengths returns a copy of the per-episode step counts.
func (t *Training) EpisodeLengths() []int { return append([]int(nil), t.episodeLengths...) }

// trainingLog is the on-disk JSON layout.
type trainingLog struct {
	Episode        int       `json:"episode"`
	Scores         []int     `json:"scores"`
	AvgScores      []float64 `json:"avgScores"`
	Losses         []float64 `json:"losses"`
	Epsilons       []float64 `json:"epsilons"`
	EpisodeLengths []int     `json:"episodeLengths"`
	BestAvgScore   float64   `json:"bestAvgScore"`
	TrainingTime   string    `json:"trainingTime"`
}

// SaveLog writes the full history as indented JSON.
func (t *Training) SaveLog(path string, episode int) error {
	record := trainingLog{
		Episode:        episode,
		Scores:         t.scores,
		AvgScores:      t.avgScores,
		Losses:         t.losses,
		Epsilons:       t.epsilons,
		EpisodeLengths: t.episodeLengths,
		BestAvgScore:   t.bestAvg,
		TrainingTime:   time.Since(t.started).String(),
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode training log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write training log: %w", err)
	}
	return nil
}
