// Package trainer drives the synchronous select-step-remember-learn cycle.
// Everything the loop touches (environment, buffer, networks) is owned by
// the current call stack; rendering happens inline between ticks.
package trainer

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"snake-dqn/config"
	"snake-dqn/game"
	"snake-dqn/qlearning"
	"snake-dqn/stats"
)

// HUD carries training context for the presentation layer.
type HUD struct {
	Mode     string
	Episode  int
	Episodes int
	BestAvg  float64
	Epsilon  float64
}

// Display is an optional inline renderer. It only ever receives snapshots
// and may feed back the two permitted commands (pause, reset) plus a close
// request.
type Display interface {
	Closed() bool
	HandleInput(g *game.Game)
	Draw(snap game.Snapshot, hud HUD)
}

// Train runs the full training schedule and returns the collected
// histories. If cfg.Train.Resume names an existing checkpoint, training
// continues from it.
func Train(cfg config.Config, display Display) (*stats.Training, error) {
	env := newEnv(cfg.Game)
	agent := qlearning.NewAgent(cfg.Agent)
	history := stats.NewTraining()

	if cfg.Train.Resume != "" {
		ck, ok, err := agent.Load(cfg.Train.Resume)
		if err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		if ok {
			history.SeedScores(ck.Scores, ck.Losses)
			log.Info("resumed from checkpoint",
				"path", cfg.Train.Resume,
				"episodes", history.Episodes(),
				"epsilon", agent.Epsilon)
		} else {
			log.Warn("checkpoint not found, starting fresh", "path", cfg.Train.Resume)
		}
	}

	bestPath := filepath.Join(cfg.Train.CheckpointDir, "best_model.gob")
	pace := time.Duration(cfg.Train.TickMillis) * time.Millisecond

	for ep := 1; ep <= cfg.Train.Episodes; ep++ {
		obs := env.Reset()
		steps := 0

		for !env.Over() {
			if display != nil {
				if display.Closed() {
					return history, finish(agent, history, cfg, history.Episodes())
				}
				display.HandleInput(env)
			}

			action := agent.SelectAction(obs)
			next, reward, done := env.Step(game.Action(action))
			agent.Remember(obs, action, reward, next, done)

			if agent.StepCount%agent.UpdateEvery == 0 {
				loss, learned, err := agent.Learn()
				if err != nil {
					return history, fmt.Errorf("learning step: %w", err)
				}
				if learned {
					history.AddLoss(loss)
				}
			}

			obs = next
			steps++

			if display != nil {
				display.Draw(env.Snapshot(), HUD{
					Mode:     "train",
					Episode:  ep,
					Episodes: cfg.Train.Episodes,
					BestAvg:  history.BestAvg(),
					Epsilon:  agent.Epsilon,
				})
				// Cosmetic pacing only; correctness never depends on it.
				time.Sleep(pace)
			}

			if done {
				break
			}
		}

		avg := history.AddEpisode(env.Score(), steps, agent.Epsilon)

		if ep%cfg.Train.LogEvery == 0 {
			log.Info("episode",
				"ep", ep,
				"score", env.Score(),
				"avg", fmt.Sprintf("%.2f", avg),
				"steps", steps,
				"epsilon", fmt.Sprintf("%.3f", agent.Epsilon),
				"loss", fmt.Sprintf("%.4f", history.RecentLossAvg(100)))
		}

		if avg >= history.BestAvg() {
			if err := agent.Save(bestPath, history.Scores(), history.Losses()); err != nil {
				return history, fmt.Errorf("saving best model: %w", err)
			}
		}

		if cfg.Train.CheckpointEvery > 0 && ep%cfg.Train.CheckpointEvery == 0 {
			path := filepath.Join(cfg.Train.CheckpointDir, fmt.Sprintf("checkpoint_%d.gob", ep))
			if err := agent.Save(path, history.Scores(), history.Losses()); err != nil {
				return history, fmt.Errorf("saving checkpoint: %w", err)
			}
			logPath := filepath.Join(cfg.Train.CheckpointDir, fmt.Sprintf("training_log_%d.json", ep))
			if err := history.SaveLog(logPath, ep); err != nil {
				log.Warn("could not write training log", "err", err)
			}
			if err := history.WritePlots(cfg.Train.PlotDir, ep); err != nil {
				log.Warn("could not write plots", "err", err)
			}
		}
	}

	return history, finish(agent, history, cfg, cfg.Train.Episodes)
}

// finish persists the final model and plots.
func finish(agent *qlearning.Agent, history *stats.Training, cfg config.Config, episode int) error {
	finalPath := filepath.Join(cfg.Train.CheckpointDir, "final_model.gob")
	if err := agent.Save(finalPath, history.Scores(), history.Losses()); err != nil {
		return fmt.Errorf("saving final model: %w", err)
	}
	if err := history.WritePlots(cfg.Train.PlotDir, episode); err != nil {
		log.Warn("could not write plots", "err", err)
	}
	log.Info("training finished",
		"episodes", history.Episodes(),
		"best_avg", fmt.Sprintf("%.2f", history.BestAvg()),
		"model", finalPath)
	return nil
}

// Evaluate loads a checkpoint and plays greedy episodes (exploration pinned
// to the floor). A missing checkpoint aborts with an error.
func Evaluate(cfg config.Config, episodes int, checkpoint string, display Display) ([]int, error) {
	env := newEnv(cfg.Game)
	agent := qlearning.NewAgent(cfg.Agent)

	_, ok, err := agent.Load(checkpoint)
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("checkpoint %s does not exist", checkpoint)
	}
	agent.Epsilon = cfg.Agent.EpsilonMin

	pace := time.Duration(cfg.Train.TickMillis) * time.Millisecond
	scores := make([]int, 0, episodes)

	for ep := 1; ep <= episodes; ep++ {
		obs := env.Reset()
		steps := 0
		totalReward := 0.0

		for !env.Over() {
			if display != nil {
				if display.Closed() {
					return scores, nil
				}
				display.HandleInput(env)
			}

			action := agent.SelectAction(obs)
			next, reward, done := env.Step(game.Action(action))
			obs = next
			totalReward += reward
			steps++

			if display != nil {
				display.Draw(env.Snapshot(), HUD{
					Mode:     "play",
					Episode:  ep,
					Episodes: episodes,
					Epsilon:  agent.Epsilon,
				})
				time.Sleep(pace)
			}

			if done {
				break
			}
		}

		scores = append(scores, env.Score())
		log.Info("test episode",
			"ep", ep,
			"score", env.Score(),
			"steps", steps,
			"reward", fmt.Sprintf("%.1f", totalReward))
	}

	mean, std := meanStd(scores)
	log.Info("test results",
		"episodes", episodes,
		"avg_score", fmt.Sprintf("%.2f", mean),
		"std", fmt.Sprintf("%.2f", std))
	return scores, nil
}

func newEnv(cfg config.GameConfig) *game.Game {
	if cfg.Seed != 0 {
		return game.NewGameSeeded(cfg.Width, cfg.Height, cfg.Seed)
	}
	return game.NewGame(cfg.Width, cfg.Height)
}

func meanStd(scores []int) (float64, float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += float64(s)
	}
	mean := sum / float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		d := float64(s) - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(scores)))
}
