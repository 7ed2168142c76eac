package main

import (
	"github.com/spf13/cobra"

	"snake-dqn/config"
	"snake-dqn/trainer"
	"snake-dqn/ui"
)

var (
	flagPlayEpisodes   int
	flagPlayCheckpoint string
	flagPlaySpeed      int
	flagHeadless       bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Watch a trained agent play",
	Long:  `Loads a checkpoint and plays greedy episodes with rendering.`,
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagPlayEpisodes, "episodes", 10, "number of episodes to play")
	playCmd.Flags().StringVar(&flagPlayCheckpoint, "checkpoint", "models/best_model.gob", "checkpoint to load")
	playCmd.Flags().IntVar(&flagPlaySpeed, "speed", 100, "tick pacing in milliseconds")
	playCmd.Flags().BoolVar(&flagHeadless, "headless", false, "evaluate without a window")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagPlaySpeed > 0 {
		cfg.Train.TickMillis = flagPlaySpeed
	}

	var display trainer.Display
	if !flagHeadless {
		renderer := ui.NewRenderer("Snake - Deep Reinforcement Learning")
		defer renderer.Close()
		display = renderer
	}

	_, err = trainer.Evaluate(cfg, flagPlayEpisodes, flagPlayCheckpoint, display)
	return err
}
