package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"snake-dqn/config"
	"snake-dqn/trainer"
	"snake-dqn/ui"
)

var (
	flagEpisodes int
	flagResume   string
	flagRender   bool
	flagSpeed    int
	flagSeed     uint64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the agent",
	Long:  `Runs the training loop, saving checkpoints, logs and progress plots.`,
	RunE:  runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagEpisodes, "episodes", 0, "number of training episodes (0 = config default)")
	trainCmd.Flags().StringVar(&flagResume, "resume", "", "checkpoint to continue training from")
	trainCmd.Flags().BoolVar(&flagRender, "render", false, "render the game while training")
	trainCmd.Flags().IntVar(&flagSpeed, "speed", 0, "tick pacing in milliseconds when rendering")
	trainCmd.Flags().Uint64Var(&flagSeed, "seed", 0, "environment RNG seed (0 = clock)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagEpisodes > 0 {
		cfg.Train.Episodes = flagEpisodes
	}
	if flagResume != "" {
		cfg.Train.Resume = flagResume
	}
	if flagSpeed > 0 {
		cfg.Train.TickMillis = flagSpeed
	}
	if flagSeed != 0 {
		cfg.Game.Seed = flagSeed
	}
	if flagRender {
		cfg.Train.Render = true
	}

	log.Info("training",
		"grid", cfg.Game.Width*cfg.Game.Height,
		"episodes", cfg.Train.Episodes,
		"render", cfg.Train.Render)

	var display trainer.Display
	if cfg.Train.Render {
		renderer := ui.NewRenderer("Snake - Deep Reinforcement Learning")
		defer renderer.Close()
		display = renderer
	}

	_, err = trainer.Train(cfg, display)
	return err
}
