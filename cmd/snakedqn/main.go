// snakedqn trains and replays a Double-DQN Snake agent.
//
// Usage:
//
//	snakedqn train            - Train the agent (optionally rendered)
//	snakedqn play             - Watch a trained agent play
//
// Global flags:
//
//	--config <path>  - YAML configuration overriding the defaults
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "snakedqn",
	Short: "Snake trained with a Double Deep Q-Network",
	Long: `snakedqn trains a reinforcement-learning agent to play Snake with a
Double DQN: experience replay, a soft-updated target network and an
epsilon-greedy policy over relative turn actions.

Examples:
  snakedqn train --episodes 2000
  snakedqn train --render --resume models/final_model.gob
  snakedqn play --checkpoint models/best_model.gob`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(playCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
