// Command planetsim runs one AI-driven planet against a simulated galaxy
// and journals what it decides.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/talgya/planet-ai/internal/config"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "planetsim",
	Short: "Simulate a planet that decides when to spend its energy",
	Long: `planetsim drives a single planet through a stream of sunrays and
asteroids while an explorer asks it for resources. The planet AI weighs
recent space weather before spending its energy cell.

Settings come from defaults, an optional YAML file and PLANET_*
environment variables (a .env file is read when present).`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "planet.yaml", "YAML config file (optional)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(eventsCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config:\n%w", err)
	}
	cfg = loaded

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
