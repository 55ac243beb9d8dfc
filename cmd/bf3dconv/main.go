package main

import (
	"fmt"
	"os"

	"github.com/binzume/bf3dconv/config"
	"github.com/binzume/bf3dconv/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	frameRate  int
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "bf3dconv",
	Short: "Convert glTF scenes and VMD motions to BF3D files",
	Long: `bf3dconv writes BF3D chunk files for a game runtime.
A glTF scene provides a model, its hierarchy or one of its animations.
A VMD motion is retargeted onto the hierarchy of a glTF skeleton.`,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configFile, "config", "", "YAML config file")
	f.IntVar(&frameRate, "frame-rate", 0, "animation frames per second (default 30)")
	f.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&logFile, "log-file", "", "also write the log to this file")
}

// loadConfig reads --config and applies the flags that were set on the
// command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	flags := cmd.Flags()
	if flags.Changed("frame-rate") {
		cfg.FrameRate = frameRate
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = logFile
	}
	if flags.Changed("animation") {
		cfg.Animation = animationName
	}
	if flags.Changed("flip-v") {
		cfg.FlipV = flipV
	}
	return cfg, cfg.Validate()
}

func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
