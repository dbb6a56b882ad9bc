package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spacesedan/emotionflow/config"
	"github.com/spacesedan/emotionflow/internal/logging"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "emotion-api",
	Short: "Classify the emotion expressed in short texts",
	Long: `emotion-api classifies short English texts into one of a fixed set of
emotion labels using a pretrained sequence classifier.

Configuration is read from config/envs/.env.<APP_ENV>, an optional YAML file
and EMOTION_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "dev"
		}
		config.LoadEnv(env)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		logging.InitLogger(logging.Options{
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
			NoColor: cfg.Log.NoColor,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
