package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacesedan/emotionflow/internal/inference"
	"github.com/spacesedan/emotionflow/internal/models"
	"github.com/spacesedan/emotionflow/internal/sentiment"
)

var (
	predictFormat   string
	predictPolarity bool
)

var predictCmd = &cobra.Command{
	Use:   "predict [TEXT]",
	Short: "Classify a single text and print the result as JSON",
	Example: `  emotion-api predict "I love this!"
  emotion-api predict --format markdown "**so** happy"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().StringVarP(&predictFormat, "format", "f", models.FormatPlain, "Input format (plain|markdown)")
	predictCmd.Flags().BoolVar(&predictPolarity, "polarity", false, "Add lexicon polarity to the output")
}

func runPredict(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if predictFormat == models.FormatMarkdown {
		text = sentiment.ConvertMarkdownToText(text)
	}

	bundle, err := loadBundle(cfg)
	if err != nil {
		return err
	}
	defer bundle.Close()

	pred, err := inference.New(bundle, pipelineOptions(cfg, nil)...).Predict(cmd.Context(), text)
	if err != nil {
		return err
	}

	resp := models.PredictResponse{Emotion: pred.Label, Confidence: pred.Confidence}
	if predictPolarity || cfg.Enrich.Polarity {
		polarity := sentiment.Analyze(text)
		resp.Polarity = &polarity
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
