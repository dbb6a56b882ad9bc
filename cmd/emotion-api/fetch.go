package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spacesedan/emotionflow/internal/artifacts"
)

var fetchRepo string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download model artifacts from the Hugging Face hub",
	Long: `Download every file of a Hugging Face hub repository into the artifacts
directory. The repository defaults to artifacts.hub_repo.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := fetchRepo
		if repo == "" {
			repo = cfg.Artifacts.HubRepo
		}
		if repo == "" {
			return fmt.Errorf("no repository given: pass --repo or set EMOTION_ARTIFACTS_HUB_REPO")
		}

		path, err := artifacts.Fetch(repo, cfg.Artifacts.Dir, cfg.Artifacts.HubToken)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchRepo, "repo", "", "Hub repository, e.g. owner/model")
}
