package artifacts

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/knights-analytics/hugot"
)

// EnsureModel downloads repo from the Hugging Face hub into dir unless
// modelPath already exists. It returns the directory holding the download,
// or "" when nothing had to be fetched.
func EnsureModel(modelPath, repo, dir, token string) (string, error) {
	if _, err := os.Stat(modelPath); err == nil {
		slog.Info("[Artifacts] Using existing model", slog.String("path", modelPath))
		return "", nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("%w: stat model: %w", ErrLoad, err)
	}

	if repo == "" {
		return "", fmt.Errorf("%w: model %s not found and no hub repository configured", ErrLoad, modelPath)
	}
	return Fetch(repo, dir, token)
}

// Fetch downloads every file of a hub repository into dir.
func Fetch(repo, dir, token string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("%w: create model directory: %w", ErrLoad, err)
	}

	slog.Info("[Artifacts] Model not found, downloading...", slog.String("repo", repo))

	opts := hugot.NewDownloadOptions()
	if token != "" {
		opts.AuthToken = token
	}

	path, err := hugot.DownloadModel(repo, dir, opts)
	if err != nil {
		return "", fmt.Errorf("%w: download %s: %w", ErrLoad, repo, err)
	}

	slog.Info("[Artifacts] Model downloaded successfully", slog.String("path", path))
	return path, nil
}
