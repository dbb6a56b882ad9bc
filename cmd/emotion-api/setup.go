package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spacesedan/emotionflow/config"
	"github.com/spacesedan/emotionflow/internal/artifacts"
	"github.com/spacesedan/emotionflow/internal/classifier"
	"github.com/spacesedan/emotionflow/internal/clients"
	"github.com/spacesedan/emotionflow/internal/inference"
	"github.com/spacesedan/emotionflow/internal/vocab"
)

// loadBundle fetches missing artifacts from the hub when a repository is
// configured and then loads all of them.
func loadBundle(cfg *config.Config) (*artifacts.Bundle, error) {
	paths := cfg.Artifacts

	if paths.HubRepo != "" {
		dir, err := artifacts.EnsureModel(paths.ModelPath, paths.HubRepo, paths.Dir, paths.HubToken)
		if err != nil {
			return nil, err
		}
		if dir != "" {
			paths.ModelPath = inDownload(paths.ModelPath, dir)
			paths.VocabularyPath = inDownload(paths.VocabularyPath, dir)
			paths.LabelsPath = inDownload(paths.LabelsPath, dir)
		}
	}

	return artifacts.Load(artifacts.Options{
		VocabularyPath: paths.VocabularyPath,
		LabelsPath:     paths.LabelsPath,
		StopwordsPath:  paths.StopwordsPath,
		Vocabulary: vocab.Options{
			OOVID:    cfg.Preprocess.OOVID,
			Policy:   vocab.OOVPolicy(cfg.Preprocess.OOVPolicy),
			NumWords: cfg.Preprocess.NumWords,
		},
		NewClassifier: artifacts.ONNXFactory(classifier.ONNXConfig{
			ModelPath:         paths.ModelPath,
			SharedLibraryPath: cfg.Classifier.SharedLibraryPath,
			InputName:         cfg.Classifier.InputName,
			OutputName:        cfg.Classifier.OutputName,
			InputType:         cfg.Classifier.InputType,
			InputLen:          cfg.Preprocess.MaxLen,
			Sessions:          cfg.Classifier.Sessions,
			IntraOpThreads:    cfg.Classifier.IntraOpThreads,
			Logits:            cfg.Classifier.Output == config.OutputLogits,
		}),
	})
}

// inDownload keeps path when it exists and otherwise looks for a file of the
// same name inside the downloaded repository.
func inDownload(path, dir string) string {
	if path == "" {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(dir, filepath.Base(path))
}

// newCache builds the configured prediction cache. The returned closer is
// never nil.
func newCache(cfg *config.Config) (inference.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		cache, err := inference.NewMemoryCache(cfg.Cache.Size)
		if err != nil {
			return nil, func() {}, err
		}
		slog.Info("[Main] Using in-memory prediction cache", slog.Int("size", cfg.Cache.Size))
		return cache, func() {}, nil

	case config.CacheValkey:
		client, err := clients.NewValkey(clients.ValkeyOptions{
			Address:  cfg.Valkey.Address,
			Password: cfg.Valkey.Password,
			TLS:      cfg.Valkey.TLS,
		})
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect to valkey: %w", err)
		}
		cache := clients.NewValkeyCache(client, cfg.Cache.TTL)
		return cache, cache.Close, nil

	default:
		return nil, func() {}, nil
	}
}

func pipelineOptions(cfg *config.Config, cache inference.Cache) []inference.Option {
	opts := []inference.Option{inference.WithShape(cfg.Preprocess.MaxLen, cfg.Preprocess.PadID)}
	if cache != nil {
		opts = append(opts, inference.WithCache(cache, cfg.Cache.Namespace))
	}
	return opts
}
