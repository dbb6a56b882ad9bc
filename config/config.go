package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ENV_PREFIX marks variables read into the config. The first underscore
// after the prefix separates section and key: EMOTION_SERVER_PORT sets
// server.port, EMOTION_ARTIFACTS_MODEL_PATH sets artifacts.model_path.
const ENV_PREFIX = "EMOTION_"

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Log        LogConfig        `koanf:"log"`
	Artifacts  ArtifactsConfig  `koanf:"artifacts"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Preprocess PreprocessConfig `koanf:"preprocess"`
	Cache      CacheConfig      `koanf:"cache"`
	Valkey     ValkeyConfig     `koanf:"valkey"`
	Enrich     EnrichConfig     `koanf:"enrich"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Mode            string        `koanf:"mode"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level   string `koanf:"level"`
	Format  string `koanf:"format"`
	NoColor bool   `koanf:"no_color"`
}

type ArtifactsConfig struct {
	ModelPath      string `koanf:"model_path"`
	VocabularyPath string `koanf:"vocabulary_path"`
	LabelsPath     string `koanf:"labels_path"`
	StopwordsPath  string `koanf:"stopwords_path"`
	// HubRepo, when set, is downloaded into Dir if ModelPath is missing.
	HubRepo  string `koanf:"hub_repo"`
	HubToken string `koanf:"hub_token"`
	Dir      string `koanf:"dir"`
}

type ClassifierConfig struct {
	SharedLibraryPath string        `koanf:"shared_library_path"`
	InputName         string        `koanf:"input_name"`
	OutputName        string        `koanf:"output_name"`
	InputType         string        `koanf:"input_type"`
	Output            string        `koanf:"output"`
	Sessions          int           `koanf:"sessions"`
	IntraOpThreads    int           `koanf:"intra_op_threads"`
	HealthInterval    time.Duration `koanf:"health_interval"`
}

type PreprocessConfig struct {
	MaxLen    int    `koanf:"max_len"`
	PadID     int    `koanf:"pad_id"`
	OOVID     int    `koanf:"oov_id"`
	OOVPolicy string `koanf:"oov_policy"`
	NumWords  int    `koanf:"num_words"`
}

type CacheConfig struct {
	Backend   string        `koanf:"backend"`
	Size      int           `koanf:"size"`
	TTL       time.Duration `koanf:"ttl"`
	Namespace string        `koanf:"namespace"`
}

type ValkeyConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	TLS      bool   `koanf:"tls"`
}

type EnrichConfig struct {
	Polarity bool `koanf:"polarity"`
}

const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheValkey = "valkey"

	OutputProbabilities = "probabilities"
	OutputLogits        = "logits"
)

func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			Mode:            "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Artifacts: ArtifactsConfig{
			ModelPath:      "models/emotion_cnn_model.onnx",
			VocabularyPath: "models/tokenizer.json",
			LabelsPath:     "models/labels.json",
			Dir:            "models",
		},
		Classifier: ClassifierConfig{
			InputType:      "float32",
			Output:         OutputProbabilities,
			Sessions:       1,
			HealthInterval: 15 * time.Second,
		},
		Preprocess: PreprocessConfig{
			MaxLen: 100,
			PadID:  0,
			OOVID:  1,
		},
		Cache: CacheConfig{
			Backend:   CacheNone,
			Size:      4096,
			TTL:       time.Hour,
			Namespace: "v1",
		},
		Valkey: ValkeyConfig{
			Address: "localhost:6379",
		},
	}
}

// Load layers defaults, an optional YAML file and EMOTION_* environment
// variables, in that order, and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(ENV_PREFIX, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, ENV_PREFIX)), "_", ".", 1)
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode must be debug, release or test"))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json"))
	}

	if c.Preprocess.MaxLen <= 0 {
		errs = append(errs, fmt.Errorf("preprocess.max_len must be positive"))
	}
	if c.Preprocess.PadID < 0 || c.Preprocess.OOVID < 0 {
		errs = append(errs, fmt.Errorf("preprocess ids must not be negative"))
	}
	switch c.Preprocess.OOVPolicy {
	case "", "map", "skip":
	default:
		errs = append(errs, fmt.Errorf("preprocess.oov_policy must be map or skip"))
	}

	switch c.Classifier.InputType {
	case "float32", "int32", "int64":
	default:
		errs = append(errs, fmt.Errorf("classifier.input_type must be float32, int32 or int64"))
	}
	switch c.Classifier.Output {
	case OutputProbabilities, OutputLogits:
	default:
		errs = append(errs, fmt.Errorf("classifier.output must be probabilities or logits"))
	}
	if c.Classifier.Sessions < 1 {
		errs = append(errs, fmt.Errorf("classifier.sessions must be at least 1"))
	}

	switch c.Cache.Backend {
	case CacheNone:
	case CacheMemory:
		if c.Cache.Size <= 0 {
			errs = append(errs, fmt.Errorf("cache.size must be positive for the memory backend"))
		}
	case CacheValkey:
		if c.Valkey.Address == "" {
			errs = append(errs, fmt.Errorf("valkey.address is required for the valkey backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be none, memory or valkey"))
	}

	return errors.Join(errs...)
}
