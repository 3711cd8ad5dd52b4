package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kdimtricp/lecturepulse/internal/database"
	"github.com/kdimtricp/lecturepulse/internal/engagement"
)

const (
	DetectorYuNet  = "yunet"
	DetectorVision = "vision"
	DetectorMerged = "merged"

	ClassifierONNX   = "onnx"
	ClassifierOpenAI = "openai"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig      `yaml:"server"`
	Database DatabaseConfig    `yaml:"database"`
	Storage  StorageConfig     `yaml:"storage"`
	AI       AIConfig          `yaml:"ai"`
	Analysis engagement.Config `yaml:"analysis"`
	Logging  LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Port          string `yaml:"port"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
	// Workers bounds the number of analyses running at once.
	Workers int `yaml:"workers"`
}

type DatabaseConfig struct {
	Type     string `yaml:"type"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type StorageConfig struct {
	UploadDir  string `yaml:"upload_dir"`
	MetricsDir string `yaml:"metrics_dir"`
}

type AIConfig struct {
	Detector   string `yaml:"detector"`
	Classifier string `yaml:"classifier"`

	YuNetModelPath   string  `yaml:"yunet_model_path"`
	YuNetScoreThresh float64 `yaml:"yunet_score_threshold"`
	EmotionModelPath string  `yaml:"emotion_model_path"`

	OpenAIAPIKey               string `yaml:"openai_api_key"`
	GoogleVisionKey            string `yaml:"google_vision_key"`
	GoogleVisionServiceAccount string `yaml:"google_vision_service_account"`
}

type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
}

// Load reads configuration from file, applies environment overrides and
// validates the result. An empty path searches the usual locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          "8080",
			MaxUploadSize: 1 << 30,
			Workers:       2,
		},
		Database: DatabaseConfig{
			Type:    database.TypeSQLite,
			Path:    "./lecturepulse.db",
			Host:    "localhost",
			Port:    5432,
			User:    "lecturepulse",
			Name:    "lecturepulse",
			SSLMode: "disable",
		},
		Storage: StorageConfig{
			UploadDir:  "./uploads",
			MetricsDir: "./data/metrics",
		},
		AI: AIConfig{
			Detector:         DetectorYuNet,
			Classifier:       ClassifierONNX,
			YuNetModelPath:   "models/face_detection_yunet_2023mar.onnx",
			YuNetScoreThresh: 0.6,
			EmotionModelPath: "models/emotion_minix.onnx",
		},
		Analysis: engagement.DefaultConfig(),
	}
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks cross-field constraints. Scoring parameters are checked by
// the engine's own rules.
func (c *Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return err
	}
	switch {
	case c.Server.Port == "":
		return invalid("server.port must be set")
	case c.Server.MaxUploadSize <= 0:
		return invalid("server.max_upload_size must be positive, got %d", c.Server.MaxUploadSize)
	case c.Server.Workers < 1:
		return invalid("server.workers must be at least 1, got %d", c.Server.Workers)
	case c.Database.Type != database.TypeSQLite && c.Database.Type != database.TypePostgres:
		return invalid("database.type must be %q or %q, got %q", database.TypeSQLite, database.TypePostgres, c.Database.Type)
	case c.Storage.UploadDir == "" || c.Storage.MetricsDir == "":
		return invalid("storage.upload_dir and storage.metrics_dir must be set")
	}
	switch c.AI.Detector {
	case DetectorYuNet, DetectorVision, DetectorMerged:
	default:
		return invalid("ai.detector must be one of yunet, vision, merged, got %q", c.AI.Detector)
	}
	switch c.AI.Classifier {
	case ClassifierONNX, ClassifierOpenAI:
	default:
		return invalid("ai.classifier must be onnx or openai, got %q", c.AI.Classifier)
	}
	return nil
}

// DB converts the database section to the driver configuration.
func (c *Config) DB() database.Config {
	return database.Config{
		Type:       c.Database.Type,
		Host:       c.Database.Host,
		Port:       c.Database.Port,
		User:       c.Database.User,
		Password:   c.Database.Password,
		Name:       c.Database.Name,
		SSLMode:    c.Database.SSLMode,
		SQLitePath: c.Database.Path,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", engagement.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

func findConfigFile() string {
	candidates := []string{
		os.Getenv("LECTUREPULSE_CONFIG"),
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".lecturepulse", "config.yaml"),
	}

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	env := envReader{lookup: lookup}

	env.setString("PORT", &c.Server.Port)
	env.setInt64("MAX_UPLOAD_SIZE", &c.Server.MaxUploadSize)
	env.setInt("WORKERS", &c.Server.Workers)

	env.setString("DB_TYPE", &c.Database.Type)
	env.setString("DB_PATH", &c.Database.Path)
	env.setString("DB_HOST", &c.Database.Host)
	env.setInt("DB_PORT", &c.Database.Port)
	env.setString("DB_USER", &c.Database.User)
	env.setString("DB_PASSWORD", &c.Database.Password)
	env.setString("DB_NAME", &c.Database.Name)
	env.setString("DB_SSLMODE", &c.Database.SSLMode)

	env.setString("UPLOAD_DIR", &c.Storage.UploadDir)
	env.setString("APP_METRICS_DIR", &c.Storage.MetricsDir)

	env.setString("APP_FACE_DETECTOR", &c.AI.Detector)
	env.setString("APP_EMOTION_CLASSIFIER", &c.AI.Classifier)
	env.setString("APP_YUNET_MODEL_PATH", &c.AI.YuNetModelPath)
	env.setString("APP_EMOTION_MODEL_PATH", &c.AI.EmotionModelPath)
	env.setString("OPENAI_API_KEY", &c.AI.OpenAIAPIKey)
	env.setString("GOOGLE_VISION_API_KEY", &c.AI.GoogleVisionKey)
	env.setString("GOOGLE_VISION_SERVICE_ACCOUNT", &c.AI.GoogleVisionServiceAccount)

	env.setFloat("APP_FRAME_SAMPLE_SEC", &c.Analysis.SampleSec)
	env.setFloat("APP_ATTENTION_YAW_OK", &c.Analysis.YawOK)
	env.setFloat("APP_ATTENTION_PITCH_OK", &c.Analysis.PitchOK)
	env.setFloat("APP_WEIGHT_ATTENTION", &c.Analysis.WeightAttention)
	env.setFloat("APP_WEIGHT_AFFECT", &c.Analysis.WeightAffect)

	env.setBool("LOG_VERBOSE", &c.Logging.Verbose)
	env.setBool("LOG_JSON", &c.Logging.JSON)

	return env.err
}

// envReader applies overrides and keeps the first parse error.
type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) value(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(key)
	return v, ok && v != ""
}

func (e *envReader) fail(key, value string, err error) {
	e.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
}

func (e *envReader) setString(key string, dst *string) {
	if v, ok := e.value(key); ok {
		*dst = v
	}
}

func (e *envReader) setInt(key string, dst *int) {
	if v, ok := e.value(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) setInt64(key string, dst *int64) {
	if v, ok := e.value(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) setFloat(key string, dst *float64) {
	if v, ok := e.value(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) setBool(key string, dst *bool) {
	if v, ok := e.value(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = b
	}
}
