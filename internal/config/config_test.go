package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdimtricp/lecturepulse/internal/database"
	"github.com/kdimtricp/lecturepulse/internal/engagement"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1.0, cfg.Analysis.SampleSec)
	assert.Equal(t, database.TypeSQLite, cfg.Database.Type)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
  workers: 4
database:
  type: postgres
  host: db.internal
analysis:
  sample_sec: 2.5
  yaw_ok: 25
ai:
  detector: merged
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("DB_NAME", "lectures_prod")
	t.Setenv("APP_WEIGHT_ATTENTION", "0.7")
	t.Setenv("APP_WEIGHT_AFFECT", "0.3")
	t.Setenv("APP_METRICS_DIR", "/var/lib/lecturepulse/metrics")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 4, cfg.Server.Workers)
	assert.Equal(t, database.TypePostgres, cfg.Database.Type)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "lectures_prod", cfg.Database.Name)
	assert.Equal(t, 2.5, cfg.Analysis.SampleSec)
	assert.Equal(t, 25.0, cfg.Analysis.YawOK)
	assert.Equal(t, 20.0, cfg.Analysis.PitchOK, "unset keys keep defaults")
	assert.Equal(t, 0.7, cfg.Analysis.WeightAttention)
	assert.Equal(t, DetectorMerged, cfg.AI.Detector)
	assert.Equal(t, "/var/lib/lecturepulse/metrics", cfg.Storage.MetricsDir)

	db := cfg.DB()
	assert.Equal(t, "lectures_prod", db.Name)
	assert.Equal(t, 5432, db.Port)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"sample period too small", "APP_FRAME_SAMPLE_SEC", "0.01"},
		{"sample period too large", "APP_FRAME_SAMPLE_SEC", "11"},
		{"negative yaw threshold", "APP_ATTENTION_YAW_OK", "-5"},
		{"weight above one", "APP_WEIGHT_AFFECT", "1.5"},
		{"unknown database", "DB_TYPE", "mysql"},
		{"unknown detector", "APP_FACE_DETECTOR", "haar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			assert.ErrorIs(t, err, engagement.ErrInvalidConfiguration)
		})
	}
}

func TestLoadRejectsUnparsableEnv(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE", "lots")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_UPLOAD_SIZE")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.AI.Classifier = ClassifierOpenAI
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ClassifierOpenAI, loaded.AI.Classifier)
}
