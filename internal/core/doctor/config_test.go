package doctor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/herald/internal/core/config"
)

func TestConfigCheck_Defaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	result := NewConfigCheck(&cfg, filepath.Join(t.TempDir(), "missing.yaml")).Run(context.Background())

	assert.Equal(t, "Configuration", result.Name)
	assert.Equal(t, StatusPass, itemByLabel(t, result, "config file").Status)
	assert.Equal(t, StatusWarn, itemByLabel(t, result, "backend.url").Status)

	_, _, failed := Summary([]Result{result})
	assert.Zero(t, failed)
}

func TestConfigCheck_InvalidField(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Backend.URL = "ftp://api.example.com"

	result := NewConfigCheck(&cfg, "").Run(context.Background())

	assert.Equal(t, StatusFail, itemByLabel(t, result, "backend.url").Status)
}
