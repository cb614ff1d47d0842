package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseConfig_URL(t *testing.T) {
	// Arrange
	cfg := config.DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", Name: "uploads", SSLMode: "disable"}

	// Act
	got := cfg.URL()

	// Assert
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/uploads?sslmode=disable", got)
}

func TestLoadClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		// Arrange
		t.Setenv("UPLOADER_TOKEN", "abc")

		// Act
		cfg, err := config.LoadClient()

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "abc", cfg.Token)
		assert.Equal(t, "http://localhost:8080/api/v1", cfg.APIURL)
		assert.Equal(t, 4, cfg.Parallelism)
		assert.Equal(t, 300*time.Millisecond, cfg.APIBackoff)
	})

	t.Run("token is required", func(t *testing.T) {
		// Arrange
		t.Setenv("UPLOADER_TOKEN", "")
		require.NoError(t, os.Unsetenv("UPLOADER_TOKEN"))

		// Act
		_, err := config.LoadClient()

		// Assert
		assert.Error(t, err)
	})
}

func TestLoad_UploadDefaults(t *testing.T) {
	// Arrange
	t.Setenv("AUTH_JWT_SECRET", "s")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_NAME", "n")

	// Act
	cfg, err := config.Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "minio", cfg.Storage.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Minio.PresignedDuration)
	assert.Equal(t, "report", cfg.Upload.OrphanPolicy)
	assert.Equal(t, 3, cfg.Upload.MaxRetries)
}
