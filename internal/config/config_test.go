package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr)
	assert.Equal(t, "data/clinic.db", cfg.Database.Path)
	assert.Equal(t, 1440, cfg.Auth.TokenTTLMinutes)
	assert.False(t, cfg.Demo.Enabled)
	assert.Equal(t, "clinic", cfg.Storage.KeyPrefix)
	assert.Equal(t, 15, cfg.Storage.PresignMinutes)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "from-plain-env")
	t.Setenv("DEMO", "true")
	t.Setenv("CLINIC_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("CLINIC_STORAGE_BUCKET", "records")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "from-plain-env", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Demo.Enabled)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "records", cfg.Storage.Bucket)
}

func TestLoad_PrefixedSecretWins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CLINIC_AUTH_JWTSECRET", "prefixed")
	t.Setenv("JWT_SECRET", "plain")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Auth.JWTSecret)
}

func TestLoad_NegativeTTL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CLINIC_AUTH_TOKENTTLMINUTES", "-5")

	_, err := load(viper.New())
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nCLINIC_TEST_DOTENV_A=\"quoted\"\nCLINIC_TEST_DOTENV_B=kept\ninvalid line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CLINIC_TEST_DOTENV_B", "existing")
	t.Cleanup(func() { os.Unsetenv("CLINIC_TEST_DOTENV_A") })

	loadDotEnv(path)

	assert.Equal(t, "quoted", os.Getenv("CLINIC_TEST_DOTENV_A"))
	assert.Equal(t, "existing", os.Getenv("CLINIC_TEST_DOTENV_B"))
}
