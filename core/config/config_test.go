package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certkeeper/core/config"
)

type defaultsConfig struct {
	Name     string        `env:"CFG_TEST_NAME" envDefault:"certkeeper"`
	Interval time.Duration `env:"CFG_TEST_INTERVAL" envDefault:"5m"`
	Retries  int           `env:"CFG_TEST_RETRIES" envDefault:"3"`
}

type requiredConfig struct {
	Domain string `env:"CFG_TEST_DOMAIN,required"`
}

type cachedConfig struct {
	Value string `env:"CFG_TEST_CACHED"`
}

func TestLoadDefaults(t *testing.T) {
	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "certkeeper", cfg.Name)
	assert.Equal(t, 5*time.Minute, cfg.Interval)
	assert.Equal(t, 3, cfg.Retries)
}

func TestLoadRequiredMissing(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CFG_TEST_DOMAIN")

	// failed loads are not cached
	t.Setenv("CFG_TEST_DOMAIN", "example.com")
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "example.com", cfg.Domain)
}

func TestLoadCachesPerType(t *testing.T) {
	t.Setenv("CFG_TEST_CACHED", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, "first", first.Value)

	t.Setenv("CFG_TEST_CACHED", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)
}

func TestLoadNilTarget(t *testing.T) {
	var cfg *defaultsConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilTarget)
}

func TestMustLoadPanics(t *testing.T) {
	type mustConfig struct {
		Missing string `env:"CFG_TEST_MUST_MISSING,required"`
	}

	assert.Panics(t, func() {
		var cfg mustConfig
		config.MustLoad(&cfg)
	})
}
