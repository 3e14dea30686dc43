package skyshow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneConfigPreset_RoundTrip(t *testing.T) {
	cfg := DefaultSceneConfig()
	cfg.Sky.Background.Count = 1234
	cfg.Sky.RotationSpeed = 0.01
	cfg.Fireworks.MaxActive = 8
	cfg.Rocket.Ceiling = 1500

	testFile := filepath.Join(t.TempDir(), "preset.json")
	require.NoError(t, SaveSceneConfig(testFile, cfg))

	loaded, err := LoadSceneConfig(testFile)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSceneConfigPreset_PartialKeepsDefaults(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(testFile, []byte(`{"fireworks": {"MaxActive": 3}}`), 0644))

	loaded, err := LoadSceneConfig(testFile)
	require.NoError(t, err)

	want := DefaultSceneConfig()
	want.Fireworks.MaxActive = 3
	assert.Equal(t, want, loaded)
}

func TestSceneConfigPreset_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"fireworks": {"MaxActive": 0}}`), 0644))
	_, err := LoadSceneConfig(bad)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "fireworks")

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"sky": `), 0644))
	_, err = LoadSceneConfig(broken)
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = LoadSceneConfig(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultSceneConfig_Valid(t *testing.T) {
	require.NoError(t, DefaultSceneConfig().Validate())
}
