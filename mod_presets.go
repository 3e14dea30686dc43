package skyshow

import (
	"encoding/json"
	"fmt"
	"os"
)

func SaveSceneConfig(filename string, cfg SceneConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scene config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write scene config file: %w", err)
	}
	return nil
}

// LoadSceneConfig reads a preset over DefaultSceneConfig, so a preset only
// needs the knobs it changes. The result is validated.
func LoadSceneConfig(filename string) (SceneConfig, error) {
	cfg := DefaultSceneConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to read scene config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfiguration, filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}
