package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in
// ~/.config/motherload/config.yml.
type GlobalConfig struct {
	LibraryPath  string `yaml:"library_path,omitempty"`
	ContactEmail string `yaml:"contact_email,omitempty"`
	S2APIKey     string `yaml:"s2_api_key,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "motherload"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/motherload/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.LibraryPath != "" {
		cfg.LibraryPath = ExpandPath(cfg.LibraryPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ResolveRoot finds the library to operate on: ML_ROOT if set, then the
// nearest .motherload above start, then library_path from the global
// config.
func ResolveRoot(start string) (string, error) {
	if env := strings.TrimSpace(os.Getenv(EnvRoot)); env != "" {
		root := ExpandPath(env)
		if !IsRepository(root) {
			return "", fmt.Errorf("%s=%s: %w", EnvRoot, root, ErrNoRepository)
		}
		return root, nil
	}

	if root, err := FindRepository(start); err == nil {
		return root, nil
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if cfg.LibraryPath != "" && IsRepository(cfg.LibraryPath) {
		return cfg.LibraryPath, nil
	}
	return "", ErrNoRepository
}

// HelpfulConfigMessage returns a helpful message when no library is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No motherload library found.

Create one with:
  ml init /path/to/library

Or point %s at an existing library, or create %s:
  mkdir -p %s
  echo 'library_path: /path/to/library' > %s`,
		EnvRoot,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
