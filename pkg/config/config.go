/*
Package config manages TOML config for LetterServe.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/letterserve/internal/utils"
	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/charmbracelet/log"
)

// FileName is the config file looked up in the config dir.
const FileName = "letterserve.toml"

// Config holds the entire config structure
type Config struct {
	Solver SolverConfig `toml:"solver"`
	Dict   DictConfig   `toml:"dict"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// SolverConfig has query options.
type SolverConfig struct {
	Mode       string `toml:"mode"`
	Rank       bool   `toml:"rank"`
	MaxLetters int    `toml:"max_letters"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	Path     string `toml:"path"`
	MaxWords int    `toml:"max_words"`
	Strict   bool   `toml:"strict"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxBatch   int `toml:"max_batch"`
	Workers    int `toml:"workers"`
	MaxResults int `toml:"max_results"`
	CacheSize  int `toml:"cache_size"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	Limit    int  `toml:"limit"`
	ShowFreq bool `toml:"show_freq"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			Mode:       letters.ModeExhaustive.String(),
			Rank:       true,
			MaxLetters: 1000,
		},
		Dict: DictConfig{
			Path:     "data/en_50k.txt",
			MaxWords: 0,
			Strict:   false,
		},
		Server: ServerConfig{
			MaxBatch:   256,
			Workers:    4,
			MaxResults: 64,
			CacheSize:  1024,
		},
		CLI: CliConfig{
			Limit:    24,
			ShowFreq: true,
		},
	}
}

// SolverMode parses the configured mode, falling back to exhaustive.
func (c *Config) SolverMode() letters.Mode {
	mode, err := letters.ParseMode(c.Solver.Mode)
	if err != nil {
		log.Warnf("Invalid solver mode in config: %v. Using %s", err, letters.ModeExhaustive)
		return letters.ModeExhaustive
	}
	return mode
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/letterserve
// 2. ~/Library/Application Support/letterserve (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "letterserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "letterserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for letterserve.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/letterserve/letterserve.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file, keeping defaults for missing keys.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse salvages whatever sections of a broken file still decode.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "solver"); ok {
		extractSolverConfig(section, &config.Solver)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractSolverConfig(data map[string]any, solver *SolverConfig) {
	if val, ok := utils.ExtractString(data, "mode"); ok {
		solver.Mode = val
	}
	if val, ok := utils.ExtractBool(data, "rank"); ok {
		solver.Rank = val
	}
	if val, ok := utils.ExtractInt64(data, "max_letters"); ok {
		solver.MaxLetters = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		dict.Path = val
	}
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		dict.MaxWords = val
	}
	if val, ok := utils.ExtractBool(data, "strict"); ok {
		dict.Strict = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_batch"); ok {
		server.MaxBatch = val
	}
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		server.Workers = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		server.MaxResults = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		server.CacheSize = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "limit"); ok {
		cli.Limit = val
	}
	if val, ok := utils.ExtractBool(data, "show_freq"); ok {
		cli.ShowFreq = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
