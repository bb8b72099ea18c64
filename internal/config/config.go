// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for wizflow.
type Config struct {
	DataDir  string `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
	Policy   string `mapstructure:"policy" yaml:"policy"`
	Stepper  string `mapstructure:"stepper" yaml:"stepper"`
	Journal  bool   `mapstructure:"journal" yaml:"journal"`
	Headless bool   `mapstructure:"headless" yaml:"headless"`
}

// Default returns the configuration used when no file or env var overrides it.
func Default() *Config {
	return &Config{
		DataDir:  ".wizflow",
		LogLevel: "info",
		Policy:   "visited-only",
		Stepper:  "chevron",
		Journal:  true,
	}
}

// keys lists every setting bound to a WIZFLOW_ env var.
var keys = []string{"data_dir", "log_level", "log_file", "policy", "stepper", "journal", "headless"}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("wizflow")

	def := Default()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("policy", def.Policy)
	v.SetDefault("stepper", def.Stepper)
	v.SetDefault("journal", def.Journal)
	v.SetDefault("headless", def.Headless)

	v.SetEnvPrefix("WIZFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so bools parse from env
	for _, key := range keys {
		if err := v.BindEnv(key, "WIZFLOW_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/wizflow/wizflow.yml or $XDG_CONFIG_HOME/wizflow/wizflow.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wizflow", "wizflow.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "wizflow", "wizflow.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "wizflow.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
