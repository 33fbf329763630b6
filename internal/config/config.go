package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/epuerta/codeguard/internal/render"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

// ColorMode decides when previews are colorized
type ColorMode string

const (
	// ColorAuto colorizes when stdout is a terminal
	ColorAuto ColorMode = "auto"
	// ColorAlways colorizes unconditionally
	ColorAlways ColorMode = "always"
	// ColorNever never colorizes
	ColorNever ColorMode = "never"
)

// Config holds all configuration options for the application
type Config struct {
	// Preview configuration
	Color        ColorMode `mapstructure:"color"`
	Format       string    `mapstructure:"format"` // unified, side-by-side or simple
	ContextLines int       `mapstructure:"context_lines"`
	ColumnWidth  int       `mapstructure:"column_width"`

	// Apply configuration
	CWD               string `mapstructure:"cwd"`
	VerifyBeforeApply bool   `mapstructure:"verify_before_apply"`

	// External diff viewer
	DiffTool   string `mapstructure:"diff_tool"`
	ScratchDir string `mapstructure:"scratch_dir"`

	// Logging configuration
	Debug   bool   `mapstructure:"debug"`    // Enable debug logging
	LogFile string `mapstructure:"log_file"` // Path to log file
}

const (
	// Default configuration values
	DefaultFormat       = "unified"
	DefaultContextLines = 3
	DefaultColumnWidth  = render.DefaultColumnWidth
	DefaultDiffTool     = "vimdiff"
	DefaultConfigDir    = ".codeguard"
	EnvPrefix           = "CODEGUARD"
)

// Load loads configuration from ~/.codeguard/config.yaml and CODEGUARD_* environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getConfigDir())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults are registered with viper so AutomaticEnv can see every key
	v.SetDefault("color", string(ColorAuto))
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("context_lines", DefaultContextLines)
	v.SetDefault("column_width", DefaultColumnWidth)
	v.SetDefault("cwd", getWorkingDirectory())
	v.SetDefault("verify_before_apply", false)
	v.SetDefault("diff_tool", DefaultDiffTool)
	v.SetDefault("scratch_dir", "")
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects values the preview and apply paths cannot use
func (c *Config) Validate() error {
	if _, err := render.ParseFormat(c.Format); err != nil {
		return err
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", c.Color)
	}
	if c.ContextLines < 0 {
		return fmt.Errorf("context_lines must not be negative, got %d", c.ContextLines)
	}
	if c.ColumnWidth < 0 {
		return fmt.Errorf("column_width must not be negative, got %d", c.ColumnWidth)
	}
	return nil
}

// RenderOptions converts the preview settings into renderer options.
// In auto mode the answer depends on whether out is a terminal.
func (c *Config) RenderOptions(out *os.File) render.Options {
	format, err := render.ParseFormat(c.Format)
	if err != nil {
		format = render.FormatUnified
	}

	colorize := false
	switch c.Color {
	case ColorAlways:
		colorize = true
	case ColorAuto:
		colorize = out != nil && (isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()))
	}

	return render.Options{
		Colorize:    colorize,
		Format:      format,
		ColumnWidth: c.ColumnWidth,
	}
}

// getConfigDir returns the path to the config directory
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, DefaultConfigDir)
}

// getWorkingDirectory returns the current working directory
func getWorkingDirectory() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
