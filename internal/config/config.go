// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Content ContentConfig
	Sync    SyncConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name          string
	Port          string        // Server port (default: 8090)
	ReadTimeout   time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout  time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout   time.Duration // HTTP idle timeout (default: 60s)
	AdvertiseMDNS bool          // Advertise via mDNS/Zeroconf (default: true)
}

// ContentConfig holds prayer content configuration.
type ContentConfig struct {
	// BasePath is the directory holding one subdirectory per prayer
	// (content.txt + audio.mp3 + optional prayer.json).
	BasePath string
}

// SyncConfig holds sync engine configuration.
type SyncConfig struct {
	// DataPath is the directory for per-prayer timestamp files, the
	// calibration database, and the search index.
	DataPath string
	// TrackerInterval is the playback position polling cadence.
	TrackerInterval time.Duration
	// ScrollCooldown is how long auto-scroll stays suppressed after a
	// user-originated scroll.
	ScrollCooldown time.Duration
	// SeekCooldown is how long auto-scroll stays suppressed after a
	// tap-to-seek, covering the window where the player still reports the
	// pre-seek position.
	SeekCooldown time.Duration
	// DefaultItemHeight is the scroll offset estimate for sections that
	// have not been measured yet, in display points.
	DefaultItemHeight float64
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	contentPath := flag.String("content-path", "", "Path to the prayer content directory")
	dataPath := flag.String("data-path", "", "Base path for sync data storage")
	serverName := flag.String("server-name", "", "Name for the server")

	serverPort := flag.String("port", "", "Server port (default: 8090)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	advertiseMDNS := flag.String("advertise-mdns", "", "Advertise via mDNS/Zeroconf (default: true)")

	trackerInterval := flag.String("tracker-interval", "", "Playback position polling cadence (default: 500ms)")
	scrollCooldown := flag.String("scroll-cooldown", "", "Auto-scroll suppression after user scroll (default: 1500ms)")
	seekCooldown := flag.String("seek-cooldown", "", "Auto-scroll suppression after tap-to-seek (default: 500ms)")
	itemHeight := flag.String("default-item-height", "", "Fallback per-section scroll height (default: 120)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name:          getConfigValue(*serverName, "SERVER_NAME", "Munajat Server"),
			Port:          getConfigValue(*serverPort, "SERVER_PORT", "8090"),
			AdvertiseMDNS: getBoolConfigValue(*advertiseMDNS, "ADVERTISE_MDNS", true),
		},
		Content: ContentConfig{
			BasePath: getConfigValue(*contentPath, "CONTENT_PATH", ""),
		},
		Sync: SyncConfig{
			DataPath:          getConfigValue(*dataPath, "DATA_PATH", ""),
			DefaultItemHeight: getFloatConfigValue(*itemHeight, "DEFAULT_ITEM_HEIGHT", 120),
		},
	}

	// Parse durations.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}
	if cfg.Sync.TrackerInterval, err = parseDurationValue(*trackerInterval, "TRACKER_INTERVAL", "500ms"); err != nil {
		return nil, fmt.Errorf("invalid tracker interval: %w", err)
	}
	if cfg.Sync.ScrollCooldown, err = parseDurationValue(*scrollCooldown, "SCROLL_COOLDOWN", "1500ms"); err != nil {
		return nil, fmt.Errorf("invalid scroll cooldown: %w", err)
	}
	if cfg.Sync.SeekCooldown, err = parseDurationValue(*seekCooldown, "SEEK_COOLDOWN", "500ms"); err != nil {
		return nil, fmt.Errorf("invalid seek cooldown: %w", err)
	}

	// Expand and validate paths.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandContentPath(); err != nil {
		return nil, fmt.Errorf("invalid content path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Sync.DataPath == "" {
		return errors.New("sync data path cannot be empty after expansion")
	}
	if c.Sync.TrackerInterval <= 0 {
		return errors.New("tracker interval must be positive")
	}
	if c.Sync.ScrollCooldown <= 0 || c.Sync.SeekCooldown <= 0 {
		return errors.New("cooldowns must be positive")
	}
	if c.Sync.DefaultItemHeight <= 0 {
		return errors.New("default item height must be positive")
	}

	// ContentPath can be empty - the catalog starts empty and prayers can
	// be added at runtime.

	return nil
}

// TimestampsDir returns the directory holding a prayer's timestamp file.
func (c *Config) TimestampsDir(prayerID string) string {
	return filepath.Join(c.Sync.DataPath, "prayers", prayerID)
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/Munajat/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Munajat", "data")

	expanded, err := expandPath(c.Sync.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Sync.DataPath = expanded
	return nil
}

// expandContentPath expands ~ and makes the path absolute.
// If empty, leaves it empty so the catalog starts without prayers.
func (c *Config) expandContentPath() error {
	if c.Content.BasePath == "" {
		return nil
	}

	expanded, err := expandPath(c.Content.BasePath, "")
	if err != nil {
		return err
	}
	c.Content.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration setting from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
