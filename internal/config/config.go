// Package config loads the patcher settings from a YAML file, the
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envVarPrefix = "REVOKEPATCH"
	fileName     = "revokepatch"
)

// Config contains every setting shared by the CLI and the GUI.
type Config struct {
	// Minimum level of a log required to be written. Options: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`
	// Full path to file to which logs will be written. Blank writes to stderr.
	LogFilePath string `mapstructure:"log_file_path"`

	Catalog struct {
		// Local catalog document (JSON or YAML) used instead of the bundled one.
		File string `mapstructure:"file"`
		// Mirrors tried in order by "catalog update".
		Mirrors  []string      `mapstructure:"mirrors"`
		Timeout  time.Duration `mapstructure:"timeout"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"catalog"`

	Backup struct {
		Suffix string `mapstructure:"suffix"`
	} `mapstructure:"backup"`

	// Per-application install roots that take precedence over detection.
	InstallPaths map[string]string `mapstructure:"install_paths"`
}

var defaults = map[string]any{
	"log_level":     "warn",
	"log_file_path": "",
	"catalog.file":  "",
	"catalog.mirrors": []string{
		"https://huiyadanli.coding.me/i/revokemsg/05.json",
		"https://www.huiyadan.com/i/revokemsg/05.json",
	},
	"catalog.timeout":      "15s",
	"catalog.cache_ttl":    "10m",
	"backup.suffix":        ".h.bak",
	"install_paths.wechat": "",
	"install_paths.qq":     "",
	"install_paths.tim":    "",
}

// Load reads the config file at path. An empty path searches the working
// directory and the user config directory; a missing file there is not an
// error. Environment variables such as REVOKEPATCH_CATALOG_FILE override
// file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(envVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, fileName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return cfg, nil
}

// InstallPath returns the configured install root for an application.
func (c *Config) InstallPath(app string) string {
	return c.InstallPaths[strings.ToLower(app)]
}
