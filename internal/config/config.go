// Package config reads apidesk settings from a YAML file, APIDESK_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"apidesk/internal/model"
	"apidesk/internal/openapi"
)

const (
	EnvPrefix = "APIDESK"
	FileName  = "apidesk"
)

type Config struct {
	Title          string              `mapstructure:"title"`
	DarkMode       bool                `mapstructure:"dark_mode"`
	GlobalHeaders  []model.Header      `mapstructure:"global_headers"`
	Environments   []model.Environment `mapstructure:"environments"`
	Logo           string              `mapstructure:"logo"`
	LogoLink       string              `mapstructure:"logo_link"`
	Spec           string              `mapstructure:"spec"`
	BaseURL        string              `mapstructure:"base_url"`
	DataDir        string              `mapstructure:"data_dir"`
	RequestTimeout time.Duration       `mapstructure:"request_timeout"`
	Debug          bool                `mapstructure:"debug"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("title", "apidesk")
	v.SetDefault("dark_mode", false)
	v.SetDefault("logo", "")
	v.SetDefault("logo_link", "")
	v.SetDefault("spec", "")
	v.SetDefault("base_url", "")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("request_timeout", "0s")
	v.SetDefault("debug", false)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".apidesk"
	}
	return filepath.Join(home, ".apidesk")
}

// Load reads file, or apidesk.yaml from the working directory or
// $HOME/.config/apidesk when file is empty. A missing default file is not
// an error.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "apidesk"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Spec = SpecSource(cfg.Spec)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	return cfg, nil
}

// SpecSource turns a local document path into an absolute "@path" source.
// URLs and already marked paths are returned as is.
func SpecSource(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" || openapi.IsRemote(spec) || strings.HasPrefix(spec, "@") {
		return spec
	}
	spec = expandHome(spec)
	if abs, err := filepath.Abs(spec); err == nil {
		spec = abs
	}
	return "@" + spec
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// DatabasePath is the SQLite file backing durable storage.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "apidesk.db")
}
