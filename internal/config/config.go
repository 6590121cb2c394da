package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	TelemetryURL     string `mapstructure:"telemetry_url"`
	APIFamily        string `mapstructure:"api_family"`
	Corner           string `mapstructure:"corner"`
	OpacityPercent   int    `mapstructure:"opacity_percent"`
	ShowHostStats    bool   `mapstructure:"show_host_stats"`
	ProfilePath      string `mapstructure:"profile_path"`
	MirrorEnabled    bool   `mapstructure:"mirror_enabled"`
	MirrorPort       int    `mapstructure:"mirror_port"`
	MirrorMaxClients int    `mapstructure:"mirror_max_clients"`
	ControlPipe      string `mapstructure:"control_pipe"`
	LogLevel         string `mapstructure:"log_level"`
	LogFormat        string `mapstructure:"log_format"`
	LogFile          string `mapstructure:"log_file"`
}

func Default() *Config {
	return &Config{
		TelemetryURL:     "ws://127.0.0.1:8765/ws",
		APIFamily:        "auto",
		Corner:           "top-left",
		OpacityPercent:   80,
		ShowHostStats:    false,
		MirrorEnabled:    false,
		MirrorPort:       9998,
		MirrorMaxClients: 2,
		ControlPipe:      `\\.\pipe\simwidget-overlay`,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("overlay")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SIMOVERLAY")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	return SaveTo(cfg, "")
}

func SaveTo(cfg *Config, cfgFile string) error {
	viper.Set("telemetry_url", cfg.TelemetryURL)
	viper.Set("api_family", cfg.APIFamily)
	viper.Set("corner", cfg.Corner)
	viper.Set("opacity_percent", cfg.OpacityPercent)
	viper.Set("show_host_stats", cfg.ShowHostStats)
	viper.Set("profile_path", cfg.ProfilePath)
	viper.Set("mirror_enabled", cfg.MirrorEnabled)
	viper.Set("mirror_port", cfg.MirrorPort)
	viper.Set("mirror_max_clients", cfg.MirrorMaxClients)
	viper.Set("control_pipe", cfg.ControlPipe)
	viper.Set("log_level", cfg.LogLevel)
	viper.Set("log_format", cfg.LogFormat)
	viper.Set("log_file", cfg.LogFile)

	var cfgPath string
	if cfgFile != "" {
		cfgPath = cfgFile
		dir := filepath.Dir(cfgPath)
		if dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return err
			}
		}
	} else {
		cfgPath = filepath.Join(configDir(), "overlay.yaml")
		if err := os.MkdirAll(configDir(), 0700); err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgPath); err != nil {
		return err
	}

	return os.Chmod(cfgPath, 0600)
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "simwidget")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "simwidget")
	default:
		return filepath.Join(os.Getenv("HOME"), ".config", "simwidget")
	}
}
