package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// AudioConfig holds feedback and volume settings.
type AudioConfig struct {
	ChimeEnabled  bool   `toml:"chime_enabled"`
	ChimeMute     string `toml:"chime_mute"`
	ChimeUnmute   string `toml:"chime_unmute"`
	// RestoreVolume seeds the TUI with the volume saved by the last session.
	RestoreVolume bool   `toml:"restore_volume"`
	MeterEnabled  bool   `toml:"meter_enabled"`
	// VolumeStep is the change applied by the TUI volume keys.
	VolumeStep float32 `toml:"volume_step"`
}

// NotifyConfig holds desktop notification settings.
type NotifyConfig struct {
	Desktop bool `toml:"desktop"`
}

// CustomTheme is a user-defined TUI palette. Empty colors fall back to the
// default theme.
type CustomTheme struct {
	Name       string `toml:"name"`
	Live       string `toml:"live"`
	Muted      string `toml:"muted"`
	Frame      string `toml:"frame"`
	Volume     string `toml:"volume"`
	Error      string `toml:"error"`
	Note       string `toml:"note"`
	Background string `toml:"background"`
	Text       string `toml:"text"`
	Dimmed     string `toml:"dimmed"`
	Separator  string `toml:"separator"`
}

// Config is the top-level configuration.
type Config struct {
	// Backend selects the audio backend: "auto", "coreaudio" or "pulse".
	Backend      string        `toml:"backend"`
	Theme        string        `toml:"theme"`
	Audio        AudioConfig   `toml:"audio"`
	Notify       NotifyConfig  `toml:"notify"`
	CustomThemes []CustomTheme `toml:"custom_theme"`
}

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		Backend: "auto",
		Theme:   "synthwave",
		Audio: AudioConfig{
			ChimeEnabled:  true,
			ChimeMute:     "",
			ChimeUnmute:   "",
			RestoreVolume: true,
			MeterEnabled:  true,
			VolumeStep:    0.05,
		},
		Notify: NotifyConfig{
			Desktop: false,
		},
	}
}

// DefaultPath returns the default config file path (~/.config/micmute/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "micmute", "config.toml")
}

// Save writes the config as TOML to the given path, creating parent
// directories if needed. The write is atomic: data is written to a
// temporary file and renamed into place.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".micmute-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads the TOML config from path. If the file does not exist,
// it returns the default config without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.Audio.VolumeStep <= 0 || cfg.Audio.VolumeStep > 1 {
		cfg.Audio.VolumeStep = Default().Audio.VolumeStep
	}

	return cfg, nil
}
