package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultListName       = "tasks"
)

type Keymap struct {
	Quit    string `toml:"quit"`
	Add     string `toml:"add"`
	Up      string `toml:"up"`
	Down    string `toml:"down"`
	Finish  string `toml:"finish"`
	Delete  string `toml:"delete"`
	Edit    string `toml:"edit"`
	Tag     string `toml:"tag"`
	Confirm string `toml:"confirm"`
	Cancel  string `toml:"cancel"`
}

type Config struct {
	TaskDir       string `toml:"task_dir"`
	List          string `toml:"list"`
	DeleteIfEmpty bool   `toml:"delete_if_empty"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath places the config under the user config dir, falling
// back to the working directory when that cannot be determined.
func ResolveConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "tt", DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.TaskDir == "" {
		cfg.TaskDir = "."
	}
	if cfg.List == "" {
		cfg.List = DefaultListName
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		TaskDir:       ".",
		List:          DefaultListName,
		DeleteIfEmpty: false,
		Keys: Keymap{
			Quit:    "q",
			Add:     "a",
			Up:      "k",
			Down:    "j",
			Finish:  " ",
			Delete:  "d",
			Edit:    "e",
			Tag:     "x",
			Confirm: "enter",
			Cancel:  "esc",
		},
	}
}
