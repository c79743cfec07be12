package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const configFileName = "config.json"

// Config is the client's static configuration. Precedence, lowest first:
// built-in defaults, config.json in the data dir, a .env file in the working
// directory, then real environment variables.
type Config struct {
	ServerURL string `json:"server_url"`
	DataDir   string `json:"data_dir"`
	UserID    string `json:"user_id"` // optional, rides along on created answers
}

// Load reads the configuration for the given data dir. An empty dir means
// ~/.qna. A missing config file is written back with the defaults so users
// have something to edit.
func Load(dir string) (*Config, error) {
	// .env before os.Getenv so both behave the same
	_ = godotenv.Load()

	if dir == "" {
		dir = os.Getenv("QNA_DIR")
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("home: %w", err)
		}
		dir = filepath.Join(home, ".qna")
	}

	cfg := &Config{
		ServerURL: "http://localhost:8000",
		DataDir:   dir,
	}

	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Env has the last word.
	if s := strings.TrimSpace(os.Getenv("QNA_SERVER")); s != "" {
		cfg.ServerURL = s
	}
	if u := strings.TrimSpace(os.Getenv("QNA_USER")); u != "" {
		cfg.UserID = u
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	cfg.DataDir = dir

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}
