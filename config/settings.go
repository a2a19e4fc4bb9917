package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Database DatabaseSettings `json:"database"`
	Catalog  CatalogSettings  `json:"catalog"`
	Auth     AuthSettings     `json:"auth"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseSettings struct {
	Path string `json:"path"`
}

type CatalogSettings struct {
	BaseURL        string `json:"baseUrl"`
	RetryAttempts  int    `json:"retryAttempts"`
	RetryDelayMs   int    `json:"retryDelayMs"`
	RateIntervalMs int    `json:"rateIntervalMs"`
	RateBurst      int    `json:"rateBurst"`
	CacheTTLMins   int    `json:"cacheTtlMins"`
	RefreshWorkers int    `json:"refreshWorkers"`
}

type AuthSettings struct {
	// Secret signs bearer tokens. Generated and persisted on first start if
	// left empty.
	Secret        string `json:"secret"`
	TokenTTLHours int    `json:"tokenTtlHours"`
}

type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: 8620},
		Database: DatabaseSettings{Path: "cache/cinetrack.db"},
		Catalog: CatalogSettings{
			BaseURL:        "https://api.tvmaze.com",
			RetryAttempts:  3,
			RetryDelayMs:   300,
			RateIntervalMs: 500,
			RateBurst:      5,
			CacheTTLMins:   30,
			RefreshWorkers: 4,
		},
		Auth: AuthSettings{Secret: "", TokenTTLHours: 24},
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk, creating it with defaults if missing.
// A generated auth secret is written back so tokens survive restarts, and the
// CINETRACK_SECRET and CINETRACK_DB environment variables override their file
// counterparts without being persisted.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}

	settings := DefaultSettings()
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		if err := m.Save(settings); err != nil {
			return Settings{}, err
		}
	} else {
		data, err := os.ReadFile(m.path)
		if err != nil {
			return Settings{}, err
		}
		if err := json.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", m.path, err)
		}
	}

	if settings.Auth.Secret == "" {
		secret, err := generateSecret()
		if err != nil {
			return Settings{}, err
		}
		settings.Auth.Secret = secret
		if err := m.Save(settings); err != nil {
			return Settings{}, err
		}
	}

	if secret := os.Getenv("CINETRACK_SECRET"); secret != "" {
		settings.Auth.Secret = secret
	}
	if dbPath := os.Getenv("CINETRACK_DB"); dbPath != "" {
		settings.Database.Path = dbPath
	}
	return settings, nil
}

// Save writes settings atomically via a temp file rename.
func (m *Manager) Save(s Settings) error {
	if err := m.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
