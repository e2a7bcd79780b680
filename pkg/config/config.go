package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything yomu reads from its config file.
type Config struct {
	APIURL       string
	Token        string
	Language     string
	RegionMargin float64
	DownloadDir  string
	DataPath     string
}

const (
	defaultConfigPath  = "~/.config/yomu/config.toml"
	defaultDataPath    = "~/.local/share/yomu/yomu.db"
	defaultDownloadDir = "~/Downloads"
	defaultLanguage    = "en"
	defaultMargin      = 30
)

// Load parses the config file at path (the default location when path is
// empty), filling defaults for anything missing. A missing file is not an
// error. YOMU_TOKEN in the environment overrides the stored token.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Language:     defaultLanguage,
		RegionMargin: defaultMargin,
		DownloadDir:  mustExpand(defaultDownloadDir),
		DataPath:     mustExpand(defaultDataPath),
	}

	raw := struct {
		APIURL       string  `toml:"api_url"`
		Token        string  `toml:"token"`
		Language     string  `toml:"language"`
		RegionMargin float64 `toml:"region_margin"`
		DownloadDir  string  `toml:"download_dir"`
		DataPath     string  `toml:"data_path"`
	}{}

	content, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(content, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.APIURL = strings.TrimSpace(raw.APIURL)
	cfg.Token = strings.TrimSpace(raw.Token)
	if lang := strings.TrimSpace(raw.Language); lang != "" {
		cfg.Language = lang
	}
	if raw.RegionMargin > 0 {
		cfg.RegionMargin = raw.RegionMargin
	}
	if dir := strings.TrimSpace(raw.DownloadDir); dir != "" {
		cfg.DownloadDir = mustExpand(dir)
	}
	if p := strings.TrimSpace(raw.DataPath); p != "" {
		cfg.DataPath = mustExpand(p)
	}

	if token := os.Getenv("YOMU_TOKEN"); token != "" {
		cfg.Token = token
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath
	}
	return expand(path)
}

func expand(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func mustExpand(path string) string {
	expanded, err := expand(path)
	if err != nil {
		return path
	}
	return expanded
}
