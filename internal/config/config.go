package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	TempDir    string `toml:"temp_dir"`
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
}

// MakeMKV contains configuration for disc scanning and ripping.
type MakeMKV struct {
	Binary       string `toml:"binary"`
	OpticalDrive string `toml:"optical_drive"`
	RipTimeout   int    `toml:"rip_timeout"`
	InfoTimeout  int    `toml:"info_timeout"`
}

// FFmpeg contains configuration for probing and stream-copy encoding.
type FFmpeg struct {
	Binary        string `toml:"binary"`
	ProbeBinary   string `toml:"probe_binary"`
	EncodeTimeout int    `toml:"encode_timeout"`
	ProbeTimeout  int    `toml:"probe_timeout"`
}

// Output contains configuration for the final library placement.
type Output struct {
	MoviesDir         string `toml:"movies_dir"`
	TVDir             string `toml:"tv_dir"`
	IncludeSubtitles  bool   `toml:"include_subtitles"`
	OverwriteExisting bool   `toml:"overwrite_existing"`
}

// Logging contains log sink configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for ripsharp.
type Config struct {
	Paths   Paths   `toml:"paths"`
	MakeMKV MakeMKV `toml:"makemkv"`
	FFmpeg  FFmpeg  `toml:"ffmpeg"`
	Output  Output  `toml:"output"`
	Logging Logging `toml:"logging"`
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ripsharp/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return names
// the file that was (or would have been) read; the bool reports whether it
// existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err = os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the temp, library, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TempDir, c.Paths.LibraryDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MoviesPath returns the absolute movies library directory.
func (c *Config) MoviesPath() string {
	return filepath.Join(c.Paths.LibraryDir, c.Output.MoviesDir)
}

// TVPath returns the absolute TV library directory.
func (c *Config) TVPath() string {
	return filepath.Join(c.Paths.LibraryDir, c.Output.TVDir)
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
