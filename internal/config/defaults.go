package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	defaultTempDir       = "/tmp/ripsharp"
	defaultLibraryDir    = "~/library"
	defaultLogDir        = "~/.local/share/ripsharp/logs"
	defaultMakeMKVBinary = "makemkvcon"
	defaultOpticalDrive  = "disc:0"
	defaultRipTimeout    = 3600
	defaultInfoTimeout   = 300
	defaultFFmpegBinary  = "ffmpeg"
	defaultProbeBinary   = "ffprobe"
	defaultEncodeTimeout = 7200
	defaultProbeTimeout  = 60
	defaultMoviesDir     = "movies"
	defaultTVDir         = "tv"
	defaultLogLevel      = "info"
	defaultLogFormat     = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir:    defaultTempDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		MakeMKV: MakeMKV{
			Binary:       defaultMakeMKVBinary,
			OpticalDrive: defaultOpticalDrive,
			RipTimeout:   defaultRipTimeout,
			InfoTimeout:  defaultInfoTimeout,
		},
		FFmpeg: FFmpeg{
			Binary:        defaultFFmpegBinary,
			ProbeBinary:   defaultProbeBinary,
			EncodeTimeout: defaultEncodeTimeout,
			ProbeTimeout:  defaultProbeTimeout,
		},
		Output: Output{
			MoviesDir:        defaultMoviesDir,
			TVDir:            defaultTVDir,
			IncludeSubtitles: true,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.MakeMKV.Binary = strings.TrimSpace(c.MakeMKV.Binary)
	if c.MakeMKV.Binary == "" {
		c.MakeMKV.Binary = defaultMakeMKVBinary
	}
	c.MakeMKV.OpticalDrive = strings.TrimSpace(c.MakeMKV.OpticalDrive)
	if c.MakeMKV.OpticalDrive == "" {
		c.MakeMKV.OpticalDrive = defaultOpticalDrive
	}
	if c.MakeMKV.RipTimeout <= 0 {
		c.MakeMKV.RipTimeout = defaultRipTimeout
	}
	if c.MakeMKV.InfoTimeout <= 0 {
		c.MakeMKV.InfoTimeout = defaultInfoTimeout
	}

	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	c.FFmpeg.ProbeBinary = strings.TrimSpace(c.FFmpeg.ProbeBinary)
	if c.FFmpeg.ProbeBinary == "" {
		c.FFmpeg.ProbeBinary = defaultProbeBinary
	}
	if c.FFmpeg.EncodeTimeout <= 0 {
		c.FFmpeg.EncodeTimeout = defaultEncodeTimeout
	}
	if c.FFmpeg.ProbeTimeout <= 0 {
		c.FFmpeg.ProbeTimeout = defaultProbeTimeout
	}

	c.Output.MoviesDir = strings.TrimSpace(c.Output.MoviesDir)
	if c.Output.MoviesDir == "" {
		c.Output.MoviesDir = defaultMoviesDir
	}
	c.Output.TVDir = strings.TrimSpace(c.Output.TVDir)
	if c.Output.TVDir == "" {
		c.Output.TVDir = defaultTVDir
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.TempDir == "" {
		return errors.New("paths.temp_dir must be set")
	}
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.TempDir == c.Paths.LibraryDir {
		return errors.New("paths.temp_dir and paths.library_dir must differ")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
