package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/sadopc/timeline/internal/timeline"
)

// EncoderConfig sizes entry markers.
type EncoderConfig struct {
	MinSize    int `mapstructure:"min_size" validate:"gte=1"`
	MaxSize    int `mapstructure:"max_size" validate:"gtfield=MinSize"`
	SaturateAt int `mapstructure:"saturate_at" validate:"gte=1"`
	LongNoteAt int `mapstructure:"long_note_at" validate:"gte=0"`
}

type WindowConfig struct {
	Preset string `mapstructure:"preset" validate:"oneof=30d 60d 90d 6m 12m all"`
}

type Config struct {
	DBPath     string        `mapstructure:"db_path" validate:"required"`
	LogFile    string        `mapstructure:"log_file"`
	LogLevel   string        `mapstructure:"log_level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Window     WindowConfig  `mapstructure:"window"`
	Encoder    EncoderConfig `mapstructure:"encoder"`
	SeedGroups []string      `mapstructure:"seed_groups" validate:"dive,required"`
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) Config {
	enc := timeline.DefaultEncoder()
	return Config{
		DBPath:   filepath.Join(dir, "timeline.db"),
		LogFile:  filepath.Join(dir, "timeline.log"),
		LogLevel: "info",
		Window:   WindowConfig{Preset: string(timeline.DefaultPreset)},
		Encoder: EncoderConfig{
			MinSize:    enc.MinSize,
			MaxSize:    enc.MaxSize,
			SaturateAt: enc.SaturateAt,
			LongNoteAt: enc.LongNoteAt,
		},
		SeedGroups: []string{},
	}
}

// Dir returns ~/.config/timeline (or the platform equivalent).
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "timeline"), nil
}

// Load reads the YAML config at path, or config.yaml under Dir when path is
// empty. A missing file yields the defaults. TIMELINE_* environment
// variables override file values (TIMELINE_ENCODER_MAX_SIZE etc).
func Load(path string) (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, fmt.Errorf("config dir: %w", err)
	}
	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}
	cfg := Default(dir)

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvPrefix("TIMELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("window.preset", cfg.Window.Preset)
	v.SetDefault("encoder.min_size", cfg.Encoder.MinSize)
	v.SetDefault("encoder.max_size", cfg.Encoder.MaxSize)
	v.SetDefault("encoder.saturate_at", cfg.Encoder.SaturateAt)
	v.SetDefault("encoder.long_note_at", cfg.Encoder.LongNoteAt)
	v.SetDefault("seed_groups", cfg.SeedGroups)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TimelineEncoder converts the encoder section.
func (c Config) TimelineEncoder() timeline.Encoder {
	return timeline.Encoder{
		MinSize:    c.Encoder.MinSize,
		MaxSize:    c.Encoder.MaxSize,
		SaturateAt: c.Encoder.SaturateAt,
		LongNoteAt: c.Encoder.LongNoteAt,
	}
}

// Preset returns the configured window preset.
func (c Config) Preset() timeline.Preset {
	p, err := timeline.ParsePreset(c.Window.Preset)
	if err != nil {
		return timeline.DefaultPreset
	}
	return p
}
