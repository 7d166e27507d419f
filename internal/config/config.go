// Package config loads service settings from configs/config.yml and
// DAMPER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "DAMPER"

type Config struct {
	Port     string
	LogLevel string
	DBPath   string
	Auth     AuthConfig
	Engine   EngineConfig
	Playback PlaybackConfig
	// NodePreset is an optional YAML file with initial node parameters.
	NodePreset string
}

type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

type EngineConfig struct {
	FrameRate       float64
	MaxReplayFrames int
	MaxCachedFrames int
}

// PlaybackConfig drives the background loop that advances currentTime.
// A zero or negative span means playback runs forward without wrapping.
type PlaybackConfig struct {
	Enabled bool
	Tick    time.Duration
	StartS  float64
	EndS    float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "damper.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("engine.frame_rate", 24.0)
	v.SetDefault("engine.max_replay_frames", 100000)
	v.SetDefault("engine.max_cached_frames", 100000)
	v.SetDefault("playback.enabled", false)
	v.SetDefault("playback.tick", time.Second)
	v.SetDefault("playback.start_s", 0.0)
	v.SetDefault("playback.end_s", 10.0)
	v.SetDefault("node.preset", "")
}

// Load reads config.yml from dirs (first match wins). A missing file is not
// an error: defaults and environment still apply.
func Load(dirs ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log.level"),
		DBPath:   v.GetString("db.path"),
		Auth: AuthConfig{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
		},
		Engine: EngineConfig{
			FrameRate:       v.GetFloat64("engine.frame_rate"),
			MaxReplayFrames: v.GetInt("engine.max_replay_frames"),
			MaxCachedFrames: v.GetInt("engine.max_cached_frames"),
		},
		Playback: PlaybackConfig{
			Enabled: v.GetBool("playback.enabled"),
			Tick:    v.GetDuration("playback.tick"),
			StartS:  v.GetFloat64("playback.start_s"),
			EndS:    v.GetFloat64("playback.end_s"),
		},
		NodePreset: v.GetString("node.preset"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Engine.FrameRate <= 0 {
		return fmt.Errorf("engine.frame_rate must be positive, got %v", c.Engine.FrameRate)
	}
	if c.Engine.MaxReplayFrames <= 0 {
		return fmt.Errorf("engine.max_replay_frames must be positive, got %d", c.Engine.MaxReplayFrames)
	}
	if c.Engine.MaxCachedFrames <= 0 {
		return fmt.Errorf("engine.max_cached_frames must be positive, got %d", c.Engine.MaxCachedFrames)
	}
	if c.Playback.Enabled && c.Playback.Tick <= 0 {
		return fmt.Errorf("playback.tick must be positive, got %s", c.Playback.Tick)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}
