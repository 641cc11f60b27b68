package config

import (
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/PrimeAPI/JDA/internal/config/hook"
)

type Config struct {
	Discord struct {
		Auth string
		// Guilds is an optional allowlist; empty mirrors every guild the
		// gateway delivers.
		Guilds []uint64
	}

	Interaction struct {
		// Expiry is the validity window of an interaction response token.
		Expiry time.Duration
	}

	Storage struct {
		// PostgresDSN is optional; empty disables the moderation audit log.
		PostgresDSN string
	}

	Logging struct {
		Level zapcore.Level
	}

	Api struct {
		Port uint16
	}
}

func Read() (*Config, error) {
	v := viper.New()
	configureEnv(v)
	configureLocation(v)
	configureDefaults(v)
	return readUnmarshalConfig(v)
}

func configureEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("conf")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func configureLocation(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
}

func configureDefaults(v *viper.Viper) {
	v.SetDefault("interaction.expiry", "15m")
	v.SetDefault("logging.level", "info")
}

func readUnmarshalConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	c := &Config{}
	if err := v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		hook.Duration(), hook.Level(),
	))); err != nil {
		return nil, err
	}
	return c, nil
}
