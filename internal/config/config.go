package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"txtension/internal/database"
	"txtension/internal/utils"
)

const envPrefix = "TX"

// Config is the process configuration of the background service.
type Config struct {
	ListenAddr string
	DBPath     string
	LogLevel   string
	LogColor   bool
	GinMode    string
	Keyring    KeyringConfig
}

type KeyringConfig struct {
	// Backend is one of file, system or none.
	Backend  string
	Dir      string
	Password string
}

// New returns a viper instance with defaults and TX_ environment bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", "127.0.0.1:7345")
	v.SetDefault("db_path", database.GetDefaultDBPath())
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_color", false)
	v.SetDefault("gin_mode", "release")
	v.SetDefault("keyring.backend", "file")
	v.SetDefault("keyring.dir", filepath.Join(database.GetDataDir(), "keyring"))
	v.SetDefault("keyring.password", "")
	return v
}

// Load reads .env, the optional config file and the environment. Without an
// explicit file, txtension.{json,yaml,toml} is looked up in the data
// directory and the working directory.
func Load(v *viper.Viper, file string) (Config, error) {
	if err := utils.LoadEnv(); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("txtension")
		v.AddConfigPath(database.GetDataDir())
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		ListenAddr: v.GetString("listen_addr"),
		DBPath:     v.GetString("db_path"),
		LogLevel:   v.GetString("log_level"),
		LogColor:   v.GetBool("log_color"),
		GinMode:    v.GetString("gin_mode"),
		Keyring: KeyringConfig{
			Backend:  strings.ToLower(v.GetString("keyring.backend")),
			Dir:      v.GetString("keyring.dir"),
			Password: v.GetString("keyring.password"),
		},
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("listen_addr is required")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path is required")
	}
	switch c.Keyring.Backend {
	case "file", "system", "none":
	default:
		return fmt.Errorf("unknown keyring backend %q", c.Keyring.Backend)
	}
	return nil
}
