// Package config loads tmibot configuration from YAML, TOML, or JSON files
// (or URLs), with environment variable overrides and validation.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the bot configuration
type Config struct {
	// Chat server settings
	Server struct {
		Host     string `yaml:"host" toml:"host" json:"host" env:"TMI_HOST" validate:"required"`
		Port     int    `yaml:"port" toml:"port" json:"port" env:"TMI_PORT" validate:"min=1,max=65535"`
		Username string `yaml:"username" toml:"username" json:"username" env:"TMI_USERNAME"`
		Token    string `yaml:"token" toml:"token" json:"token" env:"TMI_TOKEN"`
	} `yaml:"server" toml:"server" json:"server"`

	// Client settings
	Client struct {
		BufferSize int      `yaml:"buffer_size" toml:"buffer_size" json:"buffer_size" env:"TMI_BUFFER_SIZE" validate:"min=1"`
		Channels   []string `yaml:"channels" toml:"channels" json:"channels" env:"TMI_CHANNELS"`
		Debug      bool     `yaml:"debug" toml:"debug" json:"debug" env:"TMI_DEBUG"`
	} `yaml:"client" toml:"client" json:"client"`

	// Admin API settings
	Admin struct {
		Enabled      bool     `yaml:"enabled" toml:"enabled" json:"enabled" env:"TMI_ADMIN_ENABLED"`
		Host         string   `yaml:"host" toml:"host" json:"host" env:"TMI_ADMIN_HOST"`
		Port         int      `yaml:"port" toml:"port" json:"port" env:"TMI_ADMIN_PORT" validate:"min=0,max=65535"`
		BearerTokens []string `yaml:"bearer_tokens" toml:"bearer_tokens" json:"bearer_tokens" env:"TMI_ADMIN_TOKENS"`
	} `yaml:"admin" toml:"admin" json:"admin"`

	// Chat recorder settings
	Recorder struct {
		Enabled bool   `yaml:"enabled" toml:"enabled" json:"enabled" env:"TMI_RECORDER_ENABLED"`
		DSN     string `yaml:"dsn" toml:"dsn" json:"dsn" env:"TMI_RECORDER_DSN"`
	} `yaml:"recorder" toml:"recorder" json:"recorder"`

	// Configuration source for reloading
	Source string
}

// setDefaults applies the default endpoint and buffer settings.
func (c *Config) setDefaults() {
	c.Server.Host = "irc.chat.twitch.tv"
	c.Server.Port = 6667
	c.Client.BufferSize = 512
	c.Admin.Host = "127.0.0.1"
	c.Admin.Port = 8080
	c.Recorder.DSN = "tmibot.db"
}

// Load loads configuration from a file or URL
func Load(source string) (*Config, error) {
	cfg := &Config{
		Source: source,
	}
	cfg.setDefaults()

	if err := cfg.loadFromSource(source); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Reload reloads the configuration from the original source or a new source
func (c *Config) Reload(newSource string) error {
	if newSource != "" {
		c.Source = newSource
	}

	newCfg := &Config{}
	newCfg.setDefaults()

	if err := newCfg.loadFromSource(c.Source); err != nil {
		return err
	}

	applyEnvOverrides(newCfg)

	*c = *newCfg
	return nil
}

// Validate checks the loaded configuration against its validation tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// loadFromSource loads configuration from a file or URL
func (c *Config) loadFromSource(source string) error {
	var data []byte
	var err error

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return fmt.Errorf("failed to load config from URL: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("failed to load config from URL, status: %s", resp.Status)
		}

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read config from URL: %v", err)
		}
	} else {
		data, err = os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("failed to read config file: %v", err)
		}
	}

	// Determine the format based on file extension
	switch {
	case strings.HasSuffix(source, ".yaml") || strings.HasSuffix(source, ".yml"):
		err = yaml.Unmarshal(data, c)
	case strings.HasSuffix(source, ".toml"):
		err = toml.Unmarshal(data, c)
	case strings.HasSuffix(source, ".json"):
		err = json.Unmarshal(data, c)
	default:
		// Default to YAML
		err = yaml.Unmarshal(data, c)
	}

	if err != nil {
		return fmt.Errorf("failed to parse config: %v", err)
	}

	c.Source = source
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	applyEnvOverridesRecursive(reflect.ValueOf(cfg).Elem())
}

// applyEnvOverridesRecursive recursively applies environment variable overrides
func applyEnvOverridesRecursive(v reflect.Value) {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		// Skip unexported fields
		if field.PkgPath != "" {
			continue
		}

		envTag := field.Tag.Get("env")

		if envTag != "" {
			if envValue, exists := os.LookupEnv(envTag); exists {
				setFieldFromEnv(fieldValue, envValue)
			}
		} else if field.Type.Kind() == reflect.Struct {
			applyEnvOverridesRecursive(fieldValue)
		}
	}
}

// setFieldFromEnv sets a field's value from an environment variable
func setFieldFromEnv(field reflect.Value, envValue string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(envValue)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v, err := parseInt(envValue); err == nil {
			field.SetInt(v)
		}
	case reflect.Bool:
		if v, err := parseBool(envValue); err == nil {
			field.SetBool(v)
		}
	case reflect.Slice:
		// Handle string slices
		if field.Type().Elem().Kind() == reflect.String {
			values := strings.Split(envValue, ",")
			slice := reflect.MakeSlice(field.Type(), len(values), len(values))
			for i, v := range values {
				slice.Index(i).SetString(strings.TrimSpace(v))
			}
			field.Set(slice)
		}
	}
}

func parseInt(s string) (int64, error) {
	var v int64
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}

func parseBool(s string) (bool, error) {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "y", nil
}

// GetServerAddress returns the formatted chat server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetAdminListenAddress returns the formatted listen address for the admin API
func (c *Config) GetAdminListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Admin.Host, c.Admin.Port)
}
