// Package config loads iotctl settings from a YAML file, a .env file and
// IOT_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	iot "github.com/tj-smith47/iot-go"
)

// Environment variables read by Load.
const (
	EnvDMSURL       = "IOT_DMS_URL"
	EnvMMSURL       = "IOT_MMS_URL"
	EnvTokenURL     = "IOT_TOKEN_URL"
	EnvClientID     = "IOT_CLIENT_ID"
	EnvClientSecret = "IOT_CLIENT_SECRET"
	EnvScope        = "IOT_SCOPE"
	EnvToken        = "IOT_TOKEN"
	EnvTokenFile    = "IOT_TOKEN_FILE"
	EnvTimeout      = "IOT_TIMEOUT_SEC"
	EnvEnv          = "IOT_ENV"
)

// Config represents the iotctl configuration.
type Config struct {
	DMSURL    string        `yaml:"dms_url"`
	MMSURL    string        `yaml:"mms_url"`
	TokenURL  string        `yaml:"token_url,omitempty"`
	ClientID  string        `yaml:"client_id,omitempty"`
	Scope     string        `yaml:"scope,omitempty"`
	TokenFile string        `yaml:"token_file,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	Env       string        `yaml:"env,omitempty"` // dev | prod, selects the log format

	// Never written to disk.
	ClientSecret string `yaml:"-"`
	Token        string `yaml:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DMSURL:  iot.DefaultDMSURL,
		MMSURL:  iot.DefaultMMSURL,
		Timeout: iot.DefaultTimeout,
		Env:     "dev",
	}
}

// DefaultPath returns ~/.config/iotctl/config.yaml (or the OS equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, "iotctl", "config.yaml"), nil
}

// DefaultTokenFile returns the token file next to the default config file.
func DefaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "iotctl-token.json"
	}
	return filepath.Join(dir, "iotctl", "token.json")
}

// Load reads path (a missing file is not an error), then .env in the
// working directory, then the IOT_* environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := readFile(path, cfg); err != nil {
		return nil, err
	}

	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()

	return cfg, nil
}

// LoadFile reads only the YAML file at path, without defaults or
// environment overrides. A missing file yields an empty configuration.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	if err := readFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Update applies change to the configuration stored at path and saves it.
// Values that came from .env or the environment are not written back.
func Update(path string, change func(*Config)) error {
	cfg, err := LoadFile(path)
	if err != nil {
		return err
	}
	change(cfg)
	return cfg.Save(path)
}

func readFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("cannot parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("cannot read config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.DMSURL, EnvDMSURL)
	setString(&c.MMSURL, EnvMMSURL)
	setString(&c.TokenURL, EnvTokenURL)
	setString(&c.ClientID, EnvClientID)
	setString(&c.ClientSecret, EnvClientSecret)
	setString(&c.Scope, EnvScope)
	setString(&c.Token, EnvToken)
	setString(&c.TokenFile, EnvTokenFile)
	setString(&c.Env, EnvEnv)
	if v := os.Getenv(EnvTimeout); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Timeout = time.Duration(secs) * time.Second
		}
	}
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.DMSURL == "" {
		c.DMSURL = d.DMSURL
	}
	if c.MMSURL == "" {
		c.MMSURL = d.MMSURL
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Env == "" {
		c.Env = d.Env
	}
	if c.TokenFile == "" {
		c.TokenFile = DefaultTokenFile()
	}
}

// Save writes the configuration to path, creating its directory.
// Secrets are never written.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("cannot serialize config: %w", err)
	}

	header := "# iotctl configuration\n\n"
	if err := os.WriteFile(path, []byte(header+string(data)), 0600); err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}
	return nil
}

// ClientOptions returns the iot.Client options this configuration implies.
func (c *Config) ClientOptions() []iot.Option {
	opts := []iot.Option{
		iot.WithServiceURLs(c.DMSURL, c.MMSURL),
		iot.WithTimeout(c.Timeout),
	}
	if c.TokenURL != "" {
		opts = append(opts, iot.WithTokenURL(c.TokenURL))
	}
	if c.Token != "" {
		opts = append(opts, iot.WithToken(c.Token))
	}
	return opts
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
