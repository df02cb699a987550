package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/unkani"
	ConfigFileName    = "unkani.yml"
	EnvPrefix         = "UNKANI_"
)

const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// Config holds all unkani configuration settings
type Config struct {
	// SecretKey signs account flow tokens
	SecretKey string `yaml:"secret_key" validate:"required,min=8"`

	// DatabaseURL is the PostgreSQL connection string
	DatabaseURL string `yaml:"database_url" validate:"required"`

	// AuditDatabaseURL enables persisting audit records when set
	AuditDatabaseURL string `yaml:"audit_database_url"`

	// RedisURL is used by the rate limiter and the email queue
	RedisURL string `yaml:"redis_url" validate:"required"`

	BindAddress string `yaml:"bind_address" validate:"required,ip"`
	Port        int    `yaml:"port" validate:"min=1,max=65535"`

	// BaseURL is the externally visible URL used in Location headers and emails
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// APITokenTTL is the lifetime of bearer API tokens in seconds
	APITokenTTL int `yaml:"api_token_ttl" validate:"min=1"`

	// ConfirmationTokenTTL is the lifetime of confirm, reset and change-email tokens in seconds
	ConfirmationTokenTTL int `yaml:"confirmation_token_ttl" validate:"min=1"`

	RateLimitRequests int `yaml:"rate_limit_requests" validate:"min=1"`
	RateLimitPeriod   int `yaml:"rate_limit_period" validate:"min=1"`

	BcryptCost int `yaml:"bcrypt_cost" validate:"min=4,max=31"`

	MailFrom     string `yaml:"mail_from" validate:"required"`
	ResendAPIKey string `yaml:"resend_api_key"`

	LogLevel  string `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"oneof=json console"`

	ValueSetCacheSize int `yaml:"value_set_cache_size" validate:"min=0"`
	ValueSetCacheTTL  int `yaml:"value_set_cache_ttl" validate:"min=0"`

	// TrustedProxies is a list of CIDR ranges whose X-Forwarded-For is honored
	TrustedProxies []string `yaml:"trusted_proxies"`

	// sources tracks where each value came from
	sources map[string]string

	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

type attribute struct {
	name    string
	aliases []string
	secret  bool
	get     func(c *Config) string
	set     func(c *Config, v string) error
}

func intAttr(name string, field func(c *Config) *int, aliases ...string) attribute {
	return attribute{
		name:    name,
		aliases: aliases,
		get:     func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*field(c) = i
			return nil
		},
	}
}

func stringAttr(name string, secret bool, field func(c *Config) *string, aliases ...string) attribute {
	return attribute{
		name:    name,
		aliases: aliases,
		secret:  secret,
		get:     func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			*field(c) = v
			return nil
		},
	}
}

var attributes = []attribute{
	stringAttr("secret_key", true, func(c *Config) *string { return &c.SecretKey }, "SECRET_KEY"),
	stringAttr("database_url", true, func(c *Config) *string { return &c.DatabaseURL }, "DATABASE_URL"),
	stringAttr("audit_database_url", true, func(c *Config) *string { return &c.AuditDatabaseURL }, "AUDIT_DATABASE_URL"),
	stringAttr("redis_url", false, func(c *Config) *string { return &c.RedisURL }, "REDIS_URL"),
	stringAttr("bind_address", false, func(c *Config) *string { return &c.BindAddress }),
	intAttr("port", func(c *Config) *int { return &c.Port }, "PORT"),
	stringAttr("base_url", false, func(c *Config) *string { return &c.BaseURL }),
	intAttr("api_token_ttl", func(c *Config) *int { return &c.APITokenTTL }),
	intAttr("confirmation_token_ttl", func(c *Config) *int { return &c.ConfirmationTokenTTL }),
	intAttr("rate_limit_requests", func(c *Config) *int { return &c.RateLimitRequests }),
	intAttr("rate_limit_period", func(c *Config) *int { return &c.RateLimitPeriod }),
	intAttr("bcrypt_cost", func(c *Config) *int { return &c.BcryptCost }),
	stringAttr("mail_from", false, func(c *Config) *string { return &c.MailFrom }),
	stringAttr("resend_api_key", true, func(c *Config) *string { return &c.ResendAPIKey }, "RESEND_API_KEY"),
	stringAttr("log_level", false, func(c *Config) *string { return &c.LogLevel }),
	stringAttr("log_format", false, func(c *Config) *string { return &c.LogFormat }),
	intAttr("value_set_cache_size", func(c *Config) *int { return &c.ValueSetCacheSize }),
	intAttr("value_set_cache_ttl", func(c *Config) *int { return &c.ValueSetCacheTTL }),
	{
		name: "trusted_proxies",
		get:  func(c *Config) string { return strings.Join(c.TrustedProxies, ",") },
		set: func(c *Config, v string) error {
			c.TrustedProxies = splitAndTrim(v)
			return nil
		},
	},
}

// Default returns the built-in configuration without file or environment overrides
func Default() *Config {
	return newDefault()
}

func newDefault() *Config {
	c := &Config{
		BindAddress:          "127.0.0.1",
		Port:                 5000,
		BaseURL:              "http://localhost:5000",
		RedisURL:             "redis://localhost:6379/0",
		APITokenTTL:          3600,
		ConfirmationTokenTTL: 3600,
		RateLimitRequests:    5,
		RateLimitPeriod:      15,
		BcryptCost:           10,
		MailFrom:             "Unkani <noreply@unkani.com>",
		LogLevel:             "info",
		LogFormat:            "json",
		ValueSetCacheSize:    256,
		ValueSetCacheTTL:     300,
		TrustedProxies:       []string{},
		sources:              make(map[string]string),
	}
	for _, a := range attributes {
		c.sources[a.name] = SourceDefault
	}
	return c
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	configPath := os.Getenv(EnvPrefix + "CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		if err := config.applyFileConfig(data); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

func (c *Config) applyFileConfig(data []byte) error {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, a := range attributes {
		v, ok := raw[a.name]
		if !ok || v == nil {
			continue
		}
		var s string
		switch val := v.(type) {
		case []interface{}:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				parts = append(parts, fmt.Sprint(p))
			}
			s = strings.Join(parts, ",")
		default:
			s = fmt.Sprint(val)
		}
		if err := a.set(c, s); err != nil {
			return err
		}
		c.sources[a.name] = SourceFile
	}
	return nil
}

func (c *Config) applyEnvConfig() error {
	for _, a := range attributes {
		names := append([]string{EnvPrefix + strings.ToUpper(a.name)}, a.aliases...)
		for _, name := range names {
			val := os.Getenv(name)
			if val == "" {
				continue
			}
			if err := a.set(c, val); err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			c.sources[a.name] = SourceEnvironment
			break
		}
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// TokenTTL returns the API token lifetime
func (c *Config) TokenTTL() time.Duration {
	return seconds(c.APITokenTTL)
}

// ConfirmationTTL returns the lifetime of account flow tokens
func (c *Config) ConfirmationTTL() time.Duration {
	return seconds(c.ConfirmationTokenTTL)
}

// RateLimitWindow returns the rate limit period
func (c *Config) RateLimitWindow() time.Duration {
	return seconds(c.RateLimitPeriod)
}

// ValueSetCacheExpiry returns how long cached value sets are kept
func (c *Config) ValueSetCacheExpiry() time.Duration {
	return seconds(c.ValueSetCacheTTL)
}

// ListenAddress returns host:port for the HTTP server
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.Port))
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *Config) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *Config) Validate() error {
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid configuration: %s failed %q validation", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources.
// Secret values are masked.
func (c *Config) Attributes() []Attribute {
	out := make([]Attribute, 0, len(attributes))
	for _, a := range attributes {
		value := a.get(c)
		if a.secret && value != "" {
			value = "******"
		}
		out = append(out, Attribute{Name: a.name, Value: value, Source: c.Source(a.name)})
	}
	return out
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
