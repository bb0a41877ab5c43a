package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux i686 on x86_64; rv:10.0)"
	envPrefix        = "UPTIME"
)

var validate *validator.Validate

type Config struct {
	Timeout         int               `mapstructure:"timeout" validate:"gt=0"`
	UserAgent       string            `mapstructure:"user_agent" validate:"required"`
	UseGzip         bool              `mapstructure:"use_gzip"`
	FollowRedirects bool              `mapstructure:"follow_redirects"`
	Headers         map[string]string `mapstructure:"headers"`
	MetricPrefix    string            `mapstructure:"metric_prefix" validate:"required"`
	Encoder         string            `mapstructure:"encoder" validate:"oneof=hostpath url"`
	RunOnStart      bool              `mapstructure:"run_on_start"`
	Collector       Collector         `mapstructure:"collector" validate:"required"`
	Workers         Workers           `mapstructure:"workers"`
	Metrics         Metrics           `mapstructure:"metrics"`
	Log             Log               `mapstructure:"log"`
	Checks          []Check           `mapstructure:"checks" validate:"required,min=1,dive"`
}

type Check struct {
	Host     string `mapstructure:"host" validate:"required"`
	Path     string `mapstructure:"path" validate:"omitempty,startswith=/|startswith=?"`
	Interval int    `mapstructure:"interval" validate:"gt=0"`
}

type Workers struct {
	// Count of 0 sizes the pool from the check list.
	Count int `mapstructure:"count" validate:"gte=0"`
}

type Metrics struct {
	Listen string `mapstructure:"listen" validate:"omitempty,listen"`
}

type Log struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	return decode(v)
}

// LoadLegacy builds a single-check configuration for rawURL from the
// environment alone, keeping the URL-rooted metric layout.
func LoadLegacy(rawURL string) (*Config, error) {
	v := newViper()

	host, path := splitURL(rawURL)
	v.Set("encoder", "url")
	v.Set("checks", []map[string]any{
		{"host": host, "path": path, "interval": v.GetInt("check_interval")},
	})

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names understood by the original single-target tool.
	bindEnv(v, "collector.host", "GRAPHITE_HOST")
	bindEnv(v, "collector.port", "GRAPHITE_PORT")
	bindEnv(v, "metric_prefix", "GRAPHITE_METRIC_PREFIX")
	bindEnv(v, "timeout", "TIMEOUT")
	bindEnv(v, "check_interval", "CHECK_INTERVAL")
	bindEnv(v, "user_agent", "USER_AGENT")
	bindEnv(v, "use_gzip", "USE_GZIP")

	return v
}

func bindEnv(v *viper.Viper, key, legacy string) {
	prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if err := v.BindEnv(key, prefixed, legacy); err != nil {
		panic(fmt.Sprintf("failed to bind env for %s: %v", key, err))
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timeout", 30)
	v.SetDefault("check_interval", 5)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("use_gzip", true)
	v.SetDefault("follow_redirects", false)
	v.SetDefault("headers", map[string]string{})
	v.SetDefault("metric_prefix", "uptime")
	v.SetDefault("encoder", "hostpath")
	v.SetDefault("run_on_start", true)

	v.SetDefault("collector.host", "graphite")
	v.SetDefault("collector.port", 2003)
	v.SetDefault("collector.io_timeout", 5)

	v.SetDefault("workers.count", 0)
	v.SetDefault("metrics.listen", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", true)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return nil, formatValidationErrors(validationErrors)
		}
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func splitURL(rawURL string) (string, string) {
	rest := rawURL
	offset := 0
	if i := strings.Index(rawURL, "://"); i >= 0 {
		offset = i + len("://")
		rest = rawURL[offset:]
	}
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		return rawURL[:offset+i], rawURL[offset+i:]
	}
	return rawURL, ""
}

func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// HTTPHeaders returns the extra request headers, including the
// accept-encoding header when gzip is enabled.
func (c *Config) HTTPHeaders() map[string]string {
	headers := make(map[string]string, len(c.Headers)+1)
	for k, v := range c.Headers {
		headers[k] = v
	}
	if c.UseGzip {
		if _, ok := headers["accept-encoding"]; !ok {
			headers["accept-encoding"] = "gzip, deflate"
		}
	}
	return headers
}

func (c Check) GetInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("listen", validateListen); err != nil {
		panic(fmt.Sprintf("failed to register listen validator: %v", err))
	}
	if err := validate.RegisterValidation("collectorHost", validateCollectorHost); err != nil {
		panic(fmt.Sprintf("failed to register collector host validator: %v", err))
	}
}

func validateListen(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	return err == nil && port != ""
}

// formatValidationErrors formats validation errors into a user-friendly error message
func formatValidationErrors(errors validator.ValidationErrors) error {
	var errMsgs []string
	for _, err := range errors {
		errMsgs = append(errMsgs, fmt.Sprintf(
			"field '%s' failed validation: %s",
			err.Namespace(),
			err.Tag(),
		))
	}
	return fmt.Errorf("validation errors: %v", errMsgs)
}
