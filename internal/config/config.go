package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TurnstileEndpoint is Cloudflare's token verification URL.
const TurnstileEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Config holds the configuration for the application.
type Config struct {
	Server struct {
		Address         string        `mapstructure:"address"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	LLM struct {
		BaseURL string        `mapstructure:"base_url"`
		APIKey  string        `mapstructure:"api_key"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"llm"`
	WebSearch struct {
		Enabled  bool          `mapstructure:"enabled"`
		BaseURL  string        `mapstructure:"base_url"`
		APIKey   string        `mapstructure:"api_key"`
		Model    string        `mapstructure:"model"`
		Timeout  time.Duration `mapstructure:"timeout"`
		Triggers []string      `mapstructure:"triggers"`
	} `mapstructure:"websearch"`
	Verification struct {
		Required bool          `mapstructure:"required"`
		Secret   string        `mapstructure:"secret"`
		Endpoint string        `mapstructure:"endpoint"`
		Header   string        `mapstructure:"header"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"verification"`
	Pipeline struct {
		MaxRetries        int           `mapstructure:"max_retries"`
		BaseTemperature   float64       `mapstructure:"base_temperature"`
		TemplateThreshold float64       `mapstructure:"template_threshold"`
		RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	} `mapstructure:"pipeline"`
	Log struct {
		Level  string `mapstructure:"level"`
		Pretty bool   `mapstructure:"pretty"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	// generation can take three upstream calls plus backoff
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("llm.base_url", "https://api.siliconflow.cn/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", 30*time.Second)

	v.SetDefault("websearch.enabled", true)
	v.SetDefault("websearch.base_url", "https://open.bigmodel.cn/api/paas/v4/")
	v.SetDefault("websearch.api_key", "")
	v.SetDefault("websearch.model", "glm-4-plus")
	v.SetDefault("websearch.timeout", 30*time.Second)
	v.SetDefault("websearch.triggers", []string{"最新", "最近", "2026", "最好的", "推荐", "哪个好"})

	v.SetDefault("verification.secret", "")
	v.SetDefault("verification.endpoint", TurnstileEndpoint)
	v.SetDefault("verification.header", "CF-Turnstile-Token")
	v.SetDefault("verification.timeout", 10*time.Second)

	v.SetDefault("pipeline.max_retries", 3)
	v.SetDefault("pipeline.base_temperature", 0.3)
	v.SetDefault("pipeline.template_threshold", 0.5)
	// leaves time to write the fallback document before server.write_timeout
	v.SetDefault("pipeline.request_timeout", 75*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// LoadConfig loads the configuration from defaults, an optional YAML file and
// the environment. An empty path searches ./config.yaml and
// ./config/config.yaml; a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("AINAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// credential names used by existing deployments
	_ = v.BindEnv("llm.api_key", "AINAV_LLM_API_KEY", "SILICONFLOW_API_KEY")
	_ = v.BindEnv("websearch.api_key", "AINAV_WEBSEARCH_API_KEY", "ZHIPU_API_KEY")
	_ = v.BindEnv("verification.secret", "AINAV_VERIFICATION_SECRET", "TURNSTILE_SECRET_KEY")
	_ = v.BindEnv("verification.required", "AINAV_VERIFICATION_REQUIRED")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// a configured secret turns verification on unless explicitly disabled
	if !v.IsSet("verification.required") && config.Verification.Secret != "" {
		config.Verification.Required = true
	}
	config.LLM.BaseURL = normalizeBaseURL(config.LLM.BaseURL)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Pipeline.MaxRetries < 1 {
		return fmt.Errorf("pipeline.max_retries must be at least 1, got %d", c.Pipeline.MaxRetries)
	}
	if c.Pipeline.BaseTemperature <= 0 || c.Pipeline.BaseTemperature > 2 {
		return fmt.Errorf("pipeline.base_temperature must be within (0,2], got %v", c.Pipeline.BaseTemperature)
	}
	if c.Pipeline.RequestTimeout <= 0 {
		return fmt.Errorf("pipeline.request_timeout must be positive, got %v", c.Pipeline.RequestTimeout)
	}
	if c.Server.WriteTimeout > 0 && c.Pipeline.RequestTimeout >= c.Server.WriteTimeout {
		return fmt.Errorf("pipeline.request_timeout (%v) must be below server.write_timeout (%v)",
			c.Pipeline.RequestTimeout, c.Server.WriteTimeout)
	}
	if c.Pipeline.TemplateThreshold < 0 || c.Pipeline.TemplateThreshold > 1 {
		return fmt.Errorf("pipeline.template_threshold must be within [0,1], got %v", c.Pipeline.TemplateThreshold)
	}
	if c.Verification.Required && c.Verification.Secret == "" {
		return errors.New("verification.required is set but verification.secret is empty")
	}
	if c.Verification.Secret != "" && c.Verification.Timeout <= 0 {
		return fmt.Errorf("verification.timeout must be positive, got %v", c.Verification.Timeout)
	}
	return nil
}

// normalizeBaseURL strips a trailing slash so path joins in the OpenAI
// client don't produce a double slash.
func normalizeBaseURL(input string) string {
	return strings.TrimRight(strings.TrimSpace(input), "/")
}
