package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Import    ImportConfig    `mapstructure:"import"`
	Events    EventsConfig    `mapstructure:"events"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Mail      MailConfig      `mapstructure:"mail"`
	Grpc      GrpcConfig      `mapstructure:"grpc"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	// MaxUploadMB bounds multipart import bodies.
	MaxUploadMB int64 `mapstructure:"max_upload_mb"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time_seconds"`
}

type AuthConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret"`
	Issuer            string `mapstructure:"issuer"`
	AccessTTLMinutes  int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLHours   int    `mapstructure:"refresh_ttl_hours"`
	VerifyTTLHours    int    `mapstructure:"verify_ttl_hours"`
	EmailDomain       string `mapstructure:"email_domain"`
	VerifyURL         string `mapstructure:"verify_url"`
	SecureCookie      bool   `mapstructure:"secure_cookie"`
	SameSiteLaxCookie bool   `mapstructure:"same_site_lax"`
}

type ImportConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxRows     int `mapstructure:"max_rows"`
}

// EventsConfig selects the broker domain events go to: "nats", "kafka" or "none".
type EventsConfig struct {
	Backend string `mapstructure:"backend"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// MailConfig selects "console" or "sendgrid" delivery.
type MailConfig struct {
	Provider       string `mapstructure:"provider"`
	FromName       string `mapstructure:"from_name"`
	FromAddress    string `mapstructure:"from_address"`
	SendgridAPIKey string `mapstructure:"sendgrid_api_key"`
}

type GrpcConfig struct {
	Port                 string `mapstructure:"port"`
	HealthCheckIntervalS int    `mapstructure:"health_check_interval_seconds"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "mentorship")
	v.SetDefault("auth.issuer", "mentorship-service")
	v.SetDefault("auth.access_ttl_minutes", 15)
	v.SetDefault("auth.refresh_ttl_hours", 24*7)
	v.SetDefault("auth.verify_ttl_hours", 24)
	v.SetDefault("auth.email_domain", "@student.green.ac.bd")
	v.SetDefault("auth.verify_url", "http://localhost:8080/auth/verify")
	v.SetDefault("import.concurrency", 8)
	v.SetDefault("import.max_rows", 5000)
	v.SetDefault("events.backend", "none")
	v.SetDefault("nats.subject", "mentorship.events")
	v.SetDefault("kafka.topic", "mentorship.events")
	v.SetDefault("rate_limit.requests_per_minute", 30)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("mail.provider", "console")
	v.SetDefault("mail.from_name", "Mentorship Admin")
	v.SetDefault("mail.from_address", "no-reply@green.edu.bd")
	v.SetDefault("grpc.port", "50051")
	v.SetDefault("grpc.health_check_interval_seconds", 15)
}

// Load reads configs/config.<ENV>.yaml (optional) and applies environment overrides.
func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")       // Kubernetes mount
	v.AddConfigPath("./configs")      // repo root
	v.AddConfigPath("../../configs") // cmd/server

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// DATABASE_HOST overrides database.host and so on
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("env", "ENV")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("mail.sendgrid_api_key", "SENDGRID_API_KEY")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Env = env

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (JWT_SECRET) is required")
	}
	switch c.Events.Backend {
	case "none", "nats", "kafka":
	default:
		return fmt.Errorf("events.backend must be one of none, nats, kafka; got %q", c.Events.Backend)
	}
	switch c.Mail.Provider {
	case "console", "sendgrid":
	default:
		return fmt.Errorf("mail.provider must be console or sendgrid; got %q", c.Mail.Provider)
	}
	if c.Mail.Provider == "sendgrid" && c.Mail.SendgridAPIKey == "" {
		return fmt.Errorf("mail.sendgrid_api_key (SENDGRID_API_KEY) is required for sendgrid")
	}
	return nil
}
