package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, thresholds, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Credential CredentialConfig
	Fraud      FraudConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type CredentialConfig struct {
	// Secret signs redemption tokens; rotate via deployment, not at runtime.
	Secret         string        `envconfig:"CREDENTIAL_SECRET" required:"true"`
	TokenTTL       time.Duration `envconfig:"CREDENTIAL_TOKEN_TTL" default:"15m"`
	DynamicCodeTTL time.Duration `envconfig:"CREDENTIAL_DYNAMIC_CODE_TTL" default:"24h"`
	// ReplayMaxTTL bounds the replay-tracking key lifetime for credentials
	// that carry no expiry of their own (static voucher lifetimes).
	ReplayMaxTTL time.Duration `envconfig:"CREDENTIAL_REPLAY_MAX_TTL" default:"8760h"`
}

type FraudConfig struct {
	// EscalationThreshold is the risk score at or above which a case is opened.
	// Any HIGH-severity flag escalates regardless of the score.
	EscalationThreshold int `envconfig:"FRAUD_ESCALATION_THRESHOLD" default:"60"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:16379",
		},
		Log: LogConfig{
			Level: "error",
		},
		Credential: CredentialConfig{
			Secret:         "test-secret",
			TokenTTL:       15 * time.Minute,
			DynamicCodeTTL: 24 * time.Hour,
			ReplayMaxTTL:   8760 * time.Hour,
		},
		Fraud: FraudConfig{
			EscalationThreshold: 60,
		},
	}
}
