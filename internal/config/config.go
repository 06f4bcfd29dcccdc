package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	ModeLocal  = "local"
	ModeRemote = "remote"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Client   ClientConfig   `mapstructure:"client"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

// IsProduction reports whether the process runs with production settings.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, EnvProduction)
}

type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	ReadTimeout  time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration   `mapstructure:"idleTimeout"`
	CORSOrigin   string          `mapstructure:"corsOrigin"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
	Auth         AuthConfig      `mapstructure:"auth"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwtSecret"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
	// RelaxTLS requests TLS to the database without certificate verification.
	// It is derived from app.env and not read from configuration.
	RelaxTLS bool `mapstructure:"-"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type MetricsConfig struct {
	Path string `mapstructure:"path"`
}

type RabbitMQConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	ExchangeName string `mapstructure:"exchangeName"`
}

type BatchConfig struct {
	PaymentStatusReportSchedule string `mapstructure:"paymentStatusReportSchedule"`
	PaymentStatusReportTimeout  int    `mapstructure:"paymentStatusReportTimeout"` // seconds
}

type ClientConfig struct {
	Mode     string        `mapstructure:"mode"`
	APIURL   string        `mapstructure:"apiURL"`
	APIToken string        `mapstructure:"apiToken"`
	DataFile string        `mapstructure:"dataFile"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Short names used by the hosting platform take precedence over the
	// nested SECTION_KEY form.
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("app.env", "APP_ENV")
	_ = v.BindEnv("server.corsOrigin", "CORS_ORIGIN")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults and environment variables.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Database.RelaxTLS = cfg.App.IsProduction()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", EnvDevelopment)
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 15*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("server.corsOrigin", "*")
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.rps", 10)
	v.SetDefault("server.rateLimit.burst", 20)
	v.SetDefault("server.auth.enabled", false)
	v.SetDefault("server.auth.jwtSecret", "")
	v.SetDefault("database.url", "")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("rabbitmq.enabled", false)
	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.username", "guest")
	v.SetDefault("rabbitmq.password", "guest")
	v.SetDefault("rabbitmq.exchangeName", "customer-manager")
	v.SetDefault("batch.paymentStatusReportSchedule", "*/15 * * * *")
	v.SetDefault("batch.paymentStatusReportTimeout", 60)
	v.SetDefault("client.mode", ModeLocal)
	v.SetDefault("client.apiURL", "http://localhost:3000")
	v.SetDefault("client.apiToken", "")
	v.SetDefault("client.dataFile", "customers.db")
	v.SetDefault("client.timeout", 30*time.Second)
}
