package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RabbitConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type UploadConfig struct {
	Dir       string `mapstructure:"dir"`
	URLPrefix string `mapstructure:"url_prefix"`
	MaxWidth  uint   `mapstructure:"max_width"`
}

type OrderConfig struct {
	DeliveryLeadDays int           `mapstructure:"delivery_lead_days"`
	ProductCacheTTL  time.Duration `mapstructure:"product_cache_ttl"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Rabbit RabbitConfig `mapstructure:"rabbitmq"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Log    LogConfig    `mapstructure:"log"`
	Upload UploadConfig `mapstructure:"upload"`
	Order  OrderConfig  `mapstructure:"order"`
}

// env maps flat environment variable names onto config keys.
var env = map[string]string{
	"server.port":              "PORT",
	"server.shutdown_timeout":  "SHUTDOWN_TIMEOUT",
	"db.driver":                "DB_DRIVER",
	"db.dsn":                   "DB_DSN",
	"db.max_open_conns":        "DB_MAX_OPEN_CONNS",
	"db.max_idle_conns":        "DB_MAX_IDLE_CONNS",
	"redis.addr":               "REDIS_ADDR",
	"redis.password":           "REDIS_PASSWORD",
	"redis.db":                 "REDIS_DB",
	"rabbitmq.url":             "RABBITMQ_URL",
	"rabbitmq.exchange":        "RABBITMQ_EXCHANGE",
	"auth.jwt_secret":          "JWT_SECRET",
	"auth.token_ttl":           "JWT_TTL",
	"log.level":                "LOG_LEVEL",
	"log.format":               "LOG_FORMAT",
	"upload.dir":               "UPLOAD_DIR",
	"upload.url_prefix":        "UPLOAD_URL_PREFIX",
	"upload.max_width":         "UPLOAD_MAX_WIDTH",
	"order.delivery_lead_days": "DELIVERY_LEAD_DAYS",
	"order.product_cache_ttl":  "PRODUCT_CACHE_TTL",
}

func setDefaults(vp *viper.Viper) {
	vp.SetDefault("server.port", "8080")
	vp.SetDefault("server.shutdown_timeout", 10*time.Second)
	vp.SetDefault("db.driver", "mysql")
	vp.SetDefault("db.max_open_conns", 100)
	vp.SetDefault("db.max_idle_conns", 20)
	vp.SetDefault("db.conn_max_lifetime", 5*time.Minute)
	vp.SetDefault("db.conn_max_idle_time", time.Minute)
	vp.SetDefault("rabbitmq.exchange", "order.exchange")
	vp.SetDefault("auth.token_ttl", 30*24*time.Hour)
	vp.SetDefault("log.level", "info")
	vp.SetDefault("log.format", "text")
	vp.SetDefault("upload.dir", "uploads")
	vp.SetDefault("upload.url_prefix", "/uploads")
	vp.SetDefault("upload.max_width", 1024)
	vp.SetDefault("order.delivery_lead_days", 5)
	vp.SetDefault("order.product_cache_ttl", time.Minute)
}

// Load reads config/config.{yaml,json} when present, then environment
// variables, then defaults.
func Load(paths ...string) (Config, error) {
	vp := viper.New()
	setDefaults(vp)

	vp.SetConfigName("config")
	if len(paths) == 0 {
		paths = []string{"config", "."}
	}
	for _, p := range paths {
		vp.AddConfigPath(p)
	}
	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	for key, name := range env {
		if err := vp.BindEnv(key, name); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var missing []string
	if c.DB.DSN == "" {
		missing = append(missing, env["db.dsn"])
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, env["auth.jwt_secret"])
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.Order.DeliveryLeadDays < 0 {
		return errors.New("DELIVERY_LEAD_DAYS must not be negative")
	}
	return nil
}
