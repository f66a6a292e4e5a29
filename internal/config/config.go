package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName          = "Weather Gate"
	defaultAppEnv           = "development"
	defaultAppURL           = "http://127.0.0.1:8080"
	defaultHTTPAddr         = ":8080"
	defaultShutdownTimeout  = 5 * time.Second
	defaultLocalLoginDelay  = 1500 * time.Millisecond
	defaultSessionTTL       = 30 * 24 * time.Hour
	defaultWeatherAPIURL    = "https://api.openweathermap.org/data/2.5/weather"
	defaultWeatherCity      = "Bangalore"
	defaultBreakerFailures  = 5
	defaultBreakerCooldown  = 30 * time.Second
	defaultStorageDriver    = DriverCookie
	defaultDBMaxConns       = int32(4)
	defaultDBConnLifetime   = 30 * time.Minute
	defaultDBConnIdleTime   = 5 * time.Minute
	defaultSQLitePath       = "weather-gate.db"
	defaultRedisAddr        = "127.0.0.1:6379"
	defaultJanitorInterval  = 10 * time.Minute
	defaultWorkflowIdleTime = 30 * time.Minute
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverCookie   = "cookie"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
)

type Config struct {
	AppName         string
	AppEnv          string
	AppURL          string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	Auth            AuthConfig
	Weather         WeatherConfig
	Storage         StorageConfig
	Database        DatabaseConfig
	SQLite          SQLiteConfig
	Redis           RedisConfig
	Janitor         JanitorConfig
}

type AuthConfig struct {
	GoogleClientID  string
	VerifyIDToken   bool
	LocalLoginDelay time.Duration
	CookieSecure    bool
	SessionSecret   string
	SessionTTL      time.Duration
}

type WeatherConfig struct {
	APIKey          string
	APIURL          string
	DefaultCity     string
	HTTPTimeout     time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JanitorConfig struct {
	Interval        time.Duration
	WorkflowIdleTTL time.Duration
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func Load() (Config, error) {
	cfg := Config{
		AppName:         defaultAppName,
		AppEnv:          defaultAppEnv,
		AppURL:          defaultAppURL,
		HTTPAddr:        defaultHTTPAddr,
		ShutdownTimeout: defaultShutdownTimeout,
		Auth: AuthConfig{
			VerifyIDToken:   true,
			LocalLoginDelay: defaultLocalLoginDelay,
			SessionTTL:      defaultSessionTTL,
		},
		Weather: WeatherConfig{
			APIURL:          defaultWeatherAPIURL,
			DefaultCity:     defaultWeatherCity,
			BreakerFailures: defaultBreakerFailures,
			BreakerCooldown: defaultBreakerCooldown,
		},
		Storage: StorageConfig{Driver: defaultStorageDriver},
		Database: DatabaseConfig{
			MaxConns:        defaultDBMaxConns,
			MaxConnLifetime: defaultDBConnLifetime,
			MaxConnIdleTime: defaultDBConnIdleTime,
		},
		SQLite: SQLiteConfig{Path: defaultSQLitePath},
		Redis:  RedisConfig{Addr: defaultRedisAddr},
		Janitor: JanitorConfig{
			Interval:        defaultJanitorInterval,
			WorkflowIdleTTL: defaultWorkflowIdleTime,
		},
	}

	if v := env("APP_NAME"); v != "" {
		cfg.AppName = v
	}
	if v := env("APP_ENV"); v != "" {
		cfg.AppEnv = v
	}
	if v := env("APP_URL"); v != "" {
		cfg.AppURL = v
	}
	if v := env("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if err := durationVar("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}

	cfg.Auth.GoogleClientID = env("GOOGLE_CLIENT_ID")
	if err := boolVar("AUTH_VERIFY_ID_TOKEN", &cfg.Auth.VerifyIDToken); err != nil {
		return Config{}, err
	}
	if v := env("AUTH_LOCAL_LOGIN_DELAY"); v != "" {
		// "0" disables the simulated delay.
		d, err := parseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("parse AUTH_LOCAL_LOGIN_DELAY: %q", v)
		}
		cfg.Auth.LocalLoginDelay = d
	}
	if err := boolVar("AUTH_COOKIE_SECURE", &cfg.Auth.CookieSecure); err != nil {
		return Config{}, err
	}
	cfg.Auth.SessionSecret = env("SESSION_SECRET")
	if err := durationVar("SESSION_TTL", &cfg.Auth.SessionTTL); err != nil {
		return Config{}, err
	}

	cfg.Weather.APIKey = env("OPENWEATHER_API_KEY")
	if v := env("WEATHER_API_URL"); v != "" {
		cfg.Weather.APIURL = v
	}
	if v := env("WEATHER_DEFAULT_CITY"); v != "" {
		cfg.Weather.DefaultCity = v
	}
	if err := durationVar("WEATHER_HTTP_TIMEOUT", &cfg.Weather.HTTPTimeout); err != nil {
		return Config{}, err
	}
	if v := env("WEATHER_BREAKER_FAILURES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Config{}, errors.New("WEATHER_BREAKER_FAILURES must be a non-negative integer")
		}
		cfg.Weather.BreakerFailures = uint32(n)
	}
	if err := durationVar("WEATHER_BREAKER_COOLDOWN", &cfg.Weather.BreakerCooldown); err != nil {
		return Config{}, err
	}

	if v := env("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	switch cfg.Storage.Driver {
	case DriverCookie, DriverMemory, DriverPostgres, DriverSQLite, DriverRedis:
	default:
		return Config{}, fmt.Errorf("STORAGE_DRIVER %q is not supported", cfg.Storage.Driver)
	}

	cfg.Database.URL = env("DATABASE_URL")
	if cfg.Storage.Driver == DriverPostgres && cfg.Database.URL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if v := env("DATABASE_MAX_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, errors.New("DATABASE_MAX_CONNS must be a positive integer")
		}
		cfg.Database.MaxConns = int32(n)
	}
	if err := durationVar("DATABASE_MAX_CONN_LIFETIME", &cfg.Database.MaxConnLifetime); err != nil {
		return Config{}, err
	}
	if err := durationVar("DATABASE_MAX_CONN_IDLE_TIME", &cfg.Database.MaxConnIdleTime); err != nil {
		return Config{}, err
	}

	if v := env("SQLITE_PATH"); v != "" {
		cfg.SQLite.Path = v
	}

	if v := env("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if v := env("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, errors.New("REDIS_DB must be a non-negative integer")
		}
		cfg.Redis.DB = n
	}

	if err := durationVar("JANITOR_INTERVAL", &cfg.Janitor.Interval); err != nil {
		return Config{}, err
	}

	appURL, err := url.Parse(strings.TrimSpace(cfg.AppURL))
	if err != nil || appURL.Scheme == "" || appURL.Host == "" {
		return Config{}, errors.New("APP_URL must be a valid absolute URL")
	}
	if cfg.IsProduction() {
		if !strings.EqualFold(appURL.Scheme, "https") {
			return Config{}, errors.New("APP_URL must use https in production")
		}
		if cfg.Auth.SessionSecret == "" {
			return Config{}, errors.New("SESSION_SECRET is required in production")
		}
	}
	cfg.AppURL = appURL.String()

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// durationVar overwrites dst only when key is set, and only with a positive value.
func durationVar(key string, dst *time.Duration) error {
	v := env(key)
	if v == "" {
		return nil
	}
	d, err := parseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", key)
	}
	*dst = d
	return nil
}

func boolVar(key string, dst *bool) error {
	v := env(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = b
	return nil
}

func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("empty duration")
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}
