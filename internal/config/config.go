package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	JWT        JWTConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Razorpay   RazorpayConfig
	Cloudinary CloudinaryConfig
}

type AppConfig struct {
	Env                string   `envconfig:"APP_ENV" default:"dev"`
	Port               string   `envconfig:"PORT" default:"5000"`
	GinMode            string   `envconfig:"GIN_MODE" default:"debug"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat          string   `envconfig:"LOG_FORMAT" default:"json"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

type DBConfig struct {
	Driver   string        `envconfig:"DB_DRIVER" default:"mysql"`
	Host     string        `envconfig:"DB_HOST" default:"localhost"`
	Port     string        `envconfig:"DB_PORT" default:"3306"`
	User     string        `envconfig:"DB_USER" default:"nourish"`
	Password string        `envconfig:"DB_PASSWORD"`
	Name     string        `envconfig:"DB_NAME" default:"nourish_together"`
	DSN      string        `envconfig:"DB_DSN"`
	MongoURI string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Timeout  time.Duration `envconfig:"DB_TIMEOUT" default:"5s"`
}

// ResolveDSN returns the explicit DSN when set, otherwise one built from
// the host/port/user fields for the configured driver.
func (d DBConfig) ResolveDSN() (string, error) {
	if d.DSN != "" {
		return d.DSN, nil
	}
	switch d.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, d.Port, d.Name), nil
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			d.Host, d.Port, d.User, d.Password, d.Name), nil
	case DriverSQLite:
		return d.Name + ".db", nil
	case DriverMongo:
		return d.MongoURI, nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
}

type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" required:"true"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"nourish-together"`
	TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

type RedisConfig struct {
	URL string `envconfig:"REDIS_URL"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"AUTH_RATE_LIMIT_WINDOW" default:"1m"`
	Max    int           `envconfig:"AUTH_RATE_LIMIT_MAX" default:"20"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"RAZORPAY_KEY_SECRET"`
	Currency  string `envconfig:"PAYMENT_CURRENCY" default:"INR"`
	Verify    bool   `envconfig:"PAYMENT_VERIFY" default:"true"`
}

func (r RazorpayConfig) Enabled() bool {
	return r.KeyID != "" && r.KeySecret != ""
}

type CloudinaryConfig struct {
	CloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	APISecret string `envconfig:"CLOUDINARY_API_SECRET"`
	Folder    string `envconfig:"CLOUDINARY_FOLDER" default:"nourish-together/profiles"`
}

func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Load reads the process environment. In dev, a .env file in the working
// directory is loaded first; variables already set take precedence.
func Load() (*Config, error) {
	if env := strings.TrimSpace(os.Getenv("APP_ENV")); env == "" || strings.EqualFold(env, AppEnvDev) {
		// A missing .env is fine; the environment may already be complete.
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.RateLimit.Max < 0 {
		return errors.New("AUTH_RATE_LIMIT_MAX must not be negative")
	}
	if c.Razorpay.Currency == "" {
		c.Razorpay.Currency = "INR"
	}
	return nil
}
