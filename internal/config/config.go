// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Security SecurityConfig
	Shop     ShopConfig
	External ExternalConfig
	Upload   UploadConfig
	Logging  LoggingConfig
}

// AppConfig names the deployment and the seller printed on invoices
type AppConfig struct {
	Name           string
	Version        string
	Environment    string
	Debug          bool
	FrontendURL    string
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	CompanyEmail   string
	CompanyWebsite string
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// SecurityConfig covers hashing cost, request limits and CORS
type SecurityConfig struct {
	BcryptCost         int
	RateLimitPerMinute int
	LookupBurst        int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// ShopConfig contains storefront rules. Amounts are in cents.
type ShopConfig struct {
	Currency              string
	ShippingFlatFee       int64
	FreeShippingThreshold int64
	CheckoutTTL           time.Duration
	SessionCookieName     string
	SessionCookieMaxAge   int
	TreatmentsDepartment  string
	LowStockThreshold     int
}

type ExternalConfig struct {
	Stripe  StripeConfig
	Email   EmailConfig
	Storage StorageConfig
}

type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
}

// EmailConfig selects the mail provider: log, smtp or mailjet
type EmailConfig struct {
	Provider   string
	APIKey     string
	APISecret  string
	FromEmail  string
	FromName   string
	ReplyTo    string
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPUseTLS bool
}

// StorageConfig selects local disk or S3 for uploads
type StorageConfig struct {
	Provider    string
	LocalPath   string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	CDNBaseURL  string
}

type UploadConfig struct {
	MaxSize           int64
	AllowedExtensions []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads the environment, after an optional .env file in the working directory
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "Charmaway Storefront"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			Environment:    getEnv("APP_ENV", "development"),
			Debug:          getEnvAsBool("APP_DEBUG", true),
			FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
			CompanyName:    getEnv("COMPANY_NAME", "Charmaway"),
			CompanyAddress: getEnv("COMPANY_ADDRESS", ""),
			CompanyPhone:   getEnv("COMPANY_PHONE", ""),
			CompanyEmail:   getEnv("COMPANY_EMAIL", "hola@charmaway.es"),
			CompanyWebsite: getEnv("COMPANY_WEBSITE", ""),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 20*time.Second),
			MaxBodyBytes:   getEnvAsInt64("SERVER_MAX_BODY_BYTES", 12<<20),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "charmaway"),
			User:         getEnv("DB_USER", "charmaway"),
			Password:     getEnv("DB_PASSWORD", "charmaway"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", devJWTSecret),
			AccessTokenExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRE", 24*time.Hour),
			RefreshTokenExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRE", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			BcryptCost:         getEnvAsInt("BCRYPT_COST", 12),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			LookupBurst:        getEnvAsInt("LOOKUP_BURST", 5),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Shop: ShopConfig{
			Currency:              getEnv("SHOP_CURRENCY", "eur"),
			ShippingFlatFee:       getEnvAsInt64("SHOP_SHIPPING_FEE", 299),
			FreeShippingThreshold: getEnvAsInt64("SHOP_FREE_SHIPPING_THRESHOLD", 2000),
			CheckoutTTL:           getEnvAsDuration("SHOP_CHECKOUT_TTL", 30*time.Minute),
			SessionCookieName:     getEnv("SHOP_SESSION_COOKIE", "session_id"),
			SessionCookieMaxAge:   getEnvAsInt("SHOP_SESSION_MAX_AGE", 14*86400),
			TreatmentsDepartment:  getEnv("SHOP_TREATMENTS_DEPARTMENT", "Servicios"),
			LowStockThreshold:     getEnvAsInt("SHOP_LOW_STOCK_THRESHOLD", 5),
		},
		External: ExternalConfig{
			Stripe: StripeConfig{
				SecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
				PublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
				WebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
			},
			Email: EmailConfig{
				Provider:   getEnv("EMAIL_PROVIDER", "log"),
				APIKey:     getEnv("MAILJET_API_KEY", ""),
				APISecret:  getEnv("MAILJET_API_SECRET", ""),
				FromEmail:  getEnv("FROM_EMAIL", "noreply@charmaway.es"),
				FromName:   getEnv("FROM_NAME", "Charmaway"),
				ReplyTo:    getEnv("REPLY_TO_EMAIL", ""),
				SMTPHost:   getEnv("SMTP_HOST", ""),
				SMTPPort:   getEnvAsInt("SMTP_PORT", 587),
				SMTPUser:   getEnv("SMTP_USER", ""),
				SMTPPass:   getEnv("SMTP_PASS", ""),
				SMTPUseTLS: getEnvAsBool("SMTP_USE_TLS", true),
			},
			Storage: StorageConfig{
				Provider:    getEnv("STORAGE_PROVIDER", "local"),
				LocalPath:   getEnv("STORAGE_LOCAL_PATH", "./uploads"),
				S3Bucket:    getEnv("S3_BUCKET", ""),
				S3Region:    getEnv("S3_REGION", "eu-west-1"),
				S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
				S3SecretKey: getEnv("S3_SECRET_KEY", ""),
				S3Endpoint:  getEnv("S3_ENDPOINT", ""),
				CDNBaseURL:  getEnv("CDN_BASE_URL", ""),
			},
		},
		Upload: UploadConfig{
			MaxSize:           getEnvAsInt64("UPLOAD_MAX_SIZE", 5242880), // 5MB
			AllowedExtensions: getEnvAsSlice("UPLOAD_ALLOWED_EXTENSIONS", []string{"jpg", "jpeg", "png", "webp"}),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

const devJWTSecret = "change-me-change-me-change-me-change-me"

// Validate reports every problem at once
func (c *Config) Validate() error {
	var errs []error
	required := func(name, value string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	required("DB_HOST", c.Database.Host)
	required("DB_NAME", c.Database.Name)
	required("DB_USER", c.Database.User)
	required("REDIS_HOST", c.Redis.Host)
	required("APP_PORT", c.Server.Port)

	if len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters long"))
	} else if c.IsProduction() && c.JWT.Secret == devJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}

	if c.Shop.ShippingFlatFee < 0 {
		errs = append(errs, errors.New("SHOP_SHIPPING_FEE must not be negative"))
	}
	if c.Shop.FreeShippingThreshold < 0 {
		errs = append(errs, errors.New("SHOP_FREE_SHIPPING_THRESHOLD must not be negative"))
	}

	switch c.External.Email.Provider {
	case "log", "smtp", "mailjet":
	default:
		errs = append(errs, fmt.Errorf("EMAIL_PROVIDER %q is not one of log, smtp, mailjet", c.External.Email.Provider))
	}
	switch c.External.Storage.Provider {
	case "local":
	case "s3":
		required("S3_BUCKET", c.External.Storage.S3Bucket)
	default:
		errs = append(errs, fmt.Errorf("STORAGE_PROVIDER %q is not one of local, s3", c.External.Storage.Provider))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the key=value DSN understood by pgx
func (c *Config) GetDatabaseDSN() string {
	db := c.Database
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.User, db.Password, db.Name, db.SSLMode)
}

func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// lookup parses an environment variable, falling back when it is unset or malformed
func lookup[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getEnv(key, fallback string) string {
	return lookup(key, fallback, func(s string) (string, error) { return s, nil })
}

func getEnvAsInt(key string, fallback int) int {
	return lookup(key, fallback, strconv.Atoi)
}

func getEnvAsInt64(key string, fallback int64) int64 {
	return lookup(key, fallback, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

func getEnvAsBool(key string, fallback bool) bool {
	return lookup(key, fallback, strconv.ParseBool)
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	return lookup(key, fallback, time.ParseDuration)
}

// getEnvAsSlice splits a comma separated list, dropping blanks
func getEnvAsSlice(key string, fallback []string) []string {
	return lookup(key, fallback, func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	})
}
