package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, backend URL, secrets)
// - default: Values common across all environments (intervals, timeouts, storage keys)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	Log     LogConfig
	CORS    CORSConfig
	Cookie  CookieConfig
	JWT     JWTConfig
	Backend BackendConfig
	Cart    CartConfig
	Redis   RedisConfig
	DB      DBConfig
	Payment PaymentConfig
	Notify  NotifyConfig
	Display DisplayConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Ho_Chi_Minh"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"25200"` // 7*60*60
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,X-Request-ID"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

// CookieConfig applies to the guest cart session cookie.
type CookieConfig struct {
	Domain        string        `envconfig:"COOKIE_DOMAIN"`
	Secure        bool          `envconfig:"COOKIE_SECURE" default:"false"`
	SameSite      string        `envconfig:"COOKIE_SAME_SITE" default:"Lax"`
	SessionMaxAge time.Duration `envconfig:"CART_SESSION_MAX_AGE" default:"720h"`
}

// JWTConfig holds the secret shared with the backend that issues session tokens.
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

type BackendConfig struct {
	BaseURL string        `envconfig:"BACKEND_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	// BreakerFailures consecutive stock lookup failures open the circuit for BreakerOpenFor.
	BreakerFailures uint32        `envconfig:"BACKEND_BREAKER_FAILURES" default:"5"`
	BreakerOpenFor  time.Duration `envconfig:"BACKEND_BREAKER_OPEN_FOR" default:"30s"`
}

type CartConfig struct {
	Driver         string        `envconfig:"CART_STORE_DRIVER" default:"redis"` // redis | postgres | memory
	StorageKey     string        `envconfig:"CART_STORAGE_KEY" default:"cart-storage"`
	AutoUpdate     bool          `envconfig:"CART_AUTO_UPDATE" default:"true"`
	UpdateInterval time.Duration `envconfig:"CART_UPDATE_INTERVAL" default:"30000ms"`
	MaxConcurrent  int           `envconfig:"CART_VALIDATE_MAX_CONCURRENT" default:"8"`
	TTL            time.Duration `envconfig:"CART_TTL" default:"720h"`
	SessionIdle    time.Duration `envconfig:"CART_SESSION_IDLE" default:"30m"`
	MaxSessions    int           `envconfig:"CART_MAX_SESSIONS" default:"10000"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	DBName   string `envconfig:"DB_NAME"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Ho_Chi_Minh"`
}

type PaymentConfig struct {
	// WebhookDelay gives the backend time to process the gateway webhook before the first status query.
	WebhookDelay    time.Duration `envconfig:"PAYMENT_WEBHOOK_DELAY" default:"2500ms"`
	PollInitial     time.Duration `envconfig:"PAYMENT_POLL_INITIAL" default:"500ms"`
	PollMaxInterval time.Duration `envconfig:"PAYMENT_POLL_MAX_INTERVAL" default:"4s"`
	PollTimeout     time.Duration `envconfig:"PAYMENT_POLL_TIMEOUT" default:"20s"`
	PollMaxAttempts uint64        `envconfig:"PAYMENT_POLL_MAX_ATTEMPTS" default:"6"`
}

type NotifyConfig struct {
	FeedSize        int           `envconfig:"NOTIFY_FEED_SIZE" default:"50"`
	FeedTTL         time.Duration `envconfig:"NOTIFY_FEED_TTL" default:"10m"`
	WarningDuration time.Duration `envconfig:"NOTIFY_WARNING_DURATION" default:"5s"`
	SuccessDuration time.Duration `envconfig:"NOTIFY_SUCCESS_DURATION" default:"3s"`
	KafkaEnabled    bool          `envconfig:"NOTIFY_KAFKA_ENABLED" default:"false"`
	KafkaBrokers    []string      `envconfig:"NOTIFY_KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic      string        `envconfig:"NOTIFY_KAFKA_TOPIC" default:"storefront-notifications"`
}

type DisplayConfig struct {
	TimeZone string `envconfig:"DISPLAY_TIMEZONE" default:"Asia/Ho_Chi_Minh"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c DisplayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func LoadConfig() (Config, error) {
	_ = godotenv.Load() // .env is optional

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cart.Driver {
	case "redis", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported CART_STORE_DRIVER %q", c.Cart.Driver)
	}
	if c.Cart.UpdateInterval <= 0 {
		return fmt.Errorf("CART_UPDATE_INTERVAL must be positive, got %s", c.Cart.UpdateInterval)
	}
	if c.Cart.Driver == "postgres" && (c.DB.User == "" || c.DB.DBName == "") {
		return fmt.Errorf("DB_USER and DB_NAME are required for the postgres cart store")
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Ho_Chi_Minh",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 25200,
		},
		CORS: CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           time.Hour,
		},
		Cookie: CookieConfig{
			SameSite:      "Lax",
			SessionMaxAge: time.Hour,
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
		Backend: BackendConfig{
			BaseURL:         "http://localhost:18080",
			Timeout:         2 * time.Second,
			BreakerFailures: 3,
			BreakerOpenFor:  time.Minute,
		},
		Cart: CartConfig{
			Driver:         "memory",
			StorageKey:     "cart-storage",
			AutoUpdate:     true,
			UpdateInterval: 30 * time.Second,
			MaxConcurrent:  4,
			TTL:            time.Hour,
			SessionIdle:    30 * time.Minute,
		},
		Payment: PaymentConfig{
			WebhookDelay:    0,
			PollInitial:     time.Millisecond,
			PollMaxInterval: 5 * time.Millisecond,
			PollTimeout:     time.Second,
			PollMaxAttempts: 3,
		},
		Notify: NotifyConfig{
			FeedSize:        10,
			FeedTTL:         time.Minute,
			WarningDuration: 5 * time.Second,
			SuccessDuration: 3 * time.Second,
		},
		Display: DisplayConfig{
			TimeZone: "UTC",
		},
	}
}
