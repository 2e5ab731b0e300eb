package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Square       SquareConfig
	Stripe       StripeConfig
	Business     BusinessConfig
	Storage      StorageConfig
	Admin        AdminConfig
	RateLimit    RateLimitConfig
	Maintenance  MaintenanceConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.Business.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SPA_APP_ENV" required:"true"`
	Port         string `envconfig:"SPA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SPA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPA_LOG_WARN_STACK" default:"false"`
	// Comma separated list of storefront origins allowed by CORS.
	AllowedOrigins []string `envconfig:"SPA_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SPA_DB_DSN"`

	LegacyHost     string `envconfig:"SPA_DB_HOST"`
	LegacyPort     int    `envconfig:"SPA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SPA_DB_USER"`
	LegacyPassword string `envconfig:"SPA_DB_PASSWORD"`
	LegacyName     string `envconfig:"SPA_DB_NAME"`
	LegacySSLMode  string `envconfig:"SPA_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SPA_DB_SQLITE_PATH" default:"spa.db"`

	MaxOpenConns    int           `envconfig:"SPA_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SPA_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SPA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPA_REDIS_URL"`
	Address      string        `envconfig:"SPA_REDIS_ADDR"`
	Password     string        `envconfig:"SPA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPA_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"SPA_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type SquareConfig struct {
	AccessToken   string `envconfig:"SPA_SQUARE_ACCESS_TOKEN" required:"true"`
	Env           string `envconfig:"SPA_SQUARE_ENV" default:"sandbox"`
	LocationID    string `envconfig:"SPA_SQUARE_LOCATION_ID" required:"true"`
	TeamMemberID  string `envconfig:"SPA_SQUARE_TEAM_MEMBER_ID"`
	WebhookSecret string `envconfig:"SPA_SQUARE_WEBHOOK_SECRET"`
	// Public URL Square posts to; part of the signed payload.
	WebhookURL string `envconfig:"SPA_SQUARE_WEBHOOK_URL"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type StripeConfig struct {
	APIKey        string `envconfig:"SPA_STRIPE_API_KEY"`
	Env           string `envconfig:"SPA_STRIPE_ENV" default:"test"`
	Currency      string `envconfig:"SPA_STRIPE_CURRENCY" default:"usd"`
	WebhookSecret string `envconfig:"SPA_STRIPE_WEBHOOK_SECRET"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// Enabled reports whether the terminal payment flow can be wired.
func (s StripeConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type BusinessConfig struct {
	Timezone           string `envconfig:"SPA_BUSINESS_TIMEZONE" default:"America/Chicago"`
	SundayClosingHour  int    `envconfig:"SPA_BUSINESS_SUNDAY_CLOSING_HOUR" default:"18"`
	DefaultClosingHour int    `envconfig:"SPA_BUSINESS_DEFAULT_CLOSING_HOUR" default:"20"`
	HoldMinutes        int    `envconfig:"SPA_BUSINESS_HOLD_MINUTES" default:"10"`
	FeePercent         string `envconfig:"SPA_BUSINESS_FEE_PERCENT" default:"3"`
	DiscountPresets    []int  `envconfig:"SPA_BUSINESS_DISCOUNT_PRESETS" default:"5,10,15,20"`
}

// Location resolves the configured business timezone.
func (b BusinessConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(b.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading business timezone %q: %w", name, err)
	}
	return loc, nil
}

type StorageConfig struct {
	// Zero keeps carts until they are cleared.
	CartTTL    time.Duration `envconfig:"SPA_STORAGE_CART_TTL" default:"0s"`
	HandoffTTL time.Duration `envconfig:"SPA_STORAGE_HANDOFF_TTL" default:"2h"`
	CatalogTTL time.Duration `envconfig:"SPA_STORAGE_CATALOG_TTL" default:"5m"`
}

type AdminConfig struct {
	JWTSecret string `envconfig:"SPA_ADMIN_JWT_SECRET" required:"true"`
	JWTIssuer string `envconfig:"SPA_ADMIN_JWT_ISSUER" default:"spa-admin"`
}

type RateLimitConfig struct {
	BookingWindow     time.Duration `envconfig:"SPA_RATE_LIMIT_BOOKING_WINDOW" default:"10m"`
	BookingIPLimit    int           `envconfig:"SPA_RATE_LIMIT_BOOKING_IP_LIMIT" default:"20"`
	BookingEmailLimit int           `envconfig:"SPA_RATE_LIMIT_BOOKING_EMAIL_LIMIT" default:"5"`
}

// MaintenanceConfig drives the cron worker. Retention values are in days.
type MaintenanceConfig struct {
	Interval              time.Duration `envconfig:"SPA_MAINTENANCE_INTERVAL" default:"24h"`
	CheckInRetentionDays  int           `envconfig:"SPA_MAINTENANCE_CHECKIN_RETENTION_DAYS" default:"365"`
	AnnouncementGraceDays int           `envconfig:"SPA_MAINTENANCE_ANNOUNCEMENT_GRACE_DAYS" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite     bool   `envconfig:"SPA_USE_SQLITE" default:"false"`
	AutoMigrate   bool   `envconfig:"SPA_AUTO_MIGRATE" default:"false"`
	CatalogSource string `envconfig:"SPA_CATALOG_SOURCE" default:"square"`
}

// CatalogFromSquare reports whether services are read from the Square catalog.
func (f FeatureFlagsConfig) CatalogFromSquare() bool {
	return !strings.EqualFold(strings.TrimSpace(f.CatalogSource), CatalogSourceDB)
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
