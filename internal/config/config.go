package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"seedworks/internal/rewards"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	App        AppConfig
	Rewards    RewardsConfig
	Withdrawal rewards.WithdrawalPolicy
	Redis      RedisConfig
	Events     EventsConfig
	Worker     WorkerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string // postgres, mysql, sqlite
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	LogLevel string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	AllowedOrigins []string
	AuthRateLimit  uint
	APIRateLimit   uint
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret           string
	JobToken            string
	Location            *time.Location
	RegisterReward      decimal.Decimal
	RechargeMin         decimal.Decimal
	RechargeAutoApprove bool
	SpinsPerRecharge    int
}

// RewardsConfig holds reward tables
type RewardsConfig struct {
	Checkin         rewards.CheckinTable
	Spin            *rewards.SpinDistribution
	Wheel           []decimal.Decimal
	CommissionRates []decimal.Decimal
	ReferralDepth   int
}

// RedisConfig is optional; an empty Addr disables redis-backed features
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether redis was configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// EventsConfig selects the outbox publisher
type EventsConfig struct {
	Provider     string // none, nats, kafka
	NATSURL      string
	KafkaBrokers []string
	TopicPrefix  string
}

// WorkerConfig holds background worker settings
type WorkerConfig struct {
	Concurrency       int
	AccrualCron       string
	AccrualInterval   time.Duration
	RunInProcess      bool
	OutboxInterval    time.Duration
	OutboxBatchSize   int
	OutboxMaxRetries  int
	TriggerURL        string
	TriggerMaxRetries int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "seedworks")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_LOG_LEVEL", "error")

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("AUTH_RATE_LIMIT", 10)
	v.SetDefault("API_RATE_LIMIT", 120)

	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("REGISTER_REWARD", "20")
	v.SetDefault("RECHARGE_MIN", "390")
	v.SetDefault("RECHARGE_AUTO_APPROVE", false)
	v.SetDefault("SPINS_PER_RECHARGE", 1)

	v.SetDefault("CHECKIN_REWARDS", "1:10,2:20")
	v.SetDefault("SPIN_DISTRIBUTION", "10:1")
	v.SetDefault("SPIN_WHEEL", "10,20,30,50,100,200,500,1000")
	v.SetDefault("COMMISSION_RATES", "0.07,0.05,0.03")
	v.SetDefault("REFERRAL_DEPTH", 3)

	v.SetDefault("WITHDRAW_MIN", "106")
	v.SetDefault("WITHDRAW_MAX", "100000")
	v.SetDefault("WITHDRAW_TAX_RATE", "0.05")

	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("EVENTS_PROVIDER", "none")
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("EVENTS_TOPIC_PREFIX", "seedworks")

	v.SetDefault("WORKER_CONCURRENCY", 5)
	v.SetDefault("ACCRUAL_CRON", "5 0 * * *")
	v.SetDefault("ACCRUAL_INTERVAL", "1h")
	v.SetDefault("ACCRUAL_IN_PROCESS", false)
	v.SetDefault("OUTBOX_INTERVAL", "2s")
	v.SetDefault("OUTBOX_BATCH_SIZE", 100)
	v.SetDefault("OUTBOX_MAX_RETRIES", 5)
	v.SetDefault("TRIGGER_URL", "http://localhost:8080/internal/jobs/daily-accrual")
	v.SetDefault("TRIGGER_MAX_RETRIES", 3)
}

// Load loads configuration from .env, an optional CONFIG_FILE and the environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:      v.GetString("DB_DSN"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			LogLevel: v.GetString("DB_LOG_LEVEL"),
		},
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
			AllowedOrigins: splitList(v.GetString("CORS_ORIGINS")),
			AuthRateLimit:  v.GetUint("AUTH_RATE_LIMIT"),
			APIRateLimit:   v.GetUint("API_RATE_LIMIT"),
		},
		App: AppConfig{
			JWTSecret:           v.GetString("JWT_SECRET"),
			JobToken:            v.GetString("JOB_TOKEN"),
			RechargeAutoApprove: v.GetBool("RECHARGE_AUTO_APPROVE"),
			SpinsPerRecharge:    v.GetInt("SPINS_PER_RECHARGE"),
		},
		Rewards: RewardsConfig{
			ReferralDepth: v.GetInt("REFERRAL_DEPTH"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Events: EventsConfig{
			Provider:     strings.ToLower(v.GetString("EVENTS_PROVIDER")),
			NATSURL:      v.GetString("NATS_URL"),
			KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
			TopicPrefix:  v.GetString("EVENTS_TOPIC_PREFIX"),
		},
		Worker: WorkerConfig{
			Concurrency:       v.GetInt("WORKER_CONCURRENCY"),
			AccrualCron:       v.GetString("ACCRUAL_CRON"),
			AccrualInterval:   v.GetDuration("ACCRUAL_INTERVAL"),
			RunInProcess:      v.GetBool("ACCRUAL_IN_PROCESS"),
			OutboxInterval:    v.GetDuration("OUTBOX_INTERVAL"),
			OutboxBatchSize:   v.GetInt("OUTBOX_BATCH_SIZE"),
			OutboxMaxRetries:  v.GetInt("OUTBOX_MAX_RETRIES"),
			TriggerURL:        v.GetString("TRIGGER_URL"),
			TriggerMaxRetries: v.GetInt("TRIGGER_MAX_RETRIES"),
		},
	}

	var err error

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch config.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.Database.Driver)
	}

	if config.App.Location, err = time.LoadLocation(v.GetString("TIMEZONE")); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if config.App.RegisterReward, err = decimal.NewFromString(v.GetString("REGISTER_REWARD")); err != nil {
		return nil, fmt.Errorf("invalid REGISTER_REWARD: %w", err)
	}
	if config.App.RechargeMin, err = decimal.NewFromString(v.GetString("RECHARGE_MIN")); err != nil {
		return nil, fmt.Errorf("invalid RECHARGE_MIN: %w", err)
	}

	if config.Rewards.Checkin, err = ParseCheckinTable(v.GetString("CHECKIN_REWARDS")); err != nil {
		return nil, fmt.Errorf("invalid CHECKIN_REWARDS: %w", err)
	}
	if config.Rewards.Spin, err = rewards.ParseSpinDistribution(v.GetString("SPIN_DISTRIBUTION")); err != nil {
		return nil, fmt.Errorf("invalid SPIN_DISTRIBUTION: %w", err)
	}
	if config.Rewards.Wheel, err = parseDecimalList(v.GetString("SPIN_WHEEL")); err != nil {
		return nil, fmt.Errorf("invalid SPIN_WHEEL: %w", err)
	}
	if config.Rewards.CommissionRates, err = parseDecimalList(v.GetString("COMMISSION_RATES")); err != nil {
		return nil, fmt.Errorf("invalid COMMISSION_RATES: %w", err)
	}
	if config.Rewards.ReferralDepth < 1 || config.Rewards.ReferralDepth > 5 {
		return nil, fmt.Errorf("REFERRAL_DEPTH must be between 1 and 5")
	}

	if config.Withdrawal.Min, err = decimal.NewFromString(v.GetString("WITHDRAW_MIN")); err != nil {
		return nil, fmt.Errorf("invalid WITHDRAW_MIN: %w", err)
	}
	if config.Withdrawal.Max, err = decimal.NewFromString(v.GetString("WITHDRAW_MAX")); err != nil {
		return nil, fmt.Errorf("invalid WITHDRAW_MAX: %w", err)
	}
	if config.Withdrawal.TaxRate, err = decimal.NewFromString(v.GetString("WITHDRAW_TAX_RATE")); err != nil {
		return nil, fmt.Errorf("invalid WITHDRAW_TAX_RATE: %w", err)
	}
	if config.Withdrawal.TaxRate.IsNegative() || config.Withdrawal.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("WITHDRAW_TAX_RATE must be in [0, 1)")
	}

	switch config.Events.Provider {
	case "none", "nats", "kafka":
	default:
		return nil, fmt.Errorf("unsupported EVENTS_PROVIDER %q (none|nats|kafka)", config.Events.Provider)
	}

	return config, nil
}

// GetDSN returns the connection string for the configured driver
func (c *Config) GetDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}

	switch c.Database.Driver {
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.DBName,
		)
	case "sqlite":
		return c.Database.DBName + ".db"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// Today returns the business date in the configured time zone
func (c *Config) Today(now time.Time) string {
	return now.In(c.App.Location).Format(time.DateOnly)
}

// ParseCheckinTable reads "level:reward,level:reward"
func ParseCheckinTable(raw string) (rewards.CheckinTable, error) {
	table := rewards.CheckinTable{}
	for _, part := range splitList(raw) {
		levelStr, rewardStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("expected level:reward, got %q", part)
		}
		var level int
		if _, err := fmt.Sscanf(strings.TrimSpace(levelStr), "%d", &level); err != nil {
			return nil, fmt.Errorf("invalid level %q: %w", levelStr, err)
		}
		reward, err := decimal.NewFromString(strings.TrimSpace(rewardStr))
		if err != nil {
			return nil, fmt.Errorf("invalid reward %q: %w", rewardStr, err)
		}
		table[level] = reward
	}
	return table, nil
}

func parseDecimalList(raw string) ([]decimal.Decimal, error) {
	var out []decimal.Decimal
	for _, part := range splitList(raw) {
		d, err := decimal.NewFromString(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
