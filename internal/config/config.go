package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort string

	DBDriver   string // mysql | sqlite
	SQLitePath string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int
	LogLevel     string

	SessionTTLSecs      int
	SessionSweepSecs    int
	BorrowerLockTTLSecs int
	TreasurySeed        int64

	Notifier            string // redis | log
	NotifyChannelPrefix string
	RateLimitRPS        float64

	// JobTiers overrides the bank capacity per job tier; nil keeps the
	// built-in table.
	JobTiers map[string]int64
}

// file is the optional YAML overlay named by CONFIG_PATH.
type file struct {
	JobTiers     map[string]int64 `yaml:"job_tiers"`
	TreasurySeed *int64           `yaml:"treasury_seed"`
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() (*Config, error) {
	c := &Config{
		AppPort:    getenv("APP_PORT", "8080"),
		DBDriver:   getenv("DB_DRIVER", "mysql"),
		SQLitePath: getenv("SQLITE_PATH", "lending.db"),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "lending"),
		MySQLUser:  getenv("MYSQL_USER", "lending"),
		MySQLPass:  getenv("MYSQL_PASS", "lending"),

		// empty disables Redis for local runs
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),
		LogLevel:     getenv("LOG_LEVEL", "info"),

		SessionTTLSecs:      getint("SESSION_TTL_SECONDS", 900),
		SessionSweepSecs:    getint("SESSION_SWEEP_SECONDS", 60),
		BorrowerLockTTLSecs: getint("BORROWER_LOCK_TTL_SECONDS", 30),
		TreasurySeed:        1_000_000,

		Notifier:            getenv("NOTIFIER", ""),
		NotifyChannelPrefix: getenv("NOTIFY_CHANNEL_PREFIX", "lending:notify:"),
		RateLimitRPS:        20,
	}
	if c.Notifier == "" {
		c.Notifier = "log"
		if c.RedisAddr != "" {
			c.Notifier = "redis"
		}
	}
	if v := os.Getenv("TREASURY_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.TreasurySeed = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitRPS = f
		}
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		if err := c.overlay(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// overlay applies the YAML file at path. Environment variables win for
// keys present in both.
func (c *Config) overlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if len(f.JobTiers) > 0 {
		c.JobTiers = f.JobTiers
	}
	if f.TreasurySeed != nil && os.Getenv("TREASURY_SEED") == "" {
		c.TreasurySeed = *f.TreasurySeed
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.Notifier {
	case "log":
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("NOTIFIER=redis needs REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER %q", c.Notifier)
	}
	if c.SessionTTLSecs <= 0 {
		return errors.New("SESSION_TTL_SECONDS must be positive")
	}
	if c.TreasurySeed < 0 {
		return errors.New("TREASURY_SEED must not be negative")
	}
	for tier, capacity := range c.JobTiers {
		if capacity < 0 {
			return fmt.Errorf("job tier %q has a negative capacity", tier)
		}
	}
	return nil
}

func (c *Config) SessionTTL() time.Duration { return time.Duration(c.SessionTTLSecs) * time.Second }

func (c *Config) SessionSweep() time.Duration {
	if c.SessionSweepSecs <= 0 {
		return time.Minute
	}
	return time.Duration(c.SessionSweepSecs) * time.Second
}

func (c *Config) BorrowerLockTTL() time.Duration {
	return time.Duration(c.BorrowerLockTTLSecs) * time.Second
}

func (c *Config) IdempTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
