package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/surety"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Surety   SuretyConfig   `yaml:"surety"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	EventsTopic        string   `yaml:"events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type SuretyConfig struct {
	Owner              string `yaml:"owner"`
	FirstIssuer        string `yaml:"first_issuer"`
	MinFunding         string `yaml:"min_funding"`
	OracleFee          string `yaml:"oracle_fee"`
	PremiumCap         string `yaml:"premium_cap"`
	PayoutMultiplier   string `yaml:"payout_multiplier"`
	AdmissionThreshold int    `yaml:"admission_threshold"`
	OracleQuorum       int    `yaml:"oracle_quorum"`
	OracleIndexRange   int    `yaml:"oracle_index_range"`
	IdempotencyTTL     int    `yaml:"idempotency_ttl_seconds"`
	FlightsCacheTTL    int    `yaml:"flights_cache_ttl_seconds"`
}

// Params builds engine parameters. Unset values keep their defaults.
func (s SuretyConfig) Params() (surety.Params, error) {
	p := surety.DefaultParams(domain.Address(s.Owner), domain.Address(s.FirstIssuer))

	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"min_funding", s.MinFunding, &p.MinFunding},
		{"oracle_fee", s.OracleFee, &p.OracleFee},
		{"premium_cap", s.PremiumCap, &p.PremiumCap},
		{"payout_multiplier", s.PayoutMultiplier, &p.PayoutMultiplier},
	} {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return p, fmt.Errorf("surety.%s: %w", f.name, err)
		}
		*f.dst = v
	}
	if s.AdmissionThreshold != 0 {
		p.AdmissionThreshold = s.AdmissionThreshold
	}
	if s.OracleQuorum != 0 {
		p.OracleQuorum = s.OracleQuorum
	}
	if s.OracleIndexRange != 0 {
		if s.OracleIndexRange > 255 {
			return p, fmt.Errorf("surety.oracle_index_range: %d exceeds 255", s.OracleIndexRange)
		}
		p.IndexRange = uint8(s.OracleIndexRange)
	}
	return p, p.Validate()
}

func (s SuretyConfig) IdempotencyWindow() time.Duration {
	return time.Duration(s.IdempotencyTTL) * time.Second
}

func (s SuretyConfig) FlightsCacheWindow() time.Duration {
	return time.Duration(s.FlightsCacheTTL) * time.Second
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type MetricsConfig struct {
	Path string `yaml:"path"`
}

type WorkerConfig struct {
	CommitIntervalSeconds int `yaml:"commit_interval_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
