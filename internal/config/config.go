package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

// ChainConfig is presence-checked by the chain package on first use, not here.
type ChainConfig struct {
	RPCURL          string
	ContractAddress string
	PrivateKey      string
	ChainID         int64
	Network         string
	PollInterval    time.Duration
}

type RegistryConfig struct {
	WatchEvents bool
}

type Config struct {
	Environment string
	Version     string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Chain       ChainConfig
	Registry    RegistryConfig
}

func Load() (*Config, error) {
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.BindEnv("CHAIN_RPC_URL", "CHAIN_RPC_URL", "SEPOLIA_RPC_URL", "NEXT_PUBLIC_SEPOLIA_RPC_URL")
	_ = v.BindEnv("CHAIN_CONTRACT_ADDRESS", "CHAIN_CONTRACT_ADDRESS", "CONTRACT_ADDRESS", "NEXT_PUBLIC_CONTRACT_ADDRESS")
	_ = v.BindEnv("CHAIN_OWNER_PRIVATE_KEY", "CHAIN_OWNER_PRIVATE_KEY", "OWNER_PRIVATE_KEY")

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		Version:     v.GetString("APP_VERSION"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Chain: ChainConfig{
			RPCURL:          strings.TrimSpace(v.GetString("CHAIN_RPC_URL")),
			ContractAddress: strings.TrimSpace(v.GetString("CHAIN_CONTRACT_ADDRESS")),
			PrivateKey:      strings.TrimSpace(v.GetString("CHAIN_OWNER_PRIVATE_KEY")),
			ChainID:         v.GetInt64("CHAIN_ID"),
			Network:         strings.ToLower(strings.TrimSpace(v.GetString("CHAIN_NETWORK"))),
			PollInterval:    v.GetDuration("CHAIN_POLL_INTERVAL"),
		},
		Registry: RegistryConfig{
			WatchEvents: v.GetBool("REGISTRY_WATCH_EVENTS"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"*"}
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "postgres"
	}
	if cfg.Chain.Network == "" {
		cfg.Chain.Network = "sepolia"
	}
	if cfg.Chain.PollInterval <= 0 {
		cfg.Chain.PollInterval = 4 * time.Second
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN != "" {
		switch cfg.DB.Driver {
		case "postgres", "sqlite":
		default:
			return fmt.Errorf("DB_DRIVER %q is not supported", cfg.DB.Driver)
		}
	}
	if cfg.DB.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(cfg.DB.ConnMaxLifetime); err != nil {
			return fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err)
		}
	}
	if cfg.Chain.ChainID < 0 {
		return fmt.Errorf("CHAIN_ID must not be negative")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
