package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer         string   // Optional: issuer claim for access tokens (default: certvault)
	Audience       []string // Optional: audience claim for access tokens (default: certvault)
	SigningKeyFile string   // Optional: path to an Ed25519 PKCS#8 PEM key; ephemeral when unset
	AccessTTL      time.Duration

	DatabaseFile string // Optional: path to SQLite database file (default: ./certvault.db)

	PinataAPIKey     string // Required: Pinata API key
	PinataSecretKey  string // Required: Pinata secret API key
	PinataAPIURL     string // Optional: override for the pinning API base URL
	PinataGatewayURL string // Optional: override for the IPFS gateway base URL

	EthRPCURL       string        // Required: Ethereum JSON-RPC endpoint
	ContractAddress string        // Required: deployed CertVault contract address
	EthPrivateKey   string        // Required: hex private key of the issuing account
	MineTimeout     time.Duration // Optional: how long to wait for a transaction to mine

	RedisURL           string        // Optional: enables logout and the validation cache
	ValidationCacheTTL time.Duration // Optional: validation report cache lifetime

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Audit pruning interval (default: 1h)
	AuditRetention       time.Duration // How long audit events are kept (default: 90 days)
}

// LoadConfig reads configuration from the environment. A .env file in
// the working directory is loaded first when present, real environment
// variables win over it.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Issuer:         getEnvOrDefault("CERTVAULT_ISSUER", "certvault"),
		Audience:       splitList(getEnvOrDefault("CERTVAULT_AUDIENCE", "certvault")),
		SigningKeyFile: os.Getenv("CERTVAULT_SIGNING_KEY_FILE"),
		AccessTTL:      getEnvDurationOrDefault("CERTVAULT_ACCESS_TTL", 30*time.Minute),

		DatabaseFile: getEnvOrDefault("CERTVAULT_DATABASE_FILE", "certvault.db"),

		PinataAPIKey:     os.Getenv("PINATA_API_KEY"),
		PinataSecretKey:  os.Getenv("PINATA_SECRET_API_KEY"),
		PinataAPIURL:     os.Getenv("PINATA_API_URL"),
		PinataGatewayURL: os.Getenv("PINATA_GATEWAY_URL"),

		EthRPCURL:       os.Getenv("ETH_RPC_URL"),
		ContractAddress: os.Getenv("CERTVAULT_CONTRACT_ADDRESS"),
		EthPrivateKey:   os.Getenv("ETH_PRIVATE_KEY"),
		MineTimeout:     getEnvDurationOrDefault("ETH_MINE_TIMEOUT", 90*time.Second),

		RedisURL:           os.Getenv("REDIS_URL"),
		ValidationCacheTTL: getEnvDurationOrDefault("VALIDATION_CACHE_TTL", 30*time.Second),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		AuditRetention:       getEnvDurationOrDefault("AUDIT_RETENTION", 90*24*time.Hour),
	}
}

// Validate checks that everything without a sensible default is set.
func (cfg Config) Validate() error {
	var missing []string
	if cfg.PinataAPIKey == "" {
		missing = append(missing, "PINATA_API_KEY")
	}
	if cfg.PinataSecretKey == "" {
		missing = append(missing, "PINATA_SECRET_API_KEY")
	}
	if cfg.EthRPCURL == "" {
		missing = append(missing, "ETH_RPC_URL")
	}
	if cfg.ContractAddress == "" {
		missing = append(missing, "CERTVAULT_CONTRACT_ADDRESS")
	}
	if cfg.EthPrivateKey == "" {
		missing = append(missing, "ETH_PRIVATE_KEY")
	}
	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are treated as seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
