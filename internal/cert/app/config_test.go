package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, "certvault", cfg.Issuer)
	require.Equal(t, []string{"certvault"}, cfg.Audience)
	require.Equal(t, "certvault.db", cfg.DatabaseFile)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 30*time.Minute, cfg.AccessTTL)
	require.Equal(t, 90*time.Second, cfg.MineTimeout)
	require.Equal(t, 90*24*time.Hour, cfg.AuditRetention)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CERTVAULT_ISSUER", "certvault-staging")
	t.Setenv("CERTVAULT_AUDIENCE", "web,cli")
	t.Setenv("PORT", "9090")
	t.Setenv("CERTVAULT_ACCESS_TTL", "1h")
	t.Setenv("HOUSEKEEPING_INTERVAL", "300") // bare seconds

	cfg := LoadConfig()

	require.Equal(t, "certvault-staging", cfg.Issuer)
	require.Equal(t, []string{"web", "cli"}, cfg.Audience)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, time.Hour, cfg.AccessTTL)
	require.Equal(t, 5*time.Minute, cfg.HousekeepingInterval)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{
		PinataAPIKey:    "key",
		PinataSecretKey: "secret",
		EthRPCURL:       "http://localhost:8545",
		ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		EthPrivateKey:   "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
	}
	require.NoError(t, cfg.Validate())

	cfg.EthRPCURL = ""
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "ETH_RPC_URL")
}
