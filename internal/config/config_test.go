package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("CHAIN_NETWORK", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 7090, cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "sepolia", cfg.Chain.Network)
	assert.Equal(t, 4*time.Second, cfg.Chain.PollInterval)
}

func TestLoadChainAliases(t *testing.T) {
	t.Setenv("CHAIN_RPC_URL", "")
	t.Setenv("NEXT_PUBLIC_SEPOLIA_RPC_URL", "https://rpc.sepolia.example")
	t.Setenv("NEXT_PUBLIC_CONTRACT_ADDRESS", " 0x5FbDB2315678afecb367f032d93F642f64180aa3 ")
	t.Setenv("OWNER_PRIVATE_KEY", "0xabc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.sepolia.example", cfg.Chain.RPCURL)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", cfg.Chain.ContractAddress)
	assert.Equal(t, "0xabc", cfg.Chain.PrivateKey)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DSN", "whatever")
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList("  "))
	assert.Equal(t, []string{"http://a", "http://b"}, parseList(" http://a, ,http://b "))
}
