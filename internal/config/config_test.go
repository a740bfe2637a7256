package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
locale: pt-BR
wallet:
  provider: rpc
  rpc:
    url: http://node:8545
`))
	require.NoError(t, err)
	assert.Equal(t, "pt-BR", c.Locale)
	assert.Equal(t, ProviderRPC, c.Wallet.Provider)
	assert.Equal(t, "http://node:8545", c.Wallet.RPC.URL)
	assert.Equal(t, 4*time.Second, c.Wallet.RPC.PollInterval)
	assert.Equal(t, int64(5*1024*1024), c.Panels.Upload.MaxBytes)
	assert.Equal(t, ":8080", c.Server.Addr)
}

func TestParseRejectsUnknownProvider(t *testing.T) {
	_, err := Parse([]byte("wallet:\n  provider: ledger\n"))
	assert.Error(t, err)
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("walet:\n  provider: none\n"))
	assert.Error(t, err)
}

func TestParseKafkaNeedsTopic(t *testing.T) {
	_, err := Parse([]byte("kafka:\n  servers: a:9092\n  topic: \"\"\n"))
	assert.Error(t, err)
}

func TestLoadShippedConfig(t *testing.T) {
	c, err := Load("config.yml")
	require.NoError(t, err)
	assert.Equal(t, ProviderSimulated, c.Wallet.Provider)
	assert.Equal(t, []string{"0xMockAccount1234567890abcdef"}, c.Wallet.Simulated.Accounts)
	assert.Equal(t, 100*time.Millisecond, c.Panels.Upload.StepDelay)
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)

	path := filepath.Join(dir, "bad.yml")
	require.NoError(t, ioutil.WriteFile(path, []byte(":::"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}
