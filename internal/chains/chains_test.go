package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"0x1":      "Ethereum Mainnet",
		"0x3":      "Ropsten Testnet",
		"0x4":      "Rinkeby Testnet",
		"0x5":      "Goerli Testnet",
		"0x2a":     "Kovan Testnet",
		"0x2A":     "Kovan Testnet",
		"0xaa36a7": "Sepolia Testnet",
		"0x01":     "Ethereum Mainnet",
		"1":        "Ethereum Mainnet",
		"137":      "Polygon",
		"0x999":    "Unknown Chain (0x999)",
		"garbage":  "Unknown Chain (garbage)",
		"":         "Unknown Chain ()",
	}
	for id, want := range cases {
		assert.Equal(t, want, DisplayName(id), id)
	}
}

func TestParse(t *testing.T) {
	n, ok := Parse("0x0")
	assert.True(t, ok)
	assert.Equal(t, uint64(0), n)

	n, ok = Parse("42")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), n)

	_, ok = Parse("0x")
	assert.False(t, ok)
	_, ok = Parse("0xzz")
	assert.False(t, ok)
	_, ok = Parse("-1")
	assert.False(t, ok)
}

func TestHex(t *testing.T) {
	assert.Equal(t, "0x2a", Hex("42"))
	assert.Equal(t, "0x1", Hex("0x01"))
	assert.Equal(t, "mainnet", Hex("mainnet"))
}

func TestMappingCoversArray(t *testing.T) {
	assert.Len(t, Mapping, len(Array))
	for _, chain := range Array {
		assert.Equal(t, Hex(chain.IDHex), chain.IDHex)
	}
}
