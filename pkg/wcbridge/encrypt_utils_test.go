package wcbridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	key, err := GenerateRandomBytes(32)
	require.NoError(t, err)

	// lengths around the block size exercise every padding value
	for _, n := range []int{0, 1, 9, 13, 15, 16, 17, 32} {
		plain := []byte(strings.Repeat("a", n))
		p, err := Seal(plain, key)
		require.NoError(t, err)
		got, err := Open(p, key)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestOpenRejectsTamperedHmac(t *testing.T) {
	key, _ := GenerateRandomBytes(32)
	p, err := Seal([]byte(`{"id":1}`), key)
	require.NoError(t, err)

	other, _ := GenerateRandomBytes(32)
	_, err = Open(p, other)
	assert.Error(t, err)
}

func TestPairingURIRoundTrip(t *testing.T) {
	key, _ := GenerateRandomBytes(32)
	uri := PairingURI("topic-1", "https://a.bridge.walletconnect.org", key)

	topic, bridge, gotKey, err := ParsePairingURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "topic-1", topic)
	assert.Equal(t, "https://a.bridge.walletconnect.org", bridge)
	assert.Equal(t, key, gotKey)

	_, _, _, err = ParsePairingURI("nope")
	assert.Error(t, err)
}

func TestGetWebSocketURL(t *testing.T) {
	assert.Equal(t, "wss://x.org?protocol=wc&version=1&env=dapp-demo", GetWebSocketURL("https://x.org", "wc", "1"))
	assert.Equal(t, "ws://127.0.0.1:1?protocol=wc&version=1&env=dapp-demo", GetWebSocketURL("http://127.0.0.1:1", "wc", "1"))
	assert.True(t, strings.HasSuffix(RandomBridgeURL(), ".bridge.walletconnect.org"))
}
