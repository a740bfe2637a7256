package wcbridge

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"
)

// Pairing flow:
// 1. subscribe to our own client topic on the bridge
// 2. publish an encrypted wc_sessionRequest on the handshake topic
// 3. show the wc: URI (handshake topic, bridge, key) to the wallet owner
// 4. wait for the peer's reply and later wc_sessionUpdate messages on our topic

const (
	alphanumerical  = "abcdefghijklmnopqrstuvwxyz0123456789"
	bridgeURLFormat = "https://%v.bridge.walletconnect.org"
)

var random = rand.New(rand.NewSource(time.Now().UnixNano()))

// RandomBridgeURL picks one of the public v1 bridges.
func RandomBridgeURL() string {
	c := alphanumerical[random.Intn(len(alphanumerical))]
	return fmt.Sprintf(bridgeURLFormat, string(c))
}

// GetWebSocketURL turns an http(s) bridge URL into its websocket endpoint.
func GetWebSocketURL(bridgeURL, protocol, version string) string {
	switch {
	case strings.HasPrefix(bridgeURL, "https"):
		bridgeURL = strings.Replace(bridgeURL, "https", "wss", 1)
	case strings.HasPrefix(bridgeURL, "http"):
		bridgeURL = strings.Replace(bridgeURL, "http", "ws", 1)
	}
	return bridgeURL + "?protocol=" + protocol + "&version=" + version + "&env=dapp-demo"
}

// PairingURI builds the wc: URI shown to the wallet owner.
func PairingURI(handshakeTopic, bridgeURL string, key []byte) string {
	return fmt.Sprintf("wc:%s@1?bridge=%s&key=%s",
		handshakeTopic, url.QueryEscape(bridgeURL), hex.EncodeToString(key))
}

// ParsePairingURI is the inverse of PairingURI.
func ParsePairingURI(uri string) (topic, bridgeURL string, key []byte, err error) {
	rest := strings.TrimPrefix(uri, "wc:")
	at := strings.Index(rest, "@")
	q := strings.Index(rest, "?")
	if rest == uri || at < 0 || q < at {
		return "", "", nil, fmt.Errorf("malformed pairing uri %q", uri)
	}
	values, err := url.ParseQuery(rest[q+1:])
	if err != nil {
		return "", "", nil, err
	}
	key, err = hex.DecodeString(values.Get("key"))
	if err != nil {
		return "", "", nil, err
	}
	return rest[:at], values.Get("bridge"), key, nil
}
