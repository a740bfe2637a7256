// Package walletconnect is a wallet provider speaking the WalletConnect v1
// bridge protocol. Pairing follows
// https://docs.walletconnect.com/tech-spec#establishing-connection: the
// session request is published on a handshake topic, the wallet owner scans
// the wc: URI and the wallet answers on our client topic.
package walletconnect

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"moff.io/dapp-demo/internal/config"
	"moff.io/dapp-demo/internal/provider"
	"moff.io/dapp-demo/pkg/log"
)

const Name = "walletconnect"

// DisplayQRCodeFn shows the pairing URI to the wallet owner. png is the
// same URI rendered as a QR code.
type DisplayQRCodeFn func(uri string, png []byte) error

func logPairingURI(uri string, _ []byte) error {
	log.Infof("wallet connect - scan to pair: %s", uri)
	return nil
}

// New builds a provider. A nil display logs the pairing URI.
func New(cfg config.WalletConnect, display DisplayQRCodeFn) *Provider {
	if display == nil {
		display = logPairingURI
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 5 * time.Minute
	}
	return &Provider{
		Emitter:     provider.NewEmitter(),
		bridgeURL:   cfg.BridgeURL,
		qrCodePath:  cfg.QRCodePath,
		readTimeout: readTimeout,
		display:     display,
		dialer:      websocket.Dialer{HandshakeTimeout: 30 * time.Second},
		meta: clientMeta{
			Description: "wallet connection demo",
			URL:         cfg.DappURL,
			Icons:       []string{},
			Name:        cfg.DappName,
		},
		pending: make(map[int64]chan gjson.Result),
	}
}

func (p *Provider) Start(ctx context.Context) error {
	if p.bridgeURL == "" {
		log.Info("wallet connect - a random public bridge is picked on pairing")
	} else {
		log.Infof("wallet connect - bridge %s", p.bridgeURL)
	}
	return nil
}
