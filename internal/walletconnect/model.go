package walletconnect

import (
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/atomic"

	"moff.io/dapp-demo/pkg/errors"
	"moff.io/dapp-demo/pkg/log"
)

// Session is what the wallet shares on approval and on wc_sessionUpdate.
type Session struct {
	Approved bool       `json:"approved"`
	Meta     clientMeta `json:"peerMeta"`
	ChainID  uint64     `json:"chainId"`
	Accounts []string   `json:"accounts"`
	PeerID   string     `json:"peerId"`
}

func (s Session) clone() Session {
	s.Accounts = append([]string(nil), s.Accounts...)
	return s
}

type peer struct {
	PeerID   string      `json:"peerId"`
	PeerMeta clientMeta  `json:"peerMeta"`
	ChainID  interface{} `json:"chainId"`
}

type clientMeta struct {
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Icons       []string `json:"icons"`
	Name        string   `json:"name"`
}

type sessionUpdate struct {
	Approved bool        `json:"approved"`
	ChainID  interface{} `json:"chainId"`
	Accounts []string    `json:"accounts"`
}

type wcMessage struct {
	Topic string `json:"topic"`
	// pub sub ack
	Type    string `json:"type"`
	Payload string `json:"payload"`
	Silent  bool   `json:"silent"`
}

func newWCMessageFromBytes(data []byte) (*wcMessage, error) {
	var msg wcMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.WrapAndReport(err, "unmarshal wallet connect message")
	}
	return &msg, nil
}

func (msg *wcMessage) Marshal() []byte {
	bytes, _ := json.Marshal(msg)
	return bytes
}

type jsonRpcRequest struct {
	ID      int64         `json:"id"`
	JSONRpc string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

func newJSONRpcRequest(method string, params ...interface{}) *jsonRpcRequest {
	r := &jsonRpcRequest{
		ID:      payloadID(),
		JSONRpc: "2.0",
		Method:  method,
		Params:  []interface{}{},
	}
	if len(params) > 0 {
		r.Params = params
	}
	return r
}

func (e *jsonRpcRequest) Marshal() string {
	s, err := json.Marshal(e)
	if err != nil {
		log.Errorf("marshal:%v", err)
	}
	return string(s)
}

// IsSilentPayload reports whether the bridge should skip push notifications.
func (e *jsonRpcRequest) IsSilentPayload() bool {
	return strings.HasPrefix(e.Method, "wc_")
}

var lastPayloadID atomic.Int64

// payloadID is microsecond based like the reference clients, kept unique
// within the process.
func payloadID() int64 {
	for {
		last := lastPayloadID.Load()
		next := time.Now().UnixNano() / 1000
		if next <= last {
			next = last + 1
		}
		if lastPayloadID.CAS(last, next) {
			return next
		}
	}
}
