package walletconnect

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"moff.io/dapp-demo/pkg/errors"
	"moff.io/dapp-demo/pkg/log"
	"moff.io/dapp-demo/pkg/wcbridge"
)

var (
	errSessionClosed = errors.New("session closed")
)

// transport is one bridge connection. Reads happen on a single goroutine at
// a time, writes are serialized.
type transport struct {
	conn     *websocket.Conn
	key      []byte
	clientID string

	writeMu sync.Mutex
}

func (t *transport) close() {
	t.conn.Close()
}

func (t *transport) send(msg wcMessage) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.WriteMessage(websocket.TextMessage, msg.Marshal()); err != nil {
		return errors.Wrap(err, "write wallet connect message to bridge")
	}
	return nil
}

func (t *transport) subscribe() error {
	msg := wcMessage{
		Topic:  t.clientID,
		Type:   "sub",
		Silent: true,
	}
	log.Debugf("wallet connect - subscribe session:%v", string(msg.Marshal()))
	return t.send(msg)
}

func (t *transport) ack() error {
	return t.send(wcMessage{
		Topic:  t.clientID,
		Type:   "ack",
		Silent: true,
	})
}

// publish encrypts req and posts it on topic.
func (t *transport) publish(topic string, req *jsonRpcRequest) error {
	payload, err := wcbridge.Seal([]byte(req.Marshal()), t.key)
	if err != nil {
		return errors.WrapAndReport(err, "encrypt wallet connect request")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.WithStack(err)
	}
	msg := wcMessage{
		Topic:   topic,
		Type:    "pub",
		Payload: string(data),
		Silent:  req.IsSilentPayload(),
	}
	log.Debugf("wallet connect - publish %s on %s", req.Method, topic)
	return t.send(msg)
}

// read returns the next decrypted JSON-RPC payload published to us. A zero
// deadline waits forever.
func (t *transport) read(deadline time.Time) (gjson.Result, error) {
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return gjson.Result{}, errors.Wrap(err, "set websocket read timeout")
	}
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return gjson.Result{}, errSessionClosed
			}
			return gjson.Result{}, errors.Wrap(err, "read wallet connect message")
		}
		if msgType != websocket.TextMessage {
			return gjson.Result{}, errors.NewWithReport("unsupported message type")
		}
		log.Debugf("wallet connect - receive:%v", string(data))
		msg, err := newWCMessageFromBytes(data)
		if err != nil {
			return gjson.Result{}, err
		}
		if msg.Type != "pub" || msg.Payload == "" {
			continue
		}
		if err := t.ack(); err != nil {
			return gjson.Result{}, err
		}
		var payload wcbridge.Payload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			return gjson.Result{}, errors.WrapAndReport(err, "unmarshal wallet connect message payload")
		}
		plain, err := wcbridge.Open(&payload, t.key)
		if err != nil {
			return gjson.Result{}, errors.WrapAndReport(err, "decrypt wallet connect payload")
		}
		return gjson.ParseBytes(plain), nil
	}
}
