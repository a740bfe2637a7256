package walletconnect

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
	"github.com/tidwall/gjson"
	"go.uber.org/atomic"

	"moff.io/dapp-demo/internal/provider"
	"moff.io/dapp-demo/internal/wallet"
	"moff.io/dapp-demo/pkg/errors"
	"moff.io/dapp-demo/pkg/log"
	"moff.io/dapp-demo/pkg/wcbridge"
)

const methodSessionUpdate = "wc_sessionUpdate"

// Provider keeps at most one live bridge session. eth_requestAccounts pairs
// a wallet when there is none.
type Provider struct {
	*provider.Emitter

	bridgeURL   string
	qrCodePath  string
	readTimeout time.Duration
	meta        clientMeta
	display     DisplayQRCodeFn
	dialer      websocket.Dialer

	// Set while a pairing runs, a second one is refused.
	handshaking atomic.Bool

	mu        sync.Mutex
	transport *transport
	session   *Session
	pending   map[int64]chan gjson.Result
	closing   bool
}

var _ wallet.Provider = (*Provider)(nil)

func (p *Provider) Name() string {
	return Name
}

func (p *Provider) Request(ctx context.Context, method string, params ...interface{}) (gjson.Result, error) {
	switch method {
	case wallet.MethodRequestAccounts:
		if s, ok := p.Session(); ok {
			return accountsResult(s.Accounts), nil
		}
		s, err := p.pair(ctx)
		if err != nil {
			return gjson.Result{}, err
		}
		return accountsResult(s.Accounts), nil
	case wallet.MethodAccounts:
		s, _ := p.Session()
		return accountsResult(s.Accounts), nil
	case wallet.MethodChainID:
		s, ok := p.Session()
		if !ok || s.ChainID == 0 {
			return gjson.Parse("null"), nil
		}
		return gjson.Parse(strconv.Quote(hexutil.EncodeUint64(s.ChainID))), nil
	case wallet.MethodPersonalSign:
		return p.personalSign(ctx, params...)
	default:
		return gjson.Result{}, provider.Unsupported(method)
	}
}

// Session returns a copy of the live session.
func (p *Provider) Session() (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return Session{}, false
	}
	return p.session.clone(), true
}

// Stop tells the peer the session is over and closes the bridge connection
// without emitting events.
func (p *Provider) Stop() {
	p.mu.Lock()
	t, s := p.transport, p.session
	if t != nil {
		p.closing = true
	}
	p.mu.Unlock()
	if t == nil {
		return
	}
	kill := newJSONRpcRequest(methodSessionUpdate, sessionUpdate{Approved: false})
	if err := t.publish(s.PeerID, kill); err != nil {
		log.Warnf("wallet connect - kill session: %v", err)
	}
	t.close()
}

func (p *Provider) pair(ctx context.Context) (Session, error) {
	if !p.handshaking.CAS(false, true) {
		return Session{}, errors.New("duplicate wallet connect handshake")
	}
	defer p.handshaking.Store(false)

	key, err := wcbridge.GenerateRandomBytes(256 / 8)
	if err != nil {
		return Session{}, errors.WrapAndReport(err, "generate session key")
	}
	bridgeURL := p.bridgeURL
	if bridgeURL == "" {
		bridgeURL = wcbridge.RandomBridgeURL()
	}
	conn, _, err := p.dialer.DialContext(ctx, wcbridge.GetWebSocketURL(bridgeURL, "wc", "1"), nil)
	if err != nil {
		return Session{}, errors.WrapAndReport(err, "dial to wallet connect bridge url")
	}
	t := &transport{conn: conn, key: key, clientID: uuid.NewString()}

	// Closing the connection is the only way to interrupt a blocked read.
	stop, stopped := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			t.close()
		case <-stop:
		}
	}()
	s, err := p.interact(ctx, t, uuid.NewString(), bridgeURL)
	close(stop)
	<-stopped
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		t.close()
		if ctxErr := contextErr(ctx); ctxErr != nil {
			return Session{}, ctxErr
		}
		return Session{}, err
	}

	p.mu.Lock()
	p.transport = t
	p.session = &s
	p.closing = false
	p.mu.Unlock()
	log.Infof("wallet connect - paired with %s on chain %d", s.Meta.Name, s.ChainID)

	go p.readLoop(t)
	return s.clone(), nil
}

// contextErr is ctx.Err, except that a deadline already in the past counts
// as exceeded. The socket read deadline can fire before the context timer.
func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
		return context.DeadlineExceeded
	}
	return nil
}

func (p *Provider) interact(ctx context.Context, t *transport, handshakeTopic, bridgeURL string) (Session, error) {
	if err := t.subscribe(); err != nil {
		return Session{}, err
	}
	req := newJSONRpcRequest("wc_sessionRequest", peer{
		PeerID:   t.clientID,
		PeerMeta: p.meta,
	})
	if err := t.publish(handshakeTopic, req); err != nil {
		return Session{}, err
	}

	uri := wcbridge.PairingURI(handshakeTopic, bridgeURL, t.key)
	log.Debugf("wallet connect - generated uri:%v", uri)
	png, err := p.qrCode(uri)
	if err != nil {
		return Session{}, err
	}
	if err := p.display(uri, png); err != nil {
		return Session{}, errors.Wrap(err, "display wallet connect qr code")
	}

	deadline := time.Now().Add(p.readTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	for {
		reply, err := t.read(deadline)
		if err != nil {
			if errors.Is(err, errSessionClosed) {
				return Session{}, provider.UserRejected("Session Rejected")
			}
			return Session{}, err
		}
		if reply.Get("id").Int() != req.ID {
			log.Debugf("wallet connect - skip message before session response: %s", reply.Raw)
			continue
		}
		return parseSessionResponse(reply)
	}
}

func parseSessionResponse(reply gjson.Result) (Session, error) {
	if e := reply.Get("error"); e.Exists() {
		msg := e.Get("message").String()
		if msg == "" {
			msg = e.String()
		}
		if strings.Contains(msg, "Session Rejected") {
			return Session{}, provider.UserRejected(msg)
		}
		return Session{}, provider.Internal("wallet connect: %s", msg)
	}
	var s Session
	if err := json.Unmarshal([]byte(reply.Get("result").Raw), &s); err != nil {
		return Session{}, errors.WrapAndReport(err, "unmarshal wallet info")
	}
	if !s.Approved {
		return Session{}, provider.UserRejected("Session Rejected")
	}
	if len(s.Accounts) == 0 {
		return Session{}, errors.NewWithReport("no wallet accounts acquired")
	}
	return s, nil
}

func (p *Provider) qrCode(uri string) ([]byte, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		return nil, errors.WrapAndReport(err, "encode wallet connect qr code")
	}
	if p.qrCodePath != "" {
		if err := qrcode.WriteFile(uri, qrcode.Medium, 256, p.qrCodePath); err != nil {
			log.Warnf("wallet connect - write qr code to %s: %v", p.qrCodePath, err)
		}
	}
	return png, nil
}

func (p *Provider) readLoop(t *transport) {
	for {
		msg, err := t.read(time.Time{})
		if err != nil {
			p.endSession(t, err)
			return
		}
		if msg.Get("method").String() == methodSessionUpdate {
			p.applySessionUpdate(t, msg.Get("params.0"))
			continue
		}
		if id := msg.Get("id").Int(); id != 0 {
			p.deliver(id, msg)
		}
	}
}

// endSession drops the session owned by t. Unless Stop initiated it,
// listeners see an empty account list.
func (p *Provider) endSession(t *transport, cause error) {
	p.mu.Lock()
	if p.transport != t {
		p.mu.Unlock()
		return
	}
	closing := p.closing
	p.transport, p.session, p.closing = nil, nil, false
	for id, ch := range p.pending {
		close(ch)
		delete(p.pending, id)
	}
	p.mu.Unlock()

	t.close()
	if closing {
		return
	}
	log.Warnf("wallet connect - session ended: %v", cause)
	p.EmitJSON(wallet.EventAccountsChanged, "[]")
}

func (p *Provider) applySessionUpdate(t *transport, params gjson.Result) {
	if !params.Get("approved").Bool() {
		p.endSession(t, errSessionClosed)
		return
	}
	accounts := wallet.Accounts(params.Get("accounts"))
	chainID := params.Get("chainId").Uint()

	p.mu.Lock()
	if p.transport != t || p.session == nil {
		p.mu.Unlock()
		return
	}
	s := p.session
	accountsChanged := len(accounts) > 0 && strings.Join(accounts, ",") != strings.Join(s.Accounts, ",")
	chainChanged := chainID != 0 && chainID != s.ChainID
	if accountsChanged {
		s.Accounts = accounts
	}
	if chainChanged {
		s.ChainID = chainID
	}
	p.mu.Unlock()

	if accountsChanged {
		p.Emit(wallet.EventAccountsChanged, params.Get("accounts"))
	}
	if chainChanged {
		p.EmitJSON(wallet.EventChainChanged, strconv.Quote(hexutil.EncodeUint64(chainID)))
	}
}

func (p *Provider) deliver(id int64, reply gjson.Result) {
	p.mu.Lock()
	ch, ok := p.pending[id]
	delete(p.pending, id)
	p.mu.Unlock()
	if !ok {
		log.Debugf("wallet connect - no request waiting for reply %d", id)
		return
	}
	ch <- reply
}

func accountsResult(accounts []string) gjson.Result {
	if accounts == nil {
		accounts = []string{}
	}
	data, _ := json.Marshal(accounts)
	return gjson.ParseBytes(data)
}
