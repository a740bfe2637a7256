package walletconnect

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tidwall/gjson"

	"moff.io/dapp-demo/internal/provider"
	"moff.io/dapp-demo/internal/wallet"
	"moff.io/dapp-demo/pkg/log"
)

// codeUnauthorized is the EIP-1193 code for calls made before pairing.
const codeUnauthorized = 4100

// personalSign forwards personal_sign(message, address) to the peer and
// only returns signatures that recover to address.
func (p *Provider) personalSign(ctx context.Context, params ...interface{}) (gjson.Result, error) {
	if len(params) < 2 {
		return gjson.Result{}, provider.Internal("%s expects message and address", wallet.MethodPersonalSign)
	}
	message, _ := params[0].(string)
	address, _ := params[1].(string)

	req := newJSONRpcRequest(wallet.MethodPersonalSign, message, address)
	reply := make(chan gjson.Result, 1)
	p.mu.Lock()
	t, s := p.transport, p.session
	if t == nil {
		p.mu.Unlock()
		return gjson.Result{}, &provider.Error{Code: codeUnauthorized, Message: "wallet connect session not established"}
	}
	p.pending[req.ID] = reply
	peerID := s.PeerID
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.pending, req.ID)
		p.mu.Unlock()
	}()
	if err := t.publish(peerID, req); err != nil {
		return gjson.Result{}, err
	}

	var res gjson.Result
	select {
	case r, ok := <-reply:
		if !ok {
			return gjson.Result{}, provider.Internal("wallet connect session ended before signing")
		}
		res = r
	case <-ctx.Done():
		return gjson.Result{}, ctx.Err()
	}

	if e := res.Get("error"); e.Exists() {
		msg := e.Get("message").String()
		if e.Get("code").Int() == wallet.CodeUserRejected || strings.Contains(strings.ToLower(msg), "reject") {
			return gjson.Result{}, provider.UserRejected(msg)
		}
		return gjson.Result{}, provider.Internal("wallet connect: %s", msg)
	}
	signature := res.Get("result")
	if !verifySignature(address, signature.String(), messageBytes(message)) {
		log.Warnf("wallet connect - signature does not recover to %s", address)
		return gjson.Result{}, provider.Internal("signature was not produced by %s", address)
	}
	return signature, nil
}

// messageBytes decodes 0x-prefixed hex messages, anything else is taken as
// utf-8 text.
func messageBytes(message string) []byte {
	if strings.HasPrefix(message, "0x") {
		if data, err := hexutil.Decode(message); err == nil {
			return data
		}
	}
	return []byte(message)
}

func verifySignature(signAddrHex, signatureHex string, msg []byte) bool {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil || len(sig) != crypto.SignatureLength {
		return false
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27 // Transform yellow paper V from 27/28 to 0/1
	}
	recovered, err := crypto.SigToPub(accounts.TextHash(msg), sig)
	if err != nil {
		return false
	}
	return common.HexToAddress(signAddrHex) == crypto.PubkeyToAddress(*recovered)
}
