package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"moff.io/dapp-demo/internal/chains"
	"moff.io/dapp-demo/internal/wallet"
	"moff.io/dapp-demo/pkg/log"
)

const (
	streamPingPeriod   = 30 * time.Second
	streamWriteTimeout = 10 * time.Second
)

func (s *Server) getWallet(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.session.Snapshot())
}

// connectWallet is not bound to the request: a pairing in progress survives
// the browser going away and ends with the server. The session bounds it with
// its request timeout.
func (s *Server) connectWallet(ctx *gin.Context) {
	connectCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.closing:
			cancel()
		case <-connectCtx.Done():
		}
	}()
	ctx.JSON(http.StatusOK, s.session.Connect(connectCtx))
}

func (s *Server) disconnectWallet(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.session.Disconnect())
}

func (s *Server) getChain(ctx *gin.Context) {
	id := ctx.Param("id")
	chain := chains.Lookup(id)
	ctx.JSON(http.StatusOK, gin.H{
		"id":    id,
		"hex":   chains.Hex(id),
		"name":  chains.DisplayName(id),
		"known": chain != nil,
	})
}

// streamWallet pushes the current snapshot, then every change, until the
// client goes away or the server stops.
func (s *Server) streamWallet(ctx *gin.Context) {
	conn, err := s.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warnf("upgrade wallet stream: %v", err)
		return
	}
	defer conn.Close()

	ch := make(chan wallet.Snapshot, 16)
	sub := s.session.Watch(ch)
	defer sub.Unsubscribe()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(snap wallet.Snapshot) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(snap); err != nil {
			log.Debugf("wallet stream write: %v", err)
			return false
		}
		return true
	}

	last := s.session.Snapshot()
	if !write(last) {
		return
	}
	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()
	for {
		select {
		case snap := <-ch:
			if snap.Version <= last.Version {
				continue
			}
			last = snap
			if !write(snap) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
				return
			}
		case <-gone:
			return
		case <-s.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
				time.Now().Add(time.Second))
			return
		case <-sub.Err():
			return
		}
	}
}
