package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"moff.io/dapp-demo/internal/config"
	"moff.io/dapp-demo/internal/panels"
	"moff.io/dapp-demo/internal/provider/simulated"
	"moff.io/dapp-demo/internal/wallet"
)

func newTestServer(t *testing.T) (*Server, *simulated.Provider) {
	gin.SetMode(gin.TestMode)
	p := simulated.New(config.Simulated{
		Delay:    time.Millisecond,
		Accounts: []string{"0xMockAccount1234567890abcdef"},
		ChainID:  "0x1",
	})
	session := wallet.NewSession(p)
	session.Initialize(context.Background())
	t.Cleanup(session.Teardown)

	registrar, err := panels.NewRegistrar(1, nil)
	require.NoError(t, err)
	uploader := panels.NewUploader(config.Upload{MaxBytes: 5 * 1024 * 1024, StepDelay: time.Millisecond, MaxConcurrent: 2}, nil)
	registry := panels.NewRegistry(time.Millisecond, nil)

	s := NewServer(config.Server{Addr: "127.0.0.1:0", RequestTimeout: time.Second}, session, registrar, uploader, registry)
	t.Cleanup(s.Stop)
	return s, p
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestWalletRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/wallet", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "disconnected", gjson.Get(w.Body.String(), "status").String())

	w = do(s, http.MethodPost, "/wallet/connect", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "connected", gjson.Get(body, "status").String())
	assert.Equal(t, "0xMockAccount1234567890abcdef", gjson.Get(body, "account").String())
	assert.Equal(t, "Ethereum Mainnet", gjson.Get(body, "chainName").String())
	assert.Equal(t, "simulated", gjson.Get(body, "provider").String())

	w = do(s, http.MethodPost, "/wallet/disconnect", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Equal(t, "disconnected", gjson.Get(body, "status").String())
	assert.Equal(t, "disconnected", gjson.Get(body, "lastError.kind").String())
	assert.False(t, gjson.Get(body, "account").Exists())
}

func TestConnectOutlivesRequest(t *testing.T) {
	s, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/wallet/connect", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "connected", gjson.Get(body, "status").String())
	assert.False(t, gjson.Get(body, "lastError").Exists())
}

func TestChainRoute(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/chains/0x5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Goerli Testnet", gjson.Get(w.Body.String(), "name").String())
	assert.True(t, gjson.Get(w.Body.String(), "known").Bool())

	w = do(s, http.MethodGet, "/chains/1337", "")
	assert.Equal(t, "Unknown Chain (1337)", gjson.Get(w.Body.String(), "name").String())
	assert.Equal(t, "0x539", gjson.Get(w.Body.String(), "hex").String())
}

func TestRegisterRoute(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodPost, "/register",
		`{"fullName":"Ana","email":"ana@example.com","password":"secret1","confirmPassword":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "ok").Bool())

	w = do(s, http.MethodPost, "/register",
		`{"fullName":"Ana","email":"ana@example.com","password":"secret1","confirmPassword":"secret2"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "passwords do not match", gjson.Get(w.Body.String(), "message").String())

	w = do(s, http.MethodPost, "/register", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int64(4000), gjson.Get(w.Body.String(), "code").Int())
}

func TestRegistryRoute(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodPost, "/registry/check", `{"id":"0xRegistrado01"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, panels.RegistryRegistered, gjson.Get(w.Body.String(), "status").String())

	w = do(s, http.MethodPost, "/registry/check", `{"id":"nope"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "ok").Bool())
	assert.Equal(t, panels.RegistryNotFound, gjson.Get(w.Body.String(), "status").String())

	w = do(s, http.MethodPost, "/registry/check", `{"id":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartUpload(t *testing.T, name string, size int) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if name != "" {
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = fw.Write(bytes.Repeat([]byte("a"), size))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadRoute(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, multipartUpload(t, "report.pdf", 128))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 11, strings.Count(body, "event:progress"))
	assert.Contains(t, body, `"percent":100`)
	assert.Contains(t, body, "event:done")
	assert.Contains(t, body, `report.pdf\" uploaded successfully (simulation)`)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, multipartUpload(t, "", 0))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no file selected", gjson.Get(w.Body.String(), "message").String())

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, multipartUpload(t, "virus.exe", 10))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file type .exe not accepted", gjson.Get(w.Body.String(), "message").String())
}

func TestWalletStream(t *testing.T) {
	s, p := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/wallet/stream", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first wallet.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.Empty(t, first.Account)

	resp, err := http.Post(ts.URL+"/wallet/connect", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	p.SetChain("0xaa36a7")

	for {
		var raw json.RawMessage
		require.NoError(t, conn.ReadJSON(&raw))
		if gjson.GetBytes(raw, "chainName").String() == "Sepolia Testnet" {
			assert.Equal(t, "0xMockAccount1234567890abcdef", gjson.GetBytes(raw, "account").String())
			break
		}
	}
}

func TestStartStop(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	s.Stop()

	bad := NewServer(config.Server{Addr: "256.0.0.1:bad"}, nil, nil, nil, nil)
	assert.Error(t, bad.Start(context.Background()))
}
