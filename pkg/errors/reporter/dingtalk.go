package reporter

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"
)

// DingTalkRobot is a DingTalk custom group robot.
// Adapted from https://github.com/royeo/dingrobot
type DingTalkRobot interface {
	SendText(content string, atMobiles []string, isAtAll bool) error
	SendMarkdown(title, text string, atMobiles []string, isAtAll bool) error
	WithSecret(secret string) DingTalkRobot
}

type dingTalkRobot struct {
	webHook string
	secret  string
	client  *http.Client
	now     func() time.Time
}

const defaultSendTimeout = 5 * time.Second

// NewDingTalkRobot returns a robot posting to webHook.
func NewDingTalkRobot(webHook string) DingTalkRobot {
	return &dingTalkRobot{
		webHook: webHook,
		client:  &http.Client{Timeout: defaultSendTimeout},
		now:     time.Now,
	}
}

// WithSecret signs every request with secret.
func (r *dingTalkRobot) WithSecret(secret string) DingTalkRobot {
	r.secret = secret
	return r
}

func (r *dingTalkRobot) SendText(content string, atMobiles []string, isAtAll bool) error {
	return r.send(&textMessage{
		MsgType: msgTypeText,
		Text:    textParams{Content: content},
		At:      atParams{AtMobiles: atMobiles, IsAtAll: isAtAll},
	})
}

func (r *dingTalkRobot) SendMarkdown(title, text string, atMobiles []string, isAtAll bool) error {
	return r.send(&markdownMessage{
		MsgType:  msgTypeMarkdown,
		Markdown: markdownParams{Title: title, Text: text},
		At:       atParams{AtMobiles: atMobiles, IsAtAll: isAtAll},
	})
}

type dingResponse struct {
	Errcode int    `json:"errcode"`
	Errmsg  string `json:"errmsg"`
}

func (r *dingTalkRobot) send(msg interface{}) error {
	m, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	webURL := r.webHook
	if len(r.secret) != 0 {
		webURL += r.signedQuery()
	}
	resp, err := r.client.Post(webURL, "application/json", bytes.NewReader(m))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var dr dingResponse
	if err := json.Unmarshal(data, &dr); err != nil {
		return err
	}
	if dr.Errcode != 0 {
		return fmt.Errorf("dingrobot send failed: %v", dr.Errmsg)
	}
	return nil
}

func (r *dingTalkRobot) signedQuery() string {
	timeStr := fmt.Sprintf("%d", r.now().UnixNano()/1e6)
	sign := fmt.Sprintf("%s\n%s", timeStr, r.secret)
	encoded := url.QueryEscape(calcHmacSha256(sign, r.secret))
	return fmt.Sprintf("&timestamp=%s&sign=%s", timeStr, encoded)
}

func calcHmacSha256(message string, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

const (
	msgTypeText     = "text"
	msgTypeMarkdown = "markdown"
)

type atParams struct {
	AtMobiles []string `json:"atMobiles,omitempty"`
	IsAtAll   bool     `json:"isAtAll,omitempty"`
}

type textParams struct {
	Content string `json:"content"`
}

type textMessage struct {
	MsgType string     `json:"msgtype"`
	Text    textParams `json:"text"`
	At      atParams   `json:"at"`
}

type markdownParams struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type markdownMessage struct {
	MsgType  string         `json:"msgtype"`
	Markdown markdownParams `json:"markdown"`
	At       atParams       `json:"at"`
}
