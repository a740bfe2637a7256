package common

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// NewCutUUIDString returns uuid string that cut `-`.
func NewCutUUIDString() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// MustGetJSONString marshals m, "{}" on failure.
func MustGetJSONString(m interface{}) string {
	if m == nil {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		log.Error(err)
		return "{}"
	}
	return string(data)
}

// MaskMiddle keeps the first and last keep characters of s, e.g. wallet
// addresses in log lines.
func MaskMiddle(s string, keep int) string {
	if keep <= 0 || len(s) <= keep*2 {
		return s
	}
	return s[:keep] + "..." + s[len(s)-keep:]
}
