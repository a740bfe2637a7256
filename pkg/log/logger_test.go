package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(InfoLevel)

	SetLevel(WarnLevel)
	buf.Reset()
	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")

	SetLevel(DebugLevel)
	buf.Reset()
	Debugf("wallet %s", "0xabc")
	assert.Contains(t, buf.String(), "wallet 0xabc")
}
