package golin

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "ERROR", EventTypeError.String())
	assert.Equal(t, "DEBUG", EventTypeDebug.String())
	assert.Equal(t, "UNKNOWN", EventType(7).String())
	assert.Equal(t, "UNKNOWN", EventType(-1).String())
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()

	l := NewStdLogger(EventTypeInfo)
	l.Log(EventTypeInfo, "Master: ok, BR=19200")
	l.Log(EventTypeDebug, "dropped")
	assert.Contains(t, buf.String(), "INFO")
	assert.Contains(t, buf.String(), "Master: ok, BR=19200")
	assert.NotContains(t, buf.String(), "dropped")
}
