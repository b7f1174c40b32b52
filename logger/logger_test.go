package logger

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriters("MYR", &out, &errOut)

	l.Log("picked %s", "gpu")
	l.Warn("careful")
	l.Err(errors.New("100% broken"), "create %s", "device")
	l.Trace("hidden")

	assert.Contains(t, out.String(), "[MYR] ")
	assert.Contains(t, out.String(), "picked gpu")
	assert.Contains(t, errOut.String(), "[MYR WARN] ")
	assert.Contains(t, errOut.String(), "create device, 100% broken")
	assert.NotContains(t, errOut.String(), "hidden")
}

func TestTrace(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriters("MYR", &out, &errOut).WithTrace(true)

	l.Trace("release %d", 3)
	assert.Contains(t, errOut.String(), "[MYR TRACE] ")
	assert.Contains(t, errOut.String(), "release 3")

	errOut.Reset()
	l.Named("POMPEII").Trace("kept")
	assert.Contains(t, errOut.String(), "[POMPEII TRACE] ")

	errOut.Reset()
	l.WithTrace(false).Trace("dropped")
	assert.Empty(t, errOut.String())
}
