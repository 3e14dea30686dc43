package skyshow

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(prefix string, debug bool) (*DefaultLogger, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewWriterLogger(out, errOut, prefix, debug), out, errOut
}

func TestLogger_LevelsAndStreams(t *testing.T) {
	log, out, errOut := newBufferLogger("scene", true)

	log.Debugf("d %d", 1)
	log.Infof("i %d", 2)
	log.Warnf("w %d", 3)
	log.Errorf("e %d", 4)

	assert.Contains(t, out.String(), "[scene] DEBUG: d 1")
	assert.Contains(t, out.String(), "[scene] INFO: i 2")
	assert.Contains(t, errOut.String(), "[scene] WARN: w 3")
	assert.Contains(t, errOut.String(), "[scene] ERROR: e 4")
	assert.NotContains(t, out.String(), "WARN")
	assert.NotContains(t, errOut.String(), "INFO")
}

func TestLogger_DebugGate(t *testing.T) {
	log, out, _ := newBufferLogger("", false)
	assert.False(t, log.DebugEnabled())

	log.Debugf("hidden")
	assert.Empty(t, out.String())

	log.SetDebug(true)
	log.Debugf("shown")
	assert.Contains(t, out.String(), "DEBUG: shown")
	assert.NotContains(t, out.String(), "[]", "no brackets without a prefix")
}

func TestLogger_Named(t *testing.T) {
	log, out, _ := newBufferLogger("scene", false)
	sky := log.Named("sky")
	sky.Infof("ready")
	sky.Named("galaxy").Infof("built")
	assert.Contains(t, out.String(), "[scene/sky] INFO: ready")
	assert.Contains(t, out.String(), "[scene/sky/galaxy] INFO: built")

	// Children share the debug switch with their parent.
	log.SetDebug(true)
	assert.True(t, sky.DebugEnabled())

	bare, bareOut, _ := newBufferLogger("", false)
	bare.Named("rocket").Infof("ignition")
	assert.Contains(t, bareOut.String(), "[rocket] INFO: ignition")
}

func TestLogger_WarnOnce(t *testing.T) {
	log, _, errOut := newBufferLogger("scene", false)
	sky := log.Named("sky")

	for i := 0; i < 5; i++ {
		sky.WarnOnce("galaxy/broken.png", "galaxy image %s failed", "broken.png")
	}
	log.WarnOnce("galaxy/broken.png", "same key from the parent")
	sky.WarnOnce("galaxy/other.png", "galaxy image %s failed", "other.png")

	lines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[scene/sky] WARN: galaxy image broken.png failed")
	assert.Contains(t, lines[1], "other.png")
}

func TestLogger_Nop(t *testing.T) {
	log := NewNopLogger()
	assert.NotPanics(t, func() {
		log.SetDebug(true)
		log.Debugf("x")
		log.WarnOnce("k", "x")
		log.Named("a").Errorf("x")
	})
	assert.False(t, log.DebugEnabled())
	assert.Equal(t, log, log.Named("a"))
}

func TestApp_LoggerFallsBackToNop(t *testing.T) {
	var nilApp *App
	assert.NotNil(t, nilApp.Logger())
	assert.Equal(t, NewNopLogger(), NewApp().Logger())

	log, _, _ := newBufferLogger("x", false)
	app := NewApp().UseModules(LoggingModule{Logger: log})
	assert.Same(t, log, app.Logger())
}
