package logger

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
		now = time.Now
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug(t *testing.T) {
	buf := capture(t, true)
	Debug("trying %s (%d/%d)", "gptzero", 3, 4)
	assert.Equal(t, "[DEBUG] trying gptzero (3/4)\n", buf.String())
}

func TestDebug_Quiet(t *testing.T) {
	buf := capture(t, false)
	Debug("hidden")
	Info("hidden")
	Section("hidden")
	assert.Empty(t, buf.String())
}

func TestInfo(t *testing.T) {
	buf := capture(t, true)
	Info("corpus has %d documents", 12)
	assert.Equal(t, "[INFO] corpus has 12 documents\n", buf.String())
}

func TestWarn_AlwaysWritten(t *testing.T) {
	buf := capture(t, false)
	Warn("backend %s unavailable", "copyleaks")
	assert.Equal(t, "[WARN] backend copyleaks unavailable\n", buf.String())
}

func TestError_AlwaysWritten(t *testing.T) {
	buf := capture(t, false)
	Error("open corpus: %v", "locked")
	assert.Equal(t, "[ERROR] open corpus: locked\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := capture(t, true)
	Section("Analysis")
	assert.Equal(t, "\n=== Analysis ===\n", buf.String())
}

func TestTimed(t *testing.T) {
	buf := capture(t, true)

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	calls := 0
	now = func() time.Time {
		calls++
		if calls == 1 {
			return start
		}
		return start.Add(1500 * time.Millisecond)
	}

	stop := Timed("similarity")
	stop()

	assert.Equal(t, "[DEBUG] similarity took 1.5s\n", buf.String())
}
