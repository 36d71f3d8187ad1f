package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger captures JSON log output at every level for assertions.
type TestLogger struct {
	*zerolog.Logger
	Buffer *bytes.Buffer
}

// NewTestLogger returns a capturing logger. The global level is lowered
// to trace for the duration of the test.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()
	old := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(old) })

	buf := &bytes.Buffer{}
	l := zerolog.New(buf).Level(zerolog.TraceLevel)
	return &TestLogger{Logger: &l, Buffer: buf}
}

// Contains reports whether any captured line contains substr.
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Buffer.String(), substr)
}

// Entries decodes the captured lines. Lines that are not JSON are skipped.
func (tl *TestLogger) Entries() []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(tl.Buffer.String()), "\n") {
		var e map[string]any
		if json.Unmarshal([]byte(line), &e) == nil {
			out = append(out, e)
		}
	}
	return out
}
