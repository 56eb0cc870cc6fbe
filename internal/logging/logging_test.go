package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Debug("hidden")
	logger.Info("ref verified", "ordinal", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug output at info level: %q", out)
	}
	if !strings.Contains(out, "ref verified") || !strings.Contains(out, "ordinal=3") {
		t.Errorf("output = %q", out)
	}

	buf.Reset()
	New(&buf, true).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("verbose logger dropped debug: %q", buf.String())
	}
}
