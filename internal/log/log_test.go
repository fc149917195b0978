package log

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"strings"
	"testing"
)

func capture(t *testing.T, fn func()) []entry {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldFlags := stdlog.Writer(), stdlog.Flags()
	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)
	defer func() {
		stdlog.SetOutput(oldW)
		stdlog.SetFlags(oldFlags)
	}()

	fn()

	var out []entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("not a json line: %q", line)
		}
		out = append(out, e)
	}
	return out
}

func TestEventAndFail(t *testing.T) {
	entries := capture(t, func() {
		Event("preview.open", map[string]any{"product": "7"})
		Fail("texture.load.fail", errors.New("boom"), nil)
	})
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if entries[0].Level != "info" || entries[0].Action != "preview.open" || entries[0].Fields["product"] != "7" {
		t.Fatalf("bad event entry: %+v", entries[0])
	}
	if entries[1].Level != "error" || entries[1].Err != "boom" {
		t.Fatalf("bad fail entry: %+v", entries[1])
	}
}
