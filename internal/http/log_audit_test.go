package handlers_test

import (
	"bytes"
	"encoding/json"
	"log"
	"net/url"
	"strings"
	"sync"
	"testing"
)

type logEntry struct {
	Level     string                 `json:"level"`
	Action    string                 `json:"action"`
	SessionID string                 `json:"sid"`
	ReqID     string                 `json:"req_id"`
	Fields    map[string]interface{} `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// capture logs by temporarily replacing the standard logger output
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0) // remove timestamps to make JSON parseable
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func find(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

// cart and handoff events are audited with the session they belong to
func TestAuditTrail(t *testing.T) {
	a := newApp(t, testConfig())
	a.start(t)

	entries := captureLogs(t, func() {
		a.post(t, "/cart", url.Values{"productId": {"4"}, "qty": {"2"}, "color": {"#1d3557"}, "size": {"XL"}})
	})
	add, ok := find(entries, "cart.add")
	if !ok {
		t.Fatal("cart.add not logged")
	}
	if add.Level != "audit" || add.SessionID != a.cookies["sid"] || add.ReqID == "" {
		t.Fatalf("cart.add entry incomplete: %+v", add)
	}
	if add.Fields["color"] != "#1d3557" || add.Fields["size"] != "XL" || add.Fields["qty"] != float64(2) {
		t.Fatalf("cart.add fields: %v", add.Fields)
	}
	if change, ok := find(entries, "cart.change"); !ok || change.Fields["units"] != float64(2) {
		t.Fatalf("cart.change not logged: %+v", change)
	}

	entries = captureLogs(t, func() {
		a.post(t, "/checkout", shipping())
	})
	handoff, ok := find(entries, "order.handoff")
	if !ok {
		t.Fatal("order.handoff not logged")
	}
	if handoff.Fields["total"] != "32000" || handoff.Fields["lines"] != float64(1) {
		t.Fatalf("order.handoff fields: %v", handoff.Fields)
	}
	if _, ok := find(entries, "preview.close"); ok {
		t.Fatal("no preview was open")
	}
}

// rejected input shows up as a security event, without echoing the values
func TestValidationFailuresLogged(t *testing.T) {
	a := newApp(t, testConfig())
	a.start(t)
	a.post(t, "/cart", url.Values{"productId": {"1"}, "quick": {"1"}})

	form := shipping()
	form.Set("email", "nope")
	form.Set("zip", "<b>")
	entries := captureLogs(t, func() {
		a.post(t, "/checkout", form)
	})
	e, ok := find(entries, "validation.fail")
	if !ok {
		t.Fatal("validation.fail not logged")
	}
	if e.Level != "warn" {
		t.Fatalf("level %s", e.Level)
	}
	fields, _ := e.Fields["fields"].([]interface{})
	if len(fields) != 2 || fields[0] != "email" || fields[1] != "zip" {
		t.Fatalf("fields %v", e.Fields)
	}
	for _, line := range entries {
		if b, _ := json.Marshal(line); strings.Contains(string(b), "<b>") {
			t.Fatal("raw input echoed into the log")
		}
	}
}

// opening and leaving a product page is visible in the event log
func TestPreviewLifecycleLogged(t *testing.T) {
	a := newApp(t, testConfig())
	a.start(t)

	entries := captureLogs(t, func() {
		openPreview(t, a, "6")
		a.get(t, "/")
	})
	if _, ok := find(entries, "preview.open"); !ok {
		t.Fatal("preview.open not logged")
	}
	closed, ok := find(entries, "preview.close")
	if !ok || closed.Fields["reason"] != "navigated" {
		t.Fatalf("preview.close: %+v", closed)
	}
}
