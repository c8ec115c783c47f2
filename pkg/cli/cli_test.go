package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestCommandErrorUnwrap(t *testing.T) {
	cause := errors.New("validation failed")
	err := NewCommandError("lint", cause)

	if !errors.Is(err, cause) {
		t.Error("CommandError should unwrap to its cause")
	}
	if got := err.Error(); !strings.Contains(got, "lint") || !strings.Contains(got, "validation failed") {
		t.Errorf("Error() = %q, should name command and cause", got)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"name": "fluke-87v", "rules": 3}

	if err := NewFormatter(FormatJSON).FormatTo(&buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["name"] != "fluke-87v" {
		t.Errorf("decoded name = %v", decoded["name"])
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("JSON output should be indented")
	}
}

func TestTextFormatterDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter("unknown").FormatTo(&buf, "ok"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "ok\n" {
		t.Errorf("text output = %q, want %q", buf.String(), "ok\n")
	}
}

func TestSetupSignalHandlerContext(t *testing.T) {
	ctx := SetupSignalHandler()
	select {
	case <-ctx.Done():
		t.Error("context canceled without a signal")
	default:
	}
}
