package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_WritesJSONWithServiceAndComponent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf, Service: "recruit-portal"})

	log := For("profile")
	log.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if entry["service"] != "recruit-portal" {
		t.Fatalf("service field = %v", entry["service"])
	}
	if entry["component"] != "profile" {
		t.Fatalf("component field = %v", entry["component"])
	}
	if entry["message"] != "hello" {
		t.Fatalf("message field = %v", entry["message"])
	}
}

func TestFor_BeforeInitIsNop(t *testing.T) {
	Reset()
	log := For("x")
	if log.GetLevel() != zerolog.Disabled {
		t.Fatalf("expected disabled logger, got %v", log.GetLevel())
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_FirstCallWins(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Output: &first, Service: "one"})
	Init(Options{Output: &second, Service: "two"})

	l := Get()
	l.Info().Msg("x")
	if second.Len() != 0 {
		t.Fatalf("second Init must not replace the logger")
	}
	if !bytes.Contains(first.Bytes(), []byte(`"service":"one"`)) {
		t.Fatalf("unexpected output %q", first.String())
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Output: &buf})
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	if bytes.Contains(buf.Bytes(), []byte("hidden")) || !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
