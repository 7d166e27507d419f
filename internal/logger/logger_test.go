package logger

import "testing"

func TestToZapLevel(t *testing.T) {
	cases := map[string]string{
		DebugLevel: "debug",
		InfoLevel:  "info",
		WarnLevel:  "warn",
		ErrorLevel: "error",
		"verbose":  "info",
		"":         "info",
	}
	for in, want := range cases {
		if got := toZapLevel(in).String(); got != want {
			t.Fatalf("toZapLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSetLevel(t *testing.T) {
	l := New(ErrorLevel)
	if l.Level() != "error" {
		t.Fatalf("got %s", l.Level())
	}
	l.SetLevel(DebugLevel)
	if l.Level() != "debug" || !l.Desugar().Core().Enabled(-1) {
		t.Fatalf("level not applied: %s", l.Level())
	}
}

func TestGetIsSingleton(t *testing.T) {
	if Get(InfoLevel) != Get(DebugLevel) {
		t.Fatalf("Get must return the same instance")
	}
}
