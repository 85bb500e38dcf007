package main

import (
	"testing"
	"time"
)

func TestRootCmd_FlagDefaults(t *testing.T) {
	t.Setenv("CHAT_ENDPOINT", "http://relay.test/chat")
	t.Setenv("CHAT_MAX_ATTEMPTS", "3")
	t.Setenv("CHAT_BACKOFF_BASE", "250ms")

	cmd := newRootCmd()

	tests := []struct {
		flag     string
		expected string
	}{
		{"endpoint", "http://relay.test/chat"},
		{"attempts", "3"},
		{"backoff", (250 * time.Millisecond).String()},
		{"token", ""},
		{"backoff-schedule", "exponential"},
	}
	for _, tc := range tests {
		f := cmd.Flags().Lookup(tc.flag)
		if f == nil {
			t.Fatalf("Missing flag --%s", tc.flag)
		}
		if f.DefValue != tc.expected {
			t.Errorf("--%s: expected default %q, got %q", tc.flag, tc.expected, f.DefValue)
		}
	}
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"unexpected"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for positional arguments")
	}
}

func TestRootCmd_RejectsUnknownSchedule(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--backoff-schedule", "fibonacci"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for unknown backoff schedule")
	}
}
