package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/robfig/cron/v3"
)

func TestNewLoggerVerbosity(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{2, 2},
		{7, 2},
	}
	for _, tt := range tests {
		if got := NewLogger("test", tt.in).Verbosity; got != tt.want {
			t.Errorf("NewLogger(%d).Verbosity = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("test", 0)
	log.SetOutput(&buf)

	log.Debug("hidden debug")
	log.Info("visible info")

	out := buf.String()
	if strings.Contains(out, "hidden debug") {
		t.Errorf("debug line written at verbosity 0: %q", out)
	}
	if !strings.Contains(out, "visible info") {
		t.Errorf("info line missing: %q", out)
	}
}

func TestChildSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("parent", 1)
	log.SetOutput(&buf)

	child := log.Child("voice")
	if child.Prefix() != "voice" {
		t.Fatalf("child prefix = %q", child.Prefix())
	}
	if child.Verbosity != 1 {
		t.Fatalf("child verbosity = %d", child.Verbosity)
	}
	child.Debug("from the child")
	if !strings.Contains(buf.String(), "from the child") {
		t.Errorf("child output not captured: %q", buf.String())
	}
}

func TestCronRecover(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("cron", 0)
	log.SetOutput(&buf)

	job := cron.NewChain(cron.Recover(log.Cron())).Then(cron.FuncJob(func() {
		panic("check exploded")
	}))
	job.Run()

	out := buf.String()
	if !strings.Contains(out, "cron: panic") || !strings.Contains(out, "check exploded") {
		t.Errorf("recovered panic not logged: %q", out)
	}
}
