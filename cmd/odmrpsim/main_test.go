package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hakeris1010/odmrp-sim/internal/clock"
	"github.com/hakeris1010/odmrp-sim/internal/config"
	"github.com/hakeris1010/odmrp-sim/internal/console"
	"github.com/hakeris1010/odmrp-sim/internal/scheduler"
	"github.com/hakeris1010/odmrp-sim/internal/simlog"
)

func TestRepl_DispatchesUntilExit(t *testing.T) {
	cfg := config.Default()
	cfg.MessageCacheSize = 64
	cfg.PendingQueueSize = 16
	sched := scheduler.New(cfg, clock.NewFixed(0), simlog.Discard())
	con := console.New(sched)

	in := strings.NewReader("add -ip 10.0.0.1\nlist\nexit\n")
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetIn(in)
	cmd.SetOut(&out)

	repl(cmd, con)

	got := out.String()
	if !strings.Contains(got, "added 10.0.0.1") {
		t.Errorf("repl output = %q, want an 'added' line", got)
	}
	if !strings.Contains(got, "10.0.0.1") {
		t.Errorf("repl output = %q, want the list command's output", got)
	}
	if !strings.Contains(got, "bye") {
		t.Errorf("repl output = %q, want the exit command's response", got)
	}
}

func TestRepl_StopsWhenStdinCloses(t *testing.T) {
	cfg := config.Default()
	sched := scheduler.New(cfg, clock.NewFixed(0), simlog.Discard())
	con := console.New(sched)

	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader("list\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)

	done := make(chan struct{})
	go func() {
		repl(cmd, con)
		close(done)
	}()
	<-done // repl must return once stdin is exhausted, with no exit command
}

func TestNewRootCmd_RegistersExpectedFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"config", "topology", "log-level"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q not registered", name)
		}
	}
}
