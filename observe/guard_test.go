package observe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

// TestGuard_SwallowsError verifies a failing step is reported, not returned.
func TestGuard_SwallowsError(t *testing.T) {
	var buf bytes.Buffer
	m, reader := newTestMetrics(t)
	g := NewGuard(NewLoggerWithWriter("info", &buf), m)

	g.Do(context.Background(), "tag", func() error { return errors.New("tag rejected") })

	if !strings.Contains(buf.String(), "tag rejected") {
		t.Errorf("expected failure in log, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"instrumentation.op":"tag"`) {
		t.Errorf("expected op in log, got: %s", buf.String())
	}
	if got := sumValue(t, collect(t, reader), MetricFailures); got != 1 {
		t.Errorf("expected 1 failure, got %d", got)
	}
}

// TestGuard_SwallowsPanic verifies a panicking step never escapes.
func TestGuard_SwallowsPanic(t *testing.T) {
	var buf bytes.Buffer
	g := NewGuard(NewLoggerWithWriter("info", &buf), nil)

	g.Run(context.Background(), "close", func() { panic("exporter exploded") })

	if !strings.Contains(buf.String(), "exporter exploded") {
		t.Errorf("expected panic value in log, got: %s", buf.String())
	}
}

// TestGuard_SuccessIsSilent verifies successful steps produce no output.
func TestGuard_SuccessIsSilent(t *testing.T) {
	var buf bytes.Buffer
	m, reader := newTestMetrics(t)
	g := NewGuard(NewLoggerWithWriter("debug", &buf), m)

	ran := 0
	g.Do(context.Background(), "open", func() error { ran++; return nil })
	g.Run(context.Background(), "restore", func() { ran++ })
	g.Do(context.Background(), "noop", nil)

	if ran != 2 {
		t.Errorf("expected both steps to run, ran %d", ran)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output, got: %s", buf.String())
	}
	if got := sumValue(t, collect(t, reader), MetricFailures); got != 0 {
		t.Errorf("expected no failures, got %d", got)
	}
}

type panickingLogger struct{ nopLogger }

func (panickingLogger) Warn(context.Context, string, ...Field) { panic("logger broken") }

// TestGuard_ReportingFailureContained verifies a broken reporter does not escape.
func TestGuard_ReportingFailureContained(t *testing.T) {
	g := NewGuard(panickingLogger{}, nil)
	g.Do(context.Background(), "open", func() error { return errors.New("x") })
}
