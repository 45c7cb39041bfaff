package diag

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapReporter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := NewZapReporter(zap.New(core))

	r.ReportInternalError("serialize", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Message != "SYSLOG_ERROR" {
		t.Errorf("Message = %q, want SYSLOG_ERROR", e.Message)
	}
	fields := e.ContextMap()
	if fields["context"] != "serialize" {
		t.Errorf("context = %v, want serialize", fields["context"])
	}
	if fields["error"] != "boom" {
		t.Errorf("error = %v, want boom", fields["error"])
	}
}

func TestFunc(t *testing.T) {
	var gotCtx string
	var gotErr error
	r := Func(func(ctx string, err error) {
		gotCtx, gotErr = ctx, err
	})

	want := errors.New("x")
	r.ReportInternalError("traverse", want)
	if gotCtx != "traverse" || gotErr != want {
		t.Errorf("Func got (%q, %v)", gotCtx, gotErr)
	}
}

func TestDefaultAndNop(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}
	if Default() != Default() {
		t.Error("Default() should return the same reporter")
	}
	Nop().ReportInternalError("ignored", errors.New("x"))
}
