package handler

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/diag"
)

// gatedHandler blocks every Emit until release is closed
type gatedHandler struct {
	*MemoryHandler
	release chan struct{}
}

func newGatedHandler() *gatedHandler {
	return &gatedHandler{MemoryHandler: NewMemoryHandler(), release: make(chan struct{})}
}

func (h *gatedHandler) Emit(severity core.Severity, text string) error {
	<-h.release
	return h.MemoryHandler.Emit(severity, text)
}

func TestMemoryHandler(t *testing.T) {
	h := NewMemoryHandler()
	if err := h.Emit(core.LevelInfo, "one"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	boom := errors.New("boom")
	h.FailAfter(1, boom)
	if err := h.Emit(core.LevelInfo, "two"); err != boom {
		t.Errorf("Emit() error = %v, want boom", err)
	}
	if got := h.Texts(); len(got) != 1 || got[0] != "one" {
		t.Errorf("Texts() = %v", got)
	}
	h.Close()
	if err := h.Emit(core.LevelInfo, "three"); !errors.Is(err, ErrClosed) {
		t.Errorf("Emit() after Close error = %v, want ErrClosed", err)
	}
}

func TestMultiHandler(t *testing.T) {
	h1 := NewMemoryHandler()
	h2 := NewMemoryHandler()

	multi := NewMultiHandler(h1, h2)
	defer multi.Close()

	if err := multi.Emit(core.LevelNotice, "multi test"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	for i, h := range []*MemoryHandler{h1, h2} {
		recs := h.Records()
		if len(recs) != 1 || recs[0].Text != "multi test" || recs[0].Severity != core.LevelNotice {
			t.Errorf("handler %d records = %+v", i, recs)
		}
	}
}

func TestMultiHandler_CombinesErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	h1 := NewMemoryHandler()
	h1.FailAfter(0, errA)
	h2 := NewMemoryHandler()
	h2.FailAfter(0, errB)
	h3 := NewMemoryHandler()

	err := NewMultiHandler(h1, h2, h3).Emit(core.LevelInfo, "x")
	if got := multierr.Errors(err); len(got) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(got), err)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("combined error %v should wrap both failures", err)
	}
	if len(h3.Records()) != 1 {
		t.Error("healthy handler should still receive the fragment")
	}
}

func TestAsyncHandler_PreservesOrder(t *testing.T) {
	mem := NewMemoryHandler()
	h := NewAsyncHandler(mem, AsyncConfig{BufferSize: 100, Reporter: diag.Nop()})

	want := []string{"[[[0|3]]] a", "[[[1|3]]] b", "[[[2|3]]] c"}
	for _, text := range want {
		if err := h.Emit(core.LevelInfo, text); err != nil {
			t.Fatalf("Emit() error = %v", err)
		}
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got := mem.Texts()
	if len(got) != len(want) {
		t.Fatalf("got %d fragments, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d = %q, want %q", i, got[i], want[i])
		}
	}
	if h.Stats().ProcessedTotal != 3 {
		t.Errorf("ProcessedTotal = %d, want 3", h.Stats().ProcessedTotal)
	}
}

func TestAsyncHandler_DropNewest(t *testing.T) {
	gated := newGatedHandler()
	h := NewAsyncHandler(gated, AsyncConfig{
		BufferSize:     2,
		OverflowPolicy: map[core.Severity]OverflowPolicy{core.LevelInfo: DropNewest},
		Reporter:       diag.Nop(),
	})

	for i := 0; i < 10; i++ {
		if err := h.Emit(core.LevelInfo, "test"); err != nil {
			t.Fatalf("Emit() error = %v", err)
		}
	}

	if h.Stats().DroppedTotal[core.LevelInfo] == 0 {
		t.Error("Expected some dropped fragments with DropNewest policy")
	}
	close(gated.release)
	h.Close()
}

func TestAsyncHandler_BlockFallsBackToSyncWrite(t *testing.T) {
	gated := newGatedHandler()
	h := NewAsyncHandler(gated, AsyncConfig{
		BufferSize:     1,
		BlockTimeout:   10 * time.Millisecond,
		OverflowPolicy: map[core.Severity]OverflowPolicy{core.LevelError: Block},
		Reporter:       diag.Nop(),
	})

	// One fragment gets stuck in the gated handler, the next fills the
	// queue and the last has to wait.
	done := make(chan struct{})
	go func() {
		h.Emit(core.LevelError, "first")
		h.Emit(core.LevelError, "second")
		h.Emit(core.LevelError, "third")
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	close(gated.release)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit() with Block policy never returned")
	}
	h.Close()

	if h.Stats().BlockedTotal == 0 {
		t.Error("Expected blocked count with Block policy")
	}
	if got := len(gated.Texts()); got != 3 {
		t.Errorf("got %d fragments, want 3", got)
	}
}

func TestAsyncHandler_BlockFallbackKeepsOrder(t *testing.T) {
	gated := newGatedHandler()
	h := NewAsyncHandler(gated, AsyncConfig{
		BufferSize:     1,
		BlockTimeout:   5 * time.Millisecond,
		DrainTimeout:   time.Second,
		OverflowPolicy: map[core.Severity]OverflowPolicy{core.LevelError: Block},
		Reporter:       diag.Nop(),
	})

	want := []string{"a", "b", "c", "d"}
	done := make(chan struct{})
	go func() {
		for _, text := range want {
			h.Emit(core.LevelError, text)
		}
		close(done)
	}()

	// Let the fallback writes time out while "a" and "b" are still queued.
	time.Sleep(50 * time.Millisecond)
	close(gated.release)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit() with Block policy never returned")
	}
	h.Close()

	if h.Stats().BlockedTotal == 0 {
		t.Fatal("Expected the queue to overflow into the synchronous path")
	}
	got := gated.Texts()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fragment %d = %q, want %q (got %v)", i, got[i], want[i], got)
		}
	}
}

func TestAsyncHandler_ReportsTransportErrors(t *testing.T) {
	mem := NewMemoryHandler()
	mem.FailAfter(0, errors.New("down"))

	var reported []string
	h := NewAsyncHandler(mem, AsyncConfig{
		Reporter: diag.Func(func(ctx string, err error) {
			reported = append(reported, ctx)
		}),
	})
	h.Emit(core.LevelInfo, "x")
	h.Close()

	if len(reported) != 1 {
		t.Errorf("reported %d errors, want 1", len(reported))
	}
	if h.Stats().FailedTotal != 1 {
		t.Errorf("FailedTotal = %d, want 1", h.Stats().FailedTotal)
	}
	if err := h.Emit(core.LevelInfo, "late"); !errors.Is(err, ErrClosed) {
		t.Errorf("Emit() after Close error = %v, want ErrClosed", err)
	}
}

func TestStats_Snapshot(t *testing.T) {
	s := NewStats()
	s.IncrementDropped(core.LevelDebug)
	s.IncrementDropped(core.LevelDebug)
	s.IncrementDropped(core.LevelError)
	s.IncrementDropped(core.Severity(99))
	s.IncrementBlocked()
	s.IncrementProcessed()

	snap := s.GetSnapshot()
	if snap.DroppedTotal[core.LevelDebug] != 2 || snap.DroppedTotal[core.LevelError] != 1 {
		t.Errorf("DroppedTotal = %v", snap.DroppedTotal)
	}
	if s.GetTotalDropped() != 3 {
		t.Errorf("GetTotalDropped() = %d, want 3", s.GetTotalDropped())
	}
	if snap.BlockedTotal != 1 || snap.ProcessedTotal != 1 {
		t.Errorf("snapshot = %+v", snap)
	}

	s.Reset()
	if s.GetTotalDropped() != 0 || s.GetSnapshot().ProcessedTotal != 0 {
		t.Error("Reset() did not clear counters")
	}
}

func TestOverflowPolicy_String(t *testing.T) {
	for p, want := range map[OverflowPolicy]string{
		DropNewest:         "DropNewest",
		DropOldest:         "DropOldest",
		Block:              "Block",
		OverflowPolicy(42): "Unknown",
	} {
		if got := p.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
