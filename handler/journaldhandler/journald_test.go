package journaldhandler

import (
	"errors"
	"testing"

	"github.com/ssgreg/journald"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/handler"
)

type sent struct {
	msg    string
	p      journald.Priority
	fields map[string]interface{}
}

func TestJournaldHandler_Emit(t *testing.T) {
	var got []sent
	h := newWithSender(Config{
		Identifier: "billing",
		Facility:   core.FacilityLocal3,
		Fields:     map[string]interface{}{"SERVICE": "api"},
	}, func(msg string, p journald.Priority, fields map[string]interface{}) error {
		got = append(got, sent{msg, p, fields})
		return nil
	})
	defer h.Close()

	if err := h.Emit(core.LevelWarning, "[[[0123abcd|0|2]]] a"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if err := h.Emit(core.Severity(9), "b"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("sent %d entries, want 2", len(got))
	}
	if got[0].msg != "[[[0123abcd|0|2]]] a" || got[0].p != journald.PriorityWarning {
		t.Errorf("first entry = %+v", got[0])
	}
	if got[1].p != journald.PriorityDebug {
		t.Errorf("out-of-range severity priority = %v, want debug", got[1].p)
	}

	fields := got[0].fields
	if fields["SYSLOG_IDENTIFIER"] != "billing" || fields["SYSLOG_FACILITY"] != "19" || fields["SERVICE"] != "api" {
		t.Errorf("fields = %v", fields)
	}
}

func TestJournaldHandler_PriorityCodes(t *testing.T) {
	want := map[core.Severity]journald.Priority{
		core.LevelEmergency: journald.PriorityEmerg,
		core.LevelAlert:     journald.PriorityAlert,
		core.LevelCritical:  journald.PriorityCrit,
		core.LevelError:     journald.PriorityErr,
		core.LevelWarning:   journald.PriorityWarning,
		core.LevelNotice:    journald.PriorityNotice,
		core.LevelInfo:      journald.PriorityInfo,
		core.LevelDebug:     journald.PriorityDebug,
	}
	for s, p := range want {
		if got := priority(s); got != p {
			t.Errorf("priority(%v) = %v, want %v", s, got, p)
		}
	}
}

func TestJournaldHandler_Failure(t *testing.T) {
	h := newWithSender(Config{}, func(string, journald.Priority, map[string]interface{}) error {
		return errors.New("no such file or directory")
	})

	if err := h.Emit(core.LevelInfo, "x"); err == nil {
		t.Fatal("Expected send error")
	}
	if h.Stats().FailedTotal != 1 {
		t.Errorf("FailedTotal = %d, want 1", h.Stats().FailedTotal)
	}

	h.Close()
	if err := h.Emit(core.LevelInfo, "x"); !errors.Is(err, handler.ErrClosed) {
		t.Errorf("Emit after Close = %v, want ErrClosed", err)
	}
}
