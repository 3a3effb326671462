package topology

import (
	"errors"
	"testing"
)

type fakeController struct {
	connected    []string
	disconnected []string
	fail         string
}

func (f *fakeController) Connect(a, b string) error {
	if a == f.fail {
		return errors.New("boom")
	}
	f.connected = append(f.connected, a+"-"+b)
	return nil
}

func (f *fakeController) Disconnect(a, b string) error {
	f.disconnected = append(f.disconnected, a+"-"+b)
	return nil
}

func TestParseLine(t *testing.T) {
	e, err := ParseLine("100 UP a b")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	want := Event{TimeMillis: 100, Status: Up, From: "a", To: "b"}
	if e != want {
		t.Errorf("ParseLine() = %+v, want %+v", e, want)
	}
}

func TestParseLine_Malformed(t *testing.T) {
	cases := []string{
		"100 UP a",
		"notanumber UP a b",
		"-5 UP a b",
		"100 SIDEWAYS a b",
	}
	for _, c := range cases {
		if _, err := ParseLine(c); err == nil {
			t.Errorf("ParseLine(%q) error = nil, want error", c)
		}
	}
}

func TestParse_SortsByTime(t *testing.T) {
	sched, err := Parse([]string{"200 DOWN a b", "", "100 UP a b"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if sched.events[0].TimeMillis != 100 || sched.events[1].TimeMillis != 200 {
		t.Errorf("events not sorted: %+v", sched.events)
	}
}

func TestDrive_AppliesOnlyDueEvents(t *testing.T) {
	sched, _ := Parse([]string{"100 UP a b", "200 DOWN a b"})
	fc := &fakeController{}

	applied, err := sched.Drive(150, fc)
	if err != nil {
		t.Fatalf("Drive() error = %v", err)
	}
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}
	if len(fc.connected) != 1 || fc.connected[0] != "a-b" {
		t.Errorf("connected = %v, want [a-b]", fc.connected)
	}
	if !sched.Pending() {
		t.Errorf("Pending() = false, want true (one event still remains)")
	}

	applied, _ = sched.Drive(200, fc)
	if applied != 1 {
		t.Errorf("second Drive() applied = %d, want 1", applied)
	}
	if len(fc.disconnected) != 1 {
		t.Errorf("disconnected = %v, want one entry", fc.disconnected)
	}
	if sched.Pending() {
		t.Errorf("Pending() = true after draining the schedule, want false")
	}
	if sched.NextDueMillis() != -1 {
		t.Errorf("NextDueMillis() = %d, want -1 once drained", sched.NextDueMillis())
	}
}

func TestDrive_SkipsFailingEventButContinues(t *testing.T) {
	sched, _ := Parse([]string{"100 UP bad b", "100 UP good b"})
	fc := &fakeController{fail: "bad"}

	applied, err := sched.Drive(100, fc)
	if applied != 2 {
		t.Errorf("applied = %d, want 2 (both events consumed)", applied)
	}
	if err == nil {
		t.Errorf("Drive() error = nil, want the failing event's error surfaced")
	}
	if len(fc.connected) != 1 || fc.connected[0] != "good-b" {
		t.Errorf("connected = %v, want [good-b] (the failing one must not block the rest)", fc.connected)
	}
}
