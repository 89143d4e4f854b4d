package enrollment

import (
	"errors"
	"testing"

	"github.com/rhyrak/go-enroll/pkg/model"
)

func evaluate(t *testing.T, f *fixture, studentID string, desired model.ClassID) model.Reason {
	t.Helper()
	reason, err := NewEvaluator(f.catalog, f.directory, nil).Evaluate(model.Request{StudentID: studentID, Desired: desired})
	if err != nil {
		t.Fatal(err)
	}
	return reason
}

func TestEvaluateEvenlyFullCourse(t *testing.T) {
	f := newFixture()
	sections := []model.ClassID{cid("ALGA", "1"), cid("ALGA", "2"), cid("ALGA", "3")}
	for _, id := range sections {
		f.section(t, id)
		f.fill(t, id, 5)
	}
	f.section(t, cid("FIS", "1"))
	f.enroll(t, "outsider", cid("FIS", "1"))

	// spread 0, total 15, ceiling 15/16+4 = 4, every section already at 5
	for _, id := range sections {
		if got := evaluate(t, f, "outsider", id); got != model.ReasonCapacity {
			t.Fatalf("outsider into %s: got %s, want capacity", id, got)
		}
		if got := evaluate(t, f, "ALGA-1-000", id); id.SectionID != "1" && got != model.ReasonCapacity {
			t.Fatalf("ALGA-1-000 into %s: got %s, want capacity", id, got)
		}
	}
}

func TestEvaluateSpreadRejection(t *testing.T) {
	f := newFixture()
	big, small := cid("PROG", "1"), cid("PROG", "2")
	f.section(t, big)
	f.section(t, small)
	f.fill(t, big, 10)
	f.fill(t, small, 2)
	f.section(t, cid("FIS", "1"))
	f.enroll(t, "outsider", cid("FIS", "1"))

	// a ceiling this high would admit both sections on its own
	cfg := NewDefaultConfiguration()
	cfg.CeilingBase = 100
	ev := NewEvaluator(f.catalog, f.directory, cfg)
	for _, id := range []model.ClassID{big, small} {
		reason, err := ev.Evaluate(model.Request{StudentID: "outsider", Desired: id})
		if err != nil {
			t.Fatal(err)
		}
		if reason != model.ReasonCapacity {
			t.Fatalf("into %s: got %s, want capacity", id, reason)
		}
	}
}

func TestEvaluateAcceptsUnderCeiling(t *testing.T) {
	f := newFixture()
	f.section(t, cid("ALGA", "1"))
	f.section(t, cid("ALGA", "2"))
	f.fill(t, cid("ALGA", "1"), 3)
	f.fill(t, cid("ALGA", "2"), 3)

	if got := evaluate(t, f, "ALGA-1-000", cid("ALGA", "2")); got != model.ReasonAccepted {
		t.Fatalf("got %s, want accepted", got)
	}
}

func TestEvaluateCollision(t *testing.T) {
	f := newFixture()
	f.section(t, cid("ALGA", "1"), slotAt(model.Monday, "9", "1.5"))
	f.section(t, cid("FIS", "1"), slotAt(model.Monday, "10", "1"))
	f.section(t, cid("FIS", "2"), slotAt(model.Monday, "10.5", "1"))
	f.section(t, cid("FIS", "3"), slotAt(model.Tuesday, "9", "2"))
	f.enroll(t, "s1", cid("ALGA", "1"))

	if got := evaluate(t, f, "s1", cid("FIS", "1")); got != model.ReasonCollision {
		t.Fatalf("FIS/1: got %s, want collision", got)
	}
	if got := evaluate(t, f, "s1", cid("FIS", "2")); got != model.ReasonAccepted {
		t.Fatalf("FIS/2 starts when ALGA/1 ends: got %s, want accepted", got)
	}
	if got := evaluate(t, f, "s1", cid("FIS", "3")); got != model.ReasonAccepted {
		t.Fatalf("FIS/3: got %s, want accepted", got)
	}
}

func TestEvaluateSameCourseExemption(t *testing.T) {
	f := newFixture()
	f.section(t, cid("ALGA", "1"), slotAt(model.Monday, "9", "2"))
	f.section(t, cid("ALGA", "2"), slotAt(model.Monday, "9", "2"))
	f.enroll(t, "s1", cid("ALGA", "1"))

	if got := evaluate(t, f, "s1", cid("ALGA", "2")); got != model.ReasonAccepted {
		t.Fatalf("got %s, want accepted", got)
	}
}

func TestEvaluateAlreadyEnrolled(t *testing.T) {
	f := newFixture()
	f.section(t, cid("ALGA", "1"))
	f.enroll(t, "s1", cid("ALGA", "1"))

	if got := evaluate(t, f, "s1", cid("ALGA", "1")); got != model.ReasonAlreadyEnrolled {
		t.Fatalf("got %s, want already-enrolled", got)
	}
}

func TestEvaluateNotFound(t *testing.T) {
	f := newFixture()
	f.section(t, cid("ALGA", "1"))
	f.enroll(t, "s1", cid("ALGA", "1"))
	ev := NewEvaluator(f.catalog, f.directory, nil)

	if _, err := ev.Evaluate(model.Request{StudentID: "ghost", Desired: cid("ALGA", "1")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown student: got %v, want ErrNotFound", err)
	}
	if _, err := ev.Evaluate(model.Request{StudentID: "s1", Desired: cid("ALGA", "9")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown class: got %v, want ErrNotFound", err)
	}
}

func TestCeiling(t *testing.T) {
	cfg := NewDefaultConfiguration()
	for total, want := range map[int]int{0: 4, 15: 4, 16: 5, 47: 6, 64: 8} {
		if got := cfg.Ceiling(total); got != want {
			t.Fatalf("Ceiling(%d) = %d, want %d", total, got, want)
		}
	}
}
