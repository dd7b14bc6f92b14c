package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if clock.Now().Weekday() != time.Monday {
		t.Fatalf("expected the reference day to be a Monday, got %v", clock.Now().Weekday())
	}
}

func TestClockAdvance(t *testing.T) {
	start := time.Date(2025, time.January, 10, 16, 30, 0, 0, time.UTC)
	clock := NewClock(start)

	if updated := clock.Advance(90 * time.Minute); !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}
	if got := clock.Today(); !got.Equal(time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected Today %v", got)
	}
	if next := clock.NextDay(); next.Day() != 11 || next.Hour() != 18 {
		t.Fatalf("unexpected NextDay %v", next)
	}
}

func TestClockNowFunc(t *testing.T) {
	clock := NewClock(time.Time{})
	nowFn := clock.NowFunc()

	clock.Advance(time.Minute)
	if got := nowFn(); !got.Equal(clock.Now()) {
		t.Fatalf("expected updated time %v, got %v", clock.Now(), got)
	}

	var nilClock *Clock
	if nilClock.NowFunc() == nil {
		t.Fatal("expected a fallback time source for a nil clock")
	}
}

func TestSequence(t *testing.T) {
	seq := NewSequence("")
	if got := seq.Next(); got != "cycle-1" {
		t.Fatalf("expected cycle-1, got %q", got)
	}
	if got := seq.Next(); got != "cycle-2" {
		t.Fatalf("expected cycle-2, got %q", got)
	}
	if seq.Issued() != 2 {
		t.Fatalf("expected 2 issued, got %d", seq.Issued())
	}
}
