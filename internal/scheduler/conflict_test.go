package scheduler

import (
	"testing"
	"time"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 1, day, hour, minute, 0, 0, time.UTC)
}

func TestDetectConflicts(t *testing.T) {
	t.Parallel()

	existing := []Booking{
		{ID: "2", JudgeID: "j1", Lawyers: []string{"l1"}, Room: "A", Start: at(6, 10, 0), End: at(6, 11, 0)},
		{ID: "1", JudgeID: "j2", Lawyers: []string{"l2", "l3"}, Room: "B", Start: at(6, 9, 0), End: at(6, 10, 30)},
	}

	t.Run("judge overlap produces conflict", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts(existing, Booking{JudgeID: "j1", Start: at(6, 10, 30), End: at(6, 11, 30)})
		if len(got) != 1 || got[0].Type != ConflictTypeJudge || got[0].WithBookingID != "2" {
			t.Fatalf("unexpected conflicts %#v", got)
		}
	})

	t.Run("lawyer and room overlaps are reported per booking in start order", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts(existing, Booking{JudgeID: "j9", Lawyers: []string{"l3", "l1"}, Room: "A", Start: at(6, 10, 0), End: at(6, 10, 15)})
		if len(got) != 3 {
			t.Fatalf("expected three conflicts, got %#v", got)
		}
		if got[0].WithBookingID != "1" || got[0].Type != ConflictTypeLawyer || got[0].Lawyer != "l3" {
			t.Fatalf("unexpected first conflict %#v", got[0])
		}
		if got[1].WithBookingID != "2" || got[1].Lawyer != "l1" {
			t.Fatalf("unexpected second conflict %#v", got[1])
		}
		if got[2].Type != ConflictTypeRoom || got[2].Room != "A" {
			t.Fatalf("unexpected third conflict %#v", got[2])
		}
	})

	t.Run("touching and non-overlapping bookings yield no conflicts", func(t *testing.T) {
		t.Parallel()
		if got := DetectConflicts(existing, Booking{JudgeID: "j1", Room: "A", Start: at(6, 11, 0), End: at(6, 12, 0)}); len(got) != 0 {
			t.Fatalf("expected no conflicts, got %#v", got)
		}
	})

	t.Run("a booking does not conflict with itself", func(t *testing.T) {
		t.Parallel()
		moved := existing[0]
		moved.End = moved.End.Add(15 * time.Minute)
		if got := DetectConflicts(existing, moved); len(got) != 0 {
			t.Fatalf("expected no conflicts, got %#v", got)
		}
	})
}

func TestFirstFree(t *testing.T) {
	t.Parallel()

	existing := []Booking{
		{ID: "1", JudgeID: "j1", Start: at(6, 9, 0), End: at(6, 10, 0)},
		{ID: "2", JudgeID: "j1", Start: at(6, 10, 0), End: at(6, 11, 0)},
	}
	candidate := Booking{JudgeID: "j1", Start: at(1, 0, 0), End: at(1, 1, 0)}

	t.Run("books the first gap after existing hearings", func(t *testing.T) {
		t.Parallel()
		got, ok := FirstFree(existing, candidate, at(6, 8, 0), 30*time.Minute, DefaultDay, 5)
		if !ok || !got.Start.Equal(at(6, 11, 0)) || !got.End.Equal(at(6, 12, 0)) {
			t.Fatalf("unexpected slot %v %v ok=%v", got.Start, got.End, ok)
		}
	})

	t.Run("rolls over to the next weekday", func(t *testing.T) {
		t.Parallel()
		// 2025-01-10 is a Friday.
		got, ok := FirstFree(nil, candidate, at(10, 16, 30), 30*time.Minute, DefaultDay, 5)
		if !ok || !got.Start.Equal(at(13, 9, 0)) {
			t.Fatalf("expected Monday 09:00, got %v ok=%v", got.Start, ok)
		}
	})

	t.Run("gives up past the horizon", func(t *testing.T) {
		t.Parallel()
		long := Booking{Start: at(1, 0, 0), End: at(1, 9, 0)}
		if _, ok := FirstFree(nil, long, at(6, 8, 0), time.Hour, DefaultDay, 3); ok {
			t.Fatalf("expected no slot for a booking longer than the sitting day")
		}
	})
}
