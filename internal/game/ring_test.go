package game

import "testing"

func ringOf(names ...string) (*Ring, []*Player) {
	seats := make([]*Player, len(names))
	for i, n := range names {
		seats[i] = NewHuman(n, "", "")
	}
	return NewRing(seats), seats
}

func TestRing_AdvanceWraps(t *testing.T) {
	r, seats := ringOf("a", "b", "c")
	if r.Current() != seats[0] {
		t.Fatal("first seat should be current")
	}
	r.Advance()
	r.Advance()
	if r.Current() != seats[2] {
		t.Fatal("expected c")
	}
	if r.Advance() != seats[0] {
		t.Fatal("advance should wrap to a")
	}
}

func TestRing_ReverseChangesDirection(t *testing.T) {
	r, seats := ringOf("a", "b", "c")
	r.Reverse()
	if r.Advance() != seats[2] {
		t.Fatal("reversed advance from a should land on c")
	}
	if r.PeekNext() != seats[1] {
		t.Fatal("peek after reverse should be b")
	}
}

func TestRing_SkipReturnsSkippedSeat(t *testing.T) {
	r, seats := ringOf("a", "b", "c")
	skipped := r.Skip()
	if skipped != seats[1] {
		t.Fatal("skip should return b")
	}
	if r.Current() != seats[2] {
		t.Fatal("current should be c after skip")
	}
}

func TestRing_RemoveCurrentAdvancesCursor(t *testing.T) {
	r, seats := ringOf("a", "b", "c")
	removed := r.RemoveCurrent()
	if removed != seats[0] {
		t.Fatal("remove-current should return a")
	}
	if r.Current() != seats[1] {
		t.Fatal("cursor should land on b")
	}
	if r.Len() != 2 {
		t.Fatalf("len %d, want 2", r.Len())
	}
}

func TestRing_RemoveCurrentReversed(t *testing.T) {
	r, seats := ringOf("a", "b", "c")
	r.Reverse()
	r.Advance() // c
	r.RemoveCurrent()
	if r.Current() != seats[1] {
		t.Fatalf("cursor should land on b, got %s", r.Current().Nickname)
	}
}

func TestRing_RemoveBeforeCursorKeepsCurrent(t *testing.T) {
	r, seats := ringOf("a", "b", "c")
	r.Advance() // b
	if _, ok := r.Remove(seats[0].ID); !ok {
		t.Fatal("remove a failed")
	}
	if r.Current() != seats[1] {
		t.Fatal("current should still be b")
	}
	if r.Advance() != seats[2] {
		t.Fatal("advance should reach c")
	}
}

func TestRing_RemoveUnknown(t *testing.T) {
	r, _ := ringOf("a", "b")
	if _, ok := r.Remove("nope"); ok {
		t.Fatal("removing an unknown id should fail")
	}
}

func TestRing_ReplaceKeepsCursor(t *testing.T) {
	r, seats := ringOf("a", "b", "c")
	r.Advance() // b
	bot := NewTempBot(seats[1])
	if !r.Replace(seats[1].ID, bot) {
		t.Fatal("replace failed")
	}
	if r.Current() != bot {
		t.Fatal("cursor should point at the replacement")
	}
	if _, ok := r.Find(seats[1].ID); ok {
		t.Fatal("replaced seat should be gone")
	}
}

func TestRing_PlayersStartsFromCurrent(t *testing.T) {
	r, seats := ringOf("a", "b", "c")
	r.Advance() // b
	order := r.Players()
	if order[0] != seats[1] || order[1] != seats[2] || order[2] != seats[0] {
		t.Fatal("ring order should start from current in direction")
	}
}
