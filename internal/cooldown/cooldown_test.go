package cooldown

import (
	"testing"

	"github.com/EMMoasis/BothMarkets/internal/types"
)

func pair() types.MatchedPair {
	return types.MatchedPair{
		A: types.NormalizedMarket{Venue: types.VenueA, PlatformID: "p1"},
		B: types.NormalizedMarket{Venue: types.VenueB, PlatformID: "p2"},
	}
}

func TestCooldownLiveness(t *testing.T) {
	tbl := NewTable()
	p := pair()

	tbl.Start(p, 3)
	if !tbl.Active(p) {
		t.Fatalf("expected cooldown active immediately after start")
	}

	for i := 0; i < 3; i++ {
		tbl.Tick()
	}
	if tbl.Active(p) {
		t.Fatalf("expected cooldown expired after 3 cycles")
	}
}

func TestCooldownDoubledAfterFailure(t *testing.T) {
	tbl := NewTable()
	p := pair()

	tbl.Start(p, 6) // doubled 3 -> 6 by caller on unwound/partial_stuck
	for i := 0; i < 3; i++ {
		tbl.Tick()
	}
	if !tbl.Active(p) {
		t.Fatalf("expected cooldown still active at base cycle count after doubling")
	}
	for i := 0; i < 3; i++ {
		tbl.Tick()
	}
	if tbl.Active(p) {
		t.Fatalf("expected cooldown expired after doubled cycle count")
	}
}

func TestCooldownIndexedByPairNotStrategy(t *testing.T) {
	tbl := NewTable()
	p := pair()
	tbl.Start(p, 5)
	if !tbl.Active(p) {
		t.Fatalf("expected same pair cooled regardless of which strategy triggered it")
	}
}
