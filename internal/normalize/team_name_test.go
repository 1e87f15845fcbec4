package normalize

import "testing"

func TestTeamNameIdempotent(t *testing.T) {
	cases := []string{
		"Cloud9 Esports",
		"Team Liquid",
		"G2 Esports",
		"M80",
		"Atlético Madrid",
		"The Foxes FC",
		"Cloud9 2",
	}
	for _, c := range cases {
		once := TeamName(c)
		twice := TeamName(once)
		if once != twice {
			t.Errorf("TeamName(%q) = %q, not idempotent: TeamName(%q) = %q", c, once, once, twice)
		}
	}
}

func TestTeamNameStopwordGuard(t *testing.T) {
	// "FC" alone is a stopword; filtering it out would empty the
	// string, so the pre-filter token must survive.
	got := TeamName("FC")
	if got == "" {
		t.Fatalf("TeamName(%q) stripped to empty, expected stopword-guard fallback", "FC")
	}
}

func TestTeamNameMatchesAcrossVenues(t *testing.T) {
	a := TeamName("Cloud9 Esports")
	b := TeamName("cloud9")
	if a != b {
		t.Errorf("expected matching normalization: %q != %q", a, b)
	}
	if a != "cloud9" {
		t.Errorf("expected normalized name %q, got %q", "cloud9", a)
	}
}

func TestTeamNameStripsTrailingNumericToken(t *testing.T) {
	// A trailing standalone numeric token (a map/game number glued onto
	// the market title) is dropped; a digit that is part of the team
	// name itself is not.
	if got := TeamName("cloud9 2"); got != "cloud9" {
		t.Errorf("TeamName(%q) = %q, want %q", "cloud9 2", got, "cloud9")
	}
	if got := TeamName("cloud9"); got != "cloud9" {
		t.Errorf("TeamName(%q) = %q, want %q", "cloud9", got, "cloud9")
	}
}

func TestExtractMapOrGameNumber(t *testing.T) {
	tests := []struct {
		in      string
		wantN   int
		wantOK  bool
	}{
		{"CS2 Map 2 Winner", 2, true},
		{"Game 3 - BO5", 3, true},
		{"Over 2.5 maps", 0, false},
		{"Total maps over N", 0, false},
		{"No map reference here", 0, false},
		{"map1 glued", 0, false}, // no whitespace before number, must not match
	}
	for _, tt := range tests {
		n, ok := ExtractMapOrGameNumber(tt.in)
		if ok != tt.wantOK || (ok && n != tt.wantN) {
			t.Errorf("ExtractMapOrGameNumber(%q) = (%d, %v), want (%d, %v)", tt.in, n, ok, tt.wantN, tt.wantOK)
		}
	}
}
