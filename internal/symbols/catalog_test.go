package symbols

import "testing"

func TestSearchSymbolMatchesRankFirst(t *testing.T) {
	got := Search("tata")
	if len(got) == 0 {
		t.Fatalf("no suggestions for tata")
	}
	// TATAMOTORS and TATASTEEL match on symbol and must come before the
	// name-only match for TCS (Tata Consultancy Services).
	if got[0].MatchType != "symbol" {
		t.Errorf("first suggestion should be a symbol match, got %+v", got[0])
	}
	seenTCS := false
	for i, s := range got {
		if s.Symbol == "TCS" {
			seenTCS = true
			if s.MatchType != "name" {
				t.Errorf("TCS should match on name, got %q", s.MatchType)
			}
			for j := i + 1; j < len(got); j++ {
				if got[j].MatchType == "symbol" {
					t.Errorf("symbol match %q ranked after name match TCS", got[j].Symbol)
				}
			}
		}
	}
	if !seenTCS {
		t.Errorf("expected TCS via its company name, got %+v", got)
	}
}

func TestSearchShortQueryReturnsNothing(t *testing.T) {
	if got := Search("t"); got != nil {
		t.Errorf("one-char query should return nil, got %v", got)
	}
	if got := Search("  "); got != nil {
		t.Errorf("blank query should return nil, got %v", got)
	}
}

func TestSearchCapsResults(t *testing.T) {
	// "IN" hits many symbols and names; the cap must hold.
	if got := Search("in"); len(got) > maxSuggestions {
		t.Errorf("got %d suggestions, cap is %d", len(got), maxSuggestions)
	}
}

func TestLookupStripsSuffix(t *testing.T) {
	for _, raw := range []string{"SBIN", "sbin.ns", "SBIN.BO"} {
		if _, ok := Lookup(raw); !ok {
			t.Errorf("Lookup(%q) should find SBIN", raw)
		}
	}
	if _, ok := Lookup("NOPE"); ok {
		t.Errorf("unknown symbol should not resolve")
	}
}

func TestExchangeSuffix(t *testing.T) {
	cases := map[string]string{
		"SBIN":    "NSE",
		"SBIN.NS": "NSE",
		"sbin.bo": "BSE",
	}
	for raw, want := range cases {
		if got := Exchange(raw); got != want {
			t.Errorf("Exchange(%q) = %q, want %q", raw, got, want)
		}
	}
}
