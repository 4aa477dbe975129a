package common

import "testing"

func TestHasAny(t *testing.T) {
	if !HasAny("What's the WEATHER like?", "weather") {
		t.Fatal("expected case-insensitive match")
	}
	if HasAny("is it cold there", "weather", "forecast") {
		t.Fatal("unexpected match")
	}
	if HasAny("anything") {
		t.Fatal("no substrings must never match")
	}
}
