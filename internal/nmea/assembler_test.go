package nmea

import (
	"strings"
	"testing"
)

func feedAll(a *Assembler, data string) []string {
	var out []string
	for i := 0; i < len(data); i++ {
		if s, ok := a.Feed(data[i]); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestAssembler_SplitsOnLF(t *testing.T) {
	var a Assembler
	got := feedAll(&a, "$GPGGA,1*47\r\n$GPRMC,2*4B\r\n")
	want := []string{"$GPGGA,1*47", "$GPRMC,2*4B"}
	if len(got) != len(want) {
		t.Fatalf("got %d sentences, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence[%d]=%q want %q", i, got[i], want[i])
		}
	}
}

func TestAssembler_MatchesLineSplit(t *testing.T) {
	// Feeding byte-at-a-time must equal splitting on LF with CR stripped,
	// in order, nothing duplicated or dropped.
	data := "first\r\nsecond\nthird,with,fields\r\n"
	var a Assembler
	got := feedAll(&a, data)

	var want []string
	for _, l := range strings.Split(strings.TrimSuffix(data, "\n"), "\n") {
		want = append(want, strings.TrimSuffix(l, "\r"))
	}
	if len(got) != len(want) {
		t.Fatalf("got %d sentences, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence[%d]=%q want %q", i, got[i], want[i])
		}
	}
}

func TestAssembler_BareCRDiscarded(t *testing.T) {
	var a Assembler
	got := feedAll(&a, "a\rb\r\n")
	if len(got) != 1 || got[0] != "ab" {
		t.Fatalf("got %v, want [ab]", got)
	}
}

func TestAssembler_PartialSentenceHeldBack(t *testing.T) {
	var a Assembler
	if got := feedAll(&a, "$GPGGA,123"); got != nil {
		t.Fatalf("expected no sentence for partial input, got %v", got)
	}
	got := feedAll(&a, "519\r\n")
	if len(got) != 1 || got[0] != "$GPGGA,123519" {
		t.Fatalf("got %v", got)
	}
}

func TestAssembler_OversizedLineDroppedAndResyncs(t *testing.T) {
	var a Assembler
	noise := strings.Repeat("x", 4096) + "\n"
	if got := feedAll(&a, noise); got != nil {
		t.Fatalf("expected oversized line to be dropped, got %v", got)
	}
	got := feedAll(&a, "$GPRMC,ok\r\n")
	if len(got) != 1 || got[0] != "$GPRMC,ok" {
		t.Fatalf("expected resync after oversized line, got %v", got)
	}
}
